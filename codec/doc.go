// Package codec encodes static values to fixed-size byte sequences.
//
// A descriptor (schema.Type) is bound to a Go type once by the Compiler,
// which resolves every field offset through the layout calculator. The
// resulting Plan is cached and reused by every call.
//
// # Go Bindings
//
//	schema            Go type
//	──────────────────────────────────────────────────
//	bool              bool
//	u8 … s64          uint8 … int64 (named types allowed)
//	u128 / s128       fixedbin.Uint128 / fixedbin.Int128
//	f32 / f64         float32 / float64
//	char              fixedbin.Char or rune
//	array             [N]T
//	record            struct, exported fields in order
//	union             struct of pointers, one per variant, exactly one set
//
// Fields tagged `fixedbin:"-"` are skipped. A union variant with one payload
// field binds to a pointer to that field's type; a variant with several
// fields binds to a pointer to a struct with that many fields.
//
// # Usage
//
//	type Shape struct {
//	    Empty  *struct{}
//	    Circle *float32
//	    Rect   *Rect
//	}
//
//	c, err := codec.For[Shape]()
//	b, err := c.Encode(Shape{Circle: &r})
//	s, err := c.Decode(b)
//
// Explicit descriptors bind with ForSchema. EncodeValue and DecodeValue
// work without a Go type, using []any for arrays and records and Variant
// for unions. EncodeAll and DecodeAll process slices of values in parallel.
//
// # Checked and Unchecked
//
// Encode, EncodeInto and Decode return errors. EncodeIntoUnchecked and
// DecodeUnchecked skip the buffer length check and panic instead of
// returning an error.
package codec
