// Package fixedbin provides fixed-size binary serialization for Go values.
//
// A value whose encoded length is known before any data is read is written as
// an exact byte sequence: no tags, no padding, no length prefixes. The same
// byte sequence decodes back into an equal value.
//
// # Architecture Overview
//
//	fixedbin/            Root package with Reader/Writer interfaces and 128-bit integers
//	├── schema/          Immutable type descriptors (records, arrays, unions, primitives)
//	├── scalar/          Little-endian primitive codec
//	├── codec/           Static codec: compiler, size oracle, records, arrays, unions
//	├── dynamic/         Length-prefixed path for strings, byte slices and lists
//	├── stream/          Fixed-size record streams with optional zstd compression
//	├── wasmmem/         Reader/Writer over WebAssembly linear memory (wazero)
//	├── witschema/       WIT type definitions to schema descriptors
//	└── errors/          Structured error types
//
// # Wire Format
//
//	Type            Size
//	──────────────────────────────────────────
//	bool            1            (nonzero = true)
//	u8/s8           1
//	u16/s16         2
//	u32/s32/f32     4
//	u64/s64/f64     8
//	u128/s128       16
//	char            4            (Unicode scalar value)
//	[N]T            N × size(T)
//	record          Σ size(field)
//	union           D + max payload, D ∈ {1,2,4,8,16}
//	string/bytes    8 + len      (dynamic path)
//	list<T>         8 + Σ elems  (dynamic path)
//
// All integers are little-endian. Records and unions have no alignment
// padding; union payloads shorter than the largest variant are zero-filled.
//
// # Quick Start
//
//	type Point struct {
//	    X uint8
//	    Y uint16
//	}
//
//	c, err := codec.For[Point]()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b, _ := c.Encode(Point{X: 253, Y: 64016}) // [253 144 250]
//	p, _ := c.Decode(b)
//
// # Compatibility
//
// Layout is a matched-version contract. Field order and variant order are the
// format; reordering either between writer and reader silently corrupts data.
package fixedbin
