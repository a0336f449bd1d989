// Package layout computes encoded sizes and offsets for static schema types.
//
// # Layout Rules
//
//   - Primitives: natural width (u8=1, u16=2, u32/f32/char=4, u64/f64=8, u128=16)
//   - Arrays: element size times length
//   - Records: fields laid out back to back with no padding
//   - Unions: discriminant followed by the largest variant payload; shorter
//     payloads are zero-filled
//   - String, bytes and list have no static size
//
// # Usage
//
//	calc := layout.NewCalculator()
//	info, err := calc.Calculate(t)
//	// info.Size, info.FieldOffs, info.DiscSize available
//
// This package is internal to fixedbin.
package layout
