// Package schema defines the immutable type descriptors the codecs consume.
//
// A descriptor is built once, bottom-up, and never mutated:
//
//	point := schema.Must(schema.RecordOf("Point",
//		schema.Named("x", schema.U8),
//		schema.Named("y", schema.U16),
//	))
//
//	shape := schema.Must(schema.UnionOf("Shape",
//		schema.Unit("Empty"),
//		schema.TupleVariant("Pair", schema.U8, schema.U16),
//		schema.StructVariant("Point", schema.Named("x", schema.U8)),
//	))
//
// Constructors reject empty records, empty unions, non-positive array
// lengths, nil member types and duplicate names with
// errors.KindInvalidSchema.
//
// Primitive descriptors are package-level singletons. String, Bytes and
// ListOf describe dynamic-length data; a type containing them is not static
// and is only accepted by the dynamic package.
package schema
