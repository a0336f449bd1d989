// Package witschema converts WebAssembly Interface Type (WIT) definitions
// into schema descriptors.
//
// Mapping:
//
//	bool, u8..s64, f32, f64, char  same primitive
//	string                         string (dynamic)
//	list<T>                        list of T (dynamic)
//	record                         record with named fields
//	tuple                          record with positional fields
//	variant                        union, one single-field variant per case
//	enum                           union of unit variants
//	option<T>                      union{none, some{T}}
//	result<T, E>                   union{ok{T}, err{E}}, absent payloads are unit
//	flags                          u8, u16, u32 or u64 by count; [n]u32 above 64
//	own<R>, borrow<R>              u32 handle index
//
// The descriptors describe this package's wire format, not the component
// model's canonical ABI: there is no alignment padding and discriminants
// follow the union sizing rules of package codec.
package witschema
