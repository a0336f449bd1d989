// Package dynamic serializes values whose encoded size depends on their
// contents: strings, byte slices and lists, alone or nested in structs and
// arrays next to fixed-size fields.
//
// Every dynamic value is written as an 8-byte little-endian count followed
// by its data. Strings and byte slices count bytes; lists count elements.
// Fixed-size parts use the same encoding as package codec, so a value with
// no dynamic fields serializes identically on both paths.
//
//	data, err := dynamic.Marshal(user)
//	n, err := dynamic.Unmarshal(data, &out)
//
// Output goes through a fixedbin.Writer and input comes from a
// fixedbin.Reader. SliceWriter, BufferWriter and StreamWriter cover fixed
// buffers, growable buffers and io.Writer; SliceReader and StreamReader
// cover byte slices and io.Reader.
//
// Decoded counts are checked against Options.MaxLength and, when the
// reader knows how much input is left, against the remaining bytes before
// any allocation. Unions with dynamic payloads are not supported.
package dynamic
