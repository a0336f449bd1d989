// Package stream reads and writes sequences of fixed-size records.
//
// A record stream is the concatenation of each record's codec encoding,
// with no header or framing. Because every record has the same size, a
// reader needs only the codec to find record boundaries. With
// CompressionZstd the whole sequence is wrapped in one zstd stream.
//
//	w, err := stream.NewWriter(f, codec.MustFor[Sample](), stream.DefaultOptions())
//	for _, s := range samples {
//		if err := w.Write(s); err != nil { ... }
//	}
//	err = w.Close()
//
//	r, err := stream.NewReader(f, codec.MustFor[Sample](), stream.DefaultOptions())
//	for s, err := range r.All() { ... }
package stream
