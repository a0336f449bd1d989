package stream

import (
	"github.com/klauspost/compress/zstd"
)

// Compression selects how a record stream is framed on the wire.
type Compression uint8

const (
	// CompressionNone writes encodings back to back.
	CompressionNone Compression = iota
	// CompressionZstd wraps the stream in a single zstd stream.
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	}
	return "unknown"
}

// Options configures stream writers and readers. Both ends of a stream
// must agree on Compression; there is no header to detect it.
type Options struct {
	Compression Compression

	// EncoderLevel is used by writers when Compression is CompressionZstd.
	// Zero uses zstd.SpeedDefault.
	EncoderLevel zstd.EncoderLevel

	// BufferSize sizes the buffer around uncompressed streams. Zero or
	// negative uses 64 KiB.
	BufferSize int
}

const defaultBufferSize = 64 << 10

// DefaultOptions returns uncompressed stream options.
func DefaultOptions() Options {
	return Options{
		Compression:  CompressionNone,
		EncoderLevel: zstd.SpeedDefault,
		BufferSize:   defaultBufferSize,
	}
}

func (o Options) normalize() Options {
	if o.EncoderLevel == 0 {
		o.EncoderLevel = zstd.SpeedDefault
	}
	if o.BufferSize <= 0 {
		o.BufferSize = defaultBufferSize
	}
	return o
}
