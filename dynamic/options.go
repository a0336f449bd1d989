package dynamic

import (
	"github.com/wippyai/fixedbin/codec"
	"github.com/wippyai/fixedbin/internal/abi"
)

// Options configures a Codec.
type Options struct {
	// Compiler compiles the static parts of values. Nil uses
	// codec.DefaultCompiler().
	Compiler *codec.Compiler

	// MaxLength bounds every decoded length prefix, counted in bytes for
	// strings and byte slices and in elements for lists. Zero or negative
	// uses the default.
	MaxLength int
}

// DefaultOptions returns options with a 1 GiB length limit and the shared
// compiler.
func DefaultOptions() Options {
	return Options{
		Compiler:  codec.DefaultCompiler(),
		MaxLength: abi.MaxAlloc,
	}
}

func (o Options) normalize() Options {
	if o.Compiler == nil {
		o.Compiler = codec.DefaultCompiler()
	}
	if o.MaxLength <= 0 {
		o.MaxLength = abi.MaxAlloc
	}
	return o
}
