package codec

import (
	"reflect"

	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/schema"
)

// Codec encodes and decodes values of T to exactly Size() bytes.
// A Codec is immutable and safe for concurrent use.
type Codec[T any] struct {
	plan *Plan
}

// For derives the descriptor of T and compiles it with the default compiler.
func For[T any]() (*Codec[T], error) {
	t, err := Derive(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return NewCodec[T](defaultCompiler, t)
}

// ForSchema binds an explicit descriptor to T with the default compiler.
func ForSchema[T any](t *schema.Type) (*Codec[T], error) {
	return NewCodec[T](defaultCompiler, t)
}

// MustFor is For that panics on error.
func MustFor[T any]() *Codec[T] {
	c, err := For[T]()
	if err != nil {
		panic(err)
	}
	return c
}

// NewCodec binds t to T using compiler c.
func NewCodec[T any](c *Compiler, t *schema.Type) (*Codec[T], error) {
	p, err := c.Compile(reflect.TypeFor[T](), t)
	if err != nil {
		return nil, err
	}
	return &Codec[T]{plan: p}, nil
}

// Size returns the encoded size in bytes.
func (c *Codec[T]) Size() int { return c.plan.size }

func (c *Codec[T]) Schema() *schema.Type { return c.plan.schema }

// Plan returns the compiled plan backing c.
func (c *Codec[T]) Plan() *Plan { return c.plan }

// Encode returns a new buffer of exactly Size() bytes.
func (c *Codec[T]) Encode(v T) ([]byte, error) {
	b := make([]byte, c.plan.size)
	if err := c.plan.encode(b, reflect.ValueOf(&v).Elem()); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeInto writes v into dst[:Size()]. A shorter dst fails with
// errors.KindInvalidSliceLength. On other errors the contents of dst are
// unspecified.
func (c *Codec[T]) EncodeInto(dst []byte, v T) error {
	if len(dst) < c.plan.size {
		return errors.InvalidSliceLength(errors.PhaseEncode, nil, c.plan.size, len(dst))
	}
	return c.plan.encode(dst[:c.plan.size], reflect.ValueOf(&v).Elem())
}

// EncodeIntoUnchecked is EncodeInto without the length check. It panics
// when dst is too short or v cannot be encoded.
func (c *Codec[T]) EncodeIntoUnchecked(dst []byte, v T) {
	if err := c.plan.encode(dst, reflect.ValueOf(&v).Elem()); err != nil {
		panic(err)
	}
}

// Decode reads the first Size() bytes of b. A shorter b fails with
// errors.KindInvalidSliceLength; invalid chars and discriminants fail with
// their own kinds. The zero value is returned on any error.
func (c *Codec[T]) Decode(b []byte) (T, error) {
	var out T
	if len(b) < c.plan.size {
		return out, errors.InvalidSliceLength(errors.PhaseDecode, nil, c.plan.size, len(b))
	}
	if err := c.plan.decode(b[:c.plan.size], reflect.ValueOf(&out).Elem()); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// DecodeUnchecked is Decode for bytes the caller knows were produced by
// Encode. It panics on a short buffer, and panics with the *errors.Error
// Decode would return on invalid data.
func (c *Codec[T]) DecodeUnchecked(b []byte) T {
	var out T
	if err := c.plan.decode(b, reflect.ValueOf(&out).Elem()); err != nil {
		panic(err)
	}
	return out
}
