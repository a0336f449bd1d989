package codec

import (
	"reflect"

	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/schema"
)

// Plan is a descriptor bound to a Go type, with every offset resolved.
// Plans are immutable and safe for concurrent use.
type Plan struct {
	goType   reflect.Type
	schema   *schema.Type
	elem     *Plan
	fields   []planField
	cases    []planCase
	size     int
	elemSize int
	discSize int
	kind     schema.Kind
}

type planField struct {
	plan *Plan
	name string
	// index is the Go struct field index, or -1 when the field is the
	// bound value itself (single-field union payloads).
	index  int
	offset int
}

type planCase struct {
	elemType reflect.Type
	name     string
	fields   []planField
	goField  int
	size     int
}

// Size returns the encoded size in bytes.
func (p *Plan) Size() int { return p.size }

func (p *Plan) Schema() *schema.Type { return p.schema }

func (p *Plan) GoType() reflect.Type { return p.goType }

// Encode writes v into dst[:Size()]. v must have the plan's Go type.
// On error the contents of dst are unspecified.
func (p *Plan) Encode(dst []byte, v reflect.Value) error {
	if !v.IsValid() || v.Type() != p.goType {
		return errors.TypeMismatch(errors.PhaseEncode, nil, typeOfValue(v), p.goType.String())
	}
	if len(dst) < p.size {
		return errors.InvalidSliceLength(errors.PhaseEncode, nil, p.size, len(dst))
	}
	return p.encode(dst[:p.size], v)
}

// Decode reads src[:Size()] into dst, which must be settable and have the
// plan's Go type. dst is only written when decoding succeeds.
func (p *Plan) Decode(src []byte, dst reflect.Value) error {
	if !dst.CanSet() || dst.Type() != p.goType {
		return errors.TypeMismatch(errors.PhaseDecode, nil, typeOfValue(dst), p.goType.String())
	}
	if len(src) < p.size {
		return errors.InvalidSliceLength(errors.PhaseDecode, nil, p.size, len(src))
	}
	tmp := reflect.New(p.goType).Elem()
	if err := p.decode(src[:p.size], tmp); err != nil {
		return err
	}
	dst.Set(tmp)
	return nil
}

func typeOfValue(v reflect.Value) string {
	if !v.IsValid() {
		return "invalid"
	}
	return v.Type().String()
}

func withPath(err error, seg string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithPath(seg)
	}
	return err
}
