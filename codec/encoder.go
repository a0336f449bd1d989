package codec

import (
	"encoding/binary"
	"math"
	"reflect"
	"strconv"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
	"github.com/wippyai/fixedbin/scalar"
	"github.com/wippyai/fixedbin/schema"
)

// encode writes v into b. len(b) is at least p.size.
func (p *Plan) encode(b []byte, v reflect.Value) error {
	switch p.kind {
	case schema.KindBool:
		if v.Bool() {
			b[0] = 1
		} else {
			b[0] = 0
		}
	case schema.KindU8:
		b[0] = byte(v.Uint())
	case schema.KindS8:
		b[0] = byte(v.Int())
	case schema.KindU16:
		binary.LittleEndian.PutUint16(b, uint16(v.Uint()))
	case schema.KindS16:
		binary.LittleEndian.PutUint16(b, uint16(v.Int()))
	case schema.KindU32:
		binary.LittleEndian.PutUint32(b, uint32(v.Uint()))
	case schema.KindS32:
		binary.LittleEndian.PutUint32(b, uint32(v.Int()))
	case schema.KindU64:
		binary.LittleEndian.PutUint64(b, v.Uint())
	case schema.KindS64:
		binary.LittleEndian.PutUint64(b, uint64(v.Int()))
	case schema.KindU128:
		scalar.PutU128(b, v.Convert(uint128Type).Interface().(fixedbin.Uint128))
	case schema.KindS128:
		scalar.PutI128(b, v.Convert(int128Type).Interface().(fixedbin.Int128))
	case schema.KindF32:
		// float32 to float32 conversion keeps the bits, including signalling NaNs
		binary.LittleEndian.PutUint32(b, math.Float32bits(v.Convert(float32Type).Interface().(float32)))
	case schema.KindF64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(v.Float()))
	case schema.KindChar:
		return scalar.PutChar(b, rune(v.Int()))
	case schema.KindArray:
		return p.encodeArray(b, v)
	case schema.KindRecord:
		return encodeFields(b, p.fields, v)
	case schema.KindUnion:
		return p.encodeUnion(b, v)
	}
	return nil
}

func (p *Plan) encodeArray(b []byte, v reflect.Value) error {
	n := v.Len()
	for i := 0; i < n; i++ {
		off := i * p.elemSize
		if err := p.elem.encode(b[off:off+p.elemSize], v.Index(i)); err != nil {
			return withPath(err, strconv.Itoa(i))
		}
	}
	return nil
}

func encodeFields(b []byte, fields []planField, v reflect.Value) error {
	for _, f := range fields {
		fv := v
		if f.index >= 0 {
			fv = v.Field(f.index)
		}
		if err := f.plan.encode(b[f.offset:f.offset+f.plan.size], fv); err != nil {
			return withPath(err, f.name)
		}
	}
	return nil
}

// encodeUnion writes the discriminant of the single non-nil variant, its
// payload, and zeroes the bytes past the variant's own size.
func (p *Plan) encodeUnion(b []byte, v reflect.Value) error {
	active := -1
	for i, c := range p.cases {
		if v.Field(c.goField).IsNil() {
			continue
		}
		if active >= 0 {
			return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				GoType(p.goType.String()).
				Detail("variants %s and %s are both set", p.cases[active].name, c.name).
				Build()
		}
		active = i
	}
	if active < 0 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			GoType(p.goType.String()).
			Detail("no variant is set").
			Build()
	}

	c := p.cases[active]
	abi.PutDiscriminant(b, p.discSize, uint64(active))
	if err := encodeFields(b, c.fields, v.Field(c.goField).Elem()); err != nil {
		return withPath(err, c.name)
	}
	clear(b[c.size:p.size])
	return nil
}
