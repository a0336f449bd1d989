package codec

import (
	"encoding/binary"
	"math"
	"reflect"
	"strconv"

	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
	"github.com/wippyai/fixedbin/scalar"
	"github.com/wippyai/fixedbin/schema"
)

// decode reads b into v, a settable zero value of p.goType.
func (p *Plan) decode(b []byte, v reflect.Value) error {
	switch p.kind {
	case schema.KindBool:
		v.SetBool(b[0] != 0)
	case schema.KindU8:
		v.SetUint(uint64(b[0]))
	case schema.KindS8:
		v.SetInt(int64(int8(b[0])))
	case schema.KindU16:
		v.SetUint(uint64(binary.LittleEndian.Uint16(b)))
	case schema.KindS16:
		v.SetInt(int64(int16(binary.LittleEndian.Uint16(b))))
	case schema.KindU32:
		v.SetUint(uint64(binary.LittleEndian.Uint32(b)))
	case schema.KindS32:
		v.SetInt(int64(int32(binary.LittleEndian.Uint32(b))))
	case schema.KindU64:
		v.SetUint(binary.LittleEndian.Uint64(b))
	case schema.KindS64:
		v.SetInt(int64(binary.LittleEndian.Uint64(b)))
	case schema.KindU128:
		v.Set(reflect.ValueOf(scalar.U128(b)).Convert(p.goType))
	case schema.KindS128:
		v.Set(reflect.ValueOf(scalar.I128(b)).Convert(p.goType))
	case schema.KindF32:
		v.Set(reflect.ValueOf(math.Float32frombits(binary.LittleEndian.Uint32(b))).Convert(p.goType))
	case schema.KindF64:
		v.SetFloat(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	case schema.KindChar:
		r, err := scalar.Char(b)
		if err != nil {
			return err
		}
		v.SetInt(int64(r))
	case schema.KindArray:
		return p.decodeArray(b, v)
	case schema.KindRecord:
		return decodeFields(b, p.fields, v)
	case schema.KindUnion:
		return p.decodeUnion(b, v)
	}
	return nil
}

func (p *Plan) decodeArray(b []byte, v reflect.Value) error {
	n := v.Len()
	for i := 0; i < n; i++ {
		off := i * p.elemSize
		if err := p.elem.decode(b[off:off+p.elemSize], v.Index(i)); err != nil {
			return withPath(err, strconv.Itoa(i))
		}
	}
	return nil
}

func decodeFields(b []byte, fields []planField, v reflect.Value) error {
	for _, f := range fields {
		fv := v
		if f.index >= 0 {
			fv = v.Field(f.index)
		}
		if err := f.plan.decode(b[f.offset:f.offset+f.plan.size], fv); err != nil {
			return withPath(err, f.name)
		}
	}
	return nil
}

// decodeUnion selects the variant by position. Bytes past the variant's own
// size are ignored.
func (p *Plan) decodeUnion(b []byte, v reflect.Value) error {
	disc := abi.ReadDiscriminant(b, p.discSize)
	if disc >= uint64(len(p.cases)) {
		e := errors.InvalidDiscriminant(errors.PhaseDecode, nil, disc, len(p.cases))
		e.Schema = p.schema.String()
		return e
	}

	c := p.cases[disc]
	ptr := reflect.New(c.elemType)
	if err := decodeFields(b, c.fields, ptr.Elem()); err != nil {
		return withPath(err, c.name)
	}
	v.Field(c.goField).Set(ptr)
	return nil
}
