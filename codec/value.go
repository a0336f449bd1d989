package codec

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
	"github.com/wippyai/fixedbin/internal/layout"
	"github.com/wippyai/fixedbin/scalar"
	"github.com/wippyai/fixedbin/schema"
)

// Variant is the untyped form of a union value.
type Variant struct {
	Fields []any
	Index  int
}

// EncodeValue encodes an untyped value against t using the default compiler.
//
// Primitives use their natural Go types (uint8, int16, float32, bool,
// fixedbin.Uint128, ...; char accepts rune or fixedbin.Char). Arrays and
// records are []any in declared order; unions are Variant.
func EncodeValue(t *schema.Type, v any) ([]byte, error) {
	return defaultCompiler.EncodeValue(t, v)
}

// DecodeValue decodes b against t using the default compiler. It returns
// values in the forms EncodeValue accepts; chars decode as rune.
func DecodeValue(t *schema.Type, b []byte) (any, error) {
	return defaultCompiler.DecodeValue(t, b)
}

func (c *Compiler) EncodeValue(t *schema.Type, v any) ([]byte, error) {
	info, err := c.layout.Calculate(t)
	if err != nil {
		return nil, err
	}
	b := make([]byte, info.Size)
	if err := c.encodeValue(b, t, info, v); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Compiler) DecodeValue(t *schema.Type, b []byte) (any, error) {
	info, err := c.layout.Calculate(t)
	if err != nil {
		return nil, err
	}
	if len(b) < info.Size {
		return nil, errors.InvalidSliceLength(errors.PhaseDecode, nil, info.Size, len(b))
	}
	return c.decodeValue(b[:info.Size], t, info)
}

func valueMismatch(t *schema.Type, v any) error {
	return errors.TypeMismatch(errors.PhaseEncode, nil, abi.TypeName(v), t.String())
}

func (c *Compiler) encodeValue(b []byte, t *schema.Type, info layout.Info, v any) error {
	switch t.Kind() {
	case schema.KindArray:
		items, ok := v.([]any)
		if !ok || len(items) != t.Len() {
			return valueMismatch(t, v)
		}
		elemInfo, err := c.layout.Calculate(t.Elem())
		if err != nil {
			return err
		}
		for i, item := range items {
			off := i * info.ElemSize
			if err := c.encodeValue(b[off:off+info.ElemSize], t.Elem(), elemInfo, item); err != nil {
				return withPath(err, strconv.Itoa(i))
			}
		}
		return nil
	case schema.KindRecord:
		items, ok := v.([]any)
		if !ok || len(items) != t.NumFields() {
			return valueMismatch(t, v)
		}
		for i, item := range items {
			if err := c.encodeValueAt(b, t.Field(i).Type, info.FieldOffs[i], item); err != nil {
				return withPath(err, t.FieldLabel(i))
			}
		}
		return nil
	case schema.KindUnion:
		u, ok := v.(Variant)
		if !ok {
			if p, isPtr := v.(*Variant); isPtr && p != nil {
				u, ok = *p, true
			}
		}
		if !ok {
			return valueMismatch(t, v)
		}
		if u.Index < 0 || u.Index >= t.NumVariants() {
			return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				Schema(t.String()).
				Value(u.Index).
				Detail("variant index %d out of range (%d variants)", u.Index, t.NumVariants()).
				Build()
		}
		variant := t.Variant(u.Index)
		if len(u.Fields) != len(variant.Fields) {
			return withPath(errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				Schema(t.String()).
				Detail("variant has %d fields, got %d", len(variant.Fields), len(u.Fields)).
				Build(), t.VariantLabel(u.Index))
		}
		abi.PutDiscriminant(b, info.DiscSize, uint64(u.Index))
		for i, item := range u.Fields {
			if err := c.encodeValueAt(b, variant.Fields[i].Type, info.CaseOffs[u.Index][i], item); err != nil {
				return withPath(withPath(err, fieldLabel(variant.Fields[i], i)), t.VariantLabel(u.Index))
			}
		}
		clear(b[info.CaseSizes[u.Index]:info.Size])
		return nil
	default:
		return encodePrimitiveValue(b, t, v)
	}
}

func (c *Compiler) encodeValueAt(b []byte, t *schema.Type, off int, v any) error {
	info, err := c.layout.Calculate(t)
	if err != nil {
		return err
	}
	return c.encodeValue(b[off:off+info.Size], t, info, v)
}

func encodePrimitiveValue(b []byte, t *schema.Type, v any) error {
	ok := true
	switch t.Kind() {
	case schema.KindBool:
		var x bool
		if x, ok = v.(bool); ok {
			b[0] = 0
			if x {
				b[0] = 1
			}
		}
	case schema.KindU8:
		var x uint8
		if x, ok = v.(uint8); ok {
			b[0] = x
		}
	case schema.KindS8:
		var x int8
		if x, ok = v.(int8); ok {
			b[0] = byte(x)
		}
	case schema.KindU16:
		var x uint16
		if x, ok = v.(uint16); ok {
			binary.LittleEndian.PutUint16(b, x)
		}
	case schema.KindS16:
		var x int16
		if x, ok = v.(int16); ok {
			binary.LittleEndian.PutUint16(b, uint16(x))
		}
	case schema.KindU32:
		var x uint32
		if x, ok = v.(uint32); ok {
			binary.LittleEndian.PutUint32(b, x)
		}
	case schema.KindS32:
		var x int32
		if x, ok = v.(int32); ok {
			binary.LittleEndian.PutUint32(b, uint32(x))
		}
	case schema.KindU64:
		var x uint64
		if x, ok = v.(uint64); ok {
			binary.LittleEndian.PutUint64(b, x)
		}
	case schema.KindS64:
		var x int64
		if x, ok = v.(int64); ok {
			binary.LittleEndian.PutUint64(b, uint64(x))
		}
	case schema.KindU128:
		var x fixedbin.Uint128
		if x, ok = v.(fixedbin.Uint128); ok {
			scalar.PutU128(b, x)
		}
	case schema.KindS128:
		var x fixedbin.Int128
		if x, ok = v.(fixedbin.Int128); ok {
			scalar.PutI128(b, x)
		}
	case schema.KindF32:
		var x float32
		if x, ok = v.(float32); ok {
			binary.LittleEndian.PutUint32(b, math.Float32bits(x))
		}
	case schema.KindF64:
		var x float64
		if x, ok = v.(float64); ok {
			binary.LittleEndian.PutUint64(b, math.Float64bits(x))
		}
	case schema.KindChar:
		switch x := v.(type) {
		case rune:
			return scalar.PutChar(b, x)
		case fixedbin.Char:
			return scalar.PutChar(b, rune(x))
		}
		ok = false
	default:
		return errors.Unsupported(errors.PhaseEncode, t.String()+" has no static encoding")
	}
	if !ok {
		return valueMismatch(t, v)
	}
	return nil
}

func (c *Compiler) decodeValue(b []byte, t *schema.Type, info layout.Info) (any, error) {
	switch t.Kind() {
	case schema.KindArray:
		elemInfo, err := c.layout.Calculate(t.Elem())
		if err != nil {
			return nil, err
		}
		items := make([]any, t.Len())
		for i := range items {
			off := i * info.ElemSize
			item, err := c.decodeValue(b[off:off+info.ElemSize], t.Elem(), elemInfo)
			if err != nil {
				return nil, withPath(err, strconv.Itoa(i))
			}
			items[i] = item
		}
		return items, nil
	case schema.KindRecord:
		items := make([]any, t.NumFields())
		for i := range items {
			item, err := c.decodeValueAt(b, t.Field(i).Type, info.FieldOffs[i])
			if err != nil {
				return nil, withPath(err, t.FieldLabel(i))
			}
			items[i] = item
		}
		return items, nil
	case schema.KindUnion:
		disc := abi.ReadDiscriminant(b, info.DiscSize)
		if disc >= uint64(t.NumVariants()) {
			e := errors.InvalidDiscriminant(errors.PhaseDecode, nil, disc, t.NumVariants())
			e.Schema = t.String()
			return nil, e
		}
		idx := int(disc)
		variant := t.Variant(idx)
		fields := make([]any, len(variant.Fields))
		for i, f := range variant.Fields {
			item, err := c.decodeValueAt(b, f.Type, info.CaseOffs[idx][i])
			if err != nil {
				return nil, withPath(withPath(err, fieldLabel(f, i)), t.VariantLabel(idx))
			}
			fields[i] = item
		}
		return Variant{Index: idx, Fields: fields}, nil
	default:
		return decodePrimitiveValue(b, t)
	}
}

func (c *Compiler) decodeValueAt(b []byte, t *schema.Type, off int) (any, error) {
	info, err := c.layout.Calculate(t)
	if err != nil {
		return nil, err
	}
	return c.decodeValue(b[off:off+info.Size], t, info)
}

func decodePrimitiveValue(b []byte, t *schema.Type) (any, error) {
	switch t.Kind() {
	case schema.KindBool:
		return b[0] != 0, nil
	case schema.KindU8:
		return b[0], nil
	case schema.KindS8:
		return int8(b[0]), nil
	case schema.KindU16:
		return binary.LittleEndian.Uint16(b), nil
	case schema.KindS16:
		return int16(binary.LittleEndian.Uint16(b)), nil
	case schema.KindU32:
		return binary.LittleEndian.Uint32(b), nil
	case schema.KindS32:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case schema.KindU64:
		return binary.LittleEndian.Uint64(b), nil
	case schema.KindS64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	case schema.KindU128:
		return scalar.U128(b), nil
	case schema.KindS128:
		return scalar.I128(b), nil
	case schema.KindF32:
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	case schema.KindF64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	case schema.KindChar:
		return scalar.Char(b)
	}
	return nil, errors.Unsupported(errors.PhaseDecode, t.String()+" has no static encoding")
}
