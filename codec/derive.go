package codec

import (
	"reflect"
	"sync"

	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
	"github.com/wippyai/fixedbin/schema"
)

var deriveCache sync.Map // reflect.Type -> *schema.Type

// Derive builds a descriptor from a Go type.
//
//   - bool, sized integers and floats map to the matching primitive
//   - fixedbin.Char maps to char; a plain rune is s32
//   - fixedbin.Uint128 and fixedbin.Int128 map to u128 and s128
//   - [N]T maps to an array
//   - a struct whose bindable fields are all pointers maps to a union, one
//     variant per field; any other struct maps to a record
//   - string, []byte and []T map to the dynamic kinds
//
// Field and variant names come from the Go field name or a
// `fixedbin:"name"` tag. Results are cached per Go type, so deriving the
// same type twice returns the same descriptor.
func Derive(rt reflect.Type) (*schema.Type, error) {
	if rt == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}
	if cached, ok := deriveCache.Load(rt); ok {
		return cached.(*schema.Type), nil
	}

	d := deriver{visiting: make(map[reflect.Type]bool)}
	t, err := d.derive(rt, nil)
	if err != nil {
		return nil, err
	}
	actual, _ := deriveCache.LoadOrStore(rt, t)
	return actual.(*schema.Type), nil
}

type deriver struct {
	visiting map[reflect.Type]bool
}

func (d *deriver) derive(rt reflect.Type, path []string) (*schema.Type, error) {
	if cached, ok := deriveCache.Load(rt); ok {
		return cached.(*schema.Type), nil
	}

	switch rt {
	case charType:
		return schema.Char, nil
	case uint128Type:
		return schema.U128, nil
	case int128Type:
		return schema.S128, nil
	}

	switch rt.Kind() {
	case reflect.Bool:
		return schema.Bool, nil
	case reflect.Uint8:
		return schema.U8, nil
	case reflect.Int8:
		return schema.S8, nil
	case reflect.Uint16:
		return schema.U16, nil
	case reflect.Int16:
		return schema.S16, nil
	case reflect.Uint32:
		return schema.U32, nil
	case reflect.Int32:
		return schema.S32, nil
	case reflect.Uint64:
		return schema.U64, nil
	case reflect.Int64:
		return schema.S64, nil
	case reflect.Float32:
		return schema.F32, nil
	case reflect.Float64:
		return schema.F64, nil
	case reflect.String:
		return schema.String, nil
	case reflect.Array:
		elem, err := d.derive(rt.Elem(), appendPath(path, "[]"))
		if err != nil {
			return nil, err
		}
		t, err := schema.ArrayOf(rt.Len(), elem)
		if err != nil {
			return nil, err.(*errors.Error).WithPath(path...)
		}
		return t, nil
	case reflect.Slice:
		if rt.Elem().Kind() == reflect.Uint8 {
			return schema.Bytes, nil
		}
		elem, err := d.derive(rt.Elem(), appendPath(path, "[]"))
		if err != nil {
			return nil, err
		}
		return schema.ListOf(elem)
	case reflect.Struct:
		if d.visiting[rt] {
			return nil, errors.InvalidSchema(path, "recursive type %s has no fixed size", rt)
		}
		d.visiting[rt] = true
		defer delete(d.visiting, rt)

		var t *schema.Type
		var err error
		if isUnionStruct(rt) {
			t, err = d.deriveUnion(rt, path)
		} else {
			t, err = d.deriveRecord(rt, path)
		}
		if err != nil {
			return nil, err
		}
		actual, _ := deriveCache.LoadOrStore(rt, t)
		return actual.(*schema.Type), nil
	}

	return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
		Path(path...).
		GoType(rt.String()).
		Detail("%s has no portable fixed-size encoding", rt.Kind()).
		Build()
}

func (d *deriver) deriveRecord(rt reflect.Type, path []string) (*schema.Type, error) {
	fields, err := d.deriveFields(rt, path)
	if err != nil {
		return nil, err
	}
	t, err := schema.RecordOf(rt.Name(), fields...)
	if err != nil {
		return nil, err.(*errors.Error).WithPath(path...)
	}
	return t, nil
}

func (d *deriver) deriveUnion(rt reflect.Type, path []string) (*schema.Type, error) {
	goFields := abi.BindableFields(rt)
	variants := make([]schema.Variant, len(goFields))
	for i, gf := range goFields {
		name := abi.FieldName(gf)
		vpath := appendPath(path, name)
		elem := gf.Type.Elem()

		switch {
		case elem.Kind() == reflect.Struct && len(abi.BindableFields(elem)) == 0:
			variants[i] = schema.Unit(name)
		case elem.Kind() == reflect.Struct && elem != uint128Type && elem != int128Type && !isUnionStruct(elem):
			if d.visiting[elem] {
				return nil, errors.InvalidSchema(vpath, "recursive type %s has no fixed size", elem)
			}
			d.visiting[elem] = true
			fields, err := d.deriveFields(elem, vpath)
			delete(d.visiting, elem)
			if err != nil {
				return nil, err
			}
			variants[i] = schema.StructVariant(name, fields...)
		default:
			payload, err := d.derive(elem, vpath)
			if err != nil {
				return nil, err
			}
			variants[i] = schema.TupleVariant(name, payload)
		}
	}

	t, err := schema.UnionOf(rt.Name(), variants...)
	if err != nil {
		return nil, err.(*errors.Error).WithPath(path...)
	}
	return t, nil
}

func (d *deriver) deriveFields(rt reflect.Type, path []string) ([]schema.Field, error) {
	goFields := abi.BindableFields(rt)
	fields := make([]schema.Field, len(goFields))
	for i, gf := range goFields {
		name := abi.FieldName(gf)
		ft, err := d.derive(gf.Type, appendPath(path, name))
		if err != nil {
			return nil, err
		}
		fields[i] = schema.Named(name, ft)
	}
	return fields, nil
}

// isUnionStruct reports whether every bindable field of rt is a pointer.
func isUnionStruct(rt reflect.Type) bool {
	fields := abi.BindableFields(rt)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if f.Type.Kind() != reflect.Pointer {
			return false
		}
	}
	return true
}
