package witschema

import (
	"strconv"
	"sync"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/schema"
)

// Converter maps WIT types to descriptors. Results for type definitions are
// cached by identity, so converting the same *wit.TypeDef twice returns the
// same *schema.Type. A Converter is safe for concurrent use.
type Converter struct {
	mu    sync.Mutex
	cache map[*wit.TypeDef]*schema.Type
}

func NewConverter() *Converter {
	return &Converter{cache: make(map[*wit.TypeDef]*schema.Type)}
}

var defaultConverter = NewConverter()

// FromWIT converts t with the shared converter.
func FromWIT(t wit.Type) (*schema.Type, error) {
	return defaultConverter.FromWIT(t)
}

// FromWIT converts t. Strings and lists become dynamic kinds; resource
// handles become their u32 table index.
func (c *Converter) FromWIT(t wit.Type) (*schema.Type, error) {
	if t == nil {
		return nil, errors.InvalidSchema(nil, "WIT type cannot be nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	conv := converter{cache: c.cache, visiting: make(map[*wit.TypeDef]bool)}
	return conv.convert(t, nil)
}

type converter struct {
	cache    map[*wit.TypeDef]*schema.Type
	visiting map[*wit.TypeDef]bool
}

func (c *converter) convert(t wit.Type, path []string) (*schema.Type, error) {
	switch t := t.(type) {
	case wit.Bool:
		return schema.Bool, nil
	case wit.U8:
		return schema.U8, nil
	case wit.S8:
		return schema.S8, nil
	case wit.U16:
		return schema.U16, nil
	case wit.S16:
		return schema.S16, nil
	case wit.U32:
		return schema.U32, nil
	case wit.S32:
		return schema.S32, nil
	case wit.U64:
		return schema.U64, nil
	case wit.S64:
		return schema.S64, nil
	case wit.F32:
		return schema.F32, nil
	case wit.F64:
		return schema.F64, nil
	case wit.Char:
		return schema.Char, nil
	case wit.String:
		return schema.String, nil
	case *wit.TypeDef:
		return c.convertTypeDef(t, path)
	}
	return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
		Path(path...).
		Detail("unsupported WIT type: %T", t).
		Build()
}

func (c *converter) convertTypeDef(td *wit.TypeDef, path []string) (*schema.Type, error) {
	if cached, ok := c.cache[td]; ok {
		return cached, nil
	}
	if c.visiting[td] {
		return nil, errors.InvalidSchema(path, "recursive type %s", typeName(td))
	}
	c.visiting[td] = true
	defer delete(c.visiting, td)

	name := typeName(td)
	var (
		out *schema.Type
		err error
	)
	switch kind := td.Kind.(type) {
	case *wit.Record:
		out, err = c.convertRecord(name, kind, path)
	case *wit.Tuple:
		out, err = c.convertTuple(name, kind, path)
	case *wit.Variant:
		out, err = c.convertVariant(name, kind, path)
	case *wit.Enum:
		variants := make([]schema.Variant, len(kind.Cases))
		for i, ec := range kind.Cases {
			variants[i] = schema.Unit(ec.Name)
		}
		out, err = schema.UnionOf(name, variants...)
	case *wit.Option:
		out, err = c.convertOption(name, kind, path)
	case *wit.Result:
		out, err = c.convertResult(name, kind, path)
	case *wit.Flags:
		out, err = flagsType(len(kind.Flags), path)
	case *wit.List:
		var elem *schema.Type
		if elem, err = c.convert(kind.Type, appendPath(path, "[]")); err == nil {
			out, err = schema.ListOf(elem)
		}
	case *wit.Own, *wit.Borrow:
		out = schema.U32
	case wit.Type:
		out, err = c.convert(kind, path)
	default:
		err = errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported TypeDef kind: %T", kind).
			Build()
	}
	if err != nil {
		return nil, err
	}

	c.cache[td] = out
	return out, nil
}

func (c *converter) convertRecord(name string, r *wit.Record, path []string) (*schema.Type, error) {
	fields := make([]schema.Field, len(r.Fields))
	for i, f := range r.Fields {
		ft, err := c.convert(f.Type, appendPath(path, f.Name))
		if err != nil {
			return nil, err
		}
		fields[i] = schema.Named(f.Name, ft)
	}
	return schema.RecordOf(name, fields...)
}

func (c *converter) convertTuple(name string, t *wit.Tuple, path []string) (*schema.Type, error) {
	fields := make([]schema.Field, len(t.Types))
	for i, elem := range t.Types {
		ft, err := c.convert(elem, appendPath(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		fields[i] = schema.Positional(ft)
	}
	return schema.RecordOf(name, fields...)
}

func (c *converter) convertVariant(name string, v *wit.Variant, path []string) (*schema.Type, error) {
	variants := make([]schema.Variant, len(v.Cases))
	for i, vc := range v.Cases {
		if vc.Type == nil {
			variants[i] = schema.Unit(vc.Name)
			continue
		}
		payload, err := c.convert(vc.Type, appendPath(path, vc.Name))
		if err != nil {
			return nil, err
		}
		variants[i] = schema.TupleVariant(vc.Name, payload)
	}
	return schema.UnionOf(name, variants...)
}

func (c *converter) convertOption(name string, o *wit.Option, path []string) (*schema.Type, error) {
	some, err := c.convert(o.Type, appendPath(path, "some"))
	if err != nil {
		return nil, err
	}
	return schema.UnionOf(name, schema.Unit("none"), schema.TupleVariant("some", some))
}

func (c *converter) convertResult(name string, r *wit.Result, path []string) (*schema.Type, error) {
	ok, err := c.optionalCase("ok", r.OK, path)
	if err != nil {
		return nil, err
	}
	fail, err := c.optionalCase("err", r.Err, path)
	if err != nil {
		return nil, err
	}
	return schema.UnionOf(name, ok, fail)
}

func (c *converter) optionalCase(name string, t wit.Type, path []string) (schema.Variant, error) {
	if t == nil {
		return schema.Unit(name), nil
	}
	payload, err := c.convert(t, appendPath(path, name))
	if err != nil {
		return schema.Variant{}, err
	}
	return schema.TupleVariant(name, payload), nil
}

// flagsType packs flags into the smallest unsigned integer that holds them,
// or into an array of u32 words beyond 64 flags.
func flagsType(n int, path []string) (*schema.Type, error) {
	switch {
	case n <= 0:
		return nil, errors.InvalidSchema(path, "flags type has no flags")
	case n <= 8:
		return schema.U8, nil
	case n <= 16:
		return schema.U16, nil
	case n <= 32:
		return schema.U32, nil
	case n <= 64:
		return schema.U64, nil
	}
	return schema.ArrayOf((n+31)/32, schema.U32)
}

func typeName(td *wit.TypeDef) string {
	if td.Name != nil {
		return *td.Name
	}
	return ""
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
