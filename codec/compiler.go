package codec

import (
	"reflect"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
	"github.com/wippyai/fixedbin/internal/layout"
	"github.com/wippyai/fixedbin/schema"
)

var (
	uint128Type = reflect.TypeFor[fixedbin.Uint128]()
	int128Type  = reflect.TypeFor[fixedbin.Int128]()
	charType    = reflect.TypeFor[fixedbin.Char]()
	float32Type = reflect.TypeFor[float32]()
)

// Compiler binds descriptors to Go types and caches the resulting plans.
// It is safe for concurrent use.
type Compiler struct {
	layout *layout.Calculator
	cache  sync.Map // cacheKey -> *Plan
}

type cacheKey struct {
	goType reflect.Type
	schema *schema.Type
}

func NewCompiler() *Compiler {
	return &Compiler{
		layout: layout.NewCalculator(),
	}
}

var defaultCompiler = NewCompiler()

// DefaultCompiler returns the compiler shared by For, ForSchema and SizeOf.
func DefaultCompiler() *Compiler {
	return defaultCompiler
}

// SizeOf returns the encoded size of a static type.
func SizeOf(t *schema.Type) (int, error) {
	return defaultCompiler.SizeOf(t)
}

// SizeOf returns the encoded size of a static type.
func (c *Compiler) SizeOf(t *schema.Type) (int, error) {
	return c.layout.Size(t)
}

// Compile binds t to goType. t must be static.
func (c *Compiler) Compile(goType reflect.Type, t *schema.Type) (*Plan, error) {
	if goType == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}
	if t == nil {
		return nil, errors.InvalidSchema(nil, "schema type cannot be nil")
	}

	key := cacheKey{goType: goType, schema: t}
	if cached, ok := c.cache.Load(key); ok {
		return cached.(*Plan), nil
	}

	p, err := c.compile(goType, t, nil)
	if err != nil {
		return nil, err
	}

	actual, loaded := c.cache.LoadOrStore(key, p)
	if !loaded {
		Logger().Debug("compiled plan",
			zap.Stringer("schema", t),
			zap.Stringer("go_type", goType),
			zap.Int("size", p.size),
		)
	}
	return actual.(*Plan), nil
}

func (c *Compiler) compile(goType reflect.Type, t *schema.Type, path []string) (*Plan, error) {
	if !t.IsStatic() {
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			Schema(t.String()).
			Detail("type has no static size").
			Build()
	}

	info, err := c.layout.Calculate(t)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return nil, e.WithPath(path...)
		}
		return nil, err
	}

	switch t.Kind() {
	case schema.KindArray:
		return c.compileArray(goType, t, info, path)
	case schema.KindRecord:
		return c.compileRecord(goType, t, info, path)
	case schema.KindUnion:
		return c.compileUnion(goType, t, info, path)
	default:
		return c.compilePrimitive(goType, t, info, path)
	}
}

func (c *Compiler) compilePrimitive(goType reflect.Type, t *schema.Type, info layout.Info, path []string) (*Plan, error) {
	if !bindsPrimitive(goType, t.Kind()) {
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), t.String())
	}
	return &Plan{
		goType: goType,
		schema: t,
		size:   info.Size,
		kind:   t.Kind(),
	}, nil
}

func bindsPrimitive(goType reflect.Type, k schema.Kind) bool {
	switch k {
	case schema.KindBool:
		return goType.Kind() == reflect.Bool
	case schema.KindU8:
		return goType.Kind() == reflect.Uint8
	case schema.KindS8:
		return goType.Kind() == reflect.Int8
	case schema.KindU16:
		return goType.Kind() == reflect.Uint16
	case schema.KindS16:
		return goType.Kind() == reflect.Int16
	case schema.KindU32:
		return goType.Kind() == reflect.Uint32
	case schema.KindS32, schema.KindChar:
		return goType.Kind() == reflect.Int32
	case schema.KindU64:
		return goType.Kind() == reflect.Uint64
	case schema.KindS64:
		return goType.Kind() == reflect.Int64
	case schema.KindU128:
		return goType.Kind() == reflect.Struct && goType.ConvertibleTo(uint128Type)
	case schema.KindS128:
		return goType.Kind() == reflect.Struct && goType.ConvertibleTo(int128Type)
	case schema.KindF32:
		return goType.Kind() == reflect.Float32
	case schema.KindF64:
		return goType.Kind() == reflect.Float64
	}
	return false
}

func (c *Compiler) compileArray(goType reflect.Type, t *schema.Type, info layout.Info, path []string) (*Plan, error) {
	if goType.Kind() != reflect.Array || goType.Len() != t.Len() {
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), t.String())
	}

	elem, err := c.compile(goType.Elem(), t.Elem(), appendPath(path, "[]"))
	if err != nil {
		return nil, err
	}

	return &Plan{
		goType:   goType,
		schema:   t,
		elem:     elem,
		size:     info.Size,
		elemSize: info.ElemSize,
		kind:     schema.KindArray,
	}, nil
}

func (c *Compiler) compileRecord(goType reflect.Type, t *schema.Type, info layout.Info, path []string) (*Plan, error) {
	if goType.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), t.String())
	}

	goFields := abi.BindableFields(goType)
	if len(goFields) != t.NumFields() {
		return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			Path(path...).
			GoType(goType.String()).
			Schema(t.String()).
			Detail("struct has %d bindable fields, record has %d", len(goFields), t.NumFields()).
			Build()
	}

	fields := make([]planField, len(goFields))
	for i, gf := range goFields {
		label := t.FieldLabel(i)
		fp, err := c.compile(gf.Type, t.Field(i).Type, appendPath(path, label))
		if err != nil {
			return nil, err
		}
		fields[i] = planField{
			plan:   fp,
			name:   label,
			index:  gf.Index[0],
			offset: info.FieldOffs[i],
		}
	}

	return &Plan{
		goType: goType,
		schema: t,
		fields: fields,
		size:   info.Size,
		kind:   schema.KindRecord,
	}, nil
}

// compileUnion binds a union to a struct of pointers, one per variant.
func (c *Compiler) compileUnion(goType reflect.Type, t *schema.Type, info layout.Info, path []string) (*Plan, error) {
	if goType.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), t.String())
	}

	goFields := abi.BindableFields(goType)
	if len(goFields) != t.NumVariants() {
		return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			Path(path...).
			GoType(goType.String()).
			Schema(t.String()).
			Detail("struct has %d bindable fields, union has %d variants", len(goFields), t.NumVariants()).
			Build()
	}

	cases := make([]planCase, len(goFields))
	for i, gf := range goFields {
		label := t.VariantLabel(i)
		casePath := appendPath(path, label)
		if gf.Type.Kind() != reflect.Pointer {
			return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
				Path(casePath...).
				GoType(gf.Type.String()).
				Detail("union variant fields must be pointers").
				Build()
		}

		fields, err := c.compilePayload(gf.Type.Elem(), t.Variant(i), info.CaseOffs[i], casePath)
		if err != nil {
			return nil, err
		}
		cases[i] = planCase{
			elemType: gf.Type.Elem(),
			name:     label,
			fields:   fields,
			goField:  gf.Index[0],
			size:     info.CaseSizes[i],
		}
	}

	return &Plan{
		goType:   goType,
		schema:   t,
		cases:    cases,
		size:     info.Size,
		discSize: info.DiscSize,
		kind:     schema.KindUnion,
	}, nil
}

// compilePayload binds variant payload fields to the pointee of a union
// field. A single payload field binds to the pointee itself when possible,
// and otherwise to a struct with one bindable field.
func (c *Compiler) compilePayload(elem reflect.Type, v schema.Variant, offs []int, path []string) ([]planField, error) {
	switch len(v.Fields) {
	case 0:
		return nil, nil
	case 1:
		fp, err := c.compile(elem, v.Fields[0].Type, path)
		if err == nil {
			return []planField{{plan: fp, name: fieldLabel(v.Fields[0], 0), index: -1, offset: offs[0]}}, nil
		}
		if elem.Kind() != reflect.Struct || len(abi.BindableFields(elem)) != 1 {
			return nil, err
		}
	}

	if elem.Kind() != reflect.Struct {
		return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			Path(path...).
			GoType(elem.String()).
			Detail("payload with %d fields needs a struct", len(v.Fields)).
			Build()
	}
	goFields := abi.BindableFields(elem)
	if len(goFields) != len(v.Fields) {
		return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			Path(path...).
			GoType(elem.String()).
			Detail("struct has %d bindable fields, variant has %d", len(goFields), len(v.Fields)).
			Build()
	}

	fields := make([]planField, len(goFields))
	for i, gf := range goFields {
		label := fieldLabel(v.Fields[i], i)
		fp, err := c.compile(gf.Type, v.Fields[i].Type, appendPath(path, label))
		if err != nil {
			return nil, err
		}
		fields[i] = planField{plan: fp, name: label, index: gf.Index[0], offset: offs[i]}
	}
	return fields, nil
}

func fieldLabel(f schema.Field, i int) string {
	if f.Name != "" {
		return f.Name
	}
	return strconv.Itoa(i)
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
