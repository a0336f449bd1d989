package schema

import (
	"strconv"
	"strings"

	"github.com/wippyai/fixedbin/errors"
)

// Type describes the shape of a value. Values are immutable once built and
// are compared by pointer in codec caches.
type Type struct {
	elem     *Type
	name     string
	fields   []Field
	variants []Variant
	length   int
	kind     Kind
	static   bool
}

// Field is a record member or a union payload member. An empty Name makes
// the field positional.
type Field struct {
	Type *Type
	Name string
}

// Variant is one alternative of a union. No fields makes it a unit variant.
type Variant struct {
	Name   string
	Fields []Field
}

var (
	Bool = primitive(KindBool)
	U8   = primitive(KindU8)
	S8   = primitive(KindS8)
	U16  = primitive(KindU16)
	S16  = primitive(KindS16)
	U32  = primitive(KindU32)
	S32  = primitive(KindS32)
	U64  = primitive(KindU64)
	S64  = primitive(KindS64)
	U128 = primitive(KindU128)
	S128 = primitive(KindS128)
	F32  = primitive(KindF32)
	F64  = primitive(KindF64)
	Char = primitive(KindChar)

	String = &Type{kind: KindString}
	Bytes  = &Type{kind: KindBytes}
)

func primitive(k Kind) *Type {
	return &Type{kind: k, static: true}
}

// Primitive returns the singleton descriptor for a primitive kind.
func Primitive(k Kind) (*Type, error) {
	switch k {
	case KindBool:
		return Bool, nil
	case KindU8:
		return U8, nil
	case KindS8:
		return S8, nil
	case KindU16:
		return U16, nil
	case KindS16:
		return S16, nil
	case KindU32:
		return U32, nil
	case KindS32:
		return S32, nil
	case KindU64:
		return U64, nil
	case KindS64:
		return S64, nil
	case KindU128:
		return U128, nil
	case KindS128:
		return S128, nil
	case KindF32:
		return F32, nil
	case KindF64:
		return F64, nil
	case KindChar:
		return Char, nil
	}
	return nil, errors.InvalidSchema(nil, "%s is not a primitive kind", k)
}

// Named returns a named field.
func Named(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

// Positional returns an unnamed field.
func Positional(t *Type) Field {
	return Field{Type: t}
}

// Unit returns a variant without payload.
func Unit(name string) Variant {
	return Variant{Name: name}
}

// TupleVariant returns a variant with positional payload fields.
func TupleVariant(name string, types ...*Type) Variant {
	fields := make([]Field, len(types))
	for i, t := range types {
		fields[i] = Field{Type: t}
	}
	return Variant{Name: name, Fields: fields}
}

// StructVariant returns a variant with named payload fields.
func StructVariant(name string, fields ...Field) Variant {
	return Variant{Name: name, Fields: fields}
}

// ArrayOf returns a fixed-length array of n elements.
func ArrayOf(n int, elem *Type) (*Type, error) {
	if elem == nil {
		return nil, errors.InvalidSchema(nil, "array element type is nil")
	}
	if n <= 0 {
		return nil, errors.InvalidSchema(nil, "array length must be positive, got %d", n)
	}
	return &Type{kind: KindArray, length: n, elem: elem, static: elem.static}, nil
}

// ListOf returns a dynamic-length sequence.
func ListOf(elem *Type) (*Type, error) {
	if elem == nil {
		return nil, errors.InvalidSchema(nil, "list element type is nil")
	}
	return &Type{kind: KindList, elem: elem}, nil
}

// RecordOf returns a record with fields in wire order. name may be empty.
func RecordOf(name string, fields ...Field) (*Type, error) {
	if len(fields) == 0 {
		return nil, errors.InvalidSchema(pathOf(name), "record has no fields")
	}
	if err := checkFields(pathOf(name), fields); err != nil {
		return nil, err
	}
	static := true
	for _, f := range fields {
		static = static && f.Type.static
	}
	return &Type{kind: KindRecord, name: name, fields: append([]Field(nil), fields...), static: static}, nil
}

// UnionOf returns a tagged union with variants in discriminant order.
func UnionOf(name string, variants ...Variant) (*Type, error) {
	path := pathOf(name)
	if len(variants) == 0 {
		return nil, errors.InvalidSchema(path, "union has no variants")
	}
	seen := make(map[string]struct{}, len(variants))
	static := true
	copied := make([]Variant, len(variants))
	for i, v := range variants {
		vpath := append(append([]string(nil), path...), variantLabel(v, i))
		if v.Name != "" {
			if _, dup := seen[v.Name]; dup {
				return nil, errors.InvalidSchema(path, "duplicate variant %q", v.Name)
			}
			seen[v.Name] = struct{}{}
		}
		if err := checkFields(vpath, v.Fields); err != nil {
			return nil, err
		}
		for _, f := range v.Fields {
			static = static && f.Type.static
		}
		copied[i] = Variant{Name: v.Name, Fields: append([]Field(nil), v.Fields...)}
	}
	return &Type{kind: KindUnion, name: name, variants: copied, static: static}, nil
}

// Must panics if err is non-nil. It is meant for package-level descriptors.
func Must(t *Type, err error) *Type {
	if err != nil {
		panic(err)
	}
	return t
}

func checkFields(path []string, fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.Type == nil {
			return errors.InvalidSchema(path, "field %s has nil type", fieldLabel(f, i))
		}
		if f.Name == "" {
			continue
		}
		if _, dup := seen[f.Name]; dup {
			return errors.InvalidSchema(path, "duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func pathOf(name string) []string {
	if name == "" {
		return nil
	}
	return []string{name}
}

func fieldLabel(f Field, i int) string {
	if f.Name != "" {
		return f.Name
	}
	return strconv.Itoa(i)
}

func variantLabel(v Variant, i int) string {
	if v.Name != "" {
		return v.Name
	}
	return strconv.Itoa(i)
}

func (t *Type) Kind() Kind     { return t.kind }
func (t *Type) Name() string   { return t.name }
func (t *Type) Len() int       { return t.length }
func (t *Type) Elem() *Type    { return t.elem }
func (t *Type) NumFields() int { return len(t.fields) }

// Field returns the i-th record field.
func (t *Type) Field(i int) Field { return t.fields[i] }

func (t *Type) NumVariants() int { return len(t.variants) }

// Variant returns the i-th union variant. Its Fields slice must not be
// modified.
func (t *Type) Variant(i int) Variant { return t.variants[i] }

// IsStatic reports whether every value of t encodes to the same length.
func (t *Type) IsStatic() bool { return t.static }

// FieldLabel returns the record field name, or its index when positional.
func (t *Type) FieldLabel(i int) string { return fieldLabel(t.fields[i], i) }

// VariantLabel returns the variant name, or its index when unnamed.
func (t *Type) VariantLabel(i int) string { return variantLabel(t.variants[i], i) }

func (t *Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) write(b *strings.Builder) {
	switch t.kind {
	case KindArray:
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(t.length))
		b.WriteByte(']')
		t.elem.write(b)
	case KindList:
		b.WriteString("list<")
		t.elem.write(b)
		b.WriteByte('>')
	case KindRecord:
		b.WriteString("record")
		if t.name != "" {
			b.WriteByte(' ')
			b.WriteString(t.name)
		}
		writeFields(b, t.fields)
	case KindUnion:
		b.WriteString("union")
		if t.name != "" {
			b.WriteByte(' ')
			b.WriteString(t.name)
		}
		b.WriteByte('{')
		for i, v := range t.variants {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(variantLabel(v, i))
			if len(v.Fields) > 0 {
				writeFields(b, v.Fields)
			}
		}
		b.WriteByte('}')
	default:
		b.WriteString(t.kind.String())
	}
}

func writeFields(b *strings.Builder, fields []Field) {
	b.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		if f.Name != "" {
			b.WriteString(f.Name)
			b.WriteString(": ")
		}
		f.Type.write(b)
	}
	b.WriteByte('}')
}
