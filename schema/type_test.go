package schema

import (
	"testing"

	"github.com/wippyai/fixedbin/errors"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindBool, "bool"},
		{KindU128, "u128"},
		{KindS128, "s128"},
		{KindChar, "char"},
		{KindUnion, "union"},
		{KindList, "list"},
		{Kind(200), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestKindClassification(t *testing.T) {
	for k := KindBool; k <= KindChar; k++ {
		if !k.IsPrimitive() {
			t.Errorf("%s should be primitive", k)
		}
		if k.PrimitiveSize() == 0 {
			t.Errorf("%s has no primitive size", k)
		}
		if k.IsDynamic() {
			t.Errorf("%s should not be dynamic", k)
		}
	}
	for _, k := range []Kind{KindString, KindBytes, KindList} {
		if !k.IsDynamic() {
			t.Errorf("%s should be dynamic", k)
		}
	}
	for _, k := range []Kind{KindArray, KindRecord, KindUnion} {
		if k.IsPrimitive() || k.IsDynamic() {
			t.Errorf("%s misclassified", k)
		}
	}
}

func TestPrimitive(t *testing.T) {
	for k := KindBool; k <= KindChar; k++ {
		p, err := Primitive(k)
		if err != nil {
			t.Fatalf("Primitive(%s): %v", k, err)
		}
		if p.Kind() != k || !p.IsStatic() {
			t.Errorf("Primitive(%s) = %s static=%v", k, p, p.IsStatic())
		}
	}
	if _, err := Primitive(KindRecord); !errors.IsKind(err, errors.KindInvalidSchema) {
		t.Errorf("Primitive(record) err = %v", err)
	}
}

func TestConstructorErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Type, error)
	}{
		{"empty record", func() (*Type, error) { return RecordOf("Empty") }},
		{"empty union", func() (*Type, error) { return UnionOf("Never") }},
		{"zero length array", func() (*Type, error) { return ArrayOf(0, U8) }},
		{"negative length array", func() (*Type, error) { return ArrayOf(-1, U8) }},
		{"nil array elem", func() (*Type, error) { return ArrayOf(2, nil) }},
		{"nil list elem", func() (*Type, error) { return ListOf(nil) }},
		{"nil field type", func() (*Type, error) { return RecordOf("R", Named("a", nil)) }},
		{"duplicate field", func() (*Type, error) {
			return RecordOf("R", Named("a", U8), Named("a", U16))
		}},
		{"duplicate variant", func() (*Type, error) {
			return UnionOf("U", Unit("A"), Unit("A"))
		}},
		{"duplicate payload field", func() (*Type, error) {
			return UnionOf("U", StructVariant("A", Named("x", U8), Named("x", U8)))
		}},
		{"nil payload type", func() (*Type, error) {
			return UnionOf("U", TupleVariant("A", U8, nil))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, err := tt.build()
			if err == nil {
				t.Fatalf("expected error, got %s", typ)
			}
			if !errors.IsKind(err, errors.KindInvalidSchema) {
				t.Errorf("kind = %q, want invalid_schema", errors.KindOf(err))
			}
			if !errors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindInvalidSchema}) {
				t.Errorf("phase should be compile: %v", err)
			}
		})
	}
}

func TestPositionalFieldsMayRepeat(t *testing.T) {
	typ, err := RecordOf("", Positional(U8), Positional(U8))
	if err != nil {
		t.Fatalf("RecordOf: %v", err)
	}
	if typ.NumFields() != 2 || typ.FieldLabel(1) != "1" {
		t.Errorf("unexpected fields: %s", typ)
	}
}

func TestIsStatic(t *testing.T) {
	list := Must(ListOf(U8))
	tests := []struct {
		name string
		typ  *Type
		want bool
	}{
		{"primitive", U32, true},
		{"array", Must(ArrayOf(4, U8)), true},
		{"record", Must(RecordOf("P", Named("x", U8), Named("y", U16))), true},
		{"union", Must(UnionOf("U", Unit("A"), TupleVariant("B", U8))), true},
		{"string", String, false},
		{"bytes", Bytes, false},
		{"list", list, false},
		{"array of list", Must(ArrayOf(2, list)), false},
		{"record with string", Must(RecordOf("R", Named("id", U8), Named("name", String))), false},
		{"union with bytes", Must(UnionOf("U", Unit("A"), TupleVariant("B", Bytes))), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.IsStatic(); got != tt.want {
				t.Errorf("IsStatic(%s) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		typ  *Type
		want string
	}{
		{U8, "u8"},
		{Must(ArrayOf(3, U16)), "[3]u16"},
		{Must(ListOf(Char)), "list<char>"},
		{Must(RecordOf("Point", Named("x", U8), Named("y", U16))), "record Point{x: u8, y: u16}"},
		{Must(RecordOf("", Positional(U8), Positional(Bool))), "record{u8, bool}"},
		{
			Must(UnionOf("Shape", Unit("Empty"), TupleVariant("Pair", U8, U16), StructVariant("Dot", Named("x", F32)))),
			"union Shape{Empty, Pair{u8, u16}, Dot{x: f32}}",
		},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestConstructorsCopyInput(t *testing.T) {
	fields := []Field{Named("a", U8), Named("b", U16)}
	rec := Must(RecordOf("R", fields...))
	fields[0] = Named("z", U64)
	if rec.Field(0).Name != "a" || rec.Field(0).Type != U8 {
		t.Errorf("record aliased caller slice: %s", rec)
	}

	payload := []Field{Positional(U8)}
	u := Must(UnionOf("U", Variant{Name: "A", Fields: payload}))
	payload[0] = Positional(U64)
	if u.Variant(0).Fields[0].Type != U8 {
		t.Errorf("union aliased caller slice: %s", u)
	}
}

func TestMustPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must should panic on error")
		}
	}()
	Must(RecordOf("Empty"))
}
