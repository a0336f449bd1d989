package layout

import (
	"sync"
	"testing"

	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/schema"
)

func TestCalculatePrimitives(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		typ  *schema.Type
		name string
		size int
	}{
		{schema.Bool, "bool", 1},
		{schema.U8, "u8", 1},
		{schema.S8, "s8", 1},
		{schema.U16, "u16", 2},
		{schema.S16, "s16", 2},
		{schema.U32, "u32", 4},
		{schema.S32, "s32", 4},
		{schema.U64, "u64", 8},
		{schema.S64, "s64", 8},
		{schema.U128, "u128", 16},
		{schema.S128, "s128", 16},
		{schema.F32, "f32", 4},
		{schema.F64, "f64", 8},
		{schema.Char, "char", 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := c.Calculate(tc.typ)
			if err != nil {
				t.Fatal(err)
			}
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
		})
	}
}

func TestCalculateArray(t *testing.T) {
	c := NewCalculator()

	t.Run("bytes", func(t *testing.T) {
		info, err := c.Calculate(schema.Must(schema.ArrayOf(32, schema.U8)))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 32 || info.ElemSize != 1 {
			t.Errorf("got size=%d elem=%d, want 32/1", info.Size, info.ElemSize)
		}
	})

	t.Run("nested", func(t *testing.T) {
		inner := schema.Must(schema.ArrayOf(3, schema.U16))
		info, err := c.Calculate(schema.Must(schema.ArrayOf(4, inner)))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 24 || info.ElemSize != 6 {
			t.Errorf("got size=%d elem=%d, want 24/6", info.Size, info.ElemSize)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		big := schema.Must(schema.ArrayOf(1<<40, schema.U128))
		_, err := c.Calculate(schema.Must(schema.ArrayOf(1<<40, big)))
		if !errors.IsKind(err, errors.KindOverflow) {
			t.Errorf("expected overflow, got %v", err)
		}
	})
}

func TestCalculateRecord(t *testing.T) {
	c := NewCalculator()

	t.Run("no padding", func(t *testing.T) {
		rec := schema.Must(schema.RecordOf("R",
			schema.Named("a", schema.U8),
			schema.Named("b", schema.U16),
		))
		info, err := c.Calculate(rec)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 3 {
			t.Errorf("size: got %d, want 3", info.Size)
		}
		if len(info.FieldOffs) != 2 || info.FieldOffs[0] != 0 || info.FieldOffs[1] != 1 {
			t.Errorf("field offsets: got %v, want [0 1]", info.FieldOffs)
		}
	})

	t.Run("mixed", func(t *testing.T) {
		rec := schema.Must(schema.RecordOf("Mixed",
			schema.Named("flag", schema.Bool),
			schema.Named("id", schema.U64),
			schema.Named("ch", schema.Char),
			schema.Named("big", schema.S128),
		))
		info, err := c.Calculate(rec)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 29 {
			t.Errorf("size: got %d, want 29", info.Size)
		}
		want := []int{0, 1, 9, 13}
		for i, off := range want {
			if info.FieldOffs[i] != off {
				t.Errorf("field %d offset: got %d, want %d", i, info.FieldOffs[i], off)
			}
		}
	})

	t.Run("dynamic field", func(t *testing.T) {
		rec := schema.Must(schema.RecordOf("R",
			schema.Named("id", schema.U8),
			schema.Named("name", schema.String),
		))
		_, err := c.Calculate(rec)
		if !errors.IsKind(err, errors.KindUnsupported) {
			t.Fatalf("expected unsupported, got %v", err)
		}
		e := err.(*errors.Error)
		if len(e.Path) != 1 || e.Path[0] != "name" {
			t.Errorf("path: got %v, want [name]", e.Path)
		}
	})
}

func TestCalculateUnion(t *testing.T) {
	c := NewCalculator()

	t.Run("unit only", func(t *testing.T) {
		u := schema.Must(schema.UnionOf("Color",
			schema.Unit("Red"), schema.Unit("Green"), schema.Unit("Blue"),
		))
		info, err := c.Calculate(u)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 1 || info.DiscSize != 1 {
			t.Errorf("got size=%d disc=%d, want 1/1", info.Size, info.DiscSize)
		}
	})

	t.Run("unit and tuple", func(t *testing.T) {
		u := schema.Must(schema.UnionOf("U",
			schema.Unit("Empty"),
			schema.TupleVariant("Pair", schema.U8, schema.U16),
		))
		info, err := c.Calculate(u)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 4 {
			t.Errorf("size: got %d, want 4", info.Size)
		}
		if info.CaseSizes[0] != 1 || info.CaseSizes[1] != 4 {
			t.Errorf("case sizes: got %v, want [1 4]", info.CaseSizes)
		}
		if len(info.CaseOffs[1]) != 2 || info.CaseOffs[1][0] != 1 || info.CaseOffs[1][1] != 2 {
			t.Errorf("case offsets: got %v, want [1 2]", info.CaseOffs[1])
		}
	})

	t.Run("max payload", func(t *testing.T) {
		u := schema.Must(schema.UnionOf("U",
			schema.Unit("A"),
			schema.TupleVariant("B", schema.U64),
			schema.StructVariant("C", schema.Named("x", schema.U16)),
		))
		info, err := c.Calculate(u)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 9 {
			t.Errorf("size: got %d, want 9", info.Size)
		}
	})

	t.Run("two byte discriminant", func(t *testing.T) {
		variants := make([]schema.Variant, 256)
		for i := range variants {
			variants[i] = schema.Unit("")
		}
		info, err := c.Calculate(schema.Must(schema.UnionOf("Wide", variants...)))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size != 2 || info.DiscSize != 2 {
			t.Errorf("got size=%d disc=%d, want 2/2", info.Size, info.DiscSize)
		}
	})

	t.Run("dynamic payload", func(t *testing.T) {
		u := schema.Must(schema.UnionOf("U",
			schema.Unit("A"),
			schema.TupleVariant("B", schema.Bytes),
		))
		_, err := c.Calculate(u)
		if !errors.IsKind(err, errors.KindUnsupported) {
			t.Fatalf("expected unsupported, got %v", err)
		}
		e := err.(*errors.Error)
		if len(e.Path) != 2 || e.Path[0] != "B" || e.Path[1] != "0" {
			t.Errorf("path: got %v, want [B 0]", e.Path)
		}
	})
}

func TestCalculateDynamic(t *testing.T) {
	c := NewCalculator()
	for _, typ := range []*schema.Type{schema.String, schema.Bytes, schema.Must(schema.ListOf(schema.U8))} {
		if _, err := c.Calculate(typ); !errors.IsKind(err, errors.KindUnsupported) {
			t.Errorf("Calculate(%s): expected unsupported, got %v", typ, err)
		}
	}
	if _, err := c.Calculate(nil); !errors.IsKind(err, errors.KindInvalidSchema) {
		t.Errorf("Calculate(nil): expected invalid_schema, got %v", err)
	}
}

func TestCalculatorCache(t *testing.T) {
	c := NewCalculator()
	rec := schema.Must(schema.RecordOf("P", schema.Named("x", schema.U32)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			size, err := c.Size(rec)
			if err != nil || size != 4 {
				t.Errorf("Size = %d, %v", size, err)
			}
		}()
	}
	wg.Wait()

	c.mu.RLock()
	_, ok := c.cache[rec]
	c.mu.RUnlock()
	if !ok {
		t.Error("record layout was not cached")
	}
}
