package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/schema"
)

var (
	pairSchema = schema.Must(schema.RecordOf("pair",
		schema.Named("a", schema.U8),
		schema.Named("b", schema.U16),
	))
	colorSchema = schema.Must(schema.UnionOf("color",
		schema.Unit("Red"), schema.Unit("Green"), schema.Unit("Blue"),
	))
	messageSchema = schema.Must(schema.UnionOf("message",
		schema.Unit("Empty"),
		schema.TupleVariant("Pair", schema.U8, schema.U16),
	))
)

func TestEncodeValueLayouts(t *testing.T) {
	tests := []struct {
		name string
		typ  *schema.Type
		v    any
		want []byte
	}{
		{"record", pairSchema, []any{uint8(253), uint16(64016)}, []byte{253, 16, 250}},
		{"unit union", colorSchema, Variant{Index: 1}, []byte{1}},
		{"payload union", messageSchema, Variant{Index: 1, Fields: []any{uint8(5), uint16(1000)}}, []byte{1, 5, 232, 3}},
		{"padded union", messageSchema, &Variant{Index: 0}, []byte{0, 0, 0, 0}},
		{"array", schema.Must(schema.ArrayOf(2, schema.S16)), []any{int16(-1), int16(2)}, []byte{0xFF, 0xFF, 2, 0}},
		{"char rune", schema.Char, 'A', []byte{'A', 0, 0, 0}},
		{"char type", schema.Char, fixedbin.Char('B'), []byte{'B', 0, 0, 0}},
		{"u128", schema.U128, fixedbin.Uint128From64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"bool", schema.Bool, true, []byte{1}},
		{"f64", schema.F64, float64(1), []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := EncodeValue(tt.typ, tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
		})
	}
}

func TestDecodeValue(t *testing.T) {
	v, err := DecodeValue(pairSchema, []byte{253, 16, 250})
	require.NoError(t, err)
	assert.Equal(t, []any{uint8(253), uint16(64016)}, v)

	v, err = DecodeValue(messageSchema, []byte{1, 5, 232, 3})
	require.NoError(t, err)
	assert.Equal(t, Variant{Index: 1, Fields: []any{uint8(5), uint16(1000)}}, v)

	v, err = DecodeValue(messageSchema, []byte{0, 7, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, Variant{Index: 0, Fields: []any{}}, v)

	v, err = DecodeValue(schema.Char, []byte{'z', 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 'z', v)

	_, err = DecodeValue(colorSchema, []byte{5})
	assert.True(t, errors.IsKind(err, errors.KindInvalidDiscriminant))

	_, err = DecodeValue(pairSchema, []byte{1, 2})
	assert.True(t, errors.IsKind(err, errors.KindInvalidSliceLength))
}

func TestValueTwoByteDiscriminant(t *testing.T) {
	variants := make([]schema.Variant, 256)
	for i := range variants {
		variants[i] = schema.Unit("")
	}
	wide := schema.Must(schema.UnionOf("wide", variants...))

	b, err := EncodeValue(wide, Variant{Index: 255})
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0}, b)

	v, err := DecodeValue(wide, []byte{255, 0})
	require.NoError(t, err)
	assert.Equal(t, 255, v.(Variant).Index)

	_, err = DecodeValue(wide, []byte{0, 1})
	require.Error(t, err)
	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errors.KindInvalidDiscriminant, e.Kind)
	assert.Equal(t, uint64(256), e.Value)
}

func TestEncodeValueErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  *schema.Type
		v    any
		kind errors.Kind
		path []string
	}{
		{"wrong primitive", schema.U8, 1, errors.KindTypeMismatch, nil},
		{"record arity", pairSchema, []any{uint8(1)}, errors.KindTypeMismatch, nil},
		{"record field type", pairSchema, []any{uint8(1), uint32(2)}, errors.KindTypeMismatch, []string{"b"}},
		{"union not variant", colorSchema, 1, errors.KindTypeMismatch, nil},
		{"variant index", colorSchema, Variant{Index: 3}, errors.KindInvalidInput, nil},
		{"variant arity", messageSchema, Variant{Index: 1, Fields: []any{uint8(1)}}, errors.KindTypeMismatch, []string{"Pair"}},
		{"variant field", messageSchema, Variant{Index: 1, Fields: []any{uint8(1), int16(2)}}, errors.KindTypeMismatch, []string{"Pair", "1"}},
		{"invalid char", schema.Char, rune(0xDFFF), errors.KindInvalidChar, nil},
		{"dynamic", schema.String, "x", errors.KindUnsupported, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeValue(tt.typ, tt.v)
			require.Error(t, err)
			var e *errors.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.kind, e.Kind, "error: %v", err)
			if tt.path != nil {
				assert.Equal(t, tt.path, e.Path)
			}
		})
	}
}

func TestValueMatchesTyped(t *testing.T) {
	c := MustFor[message]()
	typed, err := c.Encode(message{Pair: &pair{A: 9, B: 513}})
	require.NoError(t, err)

	untyped, err := EncodeValue(c.Schema(), Variant{Index: 1, Fields: []any{uint8(9), uint16(513)}})
	require.NoError(t, err)
	assert.Equal(t, typed, untyped)
}
