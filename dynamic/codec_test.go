package dynamic

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
)

type pair struct {
	A uint8
	B uint16
}

type color struct {
	Red   *struct{}
	Green *struct{}
	Blue  *struct{}
}

type user struct {
	ID    uint32
	Name  string
	Tags  []string
	Color color
	Blob  []byte
	Pairs []pair
}

type withDynamicVariant struct {
	Text *string
	None *struct{}
}

func prefix(n uint64) []byte {
	return []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24), byte(n >> 32), byte(n >> 40), byte(n >> 48), byte(n >> 56)}
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestMarshal_Encodings(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []byte
	}{
		{"string", "hi", []byte{2, 0, 0, 0, 0, 0, 0, 0, 104, 105}},
		{"empty string", "", prefix(0)},
		{"bytes", []byte{1, 2, 3}, concat(prefix(3), []byte{1, 2, 3})},
		{"list of u16", []uint16{1, 2}, concat(prefix(2), []byte{1, 0, 2, 0})},
		{"list of strings", []string{"a", ""}, concat(prefix(2), prefix(1), []byte("a"), prefix(0))},
		{"array of strings", [2]string{"x", "yz"}, concat(prefix(1), []byte("x"), prefix(2), []byte("yz"))},
		{"static record", pair{A: 1, B: 2}, []byte{1, 2, 0}},
		{"pointer to value", &pair{A: 7, B: 0x0102}, []byte{7, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			size, err := SerializedSize(tt.value)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), size)
		})
	}
}

func TestRoundTrip_MixedStruct(t *testing.T) {
	in := user{
		ID:    42,
		Name:  "Grace",
		Tags:  []string{"admin", "ops", "é"},
		Color: color{Blue: &struct{}{}},
		Blob:  []byte{0xde, 0xad},
		Pairs: []pair{{1, 2}, {3, 4}},
	}

	data, err := Marshal(in)
	require.NoError(t, err)

	wantSize := 4 + (8 + 5) + (8 + (8 + 5) + (8 + 3) + (8 + 2)) + 1 + (8 + 2) + (8 + 2*3)
	assert.Len(t, data, wantSize)

	var out user
	n, err := Unmarshal(data, &out)
	require.NoError(t, err)
	assert.Equal(t, wantSize, n)
	assert.Equal(t, in, out)
}

// Empty and nil collections both decode to empty, non-nil values.
func TestRoundTrip_EmptyCollections(t *testing.T) {
	in := user{Color: color{Red: &struct{}{}}}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out user
	_, err = Unmarshal(data, &out)
	require.NoError(t, err)

	assert.Equal(t, "", out.Name)
	assert.Empty(t, out.Tags)
	assert.NotNil(t, out.Tags)
	assert.NotNil(t, out.Blob)
	assert.NotNil(t, out.Color.Red)
}

func TestUnmarshal_ConsumedCount(t *testing.T) {
	data := concat([]byte{2, 0, 0, 0, 0, 0, 0, 0, 104, 105}, []byte{0xff, 0xff})

	var s string
	n, err := Unmarshal(data, &s)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "hi", s)
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		out  any
		kind errors.Kind
	}{
		{"truncated string", []byte{2, 0, 0, 0, 0, 0, 0, 0, 104}, new(string), errors.KindInvalidSliceLength},
		{"truncated prefix", []byte{2, 0, 0}, new(string), errors.KindInvalidSliceLength},
		{"invalid utf8", concat(prefix(1), []byte{0xff}), new(string), errors.KindInvalidUTF8},
		{"count exceeds input", prefix(1 << 20), new([]uint64), errors.KindInvalidSliceLength},
		{"count exceeds limit", prefix(1 << 40), new([]byte), errors.KindInvalidSliceLength},
		{"bad discriminant", []byte{3}, new(color), errors.KindInvalidDiscriminant},
		{"nil out", prefix(0), nil, errors.KindNilPointer},
		{"non-pointer out", prefix(0), "", errors.KindNilPointer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal(tt.data, tt.out)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
		})
	}
}

func TestUnmarshal_ErrorPath(t *testing.T) {
	in := user{Tags: []string{"ok", "bad"}, Color: color{Green: &struct{}{}}}
	data, err := Marshal(in)
	require.NoError(t, err)

	// corrupt the second tag
	bad := bytes.Index(data, []byte("bad"))
	require.Positive(t, bad)
	data[bad] = 0xff

	var out user
	_, err = Unmarshal(data, &out)
	require.Error(t, err)

	var e *errors.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, errors.KindInvalidUTF8, e.Kind)
	assert.Equal(t, []string{"Tags", "1"}, e.Path)
	assert.Equal(t, user{}, out)
}

func TestMaxLength(t *testing.T) {
	c := New(Options{MaxLength: 4})

	data, err := c.Marshal("hello")
	require.NoError(t, err)

	var s string
	_, err = c.Unmarshal(data, &s)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSliceLength))

	data, err = c.Marshal("hell")
	require.NoError(t, err)
	_, err = c.Unmarshal(data, &s)
	require.NoError(t, err)
	assert.Equal(t, "hell", s)
}

func TestMarshal_InvalidUTF8(t *testing.T) {
	_, err := Marshal(string([]byte{0xc3, 0x28}))
	assert.True(t, errors.IsKind(err, errors.KindInvalidUTF8))
}

func TestMarshalTo(t *testing.T) {
	t.Run("exact buffer", func(t *testing.T) {
		buf := make([]byte, 16)
		n, err := MarshalTo(buf, "hi")
		require.NoError(t, err)
		assert.Equal(t, 10, n)
		assert.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0, 104, 105}, buf[:n])
	})

	t.Run("short buffer writes nothing", func(t *testing.T) {
		buf := make([]byte, 9)
		n, err := MarshalTo(buf, "hi")
		assert.Equal(t, 0, n)
		assert.True(t, errors.IsKind(err, errors.KindInvalidSliceLength))
		assert.Equal(t, make([]byte, 9), buf)
	})
}

func TestSerializeInto_ShortWriter(t *testing.T) {
	w := NewSliceWriter(make([]byte, 9))
	err := SerializeInto(w, "hi")
	assert.True(t, errors.IsKind(err, errors.KindInvalidSliceLength))
	// the prefix fit and is not rolled back
	assert.Equal(t, 8, w.Len())
}

func TestUnchecked(t *testing.T) {
	t.Run("serialize panics on short buffer", func(t *testing.T) {
		w := NewSliceWriter(make([]byte, 4))
		assert.Panics(t, func() { defaultCodec.SerializeIntoUnchecked(w, "hi") })
	})

	t.Run("deserialize panics on invalid utf8", func(t *testing.T) {
		r := NewSliceReader(concat(prefix(1), []byte{0xff}))
		var s string
		assert.Panics(t, func() { defaultCodec.DeserializeFromUnchecked(r, &s) })
	})

	t.Run("round trip", func(t *testing.T) {
		in := user{Name: "x", Tags: []string{"y"}, Color: color{Red: &struct{}{}}, Blob: []byte{}, Pairs: []pair{}}
		size, err := SerializedSize(in)
		require.NoError(t, err)

		w := NewSliceWriter(make([]byte, size))
		defaultCodec.SerializeIntoUnchecked(w, in)

		var out user
		defaultCodec.DeserializeFromUnchecked(NewSliceReader(w.Bytes()), &out)
		assert.Equal(t, in, out)
	})
}

func TestStream_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)

	values := []user{
		{ID: 1, Name: "one", Tags: []string{"a"}, Color: color{Red: &struct{}{}}, Blob: []byte{1}, Pairs: []pair{}},
		{ID: 2, Name: "two", Tags: []string{}, Pairs: []pair{{9, 9}}, Color: color{Green: &struct{}{}}, Blob: []byte{}},
	}
	for _, v := range values {
		require.NoError(t, SerializeInto(w, v))
	}
	assert.Equal(t, int64(buf.Len()), w.Written())

	r := NewStreamReader(&buf)
	for _, want := range values {
		var got user
		require.NoError(t, DeserializeFrom(r, &got))
		assert.Equal(t, want, got)
	}

	var extra user
	err := DeserializeFrom(r, &extra)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSliceLength))
}

func TestStream_LargeList(t *testing.T) {
	in := make([]uint32, 3000)
	for i := range in {
		in[i] = uint32(i * 7)
	}

	var buf bytes.Buffer
	require.NoError(t, SerializeInto(NewStreamWriter(&buf), in))

	var out []uint32
	require.NoError(t, DeserializeFrom(NewStreamReader(&buf), &out))
	assert.Equal(t, in, out)
}

func TestStream_LargeString(t *testing.T) {
	in := strings.Repeat("fixedbin ", 30000)

	var buf bytes.Buffer
	require.NoError(t, SerializeInto(NewStreamWriter(&buf), in))

	var out string
	require.NoError(t, DeserializeFrom(NewStreamReader(&buf), &out))
	assert.Equal(t, in, out)
}

func TestStream_LengthPrefixBeyondInput(t *testing.T) {
	data := concat(prefix(1<<30), []byte("abc"))

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	var s string
	err := DeserializeFrom(NewStreamReader(bytes.NewReader(data)), &s)

	runtime.ReadMemStats(&after)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSliceLength))
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestBufferWriter(t *testing.T) {
	w := NewBufferWriter(0)
	require.NoError(t, SerializeInto(w, []string{"go"}))
	assert.Equal(t, concat(prefix(1), prefix(2), []byte("go")), w.Bytes())

	w.Reset()
	assert.Equal(t, 0, w.Len())
}

func TestCompile_Errors(t *testing.T) {
	t.Run("union with dynamic payload", func(t *testing.T) {
		_, err := Marshal(withDynamicVariant{None: &struct{}{}})
		assert.True(t, errors.IsKind(err, errors.KindUnsupported))
	})

	t.Run("platform int", func(t *testing.T) {
		_, err := Marshal([]int{1})
		require.Error(t, err)
	})
}

func TestWriterInterfaces(t *testing.T) {
	var _ fixedbin.Writer = NewSliceWriter(nil)
	var _ fixedbin.Reader = NewSliceReader(nil)

	r := NewSliceReader([]byte{1, 2, 3})
	b, err := r.ReadBytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, b)
	assert.Equal(t, 1, r.Remaining())

	_, err = r.ReadBytes(2)
	assert.True(t, errors.IsKind(err, errors.KindInvalidSliceLength))
	assert.Equal(t, 1, r.Remaining())

	assert.Equal(t, -1, NewStreamReader(&bytes.Buffer{}).Remaining())
}
