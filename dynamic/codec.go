package dynamic

import (
	"reflect"
	"strconv"
	"sync"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/codec"
	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
	"github.com/wippyai/fixedbin/schema"
)

// Codec serializes values whose size depends on their contents. Static
// parts are delegated to codec plans; strings, byte slices and lists are
// written as an 8-byte little-endian count followed by their data.
// A Codec is safe for concurrent use.
type Codec struct {
	opts  Options
	cache sync.Map // reflect.Type -> *node
}

func New(opts Options) *Codec {
	return &Codec{opts: opts.normalize()}
}

var defaultCodec = New(DefaultOptions())

type nodeKind uint8

const (
	nodeStatic nodeKind = iota
	nodeString
	nodeBytes
	nodeList
	nodeRecord
	nodeArray
)

// node is the dynamic counterpart of codec.Plan.
type node struct {
	goType reflect.Type
	static *codec.Plan
	elem   *node
	fields []nodeField
	length int
	// minSize is the smallest encoding of any value of this node.
	minSize int
	kind    nodeKind
}

type nodeField struct {
	node  *node
	name  string
	index int
}

func (c *Codec) nodeFor(rt reflect.Type) (*node, error) {
	if cached, ok := c.cache.Load(rt); ok {
		return cached.(*node), nil
	}
	t, err := codec.Derive(rt)
	if err != nil {
		return nil, err
	}
	n, err := c.build(rt, t, nil)
	if err != nil {
		return nil, err
	}
	actual, _ := c.cache.LoadOrStore(rt, n)
	return actual.(*node), nil
}

func (c *Codec) build(rt reflect.Type, t *schema.Type, path []string) (*node, error) {
	if t.IsStatic() {
		p, err := c.opts.Compiler.Compile(rt, t)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return nil, e.WithPath(path...)
			}
			return nil, err
		}
		return &node{goType: rt, static: p, minSize: p.Size(), kind: nodeStatic}, nil
	}

	mismatch := func() error {
		return errors.TypeMismatch(errors.PhaseCompile, path, rt.String(), t.String())
	}

	switch t.Kind() {
	case schema.KindString:
		if rt.Kind() != reflect.String {
			return nil, mismatch()
		}
		return &node{goType: rt, minSize: abi.LengthPrefixSize, kind: nodeString}, nil

	case schema.KindBytes:
		if rt.Kind() != reflect.Slice || rt.Elem().Kind() != reflect.Uint8 {
			return nil, mismatch()
		}
		return &node{goType: rt, minSize: abi.LengthPrefixSize, kind: nodeBytes}, nil

	case schema.KindList:
		if rt.Kind() != reflect.Slice {
			return nil, mismatch()
		}
		elem, err := c.build(rt.Elem(), t.Elem(), appendPath(path, "[]"))
		if err != nil {
			return nil, err
		}
		return &node{goType: rt, elem: elem, minSize: abi.LengthPrefixSize, kind: nodeList}, nil

	case schema.KindArray:
		if rt.Kind() != reflect.Array || rt.Len() != t.Len() {
			return nil, mismatch()
		}
		elem, err := c.build(rt.Elem(), t.Elem(), appendPath(path, "[]"))
		if err != nil {
			return nil, err
		}
		minSize, ok := abi.SafeMul(elem.minSize, t.Len())
		if !ok {
			return nil, errors.Overflow(errors.PhaseCompile, path, t.String(), "int")
		}
		return &node{goType: rt, elem: elem, length: t.Len(), minSize: minSize, kind: nodeArray}, nil

	case schema.KindRecord:
		if rt.Kind() != reflect.Struct {
			return nil, mismatch()
		}
		goFields := abi.BindableFields(rt)
		if len(goFields) != t.NumFields() {
			return nil, mismatch()
		}
		n := &node{goType: rt, fields: make([]nodeField, len(goFields)), kind: nodeRecord}
		for i, gf := range goFields {
			label := t.FieldLabel(i)
			fn, err := c.build(gf.Type, t.Field(i).Type, appendPath(path, label))
			if err != nil {
				return nil, err
			}
			n.fields[i] = nodeField{node: fn, name: label, index: gf.Index[0]}
			size, ok := abi.SafeAdd(n.minSize, fn.minSize)
			if !ok {
				return nil, errors.Overflow(errors.PhaseCompile, path, t.String(), "int")
			}
			n.minSize = size
		}
		return n, nil
	}

	return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
		Path(path...).
		Schema(t.String()).
		Detail("%s with dynamic payload is not supported", t.Kind()).
		Build()
}

// valueOf accepts a value or a non-nil pointer to one.
func valueOf(v any, phase errors.Phase) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return reflect.Value{}, errors.NilPointer(phase, nil, "nil")
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, errors.NilPointer(phase, nil, rv.Type().String())
		}
		rv = rv.Elem()
	}
	return rv, nil
}

// SerializedSize returns the exact number of bytes SerializeInto writes.
func (c *Codec) SerializedSize(v any) (int, error) {
	rv, err := valueOf(v, errors.PhaseEncode)
	if err != nil {
		return 0, err
	}
	n, err := c.nodeFor(rv.Type())
	if err != nil {
		return 0, err
	}
	return n.serializedSize(rv)
}

// SerializeInto writes v to w. A value that does not fit fails with
// errors.KindInvalidSliceLength; bytes already written are not rolled back.
func (c *Codec) SerializeInto(w fixedbin.Writer, v any) error {
	rv, err := valueOf(v, errors.PhaseEncode)
	if err != nil {
		return err
	}
	n, err := c.nodeFor(rv.Type())
	if err != nil {
		return err
	}
	e := encoder{w: w}
	return e.encode(n, rv)
}

// SerializeIntoUnchecked is SerializeInto using unchecked writes. It panics
// instead of returning an error.
func (c *Codec) SerializeIntoUnchecked(w fixedbin.Writer, v any) {
	rv, err := valueOf(v, errors.PhaseEncode)
	if err != nil {
		panic(err)
	}
	n, err := c.nodeFor(rv.Type())
	if err != nil {
		panic(err)
	}
	e := encoder{w: w, unchecked: true}
	if err := e.encode(n, rv); err != nil {
		panic(err)
	}
}

// DeserializeFrom reads one value from r into out, which must be a non-nil
// pointer. out is only written when decoding succeeds.
func (c *Codec) DeserializeFrom(r fixedbin.Reader, out any) error {
	return c.deserialize(r, out, false)
}

// DeserializeFromUnchecked is DeserializeFrom using unchecked reads. It
// panics instead of returning an error.
func (c *Codec) DeserializeFromUnchecked(r fixedbin.Reader, out any) {
	if err := c.deserialize(r, out, true); err != nil {
		panic(err)
	}
}

func (c *Codec) deserialize(r fixedbin.Reader, out any, unchecked bool) error {
	rv := reflect.ValueOf(out)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NilPointer(errors.PhaseDecode, nil, abi.TypeName(out))
	}
	n, err := c.nodeFor(rv.Type().Elem())
	if err != nil {
		return err
	}

	d := decoder{r: r, unchecked: unchecked, maxLength: c.opts.MaxLength}
	tmp := reflect.New(n.goType).Elem()
	if err := d.decode(n, tmp); err != nil {
		return err
	}
	rv.Elem().Set(tmp)
	return nil
}

// Marshal returns the serialized form of v.
func (c *Codec) Marshal(v any) ([]byte, error) {
	size, err := c.SerializedSize(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := c.MarshalTo(buf, v); err != nil {
		return nil, err
	}
	return buf, nil
}

// MarshalTo serializes v into dst and returns the number of bytes written.
// dst is checked against the serialized size before anything is written.
func (c *Codec) MarshalTo(dst []byte, v any) (int, error) {
	size, err := c.SerializedSize(v)
	if err != nil {
		return 0, err
	}
	if len(dst) < size {
		return 0, errors.InvalidSliceLength(errors.PhaseEncode, nil, size, len(dst))
	}
	w := NewSliceWriter(dst)
	if err := c.SerializeInto(w, v); err != nil {
		return w.Len(), err
	}
	return w.Len(), nil
}

// Unmarshal decodes one value from the start of src into out and returns
// the number of bytes consumed.
func (c *Codec) Unmarshal(src []byte, out any) (int, error) {
	r := NewSliceReader(src)
	if err := c.DeserializeFrom(r, out); err != nil {
		return 0, err
	}
	return r.Offset(), nil
}

// SerializedSize uses the default codec.
func SerializedSize(v any) (int, error) { return defaultCodec.SerializedSize(v) }

// SerializeInto uses the default codec.
func SerializeInto(w fixedbin.Writer, v any) error { return defaultCodec.SerializeInto(w, v) }

// DeserializeFrom uses the default codec.
func DeserializeFrom(r fixedbin.Reader, out any) error { return defaultCodec.DeserializeFrom(r, out) }

// Marshal uses the default codec.
func Marshal(v any) ([]byte, error) { return defaultCodec.Marshal(v) }

// MarshalTo uses the default codec.
func MarshalTo(dst []byte, v any) (int, error) { return defaultCodec.MarshalTo(dst, v) }

// Unmarshal uses the default codec.
func Unmarshal(src []byte, out any) (int, error) { return defaultCodec.Unmarshal(src, out) }

func withPath(err error, seg string) error {
	if e, ok := err.(*errors.Error); ok {
		return e.WithPath(seg)
	}
	return err
}

func indexPath(err error, i int) error {
	return withPath(err, strconv.Itoa(i))
}

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
