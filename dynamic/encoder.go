package dynamic

import (
	"reflect"
	"unicode/utf8"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
	"github.com/wippyai/fixedbin/scalar"
)

func (n *node) serializedSize(v reflect.Value) (int, error) {
	switch n.kind {
	case nodeStatic:
		return n.minSize, nil
	case nodeString, nodeBytes:
		return addSize(abi.LengthPrefixSize, v.Len())
	case nodeList:
		if n.elem.kind == nodeStatic {
			body, ok := abi.SafeMul(n.elem.minSize, v.Len())
			if !ok {
				return 0, errors.Overflow(errors.PhaseEncode, nil, v.Len(), "int")
			}
			return addSize(abi.LengthPrefixSize, body)
		}
		return n.sumElems(abi.LengthPrefixSize, v)
	case nodeArray:
		return n.sumElems(0, v)
	case nodeRecord:
		total := 0
		for _, f := range n.fields {
			size, err := f.node.serializedSize(v.Field(f.index))
			if err != nil {
				return 0, withPath(err, f.name)
			}
			if total, err = addSize(total, size); err != nil {
				return 0, err
			}
		}
		return total, nil
	}
	return 0, errors.Unsupported(errors.PhaseEncode, "unknown node kind")
}

func (n *node) sumElems(total int, v reflect.Value) (int, error) {
	for i := 0; i < v.Len(); i++ {
		size, err := n.elem.serializedSize(v.Index(i))
		if err != nil {
			return 0, indexPath(err, i)
		}
		if total, err = addSize(total, size); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func addSize(a, b int) (int, error) {
	sum, ok := abi.SafeAdd(a, b)
	if !ok {
		return 0, errors.Overflow(errors.PhaseEncode, nil, b, "int")
	}
	return sum, nil
}

type encoder struct {
	w         fixedbin.Writer
	scratch   []byte
	unchecked bool
}

func (e *encoder) write(p []byte) error {
	if e.unchecked {
		e.w.WriteBytesUnchecked(p)
		return nil
	}
	return e.w.WriteBytes(p)
}

func (e *encoder) writeLen(n int) error {
	b := scalar.EncodeU64(uint64(n))
	return e.write(b[:])
}

func (e *encoder) encode(n *node, v reflect.Value) error {
	switch n.kind {
	case nodeStatic:
		if cap(e.scratch) < n.minSize {
			e.scratch = make([]byte, n.minSize)
		}
		buf := e.scratch[:n.minSize]
		if err := n.static.Encode(buf, v); err != nil {
			return err
		}
		return e.write(buf)

	case nodeString:
		s := v.String()
		if !utf8.ValidString(s) {
			return errors.InvalidUTF8(errors.PhaseEncode, nil, []byte(s))
		}
		if err := e.writeLen(len(s)); err != nil {
			return err
		}
		return e.write([]byte(s))

	case nodeBytes:
		if err := e.writeLen(v.Len()); err != nil {
			return err
		}
		return e.write(v.Bytes())

	case nodeList:
		if err := e.writeLen(v.Len()); err != nil {
			return err
		}
		return e.encodeElems(n.elem, v)

	case nodeArray:
		return e.encodeElems(n.elem, v)

	case nodeRecord:
		for _, f := range n.fields {
			if err := e.encode(f.node, v.Field(f.index)); err != nil {
				return withPath(err, f.name)
			}
		}
		return nil
	}
	return errors.Unsupported(errors.PhaseEncode, "unknown node kind")
}

func (e *encoder) encodeElems(elem *node, v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		if err := e.encode(elem, v.Index(i)); err != nil {
			return indexPath(err, i)
		}
	}
	return nil
}
