package dynamic

import (
	"reflect"
	"unicode/utf8"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/scalar"
)

// streamChunk caps list preallocation when the input length is unknown.
const streamChunk = 1024

type decoder struct {
	r         fixedbin.Reader
	maxLength int
	unchecked bool
}

func (d *decoder) read(n int) ([]byte, error) {
	if d.unchecked {
		return d.r.ReadBytesUnchecked(n), nil
	}
	return d.r.ReadBytes(n)
}

// readLen reads a count prefix and rejects counts that exceed MaxLength or
// that the remaining input cannot hold at unit bytes per item.
func (d *decoder) readLen(unit int) (int, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	count := scalar.DecodeU64([8]byte(b))
	if count > uint64(d.maxLength) {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidSliceLength).
			Value(count).
			Detail("length %d exceeds limit %d", count, d.maxLength).
			Build()
	}
	n := int(count)
	if rem := d.r.Remaining(); rem >= 0 && unit > 0 && n > rem/unit {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidSliceLength).
			Value(count).
			Detail("length %d needs at least %d bytes per item, have %d bytes", count, unit, rem).
			Build()
	}
	return n, nil
}

func (d *decoder) decode(n *node, dst reflect.Value) error {
	switch n.kind {
	case nodeStatic:
		b, err := d.read(n.minSize)
		if err != nil {
			return err
		}
		if err := n.static.Decode(b, dst); err != nil {
			if d.unchecked {
				panic(err)
			}
			return err
		}
		return nil

	case nodeString:
		size, err := d.readLen(1)
		if err != nil {
			return err
		}
		b, err := d.read(size)
		if err != nil {
			return err
		}
		if !utf8.Valid(b) {
			e := errors.InvalidUTF8(errors.PhaseDecode, nil, b)
			if d.unchecked {
				panic(e)
			}
			return e
		}
		dst.SetString(string(b))
		return nil

	case nodeBytes:
		size, err := d.readLen(1)
		if err != nil {
			return err
		}
		b, err := d.read(size)
		if err != nil {
			return err
		}
		out := reflect.MakeSlice(dst.Type(), size, size)
		reflect.Copy(out, reflect.ValueOf(b))
		dst.Set(out)
		return nil

	case nodeList:
		count, err := d.readLen(n.elem.minSize)
		if err != nil {
			return err
		}
		return d.decodeList(n.elem, dst, count)

	case nodeArray:
		for i := 0; i < n.length; i++ {
			if err := d.decode(n.elem, dst.Index(i)); err != nil {
				return indexPath(err, i)
			}
		}
		return nil

	case nodeRecord:
		for _, f := range n.fields {
			if err := d.decode(f.node, dst.Field(f.index)); err != nil {
				return withPath(err, f.name)
			}
		}
		return nil
	}
	return errors.Unsupported(errors.PhaseDecode, "unknown node kind")
}

// decodeList grows the slice as elements arrive when the reader cannot
// report how much input is left.
func (d *decoder) decodeList(elem *node, dst reflect.Value, count int) error {
	capacity := count
	if d.r.Remaining() < 0 && capacity > streamChunk {
		capacity = streamChunk
	}
	out := reflect.MakeSlice(dst.Type(), 0, capacity)
	item := reflect.New(elem.goType).Elem()
	for i := 0; i < count; i++ {
		item.SetZero()
		if err := d.decode(elem, item); err != nil {
			return indexPath(err, i)
		}
		out = reflect.Append(out, item)
	}
	dst.Set(out)
	return nil
}
