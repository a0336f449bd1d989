package wasmmem

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/codec"
	"github.com/wippyai/fixedbin/errors"
)

var (
	_ fixedbin.Writer = (*Writer)(nil)
	_ fixedbin.Reader = (*Reader)(nil)
)

// Writer writes into the region [offset, offset+length) of a guest's linear
// memory.
type Writer struct {
	mem   api.Memory
	start uint32
	off   uint32
	end   uint32
}

// NewWriter returns nil for nil memory.
func NewWriter(mem api.Memory, offset, length uint32) *Writer {
	if mem == nil {
		return nil
	}
	return &Writer{mem: mem, start: offset, off: offset, end: clampEnd(offset, length)}
}

func (w *Writer) WriteBytes(p []byte) error {
	if uint64(len(p)) > uint64(w.end-w.off) {
		return errors.InvalidSliceLength(errors.PhaseEncode, nil, len(p), int(w.end-w.off))
	}
	if !w.mem.Write(w.off, p) {
		return outOfBounds(errors.PhaseEncode, w.off, len(p))
	}
	w.off += uint32(len(p))
	return nil
}

// WriteBytesUnchecked panics with the error WriteBytes would return.
func (w *Writer) WriteBytesUnchecked(p []byte) {
	if err := w.WriteBytes(p); err != nil {
		panic(err)
	}
}

// Offset returns the guest address of the next write.
func (w *Writer) Offset() uint32 { return w.off }

// Len returns the number of bytes written.
func (w *Writer) Len() int { return int(w.off - w.start) }

// Reader reads from the region [offset, offset+length) of a guest's linear
// memory. Returned slices are views into guest memory and are invalidated
// when the memory grows.
type Reader struct {
	mem api.Memory
	off uint32
	end uint32
}

// NewReader returns nil for nil memory.
func NewReader(mem api.Memory, offset, length uint32) *Reader {
	if mem == nil {
		return nil
	}
	return &Reader{mem: mem, off: offset, end: clampEnd(offset, length)}
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || uint64(n) > uint64(r.end-r.off) {
		return nil, errors.InvalidSliceLength(errors.PhaseDecode, nil, n, int(r.end-r.off))
	}
	data, ok := r.mem.Read(r.off, uint32(n))
	if !ok {
		return nil, outOfBounds(errors.PhaseDecode, r.off, n)
	}
	r.off += uint32(n)
	return data, nil
}

// ReadBytesUnchecked panics with the error ReadBytes would return.
func (r *Reader) ReadBytesUnchecked(n int) []byte {
	data, err := r.ReadBytes(n)
	if err != nil {
		panic(err)
	}
	return data
}

func (r *Reader) Remaining() int { return int(r.end - r.off) }

// Offset returns the guest address of the next read.
func (r *Reader) Offset() uint32 { return r.off }

// Store encodes v at offset in guest memory.
func Store[T any](c *codec.Codec[T], mem api.Memory, offset uint32, v T) error {
	buf := make([]byte, c.Size())
	if err := c.EncodeInto(buf, v); err != nil {
		return err
	}
	if !mem.Write(offset, buf) {
		return outOfBounds(errors.PhaseEncode, offset, len(buf))
	}
	return nil
}

// Load decodes a value stored at offset in guest memory.
func Load[T any](c *codec.Codec[T], mem api.Memory, offset uint32) (T, error) {
	data, ok := mem.Read(offset, uint32(c.Size()))
	if !ok {
		var zero T
		return zero, outOfBounds(errors.PhaseDecode, offset, c.Size())
	}
	return c.Decode(data)
}

func clampEnd(offset, length uint32) uint32 {
	if end := uint64(offset) + uint64(length); end <= 1<<32-1 {
		return uint32(end)
	}
	return 1<<32 - 1
}

func outOfBounds(phase errors.Phase, offset uint32, length int) *errors.Error {
	return errors.New(phase, errors.KindInvalidSliceLength).
		Value(offset).
		Detail("memory access out of bounds: offset=%d, length=%d", offset, length).
		Build()
}
