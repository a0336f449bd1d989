package dynamic

import (
	stderrors "errors"
	"io"
	"slices"

	"github.com/wippyai/fixedbin"
	"github.com/wippyai/fixedbin/errors"
)

var (
	_ fixedbin.Writer = (*SliceWriter)(nil)
	_ fixedbin.Writer = (*BufferWriter)(nil)
	_ fixedbin.Writer = (*StreamWriter)(nil)
	_ fixedbin.Reader = (*SliceReader)(nil)
	_ fixedbin.Reader = (*StreamReader)(nil)
)

// SliceWriter writes into a fixed caller-owned buffer.
type SliceWriter struct {
	buf []byte
	off int
}

func NewSliceWriter(buf []byte) *SliceWriter {
	return &SliceWriter{buf: buf}
}

func (w *SliceWriter) WriteBytes(p []byte) error {
	if len(p) > len(w.buf)-w.off {
		return errors.InvalidSliceLength(errors.PhaseEncode, nil, len(p), len(w.buf)-w.off)
	}
	w.off += copy(w.buf[w.off:], p)
	return nil
}

// WriteBytesUnchecked panics when p does not fit.
func (w *SliceWriter) WriteBytesUnchecked(p []byte) {
	w.off += copy(w.buf[w.off:w.off+len(p)], p)
}

// Len returns the number of bytes written.
func (w *SliceWriter) Len() int { return w.off }

// Available returns the number of bytes left in the buffer.
func (w *SliceWriter) Available() int { return len(w.buf) - w.off }

// Bytes returns the written prefix of the buffer.
func (w *SliceWriter) Bytes() []byte { return w.buf[:w.off] }

// BufferWriter appends to a growable buffer. Writes never fail.
type BufferWriter struct {
	buf []byte
}

func NewBufferWriter(capacity int) *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, capacity)}
}

func (w *BufferWriter) WriteBytes(p []byte) error {
	w.buf = append(w.buf, p...)
	return nil
}

func (w *BufferWriter) WriteBytesUnchecked(p []byte) {
	w.buf = append(w.buf, p...)
}

func (w *BufferWriter) Len() int      { return len(w.buf) }
func (w *BufferWriter) Bytes() []byte { return w.buf }
func (w *BufferWriter) Reset()        { w.buf = w.buf[:0] }

// StreamWriter forwards writes to an io.Writer.
type StreamWriter struct {
	w io.Writer
	n int64
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

func (w *StreamWriter) WriteBytes(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	if err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindIO, err, "write")
	}
	return nil
}

// WriteBytesUnchecked panics with the *errors.Error WriteBytes would return.
func (w *StreamWriter) WriteBytesUnchecked(p []byte) {
	if err := w.WriteBytes(p); err != nil {
		panic(err)
	}
}

// Written returns the number of bytes accepted by the underlying writer.
func (w *StreamWriter) Written() int64 { return w.n }

// SliceReader reads from a byte slice without copying.
type SliceReader struct {
	buf []byte
	off int
}

func NewSliceReader(buf []byte) *SliceReader {
	return &SliceReader{buf: buf}
}

func (r *SliceReader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.buf)-r.off {
		return nil, errors.InvalidSliceLength(errors.PhaseDecode, nil, n, len(r.buf)-r.off)
	}
	return r.ReadBytesUnchecked(n), nil
}

// ReadBytesUnchecked panics when fewer than n bytes remain.
func (r *SliceReader) ReadBytesUnchecked(n int) []byte {
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *SliceReader) Remaining() int { return len(r.buf) - r.off }

// Offset returns the number of bytes consumed.
func (r *SliceReader) Offset() int { return r.off }

// readChunk bounds a single read from a stream.
const readChunk = 64 << 10

// StreamReader reads from an io.Reader. Returned slices share a scratch
// buffer and are valid until the next call.
type StreamReader struct {
	r       io.Reader
	scratch []byte
	n       int64
}

func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r}
}

func (r *StreamReader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.InvalidSliceLength(errors.PhaseDecode, nil, n, 0)
	}
	// grow with the data actually received, so a large length prefix on a
	// short stream fails without reserving the full length up front
	b := r.scratch[:0]
	for len(b) < n {
		step := min(n-len(b), readChunk)
		b = slices.Grow(b, step)
		got, err := io.ReadFull(r.r, b[len(b):len(b)+step])
		b = b[:len(b)+got]
		r.n += int64(got)
		if err != nil {
			r.scratch = b[:0]
			if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
				e := errors.InvalidSliceLength(errors.PhaseDecode, nil, n, len(b))
				e.Cause = err
				return nil, e
			}
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindIO, err, "read")
		}
	}
	r.scratch = b[:0]
	return b, nil
}

// ReadBytesUnchecked panics with the *errors.Error ReadBytes would return.
func (r *StreamReader) ReadBytesUnchecked(n int) []byte {
	b, err := r.ReadBytes(n)
	if err != nil {
		panic(err)
	}
	return b
}

// Remaining is always -1; a stream's length is unknown.
func (r *StreamReader) Remaining() int { return -1 }

// Consumed returns the number of bytes read from the underlying reader.
func (r *StreamReader) Consumed() int64 { return r.n }
