package stream

import (
	"bufio"
	stderrors "errors"
	"io"
	"iter"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/wippyai/fixedbin/codec"
	"github.com/wippyai/fixedbin/errors"
)

// Reader reads fixed-size records written by Writer.
// It is not safe for concurrent use.
type Reader[T any] struct {
	codec  *codec.Codec[T]
	src    io.Reader
	dec    *zstd.Decoder
	buf    []byte
	count  int64
	closed bool
}

// NewReader returns a reader decoding records with c. opts.Compression must
// match the writer's.
func NewReader[T any](r io.Reader, c *codec.Codec[T], opts Options) (*Reader[T], error) {
	if r == nil || c == nil {
		return nil, errors.New(errors.PhaseStream, errors.KindNilPointer).
			Detail("reader and codec are required").
			Build()
	}
	opts = opts.normalize()

	sr := &Reader[T]{codec: c, buf: make([]byte, c.Size())}
	switch opts.Compression {
	case CompressionNone:
		sr.src = bufio.NewReaderSize(r, opts.BufferSize)
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseStream, errors.KindInvalidInput, err, "create zstd decoder")
		}
		sr.dec = dec
		sr.src = dec
		Logger().Debug("zstd stream reader opened", zap.Int("record_size", c.Size()))
	default:
		return nil, errors.New(errors.PhaseStream, errors.KindUnsupported).
			Detail("unknown compression %d", opts.Compression).
			Build()
	}
	return sr, nil
}

// Read returns the next record. It returns io.EOF, unwrapped, when the
// stream ends on a record boundary; a partial trailing record fails with
// errors.KindInvalidSliceLength.
func (r *Reader[T]) Read() (T, error) {
	var zero T
	if r.closed {
		return zero, errClosed()
	}

	n, err := io.ReadFull(r.src, r.buf)
	switch {
	case err == nil:
	case stderrors.Is(err, io.EOF):
		return zero, io.EOF
	case stderrors.Is(err, io.ErrUnexpectedEOF):
		e := errors.InvalidSliceLength(errors.PhaseStream, []string{itoa(int(r.count))}, len(r.buf), n)
		e.Cause = err
		return zero, e
	default:
		return zero, errors.Wrap(errors.PhaseStream, errors.KindIO, err, "read record")
	}

	v, err := r.codec.Decode(r.buf)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			return zero, e.WithPath(itoa(int(r.count)))
		}
		return zero, err
	}
	r.count++
	return v, nil
}

// ReadAll reads records until the end of the stream.
func (r *Reader[T]) ReadAll() ([]T, error) {
	var out []T
	for v, err := range r.All() {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// All iterates over the remaining records. Iteration stops after the first
// error, which is yielded with a zero record; the end of the stream is not
// an error.
func (r *Reader[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Count returns the number of records read.
func (r *Reader[T]) Count() int64 { return r.count }

// Close releases the decoder. It does not close the underlying reader.
func (r *Reader[T]) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.dec != nil {
		r.dec.Close()
	}
	return nil
}

func itoa(i int) string { return strconv.Itoa(i) }
