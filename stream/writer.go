package stream

import (
	"bufio"
	"context"
	"io"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/wippyai/fixedbin/codec"
	"github.com/wippyai/fixedbin/errors"
)

// Writer writes a sequence of fixed-size records to an io.Writer.
// It is not safe for concurrent use.
type Writer[T any] struct {
	codec   *codec.Codec[T]
	dst     io.Writer
	buf     *bufio.Writer
	enc     *zstd.Encoder
	scratch []byte
	count   int64
	closed  bool
}

// NewWriter returns a writer encoding records with c. Close must be called
// to flush buffered data; it does not close w.
func NewWriter[T any](w io.Writer, c *codec.Codec[T], opts Options) (*Writer[T], error) {
	if w == nil || c == nil {
		return nil, errors.New(errors.PhaseStream, errors.KindNilPointer).
			Detail("writer and codec are required").
			Build()
	}
	opts = opts.normalize()

	sw := &Writer[T]{codec: c, scratch: make([]byte, c.Size())}
	switch opts.Compression {
	case CompressionNone:
		sw.buf = bufio.NewWriterSize(w, opts.BufferSize)
		sw.dst = sw.buf
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(opts.EncoderLevel))
		if err != nil {
			return nil, errors.Wrap(errors.PhaseStream, errors.KindInvalidInput, err, "create zstd encoder")
		}
		sw.enc = enc
		sw.dst = enc
		Logger().Debug("zstd stream writer opened",
			zap.Stringer("level", opts.EncoderLevel),
			zap.Int("record_size", c.Size()),
		)
	default:
		return nil, errors.New(errors.PhaseStream, errors.KindUnsupported).
			Detail("unknown compression %d", opts.Compression).
			Build()
	}
	return sw, nil
}

// Write appends one record.
func (w *Writer[T]) Write(v T) error {
	if w.closed {
		return errClosed()
	}
	if err := w.codec.EncodeInto(w.scratch, v); err != nil {
		return err
	}
	if _, err := w.dst.Write(w.scratch); err != nil {
		return errors.Wrap(errors.PhaseStream, errors.KindIO, err, "write record")
	}
	w.count++
	return nil
}

// WriteAll appends records in order.
func (w *Writer[T]) WriteAll(values []T) error {
	for i, v := range values {
		if err := w.Write(v); err != nil {
			if e, ok := err.(*errors.Error); ok {
				return e.WithPath(itoa(i))
			}
			return err
		}
	}
	return nil
}

// WriteBatch encodes values in parallel and appends them in order.
func (w *Writer[T]) WriteBatch(ctx context.Context, values []T, opts codec.BatchOptions) error {
	if w.closed {
		return errClosed()
	}
	data, err := codec.EncodeAll(ctx, w.codec, values, opts)
	if err != nil {
		return err
	}
	if _, err := w.dst.Write(data); err != nil {
		return errors.Wrap(errors.PhaseStream, errors.KindIO, err, "write batch")
	}
	w.count += int64(len(values))
	return nil
}

// Count returns the number of records written.
func (w *Writer[T]) Count() int64 { return w.count }

// Flush pushes buffered records to the underlying writer. With zstd this
// ends the current block.
func (w *Writer[T]) Flush() error {
	if w.closed {
		return errClosed()
	}
	var err error
	if w.enc != nil {
		err = w.enc.Flush()
	} else {
		err = w.buf.Flush()
	}
	if err != nil {
		return errors.Wrap(errors.PhaseStream, errors.KindIO, err, "flush")
	}
	return nil
}

// Close flushes remaining data and releases the encoder. Calling Close
// twice is a no-op.
func (w *Writer[T]) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var err error
	if w.enc != nil {
		err = w.enc.Close()
	} else {
		err = w.buf.Flush()
	}
	if err != nil {
		Logger().Warn("stream writer close failed",
			zap.Int64("records", w.count),
			zap.Error(err),
		)
		return errors.Wrap(errors.PhaseStream, errors.KindIO, err, "close")
	}
	return nil
}

func errClosed() error {
	return errors.InvalidInput(errors.PhaseStream, nil, "stream is closed")
}
