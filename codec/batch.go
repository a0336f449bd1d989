package codec

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/fixedbin/errors"
)

// BatchOptions controls EncodeAll and DecodeAll.
type BatchOptions struct {
	// Workers bounds the number of chunks processed at once.
	Workers int
	// ChunkSize is the number of values per chunk.
	ChunkSize int
}

// DefaultBatchOptions returns one worker per CPU and 256 values per chunk.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		Workers:   runtime.GOMAXPROCS(0),
		ChunkSize: 256,
	}
}

func (o BatchOptions) normalize() BatchOptions {
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 256
	}
	return o
}

// EncodeAll encodes values back to back into one buffer of
// len(values)*c.Size() bytes. Chunks are encoded in parallel; the first
// error cancels the rest.
func EncodeAll[T any](ctx context.Context, c *Codec[T], values []T, opts BatchOptions) ([]byte, error) {
	opts = opts.normalize()
	size := c.Size()
	out := make([]byte, len(values)*size)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for start := 0; start < len(values); start += opts.ChunkSize {
		if gctx.Err() != nil {
			break
		}
		end := min(start+opts.ChunkSize, len(values))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				if err := c.EncodeInto(out[i*size:(i+1)*size], values[i]); err != nil {
					return withPath(err, strconv.Itoa(i))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeAll splits data into c.Size() records and decodes them in parallel.
// len(data) must be a multiple of c.Size().
func DecodeAll[T any](ctx context.Context, c *Codec[T], data []byte, opts BatchOptions) ([]T, error) {
	opts = opts.normalize()
	size := c.Size()
	if len(data)%size != 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidSliceLength).
			Detail("%d bytes is not a multiple of record size %d", len(data), size).
			Value(len(data)).
			Build()
	}
	out := make([]T, len(data)/size)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for start := 0; start < len(out); start += opts.ChunkSize {
		if gctx.Err() != nil {
			break
		}
		end := min(start+opts.ChunkSize, len(out))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				v, err := c.Decode(data[i*size : (i+1)*size])
				if err != nil {
					return withPath(err, strconv.Itoa(i))
				}
				out[i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
