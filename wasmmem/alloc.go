package wasmmem

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/fixedbin/codec"
	"github.com/wippyai/fixedbin/errors"
)

// Allocator reserves guest memory through an exported cabi_realloc style
// function: realloc(old_ptr, old_size, align, new_size) -> ptr.
type Allocator struct {
	ctx context.Context
	fn  api.Function
}

// NewAllocator returns nil for a nil function.
func NewAllocator(ctx context.Context, fn api.Function) *Allocator {
	if fn == nil {
		return nil
	}
	return &Allocator{ctx: ctx, fn: fn}
}

// Alloc allocates size bytes aligned to align.
func (a *Allocator) Alloc(size, align uint32) (uint32, error) {
	results, err := a.fn.Call(a.ctx, 0, 0, uint64(align), uint64(size))
	if err != nil {
		return 0, errors.Wrap(errors.PhaseEncode, errors.KindIO, err, "allocation failed")
	}
	if len(results) == 0 {
		return 0, errors.InvalidInput(errors.PhaseEncode, nil, "allocation returned no result")
	}
	return uint32(results[0]), nil
}

// Free releases a block returned by Alloc.
func (a *Allocator) Free(ptr, size, align uint32) {
	_, _ = a.fn.Call(a.ctx, uint64(ptr), uint64(size), uint64(align), 0)
}

// StoreNew allocates a block for one encoded value and stores v in it.
// Encoded values have no alignment requirement, so the block is byte
// aligned.
func StoreNew[T any](a *Allocator, c *codec.Codec[T], mem api.Memory, v T) (uint32, error) {
	ptr, err := a.Alloc(uint32(c.Size()), 1)
	if err != nil {
		return 0, err
	}
	if err := Store(c, mem, ptr, v); err != nil {
		a.Free(ptr, uint32(c.Size()), 1)
		return 0, err
	}
	return ptr, nil
}
