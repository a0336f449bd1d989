package layout

import (
	"strconv"
	"sync"

	"github.com/wippyai/fixedbin/errors"
	"github.com/wippyai/fixedbin/internal/abi"
	"github.com/wippyai/fixedbin/schema"
)

// Info describes the static layout of a type.
type Info struct {
	// FieldOffs holds the byte offset of each record field.
	FieldOffs []int
	// CaseSizes holds each union variant's own size (discriminant + payload).
	CaseSizes []int
	// CaseOffs holds the payload field offsets of each union variant,
	// measured from the start of the union.
	CaseOffs [][]int
	Size     int
	ElemSize int
	DiscSize int
}

// Calculator memoizes layouts per descriptor. It is safe for concurrent use.
type Calculator struct {
	cache map[*schema.Type]Info
	mu    sync.RWMutex
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*schema.Type]Info),
	}
}

// Calculate returns the layout of t. Dynamic kinds fail with
// errors.KindUnsupported; sizes that overflow int fail with
// errors.KindOverflow.
func (c *Calculator) Calculate(t *schema.Type) (Info, error) {
	if t == nil {
		return Info{}, errors.InvalidSchema(nil, "type is nil")
	}
	if t.Kind().IsPrimitive() {
		return Info{Size: t.Kind().PrimitiveSize()}, nil
	}

	c.mu.RLock()
	cached, ok := c.cache[t]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	info, err := c.calculate(t)
	if err != nil {
		return Info{}, err
	}

	c.mu.Lock()
	c.cache[t] = info
	c.mu.Unlock()
	return info, nil
}

// Size is Calculate without the offsets.
func (c *Calculator) Size(t *schema.Type) (int, error) {
	info, err := c.Calculate(t)
	return info.Size, err
}

func (c *Calculator) calculate(t *schema.Type) (Info, error) {
	switch t.Kind() {
	case schema.KindArray:
		return c.calculateArray(t)
	case schema.KindRecord:
		return c.calculateRecord(t)
	case schema.KindUnion:
		return c.calculateUnion(t)
	default:
		return Info{}, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Schema(t.String()).
			Detail("%s has no static size", t.Kind()).
			Build()
	}
}

func (c *Calculator) calculateArray(t *schema.Type) (Info, error) {
	elem, err := c.Calculate(t.Elem())
	if err != nil {
		return Info{}, err
	}
	size, ok := abi.SafeMul(elem.Size, t.Len())
	if !ok {
		return Info{}, errors.Overflow(errors.PhaseCompile, nil, t.String(), "int")
	}
	return Info{Size: size, ElemSize: elem.Size}, nil
}

func (c *Calculator) calculateRecord(t *schema.Type) (Info, error) {
	offs, size, err := c.sequence(t, fieldsOf(t), 0)
	if err != nil {
		return Info{}, err
	}
	return Info{Size: size, FieldOffs: offs}, nil
}

func (c *Calculator) calculateUnion(t *schema.Type) (Info, error) {
	n := t.NumVariants()
	discSize := abi.DiscriminantSize(n)

	caseSizes := make([]int, n)
	caseOffs := make([][]int, n)
	maxSize := discSize

	for i := 0; i < n; i++ {
		offs, size, err := c.sequence(t, t.Variant(i).Fields, discSize)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return Info{}, e.WithPath(t.VariantLabel(i))
			}
			return Info{}, err
		}
		caseSizes[i] = size
		caseOffs[i] = offs
		if size > maxSize {
			maxSize = size
		}
	}

	return Info{
		Size:      maxSize,
		DiscSize:  discSize,
		CaseSizes: caseSizes,
		CaseOffs:  caseOffs,
	}, nil
}

// sequence lays fields out back to back starting at base and returns their
// offsets and the end offset.
func (c *Calculator) sequence(owner *schema.Type, fields []schema.Field, base int) ([]int, int, error) {
	offs := make([]int, len(fields))
	offset := base
	for i, f := range fields {
		info, err := c.Calculate(f.Type)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return nil, 0, e.WithPath(fieldName(f, i))
			}
			return nil, 0, err
		}
		offs[i] = offset
		next, ok := abi.SafeAdd(offset, info.Size)
		if !ok {
			return nil, 0, errors.Overflow(errors.PhaseCompile, nil, owner.String(), "int")
		}
		offset = next
	}
	return offs, offset, nil
}

func fieldsOf(t *schema.Type) []schema.Field {
	fields := make([]schema.Field, t.NumFields())
	for i := range fields {
		fields[i] = t.Field(i)
	}
	return fields
}

func fieldName(f schema.Field, i int) string {
	if f.Name != "" {
		return f.Name
	}
	return strconv.Itoa(i)
}
