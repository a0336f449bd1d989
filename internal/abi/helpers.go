package abi

import (
	"math"
	"reflect"
	"strings"
)

const (
	// LengthPrefixSize is the width of the count written before dynamic data.
	LengthPrefixSize = 8

	MaxAlloc = 1 << 30 // 1 GB max single allocation
)

func SafeMul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

func SafeAdd(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// ValidateChar rejects surrogates (0xD800-0xDFFF) and values >= 0x110000.
func ValidateChar(r rune) bool {
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	if r < 0 || r >= 0x110000 {
		return false
	}
	return true
}

// BindableFields returns exported struct fields in declaration order,
// skipping fields tagged `fixedbin:"-"`.
func BindableFields(rt reflect.Type) []reflect.StructField {
	fields := make([]reflect.StructField, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || FieldName(f) == "-" {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// FieldName returns the name from a `fixedbin:"name"` tag, or the Go name.
func FieldName(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup("fixedbin")
	if !ok {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
