// Package errors provides structured error types for the fixedbin module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go type and schema names, and cause chain.
//
// Decode paths surface a closed set of kinds: KindInvalidChar, KindInvalidUTF8,
// KindInvalidSliceLength and KindInvalidDiscriminant. Malformed descriptors
// fail with KindInvalidSchema in PhaseCompile, never at runtime.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
//		Path("point", "x").
//		GoType("string").
//		Schema("u32").
//		Detail("cannot bind string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidDiscriminant(errors.PhaseDecode, path, 5, 3)
//	err := errors.InvalidSliceLength(errors.PhaseDecode, path, 16, 9)
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind matches on kind alone:
//
//	if errors.IsKind(err, errors.KindInvalidDiscriminant) { ... }
package errors
