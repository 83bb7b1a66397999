// Package errors provides structured error types for the fasttuple library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field name, declared/requested kinds, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
//		Field("score").
//		Declared("float32").
//		Requested("int64").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DuplicateField("x")
//	err := errors.UnknownIndex(errors.PhaseAccess, 7, 3)
//
// All errors implement the standard error interface and support errors.Is/As.
// The package-level sentinels (ErrTypeMismatch, ErrDoubleFree, ...) match any
// error of the same kind regardless of phase:
//
//	if errors.Is(err, fterrors.ErrDoubleFree) { ... }
package errors
