// Package errors provides structured error types for the ion-engine library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: a field path, the macro
// being expanded, the input offset, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseExpand, errors.KindWrongType).
//		Macro("make_struct").
//		Detail("argument 2 expanded to an int, expected a struct").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Arity("make_field", "expected exactly 2 arguments, found 3")
//	err := errors.Decoding("invalid opcode 0x%02x", op)
//
// The incomplete-input signal is the sentinel errors.Incomplete; match it
// with errors.IsIncomplete. All errors implement the standard error
// interface and support errors.Is/As.
package errors
