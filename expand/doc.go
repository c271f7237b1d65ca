// Package expand implements lazy macro expansion over raw encoded input.
//
// The core type is Context, the per-top-level-value bundle of macro table,
// symbol table, and arena memory. Values read from a raw source are lifted
// into Value handles whose containers expand macro invocations on demand:
// SequenceIterator for lists and sexps, StructIterator for structs, and
// Evaluator as the shared expansion frame stack underneath both.
//
// Expansion is a cooperative pull model. Every iterator is an explicit
// resumable state object; returning from Next suspends it, and dropping it
// cancels the expansion. Nothing in this package spawns goroutines or
// retries input: an incomplete raw source surfaces as errors.Incomplete
// for the caller to handle.
package expand
