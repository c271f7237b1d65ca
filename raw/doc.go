// Package raw is the boundary between per-encoding tokenizers and the
// expansion engine. Each concrete encoding (see the binary and text
// packages) implements these interfaces once; the engine is written only
// against them and never against a concrete encoding.
//
// Raw readers are lazy and borrow from the input buffer. They perform no
// symbol resolution and no macro resolution: a field name may be an
// unresolved symbol ID, and an e-expression carries only the invoked
// macro's address or name. They report errors.Incomplete when the buffer
// ends mid-expression and a fatal decoding error otherwise.
package raw
