package raw

import (
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
)

// Scalar is a decoded scalar payload. Text and Bytes borrow from the input
// buffer; numeric kinds are small by-value copies.
type Scalar struct {
	Type     ion.Type
	NullType ion.Type
	Bool     bool
	Int      int64
	Float    float64
	Dec      ion.Dec
	Time     ion.Time
	Text     string
	Sym      ion.SymbolToken
	Bytes    []byte
}

// Value is a raw literal value positioned in the input. Implementations
// perform no symbol or macro resolution; they only know how to read their
// own span of the buffer.
//
// Sequence and Struct return a fresh reader positioned at the container's
// first expression on every call, so a value may be traversed repeatedly.
type Value interface {
	Type() ion.Type
	IsNull() bool
	Annotations() ([]ion.SymbolToken, error)
	ReadScalar() (Scalar, error)
	Sequence() (SequenceReader, error)
	Struct() (StructReader, error)
}

// ValueExpr is a raw value position: a literal value or an unexpanded
// e-expression. Exactly one field is set.
type ValueExpr struct {
	Literal    Value
	Invocation MacroInvocation
}

// IsLiteral reports whether the expression is a literal value.
func (e ValueExpr) IsLiteral() bool { return e.Literal != nil }

// LiteralOf wraps a value as a literal expression.
func LiteralOf(v Value) ValueExpr { return ValueExpr{Literal: v} }

// InvocationOf wraps an invocation as a value expression.
func InvocationOf(inv MacroInvocation) ValueExpr { return ValueExpr{Invocation: inv} }

// FieldExprKind discriminates raw struct field expressions.
type FieldExprKind uint8

const (
	// FieldNameValue is an ordinary name/value field.
	FieldNameValue FieldExprKind = iota
	// FieldNameMacro is a field whose name is bound to a macro invocation
	// in value position.
	FieldNameMacro
	// FieldEExp is a macro invocation occupying field-name position; its
	// expansion is expected to produce structs to merge into the parent.
	FieldEExp
)

// FieldName is a struct field's unresolved name.
type FieldName interface {
	// ReadToken returns the name as a symbol token, which may be an
	// unresolved symbol ID.
	ReadToken() (ion.SymbolToken, error)
}

// FieldExpr is a raw struct field position.
type FieldExpr struct {
	Kind       FieldExprKind
	Name       FieldName
	Value      Value
	Invocation MacroInvocation
}

// SequenceReader lazily yields the raw value expressions of a sequence
// (list, sexp, or the top-level stream). ok=false means exhausted. Errors
// are terminal; an errors.Incomplete error means more input is needed.
type SequenceReader interface {
	NextExpr() (ValueExpr, bool, error)
}

// StructReader lazily yields the raw field expressions of a struct.
type StructReader interface {
	NextField() (FieldExpr, bool, error)
}

// StreamReader yields the top-level value expressions of an input.
type StreamReader interface {
	SequenceReader
}

// MacroID identifies the macro an e-expression invokes, by address within
// the user or system table, or by name.
type MacroID struct {
	System  bool
	ByName  bool
	Address macro.Address
	Name    string
}

// MacroInvocation is an unexpanded e-expression: the invoked macro's
// identity plus an iterator over its raw argument expressions.
type MacroInvocation interface {
	ID() MacroID
	Arguments() ArgumentReader
}

// ArgExpr is one raw argument expression: a literal, a nested invocation,
// or an argument group supplied for a zero-or-more / one-or-more
// parameter. Exactly one field is set.
type ArgExpr struct {
	Literal    Value
	Invocation MacroInvocation
	Group      ArgumentReader
}

// ArgumentReader iterates a raw invocation's argument expressions, or an
// argument group's contents. Clone returns an independent reader
// repositioned at the first argument, allowing re-traversal.
type ArgumentReader interface {
	NextArg() (ArgExpr, bool, error)
	Clone() ArgumentReader
}
