package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode  Phase = "decode"  // raw byte/text decoding
	PhaseExpand  Phase = "expand"  // macro expansion
	PhaseCompile Phase = "compile" // macro table / template construction
	PhaseRead    Phase = "read"    // stream-level reading
)

// Kind categorizes the error
type Kind string

const (
	KindIncomplete      Kind = "incomplete"
	KindInvalidData     Kind = "invalid_data"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindOverflow        Kind = "overflow"
	KindArity           Kind = "arity"
	KindWrongType       Kind = "wrong_type"
	KindUnresolvedMacro Kind = "unresolved_macro"
	KindStaleMacro      Kind = "stale_macro"
	KindDepthExceeded   Kind = "depth_exceeded"
	KindNotFound        Kind = "not_found"
	KindUnsupported     Kind = "unsupported"
)

// Error is the structured error type used throughout the engine
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Macro  string
	Detail string
	Path   []string
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Macro != "" {
		b.WriteString(" in macro ")
		b.WriteString(e.Macro)
	}

	if e.Offset > 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target with an empty
// Phase matches any phase, so sentinels like Incomplete can be compared
// regardless of which layer produced them.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase != "" && e.Phase != t.Phase {
			return false
		}
		return e.Kind == t.Kind
	}
	return false
}

// Incomplete signals that the input buffer ended mid-expression and the
// operation should be retried once more input is available. The expansion
// layer propagates it verbatim and never retries on its own.
var Incomplete = &Error{Phase: PhaseDecode, Kind: KindIncomplete, Detail: "ran out of input"}

// IsIncomplete reports whether err carries the incomplete-input signal.
func IsIncomplete(err error) bool {
	return IsKind(err, KindIncomplete)
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Macro sets the name or address of the macro being expanded
func (b *Builder) Macro(name string) *Builder {
	b.err.Macro = name
	return b
}

// Offset sets the input byte/rune offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Decoding creates a generic invalid-data decoding error
func Decoding(detail string, args ...any) *Error {
	return New(PhaseDecode, KindInvalidData).Detail(detail, args...).Build()
}

// Expansion creates a generic invalid-data expansion error
func Expansion(detail string, args ...any) *Error {
	return New(PhaseExpand, KindInvalidData).Detail(detail, args...).Build()
}

// Arity creates a wrong-argument-count error for a macro invocation
func Arity(macroName, detail string) *Error {
	return &Error{
		Phase:  PhaseExpand,
		Kind:   KindArity,
		Macro:  macroName,
		Detail: detail,
	}
}

// WrongType creates a wrong-argument-type error for a macro invocation
func WrongType(macroName, detail string) *Error {
	return &Error{
		Phase:  PhaseExpand,
		Kind:   KindWrongType,
		Macro:  macroName,
		Detail: detail,
	}
}

// UnresolvedMacro creates an error for a macro address or name with no definition
func UnresolvedMacro(detail string, args ...any) *Error {
	return New(PhaseExpand, KindUnresolvedMacro).Detail(detail, args...).Build()
}

// DepthExceeded creates an error for expansion past the configured depth limit
func DepthExceeded(depth int) *Error {
	return &Error{
		Phase:  PhaseExpand,
		Kind:   KindDepthExceeded,
		Detail: fmt.Sprintf("macro expansion exceeded maximum depth %d", depth),
	}
}
