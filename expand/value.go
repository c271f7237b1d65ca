package expand

import (
	"fmt"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
	"github.com/wippyai/ion-engine/raw"
)

type valueSource uint8

const (
	// srcRawLiteral is a value backed by a literal in the data stream.
	srcRawLiteral valueSource = iota
	// srcTemplate is a literal element of a compiled template body.
	srcTemplate
	// srcConstructed is a value produced whole by a system macro.
	srcConstructed
	// srcAnnotated wraps another value with annotations added by the
	// annotate macro.
	srcAnnotated
)

// Value is a lazy handle to one expanded value. It is small and copyable
// and carries only a reference into the arena plus enough tag to resolve
// lazily; scalar payloads stay in the input buffer until Read.
type Value struct {
	ctx   *Context
	src   valueSource
	raw   raw.Value
	env   *Environment
	elem  *macro.TemplateExpr
	ref   ValueRef
	ann   []ion.SymbolToken
	inner *Value
}

// ValueExpr is a value position produced and consumed by the evaluator:
// either a fully-available value or an unexpanded macro invocation.
type ValueExpr struct {
	value      *Value
	invocation *MacroExpr
}

// IsLiteral reports whether the expression is an available value.
func (e ValueExpr) IsLiteral() bool { return e.value != nil }

// Value returns the literal value, if any.
func (e ValueExpr) Value() *Value { return e.value }

// Invocation returns the unexpanded invocation, if any.
func (e ValueExpr) Invocation() *MacroExpr { return e.invocation }

// ValueRef is a resolved value: a scalar payload or a handle to traverse a
// container. Text and byte payloads borrow from the input buffer where the
// encoding allows it; numeric kinds are stored inline.
type ValueRef struct {
	Kind     ion.Type
	NullType ion.Type
	Bool     bool
	Int      int64
	Float    float64
	Dec      ion.Dec
	Time     ion.Time
	Str      string
	Sym      ion.SymbolToken
	Bytes    []byte
	List     *List
	SExp     *SExp
	Struct   *Struct
}

// Type returns the handle's value type without resolving the payload.
func (v *Value) Type() ion.Type {
	switch v.src {
	case srcRawLiteral:
		return v.raw.Type()
	case srcTemplate:
		return v.elem.Value.Type
	case srcAnnotated:
		return v.inner.Type()
	default:
		return v.ref.Kind
	}
}

// Read resolves the value into a ValueRef. Reading twice yields equal
// results and performs no mutation of shared state.
func (v *Value) Read() (ValueRef, error) {
	switch v.src {
	case srcRawLiteral:
		return v.readRaw()
	case srcTemplate:
		return v.readTemplate()
	case srcAnnotated:
		ref, err := v.inner.Read()
		if err != nil {
			return ValueRef{}, err
		}
		// Wrapper annotations prepend onto fresh container handles.
		switch ref.Kind {
		case ion.List:
			ref.List.ann = append(append([]ion.SymbolToken{}, v.ann...), ref.List.ann...)
		case ion.SExp:
			ref.SExp.ann = append(append([]ion.SymbolToken{}, v.ann...), ref.SExp.ann...)
		case ion.Struct:
			ref.Struct.ann = append(append([]ion.SymbolToken{}, v.ann...), ref.Struct.ann...)
		}
		return ref, nil
	default:
		return v.ref, nil
	}
}

// Annotations returns the value's resolved annotation sequence.
func (v *Value) Annotations() ([]ion.SymbolToken, error) {
	switch v.src {
	case srcRawLiteral:
		anns, err := v.raw.Annotations()
		if err != nil {
			return nil, err
		}
		resolved := make([]ion.SymbolToken, len(anns))
		for i, a := range anns {
			resolved[i] = v.ctx.symbols.Resolve(a)
		}
		return resolved, nil
	case srcTemplate:
		return v.elem.Annotations, nil
	case srcAnnotated:
		inner, err := v.inner.Annotations()
		if err != nil {
			return nil, err
		}
		return append(append([]ion.SymbolToken{}, v.ann...), inner...), nil
	default:
		// Constructed values never have annotations of their own.
		return v.ann, nil
	}
}

func (v *Value) readRaw() (ValueRef, error) {
	t := v.raw.Type()
	switch {
	case v.raw.IsNull():
		return ValueRef{Kind: ion.Null, NullType: t}, nil
	case t == ion.List, t == ion.SExp, t == ion.Struct:
		// Container handles carry the value's resolved annotations.
		ann, err := v.Annotations()
		if err != nil {
			return ValueRef{}, err
		}
		switch t {
		case ion.List:
			l := v.ctx.lists.Alloc()
			*l = List{seq: sequence{ctx: v.ctx, kind: seqRaw, typ: ion.List, rawv: v.raw}, ann: ann}
			return ValueRef{Kind: ion.List, List: l}, nil
		case ion.SExp:
			s := v.ctx.sexps.Alloc()
			*s = SExp{seq: sequence{ctx: v.ctx, kind: seqRaw, typ: ion.SExp, rawv: v.raw}, ann: ann}
			return ValueRef{Kind: ion.SExp, SExp: s}, nil
		default:
			s := v.ctx.structs.Alloc()
			*s = Struct{ctx: v.ctx, src: structRaw, rawv: v.raw, ann: ann}
			return ValueRef{Kind: ion.Struct, Struct: s}, nil
		}
	}
	sc, err := v.raw.ReadScalar()
	if err != nil {
		return ValueRef{}, err
	}
	ref := ValueRef{
		Kind:  sc.Type,
		Bool:  sc.Bool,
		Int:   sc.Int,
		Float: sc.Float,
		Dec:   sc.Dec,
		Time:  sc.Time,
		Str:   sc.Text,
		Bytes: sc.Bytes,
	}
	if sc.Type == ion.Symbol {
		ref.Sym = v.ctx.symbols.Resolve(sc.Sym)
	}
	return ref, nil
}

func (v *Value) readTemplate() (ValueRef, error) {
	tv := &v.elem.Value
	switch tv.Type {
	case ion.Null:
		return ValueRef{Kind: ion.Null, NullType: tv.NullType}, nil
	case ion.Bool:
		return ValueRef{Kind: ion.Bool, Bool: tv.Bool}, nil
	case ion.Int:
		return ValueRef{Kind: ion.Int, Int: tv.Int}, nil
	case ion.Float:
		return ValueRef{Kind: ion.Float, Float: tv.Float}, nil
	case ion.Decimal:
		return ValueRef{Kind: ion.Decimal, Dec: tv.Dec}, nil
	case ion.Timestamp:
		return ValueRef{Kind: ion.Timestamp, Time: tv.Time}, nil
	case ion.String:
		return ValueRef{Kind: ion.String, Str: tv.Text}, nil
	case ion.Symbol:
		return ValueRef{Kind: ion.Symbol, Sym: ion.SymbolText(tv.Text)}, nil
	case ion.Blob:
		return ValueRef{Kind: ion.Blob, Bytes: tv.Bytes}, nil
	case ion.Clob:
		return ValueRef{Kind: ion.Clob, Bytes: tv.Bytes}, nil
	case ion.List:
		l := v.ctx.lists.Alloc()
		*l = List{seq: sequence{ctx: v.ctx, kind: seqTemplate, typ: ion.List, env: v.env, elem: v.elem}, ann: v.elem.Annotations}
		return ValueRef{Kind: ion.List, List: l}, nil
	case ion.SExp:
		s := v.ctx.sexps.Alloc()
		*s = SExp{seq: sequence{ctx: v.ctx, kind: seqTemplate, typ: ion.SExp, env: v.env, elem: v.elem}, ann: v.elem.Annotations}
		return ValueRef{Kind: ion.SExp, SExp: s}, nil
	case ion.Struct:
		s := v.ctx.structs.Alloc()
		*s = Struct{ctx: v.ctx, src: structTemplate, env: v.env, elem: v.elem, ann: v.elem.Annotations}
		return ValueRef{Kind: ion.Struct, Struct: s}, nil
	}
	return ValueRef{}, errors.Expansion("template element has unknown type %v", tv.Type)
}

// Scalar-expectation helpers.

// ExpectInt returns the value as an int or a wrong-type error.
func (r ValueRef) ExpectInt() (int64, error) {
	if r.Kind != ion.Int {
		return 0, errors.New(errors.PhaseExpand, errors.KindWrongType).
			Detail("expected an int but found a(n) %s", r.Kind).Build()
	}
	return r.Int, nil
}

// ExpectText returns string or symbol text.
func (r ValueRef) ExpectText() (string, error) {
	switch r.Kind {
	case ion.String:
		return r.Str, nil
	case ion.Symbol:
		if text, ok := r.Sym.Text(); ok {
			return text, nil
		}
		return "", errors.Expansion("expected text but found a symbol with undefined text")
	}
	return "", errors.New(errors.PhaseExpand, errors.KindWrongType).
		Detail("expected a string or symbol but found a(n) %s", r.Kind).Build()
}

// ExpectLob returns blob or clob bytes.
func (r ValueRef) ExpectLob() ([]byte, error) {
	if r.Kind != ion.Blob && r.Kind != ion.Clob {
		return nil, errors.New(errors.PhaseExpand, errors.KindWrongType).
			Detail("expected a blob or clob but found a(n) %s", r.Kind).Build()
	}
	return r.Bytes, nil
}

// ExpectStruct returns the struct handle or a wrong-type error.
func (r ValueRef) ExpectStruct() (*Struct, error) {
	if r.Kind != ion.Struct {
		return nil, errors.New(errors.PhaseExpand, errors.KindWrongType).
			Detail("expected a struct but found a(n) %s", r.Kind).Build()
	}
	return r.Struct, nil
}

// ExpectSequence returns the iterator of a list or sexp value.
func (r ValueRef) ExpectSequence() (*SequenceIterator, error) {
	switch r.Kind {
	case ion.List:
		return r.List.Iterator()
	case ion.SExp:
		return r.SExp.Iterator()
	}
	return nil, errors.New(errors.PhaseExpand, errors.KindWrongType).
		Detail("expected a list or sexp but found a(n) %s", r.Kind).Build()
}

// Equal reports scalar equality. Container handles never compare equal;
// their contents may not even be buffered yet.
func (r ValueRef) Equal(o ValueRef) bool {
	if r.Kind != o.Kind {
		return false
	}
	switch r.Kind {
	case ion.Null:
		return r.NullType == o.NullType
	case ion.Bool:
		return r.Bool == o.Bool
	case ion.Int:
		return r.Int == o.Int
	case ion.Float:
		return r.Float == o.Float
	case ion.Decimal:
		return r.Dec.Equal(o.Dec)
	case ion.Timestamp:
		return r.Time.Equal(o.Time)
	case ion.String:
		return r.Str == o.Str
	case ion.Symbol:
		return r.Sym.Equal(o.Sym)
	case ion.Blob, ion.Clob:
		return string(r.Bytes) == string(o.Bytes)
	}
	return false
}

func (r ValueRef) String() string {
	switch r.Kind {
	case ion.Null:
		if r.NullType == ion.Null {
			return "null"
		}
		return "null." + r.NullType.String()
	case ion.Bool:
		return fmt.Sprintf("%t", r.Bool)
	case ion.Int:
		return fmt.Sprintf("%d", r.Int)
	case ion.Float:
		return fmt.Sprintf("%g", r.Float)
	case ion.Decimal:
		return r.Dec.String()
	case ion.Timestamp:
		return r.Time.String()
	case ion.String:
		return fmt.Sprintf("%q", r.Str)
	case ion.Symbol:
		return r.Sym.String()
	case ion.Blob:
		return fmt.Sprintf("blob (%d bytes)", len(r.Bytes))
	case ion.Clob:
		return fmt.Sprintf("clob (%d bytes)", len(r.Bytes))
	case ion.List:
		return "list"
	case ion.SExp:
		return "sexp"
	case ion.Struct:
		return "struct"
	}
	return "none"
}

// FieldName is a struct field's name, resolvable against the context's
// symbol table.
type FieldName struct {
	ctx    *Context
	raw    raw.FieldName
	sym    ion.SymbolToken
	hasSym bool
}

// Read resolves the name to a symbol token.
func (n FieldName) Read() (ion.SymbolToken, error) {
	if n.hasSym {
		return n.sym, nil
	}
	tok, err := n.raw.ReadToken()
	if err != nil {
		return ion.SymbolToken{}, err
	}
	return n.ctx.symbols.Resolve(tok), nil
}

// TextIs reports whether the name resolves to the given text.
func (n FieldName) TextIs(s string) (bool, error) {
	tok, err := n.Read()
	if err != nil {
		return false, err
	}
	return tok.TextEquals(s), nil
}

// Field is one expanded struct field.
type Field struct {
	Name  FieldName
	Value *Value
}

// FieldExprKind discriminates expansion-layer field expressions.
type FieldExprKind uint8

const (
	// FieldNameValue is an ordinary expanded field.
	FieldNameValue FieldExprKind = iota
	// FieldNameMacro is a field name bound to an unexpanded invocation.
	FieldNameMacro
	// FieldEExp is an unexpanded invocation in field-name position.
	FieldEExp
)

// FieldExpr is a struct field position before expansion, as yielded by the
// tooling iterator.
type FieldExpr struct {
	Kind       FieldExprKind
	Name       FieldName
	Value      *Value
	Invocation *MacroExpr
}
