package macro

import (
	"github.com/wippyai/ion-engine/ion"
)

// ExprKind discriminates the three template expression forms.
type ExprKind uint8

const (
	// ExprLiteral is a value known at compile time, possibly containing
	// nested non-literal expressions (container elements, struct fields).
	ExprLiteral ExprKind = iota
	// ExprParameter references a declared parameter by position.
	ExprParameter
	// ExprInvocation invokes another macro with argument expressions.
	ExprInvocation
	// ExprGroup is an argument group: a run of expressions supplied for a
	// single zero-or-more / one-or-more parameter. Only valid in argument
	// position.
	ExprGroup
)

// TemplateExpr is one node of a compiled template body.
type TemplateExpr struct {
	Kind ExprKind

	// Literal fields.
	Annotations []ion.SymbolToken
	Value       TemplateValue

	// Parameter index.
	Param int

	// Invocation target and arguments. A nil Invoked marks a self-recursive
	// call resolved against the template being expanded.
	Invoked *Macro
	Args    []TemplateExpr
}

// TemplateValue is the payload of a literal template expression. Container
// values hold nested expressions, so a struct literal's field values may
// themselves be invocations or parameter references.
type TemplateValue struct {
	Type     ion.Type
	NullType ion.Type
	Bool     bool
	Int      int64
	Float    float64
	Dec      ion.Dec
	Time     ion.Time
	Text     string
	Bytes    []byte

	Elements []TemplateExpr  // list / sexp
	Fields   []TemplateField // struct

	// Index maps field-name text to the positions in Fields bearing that
	// name, in order. Built once at compile time so field lookup on a
	// template-backed struct costs O(matches) instead of a linear scan.
	Index map[string][]int
}

// TemplateField is one field of a struct literal in a template body.
type TemplateField struct {
	Name  ion.SymbolToken
	Value TemplateExpr
}

// buildStructIndexes walks an expression tree and fills in the field index
// of every struct literal it contains.
func buildStructIndexes(e *TemplateExpr) {
	switch e.Kind {
	case ExprLiteral:
		switch e.Value.Type {
		case ion.Struct:
			idx := make(map[string][]int, len(e.Value.Fields))
			for i := range e.Value.Fields {
				if text, ok := e.Value.Fields[i].Name.Text(); ok {
					idx[text] = append(idx[text], i)
				}
				buildStructIndexes(&e.Value.Fields[i].Value)
			}
			e.Value.Index = idx
		case ion.List, ion.SExp:
			for i := range e.Value.Elements {
				buildStructIndexes(&e.Value.Elements[i])
			}
		}
	case ExprInvocation, ExprGroup:
		for i := range e.Args {
			buildStructIndexes(&e.Args[i])
		}
	}
}

// isSingleton reports whether expr is statically known to produce exactly
// one value when evaluated with params in scope.
func isSingleton(e *TemplateExpr, params []Parameter) bool {
	switch e.Kind {
	case ExprLiteral:
		return true
	case ExprParameter:
		// An exactly-one parameter's argument is required to produce
		// exactly one value; other cardinalities may fan out.
		return e.Param < len(params) && params[e.Param].Cardinality == ExactlyOne
	case ExprInvocation:
		if e.Invoked == nil {
			// Self-recursive calls are never assumed singleton.
			return false
		}
		return e.Invoked.analysis.MustProduceExactlyOneValue
	}
	return false
}
