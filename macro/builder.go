package macro

import (
	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
)

// TemplateBuilder assembles a compiled template macro. It stands in for
// the out-of-scope template-definition compiler: callers hand the engine a
// body that is already in compiled shape.
type TemplateBuilder struct {
	name   string
	params []Parameter
	body   *TemplateExpr
}

// NewTemplate starts building a template macro. Name may be empty for an
// anonymous template.
func NewTemplate(name string) *TemplateBuilder {
	return &TemplateBuilder{name: name}
}

// Param declares the next parameter.
func (b *TemplateBuilder) Param(name string, c Cardinality) *TemplateBuilder {
	b.params = append(b.params, Parameter{Name: name, Cardinality: c})
	return b
}

// Body sets the template's body expression.
func (b *TemplateBuilder) Body(expr TemplateExpr) *TemplateBuilder {
	b.body = &expr
	return b
}

// Compile validates the body, builds struct field indexes, computes the
// expansion analysis, and returns the finished macro.
func (b *TemplateBuilder) Compile() (*Macro, error) {
	if b.body == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidData).
			Macro(b.name).Detail("template has no body").Build()
	}
	if err := b.validate(b.body); err != nil {
		return nil, err
	}
	buildStructIndexes(b.body)
	return &Macro{
		name:   b.name,
		kind:   KindTemplate,
		params: b.params,
		body:   b.body,
		analysis: ExpansionAnalysis{
			MustProduceExactlyOneValue: isSingleton(b.body, b.params),
		},
	}, nil
}

// MustCompile is Compile for statically-known bodies; it panics on error.
func (b *TemplateBuilder) MustCompile() *Macro {
	m, err := b.Compile()
	if err != nil {
		panic(err)
	}
	return m
}

func (b *TemplateBuilder) validate(e *TemplateExpr) error {
	switch e.Kind {
	case ExprParameter:
		if e.Param < 0 || e.Param >= len(b.params) {
			return errors.New(errors.PhaseCompile, errors.KindInvalidData).
				Macro(b.name).Detail("parameter index %d out of range", e.Param).Build()
		}
	case ExprInvocation, ExprGroup:
		for i := range e.Args {
			if err := b.validate(&e.Args[i]); err != nil {
				return err
			}
		}
	case ExprLiteral:
		for i := range e.Value.Elements {
			if err := b.validate(&e.Value.Elements[i]); err != nil {
				return err
			}
		}
		for i := range e.Value.Fields {
			if err := b.validate(&e.Value.Fields[i].Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Expression constructors used with TemplateBuilder.

// NullOf builds a typed null literal.
func NullOf(t ion.Type) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Null, NullType: t}}
}

// Bool builds a bool literal.
func Bool(v bool) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Bool, Bool: v}}
}

// Int builds an int literal.
func Int(v int64) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Int, Int: v}}
}

// Float builds a float literal.
func Float(v float64) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Float, Float: v}}
}

// Dec builds a decimal literal.
func Dec(v ion.Dec) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Decimal, Dec: v}}
}

// Time builds a timestamp literal.
func Time(v ion.Time) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Timestamp, Time: v}}
}

// Str builds a string literal.
func Str(v string) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.String, Text: v}}
}

// Sym builds a symbol literal.
func Sym(v string) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Symbol, Text: v}}
}

// Blob builds a blob literal.
func Blob(v []byte) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Blob, Bytes: v}}
}

// Clob builds a clob literal.
func Clob(v []byte) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Clob, Bytes: v}}
}

// ListOf builds a list literal from element expressions.
func ListOf(elements ...TemplateExpr) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.List, Elements: elements}}
}

// SExpOf builds an s-expression literal from element expressions.
func SExpOf(elements ...TemplateExpr) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.SExp, Elements: elements}}
}

// StructOf builds a struct literal from fields.
func StructOf(fields ...TemplateField) TemplateExpr {
	return TemplateExpr{Kind: ExprLiteral, Value: TemplateValue{Type: ion.Struct, Fields: fields}}
}

// FieldOf builds one struct field.
func FieldOf(name string, value TemplateExpr) TemplateField {
	return TemplateField{Name: ion.SymbolText(name), Value: value}
}

// Param references a declared parameter by position.
func Param(index int) TemplateExpr {
	return TemplateExpr{Kind: ExprParameter, Param: index}
}

// Call invokes another macro.
func Call(m *Macro, args ...TemplateExpr) TemplateExpr {
	return TemplateExpr{Kind: ExprInvocation, Invoked: m, Args: args}
}

// CallSystem invokes a system macro.
func CallSystem(id SystemID, args ...TemplateExpr) TemplateExpr {
	return Call(SystemMacro(id), args...)
}

// CallSelf invokes the template being built, for recursive definitions.
func CallSelf(args ...TemplateExpr) TemplateExpr {
	return TemplateExpr{Kind: ExprInvocation, Invoked: nil, Args: args}
}

// Group bundles expressions into an argument group for a zero-or-more or
// one-or-more parameter.
func Group(exprs ...TemplateExpr) TemplateExpr {
	return TemplateExpr{Kind: ExprGroup, Args: exprs}
}

// Annotated wraps a literal expression with annotations.
func Annotated(annotations []string, expr TemplateExpr) TemplateExpr {
	for _, a := range annotations {
		expr.Annotations = append(expr.Annotations, ion.SymbolText(a))
	}
	return expr
}
