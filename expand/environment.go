package expand

import (
	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/macro"
)

type bindingKind uint8

const (
	// bindEmpty marks an optional parameter that received no argument.
	bindEmpty bindingKind = iota
	// bindValue binds a single value expression.
	bindValue
	// bindGroup binds an argument group that streams zero or more
	// expressions.
	bindGroup
)

type binding struct {
	kind  bindingKind
	expr  ValueExpr
	group *MacroExpr
	// one requires the bound expression to expand to exactly one value.
	one bool
}

// Environment binds a template's declared parameters to the argument
// expressions supplied at invocation time. One Environment exists per
// active template frame; nested expansions share it read-only.
type Environment struct {
	// template is the macro whose body evaluates against this
	// environment; self-recursive calls in the body resolve to it.
	template *macro.Macro
	bindings []binding
}

// Template returns the macro this environment was built for.
func (e *Environment) Template() *macro.Macro { return e.template }

func (e *Environment) binding(i int) (binding, error) {
	if e == nil || i < 0 || i >= len(e.bindings) {
		return binding{}, errors.Expansion("parameter %d has no binding", i)
	}
	return e.bindings[i], nil
}

// bindEnvironment consumes an invocation's argument stream and binds each
// declared parameter in order. Argument shape violations (missing required
// arguments, a group supplied for an exactly-one parameter, arguments past
// the last parameter) are decoding errors.
func bindEnvironment(ctx *Context, def *macro.Macro, args *argStream) (*Environment, error) {
	params := def.Parameters()
	env := ctx.environments.Alloc()
	*env = Environment{template: def}
	if len(params) > 0 {
		env.bindings = make([]binding, 0, len(params))
	}
	for _, p := range params {
		a, ok, err := args.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			if p.Cardinality == macro.ExactlyOne || p.Cardinality == macro.OneOrMore {
				return nil, errors.Arity(def.Name(),
					"missing argument for required parameter "+p.Name)
			}
			env.bindings = append(env.bindings, binding{kind: bindEmpty})
			continue
		}
		if a.isGroup() {
			if p.Cardinality == macro.ExactlyOne {
				return nil, errors.Arity(def.Name(),
					"parameter "+p.Name+" takes exactly one expression, found an argument group")
			}
			env.bindings = append(env.bindings, binding{kind: bindGroup, group: a.group})
			continue
		}
		env.bindings = append(env.bindings, binding{
			kind: bindValue,
			expr: a.expr,
			one:  p.Cardinality == macro.ExactlyOne,
		})
	}
	if _, ok, err := args.next(); err != nil {
		return nil, err
	} else if ok {
		return nil, errors.Arity(def.Name(), "too many arguments")
	}
	return env, nil
}
