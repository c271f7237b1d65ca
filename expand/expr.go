package expand

import (
	"go.uber.org/zap"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/macro"
	"github.com/wippyai/ion-engine/raw"
)

type invokeKind uint8

const (
	// invokeMacro is a real macro invocation, from the data stream or a
	// template body.
	invokeMacro invokeKind = iota
	// invokeStream is a pseudo-invocation that streams a fixed run of
	// expressions: an argument group, or an optional parameter's empty
	// binding.
	invokeStream
	// invokeOne wraps an exactly-one parameter's bound invocation and
	// errors unless it expands to a single value.
	invokeOne
)

// MacroExpr is an unexpanded macro invocation: the resolved definition
// plus an iterator over its argument expressions. Arguments originate
// either from a raw e-expression or from a template body, and evaluate in
// the environment captured here.
type MacroExpr struct {
	ctx    *Context
	kind   invokeKind
	def    *macro.Macro
	ref    macro.Ref
	hasRef bool

	// env is the environment the arguments evaluate in: the enclosing
	// template frame's environment, or nil for raw e-expressions.
	env *Environment

	rawArgs raw.ArgumentReader
	tplArgs []macro.TemplateExpr

	// invokeStream contents.
	streamRaw raw.ArgumentReader
	streamTpl []macro.TemplateExpr

	// invokeOne contents: the wrapped expression and the template whose
	// parameter required it, for diagnostics.
	oneArg  ValueExpr
	oneName string
}

// Name returns the invoked macro's name for diagnostics.
func (m *MacroExpr) Name() string {
	switch m.kind {
	case invokeStream:
		return "(argument group)"
	case invokeOne:
		return m.oneName
	}
	return m.def.Name()
}

// Definition returns the invoked macro, nil for pseudo-invocations.
func (m *MacroExpr) Definition() *macro.Macro {
	if m.kind != invokeMacro {
		return nil
	}
	return m.def
}

// MustProduceExactlyOneValue reports whether the invocation is statically
// known to expand to a single value, enabling in-place evaluation.
func (m *MacroExpr) MustProduceExactlyOneValue() bool {
	switch m.kind {
	case invokeStream:
		return false
	case invokeOne:
		return true
	}
	return m.def.Analysis().MustProduceExactlyOneValue
}

// args returns a fresh argument stream for one expansion of this
// invocation. Raw readers are cloned so the invocation can expand more
// than once.
func (m *MacroExpr) args() *argStream {
	s := &argStream{ctx: m.ctx, env: m.env, tpl: m.tplArgs}
	if m.rawArgs != nil {
		s.raw = m.rawArgs.Clone()
	}
	return s
}

// Expand begins evaluating the invocation, returning the expansion to be
// pushed onto an evaluator (or driven directly for singletons).
func (m *MacroExpr) Expand() (*Expansion, error) {
	if m.kind == invokeStream {
		s := &argStream{ctx: m.ctx, env: m.env, tpl: m.streamTpl}
		if m.streamRaw != nil {
			s.raw = m.streamRaw.Clone()
		}
		x := m.ctx.expansions.Alloc()
		*x = Expansion{ctx: m.ctx, kind: expStream, name: m.Name(), args: s}
		return x, nil
	}
	if m.kind == invokeOne {
		x := m.ctx.expansions.Alloc()
		*x = Expansion{ctx: m.ctx, kind: expExactlyOne, name: m.oneName, one: m.oneArg}
		return x, nil
	}
	if m.hasRef {
		// Re-resolve so a table mutated since this invocation was lifted
		// surfaces as a stale-macro error instead of silently expanding
		// the wrong definition.
		if _, err := m.ref.Resolve(); err != nil {
			Logger().Warn("macro reference went stale before expansion",
				zap.String("macro", m.def.Name()), zap.Error(err))
			return nil, err
		}
	}
	if m.def.Kind() == macro.KindTemplate {
		env, err := bindEnvironment(m.ctx, m.def, m.args())
		if err != nil {
			return nil, err
		}
		x := m.ctx.expansions.Alloc()
		*x = Expansion{ctx: m.ctx, kind: expTemplate, name: m.def.Name(), env: env, body: m.def.Body()}
		return x, nil
	}
	return m.expandSystem()
}

// argExpr is one argument expression: a single value expression or an
// argument group.
type argExpr struct {
	expr  ValueExpr
	group *MacroExpr
}

func (a argExpr) isGroup() bool { return a.group != nil }

// valueExpr flattens the argument to a value expression; groups become
// stream pseudo-invocations the evaluator knows how to expand.
func (a argExpr) valueExpr() ValueExpr {
	if a.group != nil {
		return ValueExpr{invocation: a.group}
	}
	return a.expr
}

// argStream iterates an invocation's argument expressions, unifying raw
// e-expression arguments and template-body arguments.
type argStream struct {
	ctx *Context
	env *Environment
	raw raw.ArgumentReader
	tpl []macro.TemplateExpr
	pos int
	pre *argExpr
}

// clone returns an independent stream positioned at the first argument.
func (s *argStream) clone() *argStream {
	c := &argStream{ctx: s.ctx, env: s.env, tpl: s.tpl, pre: s.pre}
	if s.raw != nil {
		c.raw = s.raw.Clone()
	}
	return c
}

func (s *argStream) next() (argExpr, bool, error) {
	if s.pre != nil {
		a := *s.pre
		s.pre = nil
		return a, true, nil
	}
	if s.raw != nil {
		a, ok, err := s.raw.NextArg()
		if err != nil || !ok {
			return argExpr{}, false, err
		}
		return s.liftRawArg(a)
	}
	if s.pos >= len(s.tpl) {
		return argExpr{}, false, nil
	}
	e := &s.tpl[s.pos]
	s.pos++
	a, err := resolveTemplateExpr(s.ctx, s.env, e)
	if err != nil {
		return argExpr{}, false, err
	}
	return a, true, nil
}

func (s *argStream) liftRawArg(a raw.ArgExpr) (argExpr, bool, error) {
	switch {
	case a.Literal != nil:
		return argExpr{expr: ValueExpr{value: s.ctx.NewRawValue(a.Literal)}}, true, nil
	case a.Invocation != nil:
		inv, err := s.ctx.LiftInvocation(a.Invocation)
		if err != nil {
			return argExpr{}, false, err
		}
		return argExpr{expr: ValueExpr{invocation: inv}}, true, nil
	case a.Group != nil:
		g := s.ctx.exprs.Alloc()
		*g = MacroExpr{ctx: s.ctx, kind: invokeStream, streamRaw: a.Group}
		return argExpr{group: g}, true, nil
	}
	return argExpr{}, false, errors.Decoding("raw argument expression has no content")
}

// resolveTemplateExpr turns one template expression into an argument
// expression, resolving parameter references through the environment.
func resolveTemplateExpr(ctx *Context, env *Environment, e *macro.TemplateExpr) (argExpr, error) {
	switch e.Kind {
	case macro.ExprLiteral:
		return argExpr{expr: ValueExpr{value: ctx.newTemplateValue(env, e)}}, nil

	case macro.ExprInvocation:
		def := e.Invoked
		if def == nil {
			if env == nil || env.template == nil {
				return argExpr{}, errors.Expansion("self-recursive call outside a template body")
			}
			def = env.template
		}
		m := ctx.exprs.Alloc()
		*m = MacroExpr{ctx: ctx, def: def, env: env, tplArgs: e.Args}
		return argExpr{expr: ValueExpr{invocation: m}}, nil

	case macro.ExprGroup:
		g := ctx.exprs.Alloc()
		*g = MacroExpr{ctx: ctx, kind: invokeStream, env: env, streamTpl: e.Args}
		return argExpr{group: g}, nil

	case macro.ExprParameter:
		b, err := env.binding(e.Param)
		if err != nil {
			return argExpr{}, err
		}
		switch b.kind {
		case bindValue:
			if b.one && !b.expr.IsLiteral() {
				m := ctx.exprs.Alloc()
				*m = MacroExpr{ctx: ctx, kind: invokeOne, oneArg: b.expr, oneName: env.template.Name()}
				return argExpr{expr: ValueExpr{invocation: m}}, nil
			}
			return argExpr{expr: b.expr}, nil
		case bindGroup:
			return argExpr{group: b.group}, nil
		default:
			// An optional parameter with no argument streams nothing.
			g := ctx.exprs.Alloc()
			*g = MacroExpr{ctx: ctx, kind: invokeStream}
			return argExpr{group: g}, nil
		}
	}
	return argExpr{}, errors.Expansion("unknown template expression kind %d", e.Kind)
}
