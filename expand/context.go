package expand

import (
	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/expand/internal/arena"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
	"github.com/wippyai/ion-engine/raw"
)

// DefaultMaxDepth bounds the evaluator's frame stack so that cyclic or
// pathological template definitions fail with a depth-exceeded error
// instead of unbounded growth.
const DefaultMaxDepth = 128

// Context is the encoding context: the active macro table, the active
// symbol table, and the arena that owns all transient expansion state. It
// is valid for the lifetime of one top-level value and shared by reference
// throughout the expansion machinery.
//
// The tables are read-only for the duration of any expansion; mutating
// them is only legal between top-level values.
type Context struct {
	macros   *macro.Table
	symbols  *ion.SymbolTable
	maxDepth int

	mem          *arena.Arena
	values       *arena.Pool[Value]
	exprs        *arena.Pool[MacroExpr]
	expansions   *arena.Pool[Expansion]
	evaluators   *arena.Pool[Evaluator]
	environments *arena.Pool[Environment]
	structs      *arena.Pool[Struct]
	lists        *arena.Pool[List]
	sexps        *arena.Pool[SExp]
	structIters  *arena.Pool[StructIterator]
	seqIters     *arena.Pool[SequenceIterator]
}

// Option configures a Context.
type Option func(*Context)

// WithMaxDepth sets the evaluator frame stack limit.
func WithMaxDepth(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// NewContext creates an encoding context over the given tables.
func NewContext(macros *macro.Table, symbols *ion.SymbolTable, opts ...Option) *Context {
	if macros == nil {
		macros = macro.NewTable()
	}
	if symbols == nil {
		symbols = ion.NewSymbolTable()
	}
	c := &Context{
		macros:   macros,
		symbols:  symbols,
		maxDepth: DefaultMaxDepth,
		mem:      arena.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.values = arena.NewPool[Value](c.mem)
	c.exprs = arena.NewPool[MacroExpr](c.mem)
	c.expansions = arena.NewPool[Expansion](c.mem)
	c.evaluators = arena.NewPool[Evaluator](c.mem)
	c.environments = arena.NewPool[Environment](c.mem)
	c.structs = arena.NewPool[Struct](c.mem)
	c.lists = arena.NewPool[List](c.mem)
	c.sexps = arena.NewPool[SExp](c.mem)
	c.structIters = arena.NewPool[StructIterator](c.mem)
	c.seqIters = arena.NewPool[SequenceIterator](c.mem)
	return c
}

// Macros returns the active user macro table.
func (c *Context) Macros() *macro.Table { return c.macros }

// Symbols returns the active symbol table.
func (c *Context) Symbols() *ion.SymbolTable { return c.symbols }

// Reset reclaims all transient expansion state. Call only between
// top-level values; every handle produced under the old scope becomes
// invalid.
func (c *Context) Reset() {
	c.mem.Reset()
}

// NewRawValue wraps a raw literal value in a lazy handle.
func (c *Context) NewRawValue(v raw.Value) *Value {
	return c.values.New(Value{ctx: c, src: srcRawLiteral, raw: v})
}

func (c *Context) newTemplateValue(env *Environment, elem *macro.TemplateExpr) *Value {
	return c.values.New(Value{ctx: c, src: srcTemplate, env: env, elem: elem})
}

func (c *Context) newConstructedValue(ref ValueRef) *Value {
	return c.values.New(Value{ctx: c, src: srcConstructed, ref: ref})
}

func (c *Context) newAnnotatedValue(ann []ion.SymbolToken, inner *Value) *Value {
	return c.values.New(Value{ctx: c, src: srcAnnotated, ann: ann, inner: inner})
}

// NewEvaluator creates an arena-owned evaluator with an empty frame stack.
func (c *Context) NewEvaluator() *Evaluator {
	e := c.evaluators.Alloc()
	e.ctx = c
	e.maxDepth = c.maxDepth
	return e
}

// LiftInvocation resolves a raw e-expression against the context's macro
// tables and returns the unexpanded invocation.
func (c *Context) LiftInvocation(inv raw.MacroInvocation) (*MacroExpr, error) {
	id := inv.ID()
	var (
		def *macro.Macro
		ref macro.Ref
		ok  bool
	)
	switch {
	case id.ByName:
		if def, _, ok = c.macros.ByName(id.Name); !ok {
			if def, _, ok = macro.SystemTable().ByName(id.Name); !ok {
				return nil, errors.UnresolvedMacro("no macro named %q", id.Name)
			}
		}
	case id.System:
		if def, ok = macro.SystemTable().At(id.Address); !ok {
			return nil, errors.UnresolvedMacro("no system macro at address %d", id.Address)
		}
	default:
		var err error
		if ref, err = c.macros.RefAt(id.Address); err != nil {
			return nil, err
		}
		def, _ = c.macros.At(id.Address)
	}
	m := c.exprs.Alloc()
	*m = MacroExpr{
		ctx:     c,
		def:     def,
		ref:     ref,
		hasRef:  !id.ByName && !id.System,
		rawArgs: inv.Arguments(),
	}
	return m, nil
}

// LiftValueExpr converts a raw value expression into an expansion-layer
// one, resolving any macro invocation against the context's tables.
func (c *Context) LiftValueExpr(e raw.ValueExpr) (ValueExpr, error) {
	if e.IsLiteral() {
		return ValueExpr{value: c.NewRawValue(e.Literal)}, nil
	}
	inv, err := c.LiftInvocation(e.Invocation)
	if err != nil {
		return ValueExpr{}, err
	}
	return ValueExpr{invocation: inv}, nil
}
