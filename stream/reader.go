package stream

import (
	"go.uber.org/zap"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/expand"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
	"github.com/wippyai/ion-engine/raw"
)

// Option configures a Reader.
type Option func(*config)

type config struct {
	macros   *macro.Table
	symbols  *ion.SymbolTable
	maxDepth int
}

// WithMacros supplies a pre-populated user macro table.
func WithMacros(t *macro.Table) Option {
	return func(c *config) { c.macros = t }
}

// WithSymbols supplies a pre-populated symbol table.
func WithSymbols(t *ion.SymbolTable) Option {
	return func(c *config) { c.symbols = t }
}

// WithMaxDepth sets the expansion evaluator's frame stack limit.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// WithLogger installs a logger for the expansion engine. Call before any
// decoding begins.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { expand.SetLogger(l) }
}

// Reader pulls expanded top-level values from a raw source. A top-level
// e-expression fans out into zero or more values, each returned by its
// own Next call.
//
// Arena state is reclaimed between top-level values: every handle from a
// previous Next becomes invalid once Next is called again. Resolve what
// you need before advancing.
type Reader struct {
	src  raw.StreamReader
	ctx  *expand.Context
	eval *expand.Evaluator
	err  error
}

// NewReader creates a reader over a raw source.
func NewReader(src raw.StreamReader, opts ...Option) *Reader {
	cfg := config{maxDepth: expand.DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx := expand.NewContext(cfg.macros, cfg.symbols, expand.WithMaxDepth(cfg.maxDepth))
	return &Reader{src: src, ctx: ctx}
}

// Context returns the reader's encoding context. Mutating its tables is
// only legal between Next calls, never while a top-level e-expression is
// still fanning out.
func (r *Reader) Context() *expand.Context { return r.ctx }

// Next returns the next expanded top-level value. ok=false with a nil
// error means the stream is exhausted. Errors are terminal except
// errors.Incomplete, which may be retried after more input arrives.
func (r *Reader) Next() (*expand.Value, bool, error) {
	if r.err != nil {
		return nil, false, r.err
	}
	v, ok, err := r.next()
	if err != nil && !errors.IsIncomplete(err) {
		r.err = err
	}
	return v, ok, err
}

func (r *Reader) next() (*expand.Value, bool, error) {
	for {
		if r.eval != nil {
			v, ok, err := r.eval.Next()
			if err != nil {
				return nil, false, err
			}
			if ok {
				return v, true, nil
			}
			r.eval = nil
		}
		// The previous value's expansion state is dead now.
		r.ctx.Reset()
		e, ok, err := r.src.NextExpr()
		if err != nil || !ok {
			return nil, false, err
		}
		lifted, err := r.ctx.LiftValueExpr(e)
		if err != nil {
			return nil, false, err
		}
		if lifted.IsLiteral() {
			return lifted.Value(), true, nil
		}
		eval := r.ctx.NewEvaluator()
		expand.Logger().Debug("expanding top-level invocation",
			zap.String("macro", lifted.Invocation().Name()))
		x, err := lifted.Invocation().Expand()
		if err != nil {
			return nil, false, err
		}
		if err := eval.Push(x); err != nil {
			return nil, false, err
		}
		r.eval = eval
	}
}
