package expand

import (
	"github.com/wippyai/ion-engine/errors"
)

// Evaluator is a LIFO stack of expansion frames. It pulls the next
// produced value across the whole stack, recursing into nested macro
// invocations by pushing them and retrying, and reports exhaustion only
// when the stack is empty.
//
// The evaluator is strictly single-threaded and re-entrant: returning
// from Next suspends it, and the next call resumes exactly where the
// previous one left off.
type Evaluator struct {
	ctx      *Context
	frames   []*Expansion
	maxDepth int
}

// Push begins evaluating one macro invocation's resulting expansion by
// placing a new frame on the stack. It does not itself produce a value.
func (e *Evaluator) Push(x *Expansion) error {
	if len(e.frames) >= e.maxDepth {
		return errors.DepthExceeded(e.maxDepth)
	}
	e.frames = append(e.frames, x)
	debugf("evaluator: push %s (depth %d)", x.name, len(e.frames))
	return nil
}

// IsEmpty reports whether any frames remain. Callers use it to know when
// to stop re-entering the evaluator and return to reading their own
// source.
func (e *Evaluator) IsEmpty() bool {
	return len(e.frames) == 0
}

// Depth returns the current frame count.
func (e *Evaluator) Depth() int {
	return len(e.frames)
}

// Next pulls the next produced value across the whole stack. Exhausted
// frames are popped; invocation results are pushed and retried. ok=false
// means the stack is empty; calling Next again remains terminal.
func (e *Evaluator) Next() (*Value, bool, error) {
	for {
		if len(e.frames) == 0 {
			return nil, false, nil
		}
		top := e.frames[len(e.frames)-1]
		expr, ok, err := top.next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			e.frames = e.frames[:len(e.frames)-1]
			debugf("evaluator: pop %s (depth %d)", top.name, len(e.frames))
			continue
		}
		if expr.IsLiteral() {
			return expr.value, true, nil
		}
		inv := expr.invocation
		if inv.MustProduceExactlyOneValue() {
			// Known-singleton invocations are evaluated in place instead
			// of growing the stack. Output is identical either way.
			v, err := evalOneExpr(e.ctx, expr)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}
		x, err := inv.Expand()
		if err != nil {
			return nil, false, err
		}
		if err := e.Push(x); err != nil {
			return nil, false, err
		}
	}
}

// evalOneExpr fully evaluates a value expression that is required to
// produce exactly one value. Zero or multiple produced values is a
// decoding error.
func evalOneExpr(ctx *Context, e ValueExpr) (*Value, error) {
	if e.IsLiteral() {
		return e.value, nil
	}
	return evalExactlyOne(ctx, e, e.invocation.Name())
}

// evalExactlyOne drains a non-literal expression through a private
// evaluator, attributing cardinality violations to the named macro.
func evalExactlyOne(ctx *Context, e ValueExpr, name string) (*Value, error) {
	if e.IsLiteral() {
		return e.value, nil
	}
	ev := ctx.NewEvaluator()
	x, err := e.invocation.Expand()
	if err != nil {
		return nil, err
	}
	if err := ev.Push(x); err != nil {
		return nil, err
	}
	v, ok, err := ev.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Arity(name,
			"produced no values where exactly one was required")
	}
	if _, more, err := ev.Next(); err != nil {
		return nil, err
	} else if more {
		return nil, errors.Arity(name,
			"produced more than one value where exactly one was required")
	}
	return v, nil
}
