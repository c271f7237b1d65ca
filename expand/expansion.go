package expand

import (
	"github.com/wippyai/ion-engine/macro"
)

type expansionKind uint8

const (
	// expTemplate evaluates a compiled template body in its environment.
	expTemplate expansionKind = iota
	// expStream replays a fixed run of expressions: argument groups and
	// empty optional-parameter bindings.
	expStream
	// expExactlyOne yields a wrapped expression's single value, erroring
	// when it produces zero or multiple values.
	expExactlyOne
	expValues
	expNone
	expMeta
	expDefault
	expRepeat
	expFlatten
	expDelta
	expSum
	expAnnotate
	expMakeString
	expMakeSymbol
	expMakeDecimal
	expMakeTimestamp
	expMakeBlob
	expMakeList
	expMakeSExp
	expMakeField
	expMakeStruct
)

// Expansion is one macro invocation's in-progress state: an entry on the
// evaluator's stack. Its cursor fields make suspension explicit - there is
// no hidden continuation, so dropping an expansion cancels it.
type Expansion struct {
	ctx  *Context
	kind expansionKind
	name string
	env  *Environment
	body *macro.TemplateExpr
	args *argStream
	done bool

	vals *argValues        // fully-expanded argument values, lazily built
	seq  *SequenceIterator // flatten: current sequence argument
	one  ValueExpr         // exactly-one: the wrapped expression

	// repeat state.
	primed     bool
	repeatLeft int64
	items      []ValueExpr
	itemPos    int

	// delta accumulator.
	acc int64

	// default state.
	sub *Evaluator
}

// next produces the expansion's next expression. ok=false means the frame
// is exhausted and may be popped.
func (x *Expansion) next() (ValueExpr, bool, error) {
	switch x.kind {
	case expTemplate:
		if x.done {
			return ValueExpr{}, false, nil
		}
		x.done = true
		a, err := resolveTemplateExpr(x.ctx, x.env, x.body)
		if err != nil {
			return ValueExpr{}, false, err
		}
		return a.valueExpr(), true, nil

	case expExactlyOne:
		if x.done {
			return ValueExpr{}, false, nil
		}
		x.done = true
		v, err := evalExactlyOne(x.ctx, x.one, x.name)
		if err != nil {
			return ValueExpr{}, false, err
		}
		return ValueExpr{value: v}, true, nil

	case expStream, expValues:
		a, ok, err := x.args.next()
		if err != nil || !ok {
			return ValueExpr{}, false, err
		}
		return a.valueExpr(), true, nil

	case expNone, expMeta:
		// none produces nothing; meta's arguments are carried for other
		// tooling and contribute no values to the stream.
		return ValueExpr{}, false, nil

	case expDefault:
		return x.nextDefault()

	case expRepeat:
		return x.nextRepeat()

	case expFlatten:
		return x.nextFlatten()

	case expDelta:
		return x.nextDelta()

	default:
		// Single-value constructors.
		if x.done {
			return ValueExpr{}, false, nil
		}
		x.done = true
		v, err := x.construct()
		if err != nil {
			return ValueExpr{}, false, err
		}
		return ValueExpr{value: v}, true, nil
	}
}

// values returns the expansion's fully-expanded argument value stream.
func (x *Expansion) values() *argValues {
	if x.vals == nil {
		x.vals = &argValues{ctx: x.ctx, args: x.args}
	}
	return x.vals
}

// argValues drives a private evaluator over an argument stream, yielding
// fully-expanded values one at a time.
type argValues struct {
	ctx  *Context
	args *argStream
	eval *Evaluator
}

func (av *argValues) next() (*Value, bool, error) {
	for {
		if av.eval != nil && !av.eval.IsEmpty() {
			v, ok, err := av.eval.Next()
			if err != nil {
				return nil, false, err
			}
			if ok {
				return v, true, nil
			}
		}
		a, ok, err := av.args.next()
		if err != nil || !ok {
			return nil, false, err
		}
		e := a.valueExpr()
		if e.IsLiteral() {
			return e.value, true, nil
		}
		if av.eval == nil {
			av.eval = av.ctx.NewEvaluator()
		}
		x, err := e.invocation.Expand()
		if err != nil {
			return nil, false, err
		}
		if err := av.eval.Push(x); err != nil {
			return nil, false, err
		}
	}
}
