package expand

import (
	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
	"github.com/wippyai/ion-engine/raw"
)

type seqSourceKind uint8

const (
	// seqRaw walks a list or sexp body from the encoded input.
	seqRaw seqSourceKind = iota
	// seqTemplate walks a compiled template container's elements.
	seqTemplate
	// seqConstructed concatenates the contents of make_list/make_sexp
	// sequence arguments.
	seqConstructed
)

// sequence is the shared source description behind List and SExp handles.
type sequence struct {
	ctx  *Context
	kind seqSourceKind
	typ  ion.Type

	rawv raw.Value // seqRaw

	env  *Environment        // seqTemplate
	elem *macro.TemplateExpr // seqTemplate

	args *argStream // seqConstructed
}

// List is a handle to an expanded list. Iteration order is the expansion
// order of the underlying expressions.
type List struct {
	seq sequence
	ann []ion.SymbolToken
}

// Iterator returns a fresh iterator over the list's expanded elements.
// Each call restarts from the first element.
func (l *List) Iterator() (*SequenceIterator, error) {
	return l.seq.iterator()
}

// Annotations returns the list's own annotations.
func (l *List) Annotations() []ion.SymbolToken { return l.ann }

// SExp is a handle to an expanded s-expression.
type SExp struct {
	seq sequence
	ann []ion.SymbolToken
}

// Iterator returns a fresh iterator over the sexp's expanded elements.
func (s *SExp) Iterator() (*SequenceIterator, error) {
	return s.seq.iterator()
}

// Annotations returns the sexp's own annotations.
func (s *SExp) Annotations() []ion.SymbolToken { return s.ann }

func (q *sequence) iterator() (*SequenceIterator, error) {
	it := q.ctx.seqIters.Alloc()
	*it = SequenceIterator{ctx: q.ctx, eval: q.ctx.NewEvaluator()}
	switch q.kind {
	case seqRaw:
		r, err := q.rawv.Sequence()
		if err != nil {
			return nil, err
		}
		it.src = r
	case seqTemplate:
		it.env = q.env
		it.elems = q.elem.Value.Elements
	case seqConstructed:
		it.concat = &argValues{ctx: q.ctx, args: q.args.clone()}
	}
	return it, nil
}

// SequenceIterator yields a sequence's elements with any nested macro
// invocations expanded in place. Elements produced directly by the source
// pass through; an invocation is pushed onto the iterator's evaluator and
// drained before the source resumes.
type SequenceIterator struct {
	ctx  *Context
	eval *Evaluator

	src raw.SequenceReader // raw source

	env   *Environment // template source
	elems []macro.TemplateExpr
	pos   int

	concat *argValues        // constructed source: sequence-valued args
	inner  *SequenceIterator // constructed source: current argument's elements

	fail error
}

// Next returns the next expanded element. ok=false with a nil error means
// the sequence is exhausted; after an error the iterator keeps returning
// that error.
func (it *SequenceIterator) Next() (*Value, bool, error) {
	if it.fail != nil {
		return nil, false, it.fail
	}
	v, ok, err := it.next()
	if err != nil {
		it.fail = err
	}
	return v, ok, err
}

func (it *SequenceIterator) next() (*Value, bool, error) {
	for {
		// Drain expansion products before pulling from the source again.
		if !it.eval.IsEmpty() {
			v, ok, err := it.eval.Next()
			if err != nil {
				return nil, false, err
			}
			if ok {
				return v, true, nil
			}
		}
		if it.concat != nil {
			return it.nextConcat()
		}
		e, ok, err := it.nextSourceExpr()
		if err != nil || !ok {
			return nil, false, err
		}
		if e.IsLiteral() {
			return e.value, true, nil
		}
		inv := e.invocation
		if inv.MustProduceExactlyOneValue() {
			v, err := evalOneExpr(it.ctx, e)
			if err != nil {
				return nil, false, err
			}
			return v, true, nil
		}
		x, err := inv.Expand()
		if err != nil {
			return nil, false, err
		}
		if err := it.eval.Push(x); err != nil {
			return nil, false, err
		}
	}
}

// nextSourceExpr pulls the next unexpanded element expression.
func (it *SequenceIterator) nextSourceExpr() (ValueExpr, bool, error) {
	if it.src != nil {
		e, ok, err := it.src.NextExpr()
		if err != nil || !ok {
			return ValueExpr{}, false, err
		}
		lifted, err := it.ctx.LiftValueExpr(e)
		if err != nil {
			return ValueExpr{}, false, err
		}
		return lifted, true, nil
	}
	if it.pos >= len(it.elems) {
		return ValueExpr{}, false, nil
	}
	e := &it.elems[it.pos]
	it.pos++
	a, err := resolveTemplateExpr(it.ctx, it.env, e)
	if err != nil {
		return ValueExpr{}, false, err
	}
	return a.valueExpr(), true, nil
}

// nextConcat walks the current argument sequence, moving to the next
// sequence-valued argument when one runs out.
func (it *SequenceIterator) nextConcat() (*Value, bool, error) {
	for {
		if it.inner != nil {
			v, ok, err := it.inner.Next()
			if err != nil {
				return nil, false, err
			}
			if ok {
				return v, true, nil
			}
			it.inner = nil
		}
		v, ok, err := it.concat.next()
		if err != nil || !ok {
			return nil, false, err
		}
		ref, err := v.Read()
		if err != nil {
			return nil, false, err
		}
		inner, err := ref.ExpectSequence()
		if err != nil {
			return nil, false, errors.New(errors.PhaseExpand, errors.KindWrongType).
				Detail("sequence constructor arguments must be lists or sexps, found a(n) %s", ref.Kind).
				Build()
		}
		it.inner = inner
	}
}
