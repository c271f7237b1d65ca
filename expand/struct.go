package expand

import (
	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
	"github.com/wippyai/ion-engine/raw"
)

type structSource uint8

const (
	// structRaw reads fields from an encoded struct body.
	structRaw structSource = iota
	// structTemplate reads fields of a compiled template struct literal.
	structTemplate
	// structMakeStruct merges the fields of make_struct's struct-valued
	// arguments in argument order.
	structMakeStruct
	// structMakeField holds make_field's single name/value pair.
	structMakeField
)

// Struct is a handle to an expanded struct. Iteration and lookup are lazy;
// constructing the handle reads nothing.
type Struct struct {
	ctx *Context
	src structSource
	ann []ion.SymbolToken

	rawv raw.Value // structRaw

	env  *Environment        // structTemplate
	elem *macro.TemplateExpr // structTemplate

	msArgs *argStream // structMakeStruct

	mfField *Field // structMakeField
}

// Annotations returns the struct's own annotations.
func (s *Struct) Annotations() []ion.SymbolToken { return s.ann }

// Iterator returns a fresh iterator over the struct's expanded fields.
// Each call restarts from the first field.
func (s *Struct) Iterator() (*StructIterator, error) {
	it := s.ctx.structIters.Alloc()
	*it = StructIterator{ctx: s.ctx, src: s, eval: s.ctx.NewEvaluator()}
	switch s.src {
	case structRaw:
		r, err := s.rawv.Struct()
		if err != nil {
			return nil, err
		}
		it.rawSrc = r
	case structMakeStruct:
		it.msVals = &argValues{ctx: s.ctx, args: s.msArgs.clone()}
	}
	return it, nil
}

// iterState is the struct iterator's position in the expansion. The three
// states cover ordinary fields, a value-position macro fanning out under
// one repeated name, and a name-position macro splicing whole structs into
// the parent.
type iterState uint8

const (
	// stateReadingField pulls the next field expression from the source.
	stateReadingField iterState = iota
	// stateExpandingValue repeats a pending field name over the values a
	// value-position invocation is still producing.
	stateExpandingValue
	// stateInliningStruct passes through the fields of a struct produced
	// by a name-position invocation.
	stateInliningStruct
)

// StructIterator yields a struct's fields with macro invocations expanded
// in place. All resume state is held in its fields; returning from Next is
// the suspension point.
type StructIterator struct {
	ctx   *Context
	src   *Struct
	eval  *Evaluator
	state iterState

	rawSrc raw.StructReader // raw source
	tplPos int              // template source

	msVals *argValues // make_struct source

	pendingName FieldName       // stateExpandingValue
	child       *StructIterator // stateInliningStruct

	fail error
	done bool
}

// Next returns the next expanded field. ok=false with a nil error means
// the struct is exhausted; polling again keeps returning exhausted. After
// an error the iterator keeps returning that error.
func (it *StructIterator) Next() (Field, bool, error) {
	if it.fail != nil {
		return Field{}, false, it.fail
	}
	if it.done {
		return Field{}, false, nil
	}
	f, ok, err := it.next()
	if err != nil {
		it.fail = err
	} else if !ok {
		it.done = true
	}
	return f, ok, err
}

func (it *StructIterator) next() (Field, bool, error) {
	for {
		switch it.state {
		case stateExpandingValue:
			v, ok, err := it.eval.Next()
			if err != nil {
				return Field{}, false, err
			}
			if !ok {
				it.state = stateReadingField
				continue
			}
			f := Field{Name: it.pendingName, Value: v}
			if it.eval.IsEmpty() {
				it.state = stateReadingField
			}
			return f, true, nil

		case stateInliningStruct:
			f, ok, err := it.child.Next()
			if err != nil {
				return Field{}, false, err
			}
			if ok {
				return f, true, nil
			}
			// Child exhausted: the originating macro may yield further
			// structs; otherwise resume our own source.
			child, ok, err := it.nextStructFromMacro()
			if err != nil {
				return Field{}, false, err
			}
			if ok {
				it.child = child
				continue
			}
			it.child = nil
			it.state = stateReadingField

		default:
			if it.src.src == structMakeStruct {
				return it.nextFromMakeStruct()
			}
			if it.src.src == structMakeField {
				return it.nextFromMakeField()
			}
			f, ok, err := it.nextFromSource()
			if err != nil || !ok {
				return Field{}, false, err
			}
			emitted, ok, err := it.applyFieldExpr(f)
			if err != nil {
				return Field{}, false, err
			}
			if ok {
				return emitted, true, nil
			}
		}
	}
}

// applyFieldExpr performs one state-machine step on a source field
// expression. ok=false means the step emitted nothing (a state change or a
// no-op splice) and the caller should continue.
func (it *StructIterator) applyFieldExpr(f FieldExpr) (Field, bool, error) {
	switch f.Kind {
	case FieldNameValue:
		return Field{Name: f.Name, Value: f.Value}, true, nil

	case FieldNameMacro:
		if f.Invocation.MustProduceExactlyOneValue() {
			v, err := evalOneExpr(it.ctx, ValueExpr{invocation: f.Invocation})
			if err != nil {
				return Field{}, false, err
			}
			return Field{Name: f.Name, Value: v}, true, nil
		}
		x, err := f.Invocation.Expand()
		if err != nil {
			return Field{}, false, err
		}
		if err := it.eval.Push(x); err != nil {
			return Field{}, false, err
		}
		it.pendingName = f.Name
		it.state = stateExpandingValue
		return Field{}, false, nil

	case FieldEExp:
		x, err := f.Invocation.Expand()
		if err != nil {
			return Field{}, false, err
		}
		if err := it.eval.Push(x); err != nil {
			return Field{}, false, err
		}
		child, ok, err := it.nextStructFromMacro()
		if err != nil {
			return Field{}, false, err
		}
		if !ok {
			// Zero structs: the splice is a no-op and the source resumes.
			return Field{}, false, nil
		}
		it.child = child
		it.state = stateInliningStruct
		return Field{}, false, nil
	}
	return Field{}, false, errors.Expansion("field expression has unknown kind %d", f.Kind)
}

// nextStructFromMacro pulls the next value off the evaluator and opens it
// as a struct to inline.
func (it *StructIterator) nextStructFromMacro() (*StructIterator, bool, error) {
	v, ok, err := it.eval.Next()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	ref, err := v.Read()
	if err != nil {
		return nil, false, err
	}
	st, err := ref.ExpectStruct()
	if err != nil {
		return nil, false, errors.New(errors.PhaseExpand, errors.KindWrongType).
			Detail("a macro in field name position must produce structs, found a(n) %s", ref.Kind).
			Build()
	}
	child, err := st.Iterator()
	if err != nil {
		return nil, false, err
	}
	return child, true, nil
}

// nextFromSource pulls the next unexpanded field expression from a raw or
// template struct body.
func (it *StructIterator) nextFromSource() (FieldExpr, bool, error) {
	if it.rawSrc != nil {
		f, ok, err := it.rawSrc.NextField()
		if err != nil || !ok {
			return FieldExpr{}, false, err
		}
		return it.liftRawField(f)
	}
	fields := it.src.elem.Value.Fields
	for it.tplPos < len(fields) {
		f := &fields[it.tplPos]
		it.tplPos++
		a, err := resolveTemplateExpr(it.ctx, it.src.env, &f.Value)
		if err != nil {
			return FieldExpr{}, false, err
		}
		name := FieldName{ctx: it.ctx, sym: f.Name, hasSym: true}
		e := a.valueExpr()
		if e.IsLiteral() {
			return FieldExpr{Kind: FieldNameValue, Name: name, Value: e.value}, true, nil
		}
		return FieldExpr{Kind: FieldNameMacro, Name: name, Invocation: e.invocation}, true, nil
	}
	return FieldExpr{}, false, nil
}

func (it *StructIterator) liftRawField(f raw.FieldExpr) (FieldExpr, bool, error) {
	switch f.Kind {
	case raw.FieldNameValue:
		return FieldExpr{
			Kind:  FieldNameValue,
			Name:  FieldName{ctx: it.ctx, raw: f.Name},
			Value: it.ctx.NewRawValue(f.Value),
		}, true, nil
	case raw.FieldNameMacro:
		inv, err := it.ctx.LiftInvocation(f.Invocation)
		if err != nil {
			return FieldExpr{}, false, err
		}
		return FieldExpr{
			Kind:       FieldNameMacro,
			Name:       FieldName{ctx: it.ctx, raw: f.Name},
			Invocation: inv,
		}, true, nil
	case raw.FieldEExp:
		inv, err := it.ctx.LiftInvocation(f.Invocation)
		if err != nil {
			return FieldExpr{}, false, err
		}
		return FieldExpr{Kind: FieldEExp, Invocation: inv}, true, nil
	}
	return FieldExpr{}, false, errors.Decoding("raw field expression has unknown kind %d", f.Kind)
}

// nextFromMakeStruct walks the current inlined argument struct, opening
// the next struct-valued argument when one runs out. Non-struct arguments
// are an error.
func (it *StructIterator) nextFromMakeStruct() (Field, bool, error) {
	for {
		if it.child != nil {
			f, ok, err := it.child.Next()
			if err != nil {
				return Field{}, false, err
			}
			if ok {
				return f, true, nil
			}
			it.child = nil
		}
		v, ok, err := it.msVals.next()
		if err != nil || !ok {
			return Field{}, false, err
		}
		ref, err := v.Read()
		if err != nil {
			return Field{}, false, err
		}
		st, err := ref.ExpectStruct()
		if err != nil {
			return Field{}, false, errors.New(errors.PhaseExpand, errors.KindWrongType).
				Macro(macro.SysMakeStruct.String()).
				Detail("arguments must be structs, found a(n) %s", ref.Kind).
				Build()
		}
		child, err := st.Iterator()
		if err != nil {
			return Field{}, false, err
		}
		it.child = child
	}
}

func (it *StructIterator) nextFromMakeField() (Field, bool, error) {
	if it.tplPos > 0 {
		return Field{}, false, nil
	}
	it.tplPos = 1
	return *it.src.mfField, true, nil
}

// Find returns the value of the first field with the given name, or
// ok=false if no field matches. Template-backed structs consult the
// compiled field index and evaluate only the first candidate; other
// sources scan fields in expansion order.
func (s *Struct) Find(name string) (*Value, bool, error) {
	if s.src == structTemplate {
		return s.findIndexed(name)
	}
	it, err := s.Iterator()
	if err != nil {
		return nil, false, err
	}
	for {
		f, ok, err := it.Next()
		if err != nil || !ok {
			return nil, false, err
		}
		match, err := f.Name.TextIs(name)
		if err != nil {
			return nil, false, err
		}
		if match {
			return f.Value, true, nil
		}
	}
}

func (s *Struct) findIndexed(name string) (*Value, bool, error) {
	positions, ok := s.elem.Value.Index[name]
	if !ok || len(positions) == 0 {
		return nil, false, nil
	}
	f := &s.elem.Value.Fields[positions[0]]
	a, err := resolveTemplateExpr(s.ctx, s.env, &f.Value)
	if err != nil {
		return nil, false, err
	}
	e := a.valueExpr()
	if e.IsLiteral() {
		return e.value, true, nil
	}
	// Evaluate just far enough to get one value.
	eval := s.ctx.NewEvaluator()
	x, err := e.invocation.Expand()
	if err != nil {
		return nil, false, err
	}
	if err := eval.Push(x); err != nil {
		return nil, false, err
	}
	v, ok, err := eval.Next()
	if err != nil || !ok {
		return nil, false, err
	}
	return v, true, nil
}

// Get returns the first matching field's value or nil when absent.
func (s *Struct) Get(name string) (*Value, error) {
	v, ok, err := s.Find(name)
	if err != nil || !ok {
		return nil, err
	}
	return v, nil
}

// GetExpected returns the first matching field's value, failing when the
// field is absent.
func (s *Struct) GetExpected(name string) (*Value, error) {
	v, ok, err := s.Find(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.PhaseExpand, errors.KindNotFound).
			Detail("struct has no field named %q", name).Build()
	}
	return v, nil
}
