package expand

import (
	"github.com/wippyai/ion-engine/errors"
)

// FieldExprIterator walks a struct for introspection tooling: it yields
// each source field expression unexpanded, followed by the ordinary
// expanded fields that expression produces. It runs the same state machine
// as StructIterator.
type FieldExprIterator struct {
	ctx   *Context
	inner *StructIterator

	pendingName FieldName
	fail        error
}

// FieldExprs returns an introspection iterator over the struct. Only raw
// and template-backed structs carry unexpanded field expressions; for
// constructed structs every yielded expression is an expanded field.
func (s *Struct) FieldExprs() (*FieldExprIterator, error) {
	inner, err := s.Iterator()
	if err != nil {
		return nil, err
	}
	return &FieldExprIterator{ctx: s.ctx, inner: inner}, nil
}

// Next returns the next field expression. ok=false means exhausted; after
// an error the iterator keeps returning that error.
func (it *FieldExprIterator) Next() (FieldExpr, bool, error) {
	if it.fail != nil {
		return FieldExpr{}, false, it.fail
	}
	f, ok, err := it.next()
	if err != nil {
		it.fail = err
	}
	return f, ok, err
}

func (it *FieldExprIterator) next() (FieldExpr, bool, error) {
	in := it.inner
	for {
		switch in.state {
		case stateExpandingValue:
			v, ok, err := in.eval.Next()
			if err != nil {
				return FieldExpr{}, false, err
			}
			if !ok {
				in.state = stateReadingField
				continue
			}
			f := FieldExpr{Kind: FieldNameValue, Name: it.pendingName, Value: v}
			if in.eval.IsEmpty() {
				in.state = stateReadingField
			}
			return f, true, nil

		case stateInliningStruct:
			if in.child != nil {
				cf, ok, err := in.child.Next()
				if err != nil {
					return FieldExpr{}, false, err
				}
				if ok {
					return FieldExpr{Kind: FieldNameValue, Name: cf.Name, Value: cf.Value}, true, nil
				}
			}
			child, ok, err := in.nextStructFromMacro()
			if err != nil {
				return FieldExpr{}, false, err
			}
			if ok {
				in.child = child
				continue
			}
			in.child = nil
			in.state = stateReadingField

		default:
			if in.src.src == structMakeStruct || in.src.src == structMakeField {
				f, ok, err := in.Next()
				if err != nil || !ok {
					return FieldExpr{}, false, err
				}
				return FieldExpr{Kind: FieldNameValue, Name: f.Name, Value: f.Value}, true, nil
			}
			f, ok, err := in.nextFromSource()
			if err != nil || !ok {
				return FieldExpr{}, false, err
			}
			switch f.Kind {
			case FieldNameValue:
				return f, true, nil
			case FieldNameMacro:
				// Yield the unexpanded expression; its products follow.
				x, err := f.Invocation.Expand()
				if err != nil {
					return FieldExpr{}, false, err
				}
				if err := in.eval.Push(x); err != nil {
					return FieldExpr{}, false, err
				}
				it.pendingName = f.Name
				in.state = stateExpandingValue
				return f, true, nil
			case FieldEExp:
				x, err := f.Invocation.Expand()
				if err != nil {
					return FieldExpr{}, false, err
				}
				if err := in.eval.Push(x); err != nil {
					return FieldExpr{}, false, err
				}
				in.child = nil
				in.state = stateInliningStruct
				return f, true, nil
			}
			return FieldExpr{}, false, errors.Expansion("field expression has unknown kind %d", f.Kind)
		}
	}
}
