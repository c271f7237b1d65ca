package expand_test

import (
	"testing"

	"github.com/wippyai/ion-engine/expand"
)

type exprStep struct {
	kind expand.FieldExprKind
	name string // empty for e-exps in field name position
}

// drainFieldExprs walks the tooling iterator, recording each step's kind
// and (where present) field name.
func drainFieldExprs(t *testing.T, st *expand.Struct) []exprStep {
	t.Helper()
	it, err := st.FieldExprs()
	if err != nil {
		t.Fatalf("field exprs: %v", err)
	}
	var out []exprStep
	for {
		f, ok, err := it.Next()
		if err != nil {
			t.Fatalf("step %d: %v", len(out), err)
		}
		if !ok {
			return out
		}
		step := exprStep{kind: f.Kind}
		if f.Kind != expand.FieldEExp {
			tok, err := f.Name.Read()
			if err != nil {
				t.Fatalf("step %d name: %v", len(out), err)
			}
			step.name = tok.String()
		}
		out = append(out, step)
	}
}

func checkSteps(t *testing.T, got, want []exprStep) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("step count: got %d (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFieldExprsPlainStruct(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	st := structOf(t, evalOne(t, ctx, liftOne(t, ctx, `{a:1, b:2}`)))
	checkSteps(t, drainFieldExprs(t, st), []exprStep{
		{expand.FieldNameValue, "a"},
		{expand.FieldNameValue, "b"},
	})
}

func TestFieldExprsValueMacroYieldsExprThenProducts(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	st := structOf(t, evalOne(t, ctx, liftOne(t, ctx,
		`{a:1, bar:(:values 1 2 3), z:9}`)))
	checkSteps(t, drainFieldExprs(t, st), []exprStep{
		{expand.FieldNameValue, "a"},
		{expand.FieldNameMacro, "bar"},
		{expand.FieldNameValue, "bar"},
		{expand.FieldNameValue, "bar"},
		{expand.FieldNameValue, "bar"},
		{expand.FieldNameValue, "z"},
	})
}

func TestFieldExprsEExpYieldsExprThenInlinedFields(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	st := structOf(t, evalOne(t, ctx, liftOne(t, ctx,
		`{a:1, (:make_struct {x:5} {y:6}), z:9}`)))
	checkSteps(t, drainFieldExprs(t, st), []exprStep{
		{expand.FieldNameValue, "a"},
		{expand.FieldEExp, ""},
		{expand.FieldNameValue, "x"},
		{expand.FieldNameValue, "y"},
		{expand.FieldNameValue, "z"},
	})
}

func TestFieldExprsUnexpandedInvocationIsInspectable(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	st := structOf(t, evalOne(t, ctx, liftOne(t, ctx, `{bar:(:values 1)}`)))
	it, err := st.FieldExprs()
	if err != nil {
		t.Fatalf("field exprs: %v", err)
	}
	f, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("first step: ok=%v err=%v", ok, err)
	}
	if f.Kind != expand.FieldNameMacro {
		t.Fatalf("kind: got %v, want FieldNameMacro", f.Kind)
	}
	if f.Invocation == nil || f.Invocation.Name() != "values" {
		t.Fatalf("invocation: got %+v", f.Invocation)
	}
}
