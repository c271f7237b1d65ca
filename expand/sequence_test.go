package expand_test

import (
	"testing"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/expand"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
)

// drainSequence iterates a list or sexp value to completion, rendering
// each element.
func drainSequence(t *testing.T, v *expand.Value) []string {
	t.Helper()
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	it, err := ref.ExpectSequence()
	if err != nil {
		t.Fatalf("expect sequence: %v", err)
	}
	var out []string
	for {
		el, ok, err := it.Next()
		if err != nil {
			t.Fatalf("element %d: %v", len(out), err)
		}
		if !ok {
			return out
		}
		elRef, err := el.Read()
		if err != nil {
			t.Fatalf("read element %d: %v", len(out), err)
		}
		out = append(out, elRef.String())
	}
}

func TestSequencePlainList(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `[1, "two", three]`))
	checkValues(t, drainSequence(t, v), []string{"1", `"two"`, "three"})
}

func TestSequenceNestedInvocationSplices(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `[1, (:values 2 3), 4]`))
	checkValues(t, drainSequence(t, v), []string{"1", "2", "3", "4"})
}

func TestSequenceEmptySpliceDisappears(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(a (:none) b)`))
	checkValues(t, drainSequence(t, v), []string{"a", "b"})
}

func TestSequenceIteratorRestarts(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `[1, (:values 2 3)]`))
	checkValues(t, drainSequence(t, v), []string{"1", "2", "3"})
	checkValues(t, drainSequence(t, v), []string{"1", "2", "3"})
}

func TestSequenceTemplateListWithGroupParam(t *testing.T) {
	macros := macro.NewTable()
	macros.Install(macro.NewTemplate("wrap").
		Param("items", macro.ZeroOrMore).
		Body(macro.ListOf(macro.Sym("head"), macro.Param(0))).
		MustCompile())

	ctx := expand.NewContext(macros, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:wrap (:: 1 2 3))`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ref.Kind != ion.List {
		t.Fatalf("got %v, want list", ref.Kind)
	}
	checkValues(t, drainSequence(t, v), []string{"head", "1", "2", "3"})
}

func TestSequenceTemplateEmptyBinding(t *testing.T) {
	macros := macro.NewTable()
	macros.Install(macro.NewTemplate("wrap").
		Param("items", macro.ZeroOrMore).
		Body(macro.ListOf(macro.Param(0))).
		MustCompile())

	ctx := expand.NewContext(macros, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:wrap)`))
	checkValues(t, drainSequence(t, v), nil)
}

func TestSequenceMakeListConcatenates(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:make_list [1, 2] [] (3 4))`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ref.Kind != ion.List {
		t.Fatalf("got %v, want list", ref.Kind)
	}
	checkValues(t, drainSequence(t, v), []string{"1", "2", "3", "4"})
}

func TestSequenceMakeSExpConcatenates(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:make_sexp (a) [b, c])`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ref.Kind != ion.SExp {
		t.Fatalf("got %v, want sexp", ref.Kind)
	}
	checkValues(t, drainSequence(t, v), []string{"a", "b", "c"})
}

func TestSequenceMakeListNonSequenceArgumentFails(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:make_list [1] 2)`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	it, err := ref.ExpectSequence()
	if err != nil {
		t.Fatalf("expect sequence: %v", err)
	}
	sawError := false
	for i := 0; i < 8; i++ {
		_, ok, err := it.Next()
		if err != nil {
			if !errors.IsKind(err, errors.KindWrongType) {
				t.Fatalf("got %v, want wrong-type error", err)
			}
			sawError = true
			break
		}
		if !ok {
			break
		}
	}
	if !sawError {
		t.Fatal("non-sequence argument did not fail")
	}
	// A failed iterator stays failed.
	if _, _, err := it.Next(); !errors.IsKind(err, errors.KindWrongType) {
		t.Fatalf("second poll: got %v, want the same terminal error", err)
	}
}

func TestSequenceFlattenSplices(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	got := drainValues(t, ctx, liftOne(t, ctx, `(:flatten [1, 2] (3) [])`))
	checkValues(t, got, []string{"1", "2", "3"})
}

func TestSequenceFlattenNonSequenceFails(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	e := liftOne(t, ctx, `(:flatten [1] "nope")`)
	eval := ctx.NewEvaluator()
	x, err := e.Invocation().Expand()
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if err := eval.Push(x); err != nil {
		t.Fatalf("push: %v", err)
	}
	sawError := false
	for i := 0; i < 8; i++ {
		_, ok, err := eval.Next()
		if err != nil {
			if !errors.IsKind(err, errors.KindWrongType) {
				t.Fatalf("got %v, want wrong-type error", err)
			}
			sawError = true
			break
		}
		if !ok {
			break
		}
	}
	if !sawError {
		t.Fatal("flatten over a string did not fail")
	}
}

func TestSequenceAnnotationsSurvive(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `plan::steps::[1]`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ann := ref.List.Annotations()
	if len(ann) != 2 || !ann[0].TextEquals("plan") || !ann[1].TextEquals("steps") {
		t.Fatalf("annotations: got %v", ann)
	}
}

func TestSequenceAnnotateMacroReachesContainer(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:annotate "deep" inner::[1])`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ann := ref.List.Annotations()
	if len(ann) != 2 || !ann[0].TextEquals("deep") || !ann[1].TextEquals("inner") {
		t.Fatalf("annotations: got %v", ann)
	}
	got := drainSequence(t, v)
	checkValues(t, got, []string{"1"})
}
