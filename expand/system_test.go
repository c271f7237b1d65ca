package expand_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/expand"
	"github.com/wippyai/ion-engine/ion"
)

// expandErr pushes the invocation and returns the first error the
// evaluator reports, from either Expand or Next.
func expandErr(t *testing.T, ctx *expand.Context, src string) error {
	t.Helper()
	e := liftOne(t, ctx, src)
	x, err := e.Invocation().Expand()
	if err != nil {
		return err
	}
	eval := ctx.NewEvaluator()
	if err := eval.Push(x); err != nil {
		return err
	}
	for {
		_, ok, err := eval.Next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

func TestSystemDefault(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"primary non-empty", `(:default 1 9)`, []string{"1"}},
		{"primary empty", `(:default (:none) 9)`, []string{"9"}},
		{"primary fans out", `(:default (:values 1 2) 9)`, []string{"1", "2"}},
		{"fallback fans out", `(:default (:none) (:values 8 9))`, []string{"8", "9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := expand.NewContext(nil, nil)
			checkValues(t, drainValues(t, ctx, liftOne(t, ctx, tt.src)), tt.want)
		})
	}
}

func TestSystemDefaultArity(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	if err := expandErr(t, ctx, `(:default 1)`); !errors.IsKind(err, errors.KindArity) {
		t.Fatalf("one argument: got %v, want arity error", err)
	}
	if err := expandErr(t, ctx, `(:default 1 2 3)`); !errors.IsKind(err, errors.KindArity) {
		t.Fatalf("three arguments: got %v, want arity error", err)
	}
}

func TestSystemRepeat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"three times", `(:repeat 3 7)`, []string{"7", "7", "7"}},
		{"zero times", `(:repeat 0 7)`, nil},
		{"multi-value body", `(:repeat 2 (:values a b))`, []string{"a", "b", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := expand.NewContext(nil, nil)
			checkValues(t, drainValues(t, ctx, liftOne(t, ctx, tt.src)), tt.want)
		})
	}
}

func TestSystemRepeatNegativeCount(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	if err := expandErr(t, ctx, `(:repeat -1 7)`); !errors.IsKind(err, errors.KindWrongType) {
		t.Fatalf("got %v, want wrong-type error", err)
	}
}

func TestSystemDelta(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	got := drainValues(t, ctx, liftOne(t, ctx, `(:delta 1 2 3 -10)`))
	checkValues(t, got, []string{"1", "3", "6", "-4"})
}

func TestSystemSum(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	got := drainValues(t, ctx, liftOne(t, ctx, `(:sum 2 3)`))
	checkValues(t, got, []string{"5"})

	if err := expandErr(t, ctx, `(:sum 1)`); !errors.IsKind(err, errors.KindArity) {
		t.Fatalf("one argument: got %v, want arity error", err)
	}
	if err := expandErr(t, ctx, `(:sum 1 2 3)`); !errors.IsKind(err, errors.KindArity) {
		t.Fatalf("three arguments: got %v, want arity error", err)
	}
	if err := expandErr(t, ctx, `(:sum 1 "x")`); !errors.IsKind(err, errors.KindWrongType) {
		t.Fatalf("string argument: got %v, want wrong-type error", err)
	}
}

func TestSystemAnnotate(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:annotate (:: "a" b) 5)`))
	ann, err := v.Annotations()
	if err != nil {
		t.Fatalf("annotations: %v", err)
	}
	if len(ann) != 2 || !ann[0].TextEquals("a") || !ann[1].TextEquals("b") {
		t.Fatalf("annotations: got %v", ann)
	}
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ref.Kind != ion.Int || ref.Int != 5 {
		t.Fatalf("target: got %s", ref.String())
	}
}

func TestSystemAnnotateSingleAnnotation(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:annotate "only" hello)`))
	ann, err := v.Annotations()
	if err != nil {
		t.Fatalf("annotations: %v", err)
	}
	if len(ann) != 1 || !ann[0].TextEquals("only") {
		t.Fatalf("annotations: got %v", ann)
	}
}

func TestSystemMakeString(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"concat", `(:make_string "foo" bar "baz")`, `"foobarbaz"`},
		{"empty", `(:make_string)`, `""`},
		{"nested", `(:make_string (:values "a" "b"))`, `"ab"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := expand.NewContext(nil, nil)
			checkValues(t, drainValues(t, ctx, liftOne(t, ctx, tt.src)), []string{tt.want})
		})
	}
}

func TestSystemMakeSymbol(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:make_symbol "he" "llo")`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ref.Kind != ion.Symbol || !ref.Sym.TextEquals("hello") {
		t.Fatalf("got %s, want hello", ref.String())
	}
}

func TestSystemMakeTextWrongType(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	if err := expandErr(t, ctx, `(:make_string "a" 1)`); !errors.IsKind(err, errors.KindWrongType) {
		t.Fatalf("got %v, want wrong-type error", err)
	}
}

func TestSystemMakeBlob(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:make_blob {{aGk=}} {{aGk=}})`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ref.Kind != ion.Blob || !bytes.Equal(ref.Bytes, []byte("hihi")) {
		t.Fatalf("got %s %q", ref.Kind, ref.Bytes)
	}
}

func TestSystemMakeDecimal(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:make_decimal 123 -2)`))
	ref, err := v.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ref.Kind != ion.Decimal || !ref.Dec.Equal(ion.NewDec(123, -2)) {
		t.Fatalf("got %s", ref.String())
	}

	if err := expandErr(t, ctx, `(:make_decimal 123)`); !errors.IsKind(err, errors.KindArity) {
		t.Fatalf("one argument: got %v, want arity error", err)
	}
}

func TestSystemMakeTimestamp(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ion.TimestampPrecision
	}{
		{"year", `(:make_timestamp 2024)`, ion.PrecisionYear},
		{"month", `(:make_timestamp 2024 6)`, ion.PrecisionMonth},
		{"day", `(:make_timestamp 2024 6 14)`, ion.PrecisionDay},
		{"minute", `(:make_timestamp 2024 6 14 9 30)`, ion.PrecisionMinute},
		{"second", `(:make_timestamp 2024 6 14 9 30 15)`, ion.PrecisionSecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := expand.NewContext(nil, nil)
			v := evalOne(t, ctx, liftOne(t, ctx, tt.src))
			ref, err := v.Read()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if ref.Kind != ion.Timestamp {
				t.Fatalf("got %v, want timestamp", ref.Kind)
			}
			if got := ref.Time.Precision(); got != tt.want {
				t.Fatalf("precision: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSystemMakeTimestampBadArity(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	// Hour without minute is not a representable precision.
	if err := expandErr(t, ctx, `(:make_timestamp 2024 6 14 9)`); !errors.IsKind(err, errors.KindArity) {
		t.Fatalf("got %v, want arity error", err)
	}
}

func TestSystemMakeField(t *testing.T) {
	ctx := expand.NewContext(nil, nil)
	v := evalOne(t, ctx, liftOne(t, ctx, `(:make_field k 7)`))
	st := structOf(t, v)
	checkFields(t, drainFields(t, st), []fieldPair{{"k", "7"}})
}

func TestSystemDirectivesUnsupportedAsValues(t *testing.T) {
	for _, src := range []string{
		`(:parse_ion "")`,
		`(:set_symbols)`,
		`(:add_symbols)`,
		`(:set_macros)`,
		`(:add_macros)`,
		`(:use "mod")`,
	} {
		ctx := expand.NewContext(nil, nil)
		e := liftOne(t, ctx, src)
		if _, err := e.Invocation().Expand(); !errors.IsKind(err, errors.KindUnsupported) {
			t.Errorf("%s: got %v, want unsupported error", src, err)
		}
	}
}
