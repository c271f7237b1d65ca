package text_test

import (
	"bytes"
	"testing"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/raw"
	"github.com/wippyai/ion-engine/text"
)

// scalarOf parses src and reads its single top-level value as a scalar.
func scalarOf(t *testing.T, src string) raw.Scalar {
	t.Helper()
	v := literalOf(t, src)
	s, err := v.ReadScalar()
	if err != nil {
		t.Fatalf("read scalar of %q: %v", src, err)
	}
	return s
}

func literalOf(t *testing.T, src string) raw.Value {
	t.Helper()
	e, ok, err := text.NewStreamReader(src).NextExpr()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if !ok {
		t.Fatalf("parse %q: no expression", src)
	}
	if !e.IsLiteral() {
		t.Fatalf("parse %q: not a literal", src)
	}
	return e.Literal
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, s raw.Scalar)
	}{
		{"int", "42", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Int || s.Int != 42 {
				t.Fatalf("got %+v", s)
			}
		}},
		{"negative int", "-7", func(t *testing.T, s raw.Scalar) {
			if s.Int != -7 {
				t.Fatalf("got %+v", s)
			}
		}},
		{"bool", "true", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Bool || !s.Bool {
				t.Fatalf("got %+v", s)
			}
		}},
		{"float", "1.5e0", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Float || s.Float != 1.5 {
				t.Fatalf("got %+v", s)
			}
		}},
		{"float negative exponent", "25e-1", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Float || s.Float != 2.5 {
				t.Fatalf("got %+v", s)
			}
		}},
		{"decimal point", "1.23", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Decimal || !s.Dec.Equal(ion.NewDec(123, -2)) {
				t.Fatalf("got %+v", s)
			}
		}},
		{"decimal exponent", "5d-1", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Decimal || !s.Dec.Equal(ion.NewDec(5, -1)) {
				t.Fatalf("got %+v", s)
			}
		}},
		{"string", `"hello"`, func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.String || s.Text != "hello" {
				t.Fatalf("got %+v", s)
			}
		}},
		{"string escapes", `"a\nb\"c"`, func(t *testing.T, s raw.Scalar) {
			if s.Text != "a\nb\"c" {
				t.Fatalf("got %q", s.Text)
			}
		}},
		{"symbol", "hello", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Symbol || !s.Sym.TextEquals("hello") {
				t.Fatalf("got %+v", s)
			}
		}},
		{"quoted symbol", "'two words'", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Symbol || !s.Sym.TextEquals("two words") {
				t.Fatalf("got %+v", s)
			}
		}},
		{"symbol id", "$12", func(t *testing.T, s raw.Scalar) {
			sid, ok := s.Sym.SID()
			if s.Type != ion.Symbol || !ok || sid != 12 {
				t.Fatalf("got %+v", s)
			}
		}},
		{"untyped null", "null", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Null || s.NullType != ion.Null {
				t.Fatalf("got %+v", s)
			}
		}},
		{"typed null", "null.int", func(t *testing.T, s raw.Scalar) {
			if s.Type != ion.Null || s.NullType != ion.Int {
				t.Fatalf("got %+v", s)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, scalarOf(t, tt.src))
		})
	}
}

func TestParseTimestamps(t *testing.T) {
	tests := []struct {
		src  string
		want ion.Time
	}{
		{"2024T", ion.NewTimestamp(2024, 1, 1, 0, 0, 0, 0, 0, ion.PrecisionYear)},
		{"2024-06T", ion.NewTimestamp(2024, 6, 1, 0, 0, 0, 0, 0, ion.PrecisionMonth)},
		{"2024-06-14", ion.Date(2024, 6, 14)},
		{"2024-06-14T09:30Z", ion.NewTimestamp(2024, 6, 14, 9, 30, 0, 0, 0, ion.PrecisionMinute)},
		{"2024-06-14T09:30:15-05:00", ion.NewTimestamp(2024, 6, 14, 9, 30, 15, 0, -300, ion.PrecisionSecond)},
		{"2024-06-14T09:30:15.5Z", ion.NewTimestamp(2024, 6, 14, 9, 30, 15, 500000000, 0, ion.PrecisionNanosecond)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s := scalarOf(t, tt.src)
			if s.Type != ion.Timestamp {
				t.Fatalf("type: got %v", s.Type)
			}
			if !s.Time.Equal(tt.want) {
				t.Fatalf("got %v, want %v", s.Time, tt.want)
			}
		})
	}
}

func TestParseLobs(t *testing.T) {
	s := scalarOf(t, "{{aGVsbG8=}}")
	if s.Type != ion.Blob || !bytes.Equal(s.Bytes, []byte("hello")) {
		t.Fatalf("blob: got %+v", s)
	}
	s = scalarOf(t, `{{"raw text"}}`)
	if s.Type != ion.Clob || !bytes.Equal(s.Bytes, []byte("raw text")) {
		t.Fatalf("clob: got %+v", s)
	}
}

func TestParseAnnotations(t *testing.T) {
	v := literalOf(t, "a::'b c'::5")
	ann, err := v.Annotations()
	if err != nil {
		t.Fatalf("annotations: %v", err)
	}
	if len(ann) != 2 || !ann[0].TextEquals("a") || !ann[1].TextEquals("b c") {
		t.Fatalf("got %v", ann)
	}
	s, err := v.ReadScalar()
	if err != nil || s.Int != 5 {
		t.Fatalf("wrapped value: %+v err=%v", s, err)
	}
}

func TestParseContainers(t *testing.T) {
	v := literalOf(t, "[1, sym, (nested 2)]")
	if v.Type() != ion.List {
		t.Fatalf("type: got %v", v.Type())
	}
	seq, err := v.Sequence()
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	var kinds []ion.Type
	for {
		e, ok, err := seq.NextExpr()
		if err != nil {
			t.Fatalf("element: %v", err)
		}
		if !ok {
			break
		}
		kinds = append(kinds, e.Literal.Type())
	}
	want := []ion.Type{ion.Int, ion.Symbol, ion.SExp}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("element %d: got %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestParseStructFields(t *testing.T) {
	v := literalOf(t, `{a:1, "quoted name":2, $3:3}`)
	st, err := v.Struct()
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	var names []string
	for {
		f, ok, err := st.NextField()
		if err != nil {
			t.Fatalf("field: %v", err)
		}
		if !ok {
			break
		}
		if f.Kind != raw.FieldNameValue {
			t.Fatalf("kind: got %v", f.Kind)
		}
		tok, err := f.Name.ReadToken()
		if err != nil {
			t.Fatalf("name: %v", err)
		}
		names = append(names, tok.String())
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "quoted name" {
		t.Fatalf("names: got %v", names)
	}
}

func TestParseEExp(t *testing.T) {
	e, ok, err := text.NewStreamReader(`(:make_string "a" bare)`).NextExpr()
	if err != nil || !ok {
		t.Fatalf("parse: ok=%v err=%v", ok, err)
	}
	if e.IsLiteral() {
		t.Fatal("expected an invocation")
	}
	id := e.Invocation.ID()
	if !id.ByName || id.Name != "make_string" {
		t.Fatalf("id: got %+v", id)
	}
	args := e.Invocation.Arguments()
	var n int
	for {
		a, ok, err := args.NextArg()
		if err != nil {
			t.Fatalf("arg: %v", err)
		}
		if !ok {
			break
		}
		if a.Literal == nil {
			t.Fatalf("arg %d: not a literal", n)
		}
		n++
	}
	if n != 2 {
		t.Fatalf("arg count: got %d, want 2", n)
	}
}

func TestParseEExpByAddress(t *testing.T) {
	e, ok, err := text.NewStreamReader(`(:3 1)`).NextExpr()
	if err != nil || !ok {
		t.Fatalf("parse: ok=%v err=%v", ok, err)
	}
	id := e.Invocation.ID()
	if id.ByName || id.Address != 3 {
		t.Fatalf("id: got %+v", id)
	}
}

func TestParseArgGroup(t *testing.T) {
	e, ok, err := text.NewStreamReader(`(:values (:: 1 2) 3)`).NextExpr()
	if err != nil || !ok {
		t.Fatalf("parse: ok=%v err=%v", ok, err)
	}
	args := e.Invocation.Arguments()
	a, ok, err := args.NextArg()
	if err != nil || !ok {
		t.Fatalf("first arg: ok=%v err=%v", ok, err)
	}
	if a.Group == nil {
		t.Fatal("first arg is not a group")
	}
	var n int
	for {
		g, ok, err := a.Group.NextArg()
		if err != nil {
			t.Fatalf("group member: %v", err)
		}
		if !ok {
			break
		}
		if g.Literal == nil {
			t.Fatal("group member is not a literal")
		}
		n++
	}
	if n != 2 {
		t.Fatalf("group size: got %d, want 2", n)
	}
	a, ok, err = args.NextArg()
	if err != nil || !ok || a.Literal == nil {
		t.Fatalf("second arg: ok=%v err=%v", ok, err)
	}
}

func TestParseNestedEExpArgument(t *testing.T) {
	e, ok, err := text.NewStreamReader(`(:values (:none))`).NextExpr()
	if err != nil || !ok {
		t.Fatalf("parse: ok=%v err=%v", ok, err)
	}
	a, ok, err := e.Invocation.Arguments().NextArg()
	if err != nil || !ok {
		t.Fatalf("arg: ok=%v err=%v", ok, err)
	}
	if a.Invocation == nil {
		t.Fatal("arg is not a nested invocation")
	}
	if id := a.Invocation.ID(); !id.ByName || id.Name != "none" {
		t.Fatalf("nested id: got %+v", id)
	}
}

func TestParseComments(t *testing.T) {
	src := `
// leading comment
1 /* inline */ 2
`
	r := text.NewStreamReader(src)
	for i, want := range []int64{1, 2} {
		e, ok, err := r.NextExpr()
		if err != nil || !ok {
			t.Fatalf("value %d: ok=%v err=%v", i, ok, err)
		}
		s, err := e.Literal.ReadScalar()
		if err != nil || s.Int != want {
			t.Fatalf("value %d: %+v err=%v", i, s, err)
		}
	}
	if _, ok, err := r.NextExpr(); ok || err != nil {
		t.Fatalf("expected exhausted stream, got ok=%v err=%v", ok, err)
	}
}

func TestParseUnterminatedInputs(t *testing.T) {
	for _, src := range []string{
		`"no closing quote`,
		`[1, 2`,
		`{a:1`,
		`/* unterminated`,
		`{{aGk=`,
	} {
		t.Run(src, func(t *testing.T) {
			r := text.NewStreamReader(src)
			var err error
			for {
				var ok bool
				if _, ok, err = r.NextExpr(); !ok || err != nil {
					break
				}
			}
			if !errors.IsIncomplete(err) {
				t.Fatalf("got %v, want incomplete", err)
			}
		})
	}
}

func TestParseInvalidNullType(t *testing.T) {
	_, _, err := text.NewStreamReader("null.nope").NextExpr()
	if err == nil {
		t.Fatal("expected an error")
	}
}
