package text

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/ion"
	"github.com/wippyai/ion-engine/macro"
	"github.com/wippyai/ion-engine/raw"
)

// NewStreamReader returns a reader over the top-level value expressions of
// a text document.
func NewStreamReader(src string) raw.StreamReader {
	return &streamReader{s: newScanner(src)}
}

type streamReader struct {
	s *scanner
}

func (r *streamReader) NextExpr() (raw.ValueExpr, bool, error) {
	t, err := r.s.peek()
	if err != nil {
		return raw.ValueExpr{}, false, err
	}
	if t.kind == tokEOF {
		return raw.ValueExpr{}, false, nil
	}
	e, err := parseValueExpr(r.s)
	if err != nil {
		return raw.ValueExpr{}, false, err
	}
	return e, true, nil
}

// node is a parsed text value. Text input has no lazy spans to defer to,
// so containers hold their parsed children directly.
type node struct {
	typ    ion.Type
	null   bool
	ann    []ion.SymbolToken
	scalar raw.Scalar
	elems  []raw.ValueExpr
	fields []raw.FieldExpr
}

var _ raw.Value = (*node)(nil)

func (n *node) Type() ion.Type { return n.typ }
func (n *node) IsNull() bool   { return n.null }

func (n *node) Annotations() ([]ion.SymbolToken, error) { return n.ann, nil }

func (n *node) ReadScalar() (raw.Scalar, error) {
	if n.typ.IsContainer() {
		return raw.Scalar{}, errors.New(errors.PhaseDecode, errors.KindWrongType).
			Detail("a(n) %s is not a scalar", n.typ).Build()
	}
	return n.scalar, nil
}

func (n *node) Sequence() (raw.SequenceReader, error) {
	if n.typ != ion.List && n.typ != ion.SExp {
		return nil, errors.New(errors.PhaseDecode, errors.KindWrongType).
			Detail("a(n) %s is not a sequence", n.typ).Build()
	}
	return &sliceSeq{exprs: n.elems}, nil
}

func (n *node) Struct() (raw.StructReader, error) {
	if n.typ != ion.Struct {
		return nil, errors.New(errors.PhaseDecode, errors.KindWrongType).
			Detail("a(n) %s is not a struct", n.typ).Build()
	}
	return &sliceStruct{fields: n.fields}, nil
}

type sliceSeq struct {
	exprs []raw.ValueExpr
	pos   int
}

func (s *sliceSeq) NextExpr() (raw.ValueExpr, bool, error) {
	if s.pos >= len(s.exprs) {
		return raw.ValueExpr{}, false, nil
	}
	e := s.exprs[s.pos]
	s.pos++
	return e, true, nil
}

type sliceStruct struct {
	fields []raw.FieldExpr
	pos    int
}

func (s *sliceStruct) NextField() (raw.FieldExpr, bool, error) {
	if s.pos >= len(s.fields) {
		return raw.FieldExpr{}, false, nil
	}
	f := s.fields[s.pos]
	s.pos++
	return f, true, nil
}

// tokenName is a struct field name parsed from text.
type tokenName struct {
	tok ion.SymbolToken
}

func (n tokenName) ReadToken() (ion.SymbolToken, error) { return n.tok, nil }

// eexp is a parsed e-expression with its argument expressions.
type eexp struct {
	id   raw.MacroID
	args []raw.ArgExpr
}

var _ raw.MacroInvocation = (*eexp)(nil)

func (e *eexp) ID() raw.MacroID { return e.id }

func (e *eexp) Arguments() raw.ArgumentReader {
	return &argReader{args: e.args}
}

type argReader struct {
	args []raw.ArgExpr
	pos  int
}

func (r *argReader) Clone() raw.ArgumentReader {
	return &argReader{args: r.args}
}

func (r *argReader) NextArg() (raw.ArgExpr, bool, error) {
	if r.pos >= len(r.args) {
		return raw.ArgExpr{}, false, nil
	}
	a := r.args[r.pos]
	r.pos++
	return a, true, nil
}

// parseValueExpr parses one value or e-expression.
func parseValueExpr(s *scanner) (raw.ValueExpr, error) {
	t, err := s.peek()
	if err != nil {
		return raw.ValueExpr{}, err
	}
	if t.kind == tokEExpOpen {
		inv, err := parseEExp(s)
		if err != nil {
			return raw.ValueExpr{}, err
		}
		return raw.InvocationOf(inv), nil
	}
	v, err := parseValue(s)
	if err != nil {
		return raw.ValueExpr{}, err
	}
	return raw.LiteralOf(v), nil
}

func parseValue(s *scanner) (*node, error) {
	var ann []ion.SymbolToken
	for {
		t, err := s.next()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokSymbol, tokQuotedSymbol:
			// null takes its ".type" suffix before any lookahead; the bare
			// dot is not a token the scanner can peek past.
			if t.kind == tokSymbol && t.text == "null" {
				n, err := symbolNode(s, t)
				if err != nil {
					return nil, err
				}
				n.ann = ann
				return n, nil
			}
			// A symbol followed by :: is an annotation on what follows.
			p, err := s.peek()
			if err != nil {
				return nil, err
			}
			if p.kind == tokDoubleColon {
				if _, err := s.next(); err != nil {
					return nil, err
				}
				ann = append(ann, ion.SymbolText(t.text))
				continue
			}
			n, err := symbolNode(s, t)
			if err != nil {
				return nil, err
			}
			n.ann = ann
			return n, nil
		case tokSymbolID:
			sid, err := strconv.ParseUint(t.text, 10, 32)
			if err != nil {
				return nil, s.errf(t.pos, "invalid symbol ID $%s", t.text)
			}
			p, err := s.peek()
			if err != nil {
				return nil, err
			}
			if p.kind == tokDoubleColon {
				if _, err := s.next(); err != nil {
					return nil, err
				}
				ann = append(ann, ion.SymbolID(uint32(sid)))
				continue
			}
			return &node{typ: ion.Symbol, ann: ann,
				scalar: raw.Scalar{Type: ion.Symbol, Sym: ion.SymbolID(uint32(sid))}}, nil
		case tokString:
			return &node{typ: ion.String, ann: ann,
				scalar: raw.Scalar{Type: ion.String, Text: t.text}}, nil
		case tokNumber:
			n, err := numberNode(s, t)
			if err != nil {
				return nil, err
			}
			n.ann = ann
			return n, nil
		case tokLBracket:
			n, err := parseList(s)
			if err != nil {
				return nil, err
			}
			n.ann = ann
			return n, nil
		case tokLParen:
			n, err := parseSExp(s)
			if err != nil {
				return nil, err
			}
			n.ann = ann
			return n, nil
		case tokLBrace:
			n, err := parseStruct(s)
			if err != nil {
				return nil, err
			}
			n.ann = ann
			return n, nil
		case tokLobOpen:
			n, err := parseLob(s)
			if err != nil {
				return nil, err
			}
			n.ann = ann
			return n, nil
		case tokEOF:
			return nil, errors.Incomplete
		}
		return nil, s.errf(t.pos, "unexpected token where a value was expected")
	}
}

func symbolNode(s *scanner, t token) (*node, error) {
	if t.kind == tokSymbol {
		switch t.text {
		case "null":
			nullType, err := s.takeNullSuffix()
			if err != nil {
				return nil, err
			}
			return &node{typ: nullType, null: true,
				scalar: raw.Scalar{Type: ion.Null, NullType: nullType}}, nil
		case "true":
			return &node{typ: ion.Bool, scalar: raw.Scalar{Type: ion.Bool, Bool: true}}, nil
		case "false":
			return &node{typ: ion.Bool, scalar: raw.Scalar{Type: ion.Bool, Bool: false}}, nil
		case "nan":
			return &node{typ: ion.Float, scalar: raw.Scalar{Type: ion.Float, Float: math.NaN()}}, nil
		}
	}
	return &node{typ: ion.Symbol,
		scalar: raw.Scalar{Type: ion.Symbol, Sym: ion.SymbolText(t.text), Text: t.text}}, nil
}

var nullTypeNames = map[string]ion.Type{
	"null": ion.Null, "bool": ion.Bool, "int": ion.Int, "float": ion.Float,
	"decimal": ion.Decimal, "timestamp": ion.Timestamp, "symbol": ion.Symbol,
	"string": ion.String, "clob": ion.Clob, "blob": ion.Blob,
	"list": ion.List, "sexp": ion.SExp, "struct": ion.Struct,
}

// takeNullSuffix consumes ".type" after a bare null, if present.
func (s *scanner) takeNullSuffix() (ion.Type, error) {
	if s.peeked != nil || s.pos >= len(s.src) || s.src[s.pos] != '.' {
		return ion.Null, nil
	}
	s.pos++
	start := s.pos
	for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
		s.pos++
	}
	name := s.src[start:s.pos]
	t, ok := nullTypeNames[name]
	if !ok {
		return ion.Null, s.errf(start, "invalid null type %q", name)
	}
	return t, nil
}

func numberNode(s *scanner, t token) (*node, error) {
	text := t.text
	switch {
	// Exponent markers decide float and decimal before the '-' timestamp
	// heuristic so negative exponents are not mistaken for date separators.
	case strings.ContainsAny(text, "eE"):
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, s.errf(t.pos, "invalid float %q", text)
		}
		return &node{typ: ion.Float, scalar: raw.Scalar{Type: ion.Float, Float: f}}, nil
	case strings.ContainsAny(text, "dD"):
		d, err := parseDecimal(text)
		if err != nil {
			return nil, s.errf(t.pos, "invalid decimal %q", text)
		}
		return &node{typ: ion.Decimal, scalar: raw.Scalar{Type: ion.Decimal, Dec: d}}, nil
	case strings.ContainsAny(text, "T") || strings.Contains(text[1:], "-"):
		ts, err := parseTimestamp(text)
		if err != nil {
			return nil, s.errf(t.pos, "invalid timestamp %q", text)
		}
		return &node{typ: ion.Timestamp, scalar: raw.Scalar{Type: ion.Timestamp, Time: ts}}, nil
	case strings.Contains(text, "."):
		d, err := parseDecimal(text)
		if err != nil {
			return nil, s.errf(t.pos, "invalid decimal %q", text)
		}
		return &node{typ: ion.Decimal, scalar: raw.Scalar{Type: ion.Decimal, Dec: d}}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, s.errf(t.pos, "invalid int %q", text)
	}
	return &node{typ: ion.Int, scalar: raw.Scalar{Type: ion.Int, Int: n}}, nil
}

func parseDecimal(text string) (ion.Dec, error) {
	mantissa := text
	var exp int64
	if i := strings.IndexAny(text, "dD"); i >= 0 {
		mantissa = text[:i]
		var err error
		if exp, err = strconv.ParseInt(text[i+1:], 10, 32); err != nil {
			return ion.Dec{}, err
		}
	}
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		frac := len(mantissa) - i - 1
		mantissa = mantissa[:i] + mantissa[i+1:]
		exp -= int64(frac)
	}
	coeff, err := strconv.ParseInt(mantissa, 10, 64)
	if err != nil {
		return ion.Dec{}, err
	}
	return ion.NewDec(coeff, int32(exp)), nil
}

func parseTimestamp(text string) (ion.Time, error) {
	layouts := []struct {
		layout    string
		precision ion.TimestampPrecision
		hasOffset bool
	}{
		{"2006-01-02T15:04:05.999999999Z07:00", ion.PrecisionNanosecond, true},
		{"2006-01-02T15:04:05Z07:00", ion.PrecisionSecond, true},
		{"2006-01-02T15:04Z07:00", ion.PrecisionMinute, true},
	}
	hasFraction := strings.Contains(text, ".")
	for _, l := range layouts {
		if (l.precision == ion.PrecisionNanosecond) != hasFraction {
			continue
		}
		if ts, err := time.Parse(l.layout, text); err == nil {
			return ion.NewTimestamp(ts.Year(), ts.Month(), ts.Day(),
				ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(),
				offsetMinutes(ts), l.precision), nil
		}
	}
	trimmed := strings.TrimSuffix(text, "T")
	switch strings.Count(trimmed, "-") - leadingMinus(trimmed) {
	case 0:
		if !strings.HasSuffix(text, "T") {
			break
		}
		year, err := strconv.Atoi(trimmed)
		if err != nil {
			break
		}
		return ion.NewTimestamp(year, 1, 1, 0, 0, 0, 0, 0, ion.PrecisionYear), nil
	case 1:
		if !strings.HasSuffix(text, "T") {
			break
		}
		if ts, err := time.Parse("2006-01", trimmed); err == nil {
			return ion.NewTimestamp(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, 0, ion.PrecisionMonth), nil
		}
	case 2:
		if ts, err := time.Parse("2006-01-02", trimmed); err == nil {
			return ion.Date(ts.Year(), ts.Month(), ts.Day()), nil
		}
	}
	return ion.Time{}, errors.Decoding("unrecognized timestamp layout")
}

func offsetMinutes(t time.Time) int {
	_, secs := t.Zone()
	return secs / 60
}

func leadingMinus(s string) int {
	if strings.HasPrefix(s, "-") {
		return 1
	}
	return 0
}

func parseList(s *scanner) (*node, error) {
	n := &node{typ: ion.List}
	for {
		t, err := s.peek()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokRBracket:
			_, _ = s.next()
			return n, nil
		case tokComma:
			_, _ = s.next()
		case tokEOF:
			return nil, errors.Incomplete
		default:
			e, err := parseValueExpr(s)
			if err != nil {
				return nil, err
			}
			n.elems = append(n.elems, e)
		}
	}
}

func parseSExp(s *scanner) (*node, error) {
	n := &node{typ: ion.SExp}
	for {
		t, err := s.peek()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokRParen:
			_, _ = s.next()
			return n, nil
		case tokEOF:
			return nil, errors.Incomplete
		default:
			e, err := parseValueExpr(s)
			if err != nil {
				return nil, err
			}
			n.elems = append(n.elems, e)
		}
	}
}

func parseStruct(s *scanner) (*node, error) {
	n := &node{typ: ion.Struct}
	for {
		t, err := s.next()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokRBrace:
			return n, nil
		case tokComma:
			continue
		case tokEOF:
			return nil, errors.Incomplete
		case tokEExpOpen:
			inv, err := parseEExpAfterOpen(s)
			if err != nil {
				return nil, err
			}
			n.fields = append(n.fields, raw.FieldExpr{Kind: raw.FieldEExp, Invocation: inv})
		case tokSymbol, tokQuotedSymbol, tokString, tokSymbolID:
			name, err := fieldNameToken(s, t)
			if err != nil {
				return nil, err
			}
			colon, err := s.next()
			if err != nil {
				return nil, err
			}
			if colon.kind != tokColon {
				return nil, s.errf(colon.pos, "expected : after field name")
			}
			f, err := parseFieldValue(s, name)
			if err != nil {
				return nil, err
			}
			n.fields = append(n.fields, f)
		default:
			return nil, s.errf(t.pos, "unexpected token in struct")
		}
	}
}

func fieldNameToken(s *scanner, t token) (tokenName, error) {
	if t.kind == tokSymbolID {
		sid, err := strconv.ParseUint(t.text, 10, 32)
		if err != nil {
			return tokenName{}, s.errf(t.pos, "invalid symbol ID $%s", t.text)
		}
		return tokenName{tok: ion.SymbolID(uint32(sid))}, nil
	}
	return tokenName{tok: ion.SymbolText(t.text)}, nil
}

func parseFieldValue(s *scanner, name tokenName) (raw.FieldExpr, error) {
	t, err := s.peek()
	if err != nil {
		return raw.FieldExpr{}, err
	}
	if t.kind == tokEExpOpen {
		inv, err := parseEExp(s)
		if err != nil {
			return raw.FieldExpr{}, err
		}
		return raw.FieldExpr{Kind: raw.FieldNameMacro, Name: name, Invocation: inv}, nil
	}
	v, err := parseValue(s)
	if err != nil {
		return raw.FieldExpr{}, err
	}
	return raw.FieldExpr{Kind: raw.FieldNameValue, Name: name, Value: v}, nil
}

func parseLob(s *scanner) (*node, error) {
	if err := s.skipSpace(); err != nil {
		return nil, err
	}
	if s.pos < len(s.src) && s.src[s.pos] == '"' {
		t, err := s.scanString()
		if err != nil {
			return nil, err
		}
		if err := s.expectLobClose(); err != nil {
			return nil, err
		}
		return &node{typ: ion.Clob,
			scalar: raw.Scalar{Type: ion.Clob, Bytes: []byte(t.text)}}, nil
	}
	end := strings.Index(s.src[s.pos:], "}}")
	if end < 0 {
		return nil, errors.Incomplete
	}
	payload := strings.Map(dropSpace, s.src[s.pos:s.pos+end])
	s.pos += end + 2
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, s.errf(s.pos, "invalid base64 blob payload")
	}
	return &node{typ: ion.Blob, scalar: raw.Scalar{Type: ion.Blob, Bytes: data}}, nil
}

func (s *scanner) expectLobClose() error {
	if err := s.skipSpace(); err != nil {
		return err
	}
	t, err := s.next()
	if err != nil {
		return err
	}
	if t.kind != tokLobClose {
		return s.errf(t.pos, "expected }} to close lob")
	}
	return nil
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\n', '\r':
		return -1
	}
	return r
}

// parseEExp parses (:target arg...) including the opening token.
func parseEExp(s *scanner) (*eexp, error) {
	t, err := s.next()
	if err != nil {
		return nil, err
	}
	if t.kind != tokEExpOpen {
		return nil, s.errf(t.pos, "expected (: to open an e-expression")
	}
	return parseEExpAfterOpen(s)
}

func parseEExpAfterOpen(s *scanner) (*eexp, error) {
	target, err := s.next()
	if err != nil {
		return nil, err
	}
	inv := &eexp{}
	switch target.kind {
	case tokSymbol, tokQuotedSymbol:
		inv.id = raw.MacroID{ByName: true, Name: target.text}
	case tokNumber:
		addr, err := strconv.ParseUint(target.text, 10, 32)
		if err != nil {
			return nil, s.errf(target.pos, "invalid macro address %q", target.text)
		}
		inv.id = raw.MacroID{Address: macro.Address(addr)}
	default:
		return nil, s.errf(target.pos, "expected a macro name or address")
	}
	for {
		t, err := s.peek()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokRParen:
			_, _ = s.next()
			return inv, nil
		case tokEOF:
			return nil, errors.Incomplete
		case tokGroupOpen:
			_, _ = s.next()
			group, err := parseArgGroup(s)
			if err != nil {
				return nil, err
			}
			inv.args = append(inv.args, raw.ArgExpr{Group: group})
		case tokEExpOpen:
			nested, err := parseEExp(s)
			if err != nil {
				return nil, err
			}
			inv.args = append(inv.args, raw.ArgExpr{Invocation: nested})
		default:
			v, err := parseValue(s)
			if err != nil {
				return nil, err
			}
			inv.args = append(inv.args, raw.ArgExpr{Literal: v})
		}
	}
}

func parseArgGroup(s *scanner) (raw.ArgumentReader, error) {
	var args []raw.ArgExpr
	for {
		t, err := s.peek()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokRParen:
			_, _ = s.next()
			return &argReader{args: args}, nil
		case tokEOF:
			return nil, errors.Incomplete
		case tokEExpOpen:
			nested, err := parseEExp(s)
			if err != nil {
				return nil, err
			}
			args = append(args, raw.ArgExpr{Invocation: nested})
		default:
			v, err := parseValue(s)
			if err != nil {
				return nil, err
			}
			args = append(args, raw.ArgExpr{Literal: v})
		}
	}
}
