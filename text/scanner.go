package text

import (
	"strings"
	"unicode/utf8"

	"github.com/wippyai/ion-engine/errors"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokSymbol
	tokQuotedSymbol
	tokSymbolID // $123
	tokString
	tokNumber // int, float, decimal, or timestamp; classified by the parser
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokEExpOpen  // (:
	tokGroupOpen // (::
	tokLobOpen   // {{
	tokLobClose  // }}
	tokComma
	tokColon
	tokDoubleColon
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// scanner tokenizes text input. It holds one token of lookahead.
type scanner struct {
	src    string
	pos    int
	peeked *token
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

func (s *scanner) errf(pos int, format string, args ...any) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Offset(pos).Detail(format, args...).Build()
}

func (s *scanner) peek() (token, error) {
	if s.peeked == nil {
		t, err := s.scan()
		if err != nil {
			return token{}, err
		}
		s.peeked = &t
	}
	return *s.peeked, nil
}

func (s *scanner) next() (token, error) {
	if s.peeked != nil {
		t := *s.peeked
		s.peeked = nil
		return t, nil
	}
	return s.scan()
}

func (s *scanner) skipSpace() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				return errors.Incomplete
			}
			s.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

func (s *scanner) scan() (token, error) {
	if err := s.skipSpace(); err != nil {
		return token{}, err
	}
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, pos: s.pos}, nil
	}
	start := s.pos
	c := s.src[s.pos]
	switch {
	case c == '[':
		s.pos++
		return token{kind: tokLBracket, pos: start}, nil
	case c == ']':
		s.pos++
		return token{kind: tokRBracket, pos: start}, nil
	case c == '{':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == '{' {
			s.pos += 2
			return token{kind: tokLobOpen, pos: start}, nil
		}
		s.pos++
		return token{kind: tokLBrace, pos: start}, nil
	case c == '}':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == '}' {
			s.pos += 2
			return token{kind: tokLobClose, pos: start}, nil
		}
		s.pos++
		return token{kind: tokRBrace, pos: start}, nil
	case c == '(':
		if s.pos+2 < len(s.src) && s.src[s.pos+1] == ':' && s.src[s.pos+2] == ':' {
			s.pos += 3
			return token{kind: tokGroupOpen, pos: start}, nil
		}
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == ':' {
			s.pos += 2
			return token{kind: tokEExpOpen, pos: start}, nil
		}
		s.pos++
		return token{kind: tokLParen, pos: start}, nil
	case c == ')':
		s.pos++
		return token{kind: tokRParen, pos: start}, nil
	case c == ',':
		s.pos++
		return token{kind: tokComma, pos: start}, nil
	case c == ':':
		if s.pos+1 < len(s.src) && s.src[s.pos+1] == ':' {
			s.pos += 2
			return token{kind: tokDoubleColon, pos: start}, nil
		}
		s.pos++
		return token{kind: tokColon, pos: start}, nil
	case c == '"':
		return s.scanString()
	case c == '\'':
		return s.scanQuotedSymbol()
	case c == '$' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1]):
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
		return token{kind: tokSymbolID, text: s.src[start+1 : s.pos], pos: start}, nil
	case isDigit(c) || c == '-' || c == '+':
		return s.scanNumber()
	case isIdentStart(c):
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		return token{kind: tokSymbol, text: s.src[start:s.pos], pos: start}, nil
	}
	return token{}, s.errf(start, "unexpected character %q", rune(c))
}

func (s *scanner) scanString() (token, error) {
	start := s.pos
	s.pos++
	text, err := s.scanQuotedText('"')
	if err != nil {
		return token{}, err
	}
	return token{kind: tokString, text: text, pos: start}, nil
}

func (s *scanner) scanQuotedSymbol() (token, error) {
	start := s.pos
	s.pos++
	text, err := s.scanQuotedText('\'')
	if err != nil {
		return token{}, err
	}
	return token{kind: tokQuotedSymbol, text: text, pos: start}, nil
}

func (s *scanner) scanQuotedText(quote byte) (string, error) {
	var b strings.Builder
	for {
		if s.pos >= len(s.src) {
			return "", errors.Incomplete
		}
		c := s.src[s.pos]
		switch c {
		case quote:
			s.pos++
			if !utf8.ValidString(b.String()) {
				return "", errors.New(errors.PhaseDecode, errors.KindInvalidUTF8).
					Offset(s.pos).Detail("quoted text is not valid UTF-8").Build()
			}
			return b.String(), nil
		case '\\':
			s.pos++
			if s.pos >= len(s.src) {
				return "", errors.Incomplete
			}
			e := s.src[s.pos]
			s.pos++
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '"', '\'', '/':
				b.WriteByte(e)
			default:
				return "", s.errf(s.pos-1, "invalid escape \\%c", e)
			}
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
}

// scanNumber consumes the longest run of number-and-timestamp characters;
// the parser classifies the result.
func (s *scanner) scanNumber() (token, error) {
	start := s.pos
	if s.src[s.pos] == '-' || s.src[s.pos] == '+' {
		s.pos++
	}
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isDigit(c) || c == '.' || c == '-' || c == '+' || c == ':' ||
			c == 'e' || c == 'E' || c == 'd' || c == 'D' || c == 'T' || c == 'Z' {
			s.pos++
			continue
		}
		break
	}
	if s.pos == start {
		return token{}, s.errf(start, "malformed number")
	}
	return token{kind: tokNumber, text: s.src[start:s.pos], pos: start}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
