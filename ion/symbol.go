package ion

import "fmt"

// SymbolToken is a symbolic identifier: either known text, a symbol ID that
// must be resolved against a symbol table, or both once resolved. A token
// with an ID and no text whose ID is absent from the table represents the
// "unknown text" symbol ($0 and friends).
type SymbolToken struct {
	text    string
	sid     uint32
	hasText bool
	hasSID  bool
}

// SymbolText creates a token with known text and no symbol ID.
func SymbolText(text string) SymbolToken {
	return SymbolToken{text: text, hasText: true}
}

// SymbolID creates an unresolved token referencing a symbol table entry.
func SymbolID(sid uint32) SymbolToken {
	return SymbolToken{sid: sid, hasSID: true}
}

// Text returns the token's text, if known.
func (t SymbolToken) Text() (string, bool) {
	return t.text, t.hasText
}

// SID returns the token's symbol ID, if it has one.
func (t SymbolToken) SID() (uint32, bool) {
	return t.sid, t.hasSID
}

// TextEquals reports whether the token has known text equal to s.
func (t SymbolToken) TextEquals(s string) bool {
	return t.hasText && t.text == s
}

// Equal reports whether two tokens are the same symbol. Tokens with known
// text compare by text; tokens with unknown text compare by ID.
func (t SymbolToken) Equal(o SymbolToken) bool {
	if t.hasText && o.hasText {
		return t.text == o.text
	}
	if !t.hasText && !o.hasText {
		return t.hasSID && o.hasSID && t.sid == o.sid
	}
	return false
}

func (t SymbolToken) String() string {
	if t.hasText {
		return t.text
	}
	if t.hasSID {
		return fmt.Sprintf("$%d", t.sid)
	}
	return "$0"
}

// SymbolTable maps symbol IDs to text. IDs are 1-based; ID 0 is reserved
// for "unknown symbol". The table is append-only: existing IDs never
// change meaning for the lifetime of the table.
type SymbolTable struct {
	symbols []string
	ids     map[string]uint32
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{ids: make(map[string]uint32)}
}

// Intern adds text to the table if absent and returns its symbol ID.
func (st *SymbolTable) Intern(text string) uint32 {
	if sid, ok := st.ids[text]; ok {
		return sid
	}
	st.symbols = append(st.symbols, text)
	sid := uint32(len(st.symbols))
	st.ids[text] = sid
	return sid
}

// Text returns the text for a symbol ID.
func (st *SymbolTable) Text(sid uint32) (string, bool) {
	if sid == 0 || int(sid) > len(st.symbols) {
		return "", false
	}
	return st.symbols[sid-1], true
}

// Find returns the symbol ID for text, if interned.
func (st *SymbolTable) Find(text string) (uint32, bool) {
	sid, ok := st.ids[text]
	return sid, ok
}

// Len returns the number of interned symbols.
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// Resolve fills in the text of an ID-only token from the table. Tokens
// that already carry text are returned unchanged; IDs not present in the
// table resolve to a token with unknown text.
func (st *SymbolTable) Resolve(t SymbolToken) SymbolToken {
	if t.hasText || !t.hasSID {
		return t
	}
	if text, ok := st.Text(t.sid); ok {
		return SymbolToken{text: text, sid: t.sid, hasText: true, hasSID: true}
	}
	return t
}
