package ion_test

import (
	"testing"
	"time"

	"github.com/wippyai/ion-engine/ion"
)

func TestSymbolTableIntern(t *testing.T) {
	st := ion.NewSymbolTable()

	a := st.Intern("name")
	b := st.Intern("version")
	if a == b {
		t.Fatalf("distinct texts got the same ID %d", a)
	}
	if got := st.Intern("name"); got != a {
		t.Errorf("re-interning: got %d, want %d", got, a)
	}
	if text, ok := st.Text(a); !ok || text != "name" {
		t.Errorf("Text(%d): got %q, %v", a, text, ok)
	}
	if _, ok := st.Text(a + 100); ok {
		t.Error("Text of unknown ID reported ok")
	}
	if sid, ok := st.Find("version"); !ok || sid != b {
		t.Errorf("Find(version): got %d, %v", sid, ok)
	}
}

func TestSymbolTableResolve(t *testing.T) {
	st := ion.NewSymbolTable()
	sid := st.Intern("city")

	resolved := st.Resolve(ion.SymbolID(sid))
	if text, ok := resolved.Text(); !ok || text != "city" {
		t.Errorf("resolved token text: got %q, %v", text, ok)
	}

	// Unknown IDs stay unresolved rather than failing.
	unknown := st.Resolve(ion.SymbolID(999))
	if _, ok := unknown.Text(); ok {
		t.Error("unknown SID resolved to text")
	}
}

func TestSymbolTokenEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b ion.SymbolToken
		want bool
	}{
		{"same text", ion.SymbolText("a"), ion.SymbolText("a"), true},
		{"different text", ion.SymbolText("a"), ion.SymbolText("b"), false},
		{"same sid", ion.SymbolID(7), ion.SymbolID(7), true},
		{"different sid", ion.SymbolID(7), ion.SymbolID(8), false},
		{"text vs sid", ion.SymbolText("a"), ion.SymbolID(7), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecimalEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b ion.Dec
		want bool
	}{
		{"identical", ion.NewDec(123, -2), ion.NewDec(123, -2), true},
		{"different value", ion.NewDec(123, -2), ion.NewDec(124, -2), false},
		{"same value different scale", ion.NewDec(1230, -3), ion.NewDec(123, -2), true},
		{"zero scales", ion.NewDec(0, 0), ion.NewDec(0, 5), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("%s == %s: got %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTimestampPrecision(t *testing.T) {
	day := ion.Date(2024, time.March, 15)
	minute := ion.NewTimestamp(2024, time.March, 15, 0, 0, 0, 0, 0, ion.PrecisionMinute)

	if day.Equal(minute) {
		t.Error("day and minute precision compared equal")
	}
	if !day.Equal(ion.Date(2024, time.March, 15)) {
		t.Error("identical dates compared unequal")
	}
}

func TestTimestampString(t *testing.T) {
	tests := []struct {
		ts   ion.Time
		want string
	}{
		{ion.NewTimestamp(2024, 1, 1, 0, 0, 0, 0, 0, ion.PrecisionYear), "2024T"},
		{ion.NewTimestamp(2024, time.June, 1, 0, 0, 0, 0, 0, ion.PrecisionMonth), "2024-06T"},
		{ion.Date(2024, time.June, 14), "2024-06-14T"},
		{ion.NewTimestamp(2024, time.June, 14, 9, 30, 0, 0, 0, ion.PrecisionMinute), "2024-06-14T09:30Z"},
	}
	for _, tt := range tests {
		if got := tt.ts.String(); got != tt.want {
			t.Errorf("String: got %q, want %q", got, tt.want)
		}
	}
}
