package macro_test

import (
	"testing"

	"github.com/wippyai/ion-engine/errors"
	"github.com/wippyai/ion-engine/macro"
)

func TestSystemTableAddresses(t *testing.T) {
	tests := []struct {
		id   macro.SystemID
		addr macro.Address
		name string
	}{
		{macro.SysNone, 0x00, "none"},
		{macro.SysValues, 0x01, "values"},
		{macro.SysDefault, 0x02, "default"},
		{macro.SysMeta, 0x03, "meta"},
		{macro.SysRepeat, 0x04, "repeat"},
		{macro.SysFlatten, 0x05, "flatten"},
		{macro.SysDelta, 0x06, "delta"},
		{macro.SysSum, 0x07, "sum"},
		{macro.SysAnnotate, 0x08, "annotate"},
		{macro.SysMakeString, 0x09, "make_string"},
		{macro.SysMakeSymbol, 0x0A, "make_symbol"},
		{macro.SysMakeDecimal, 0x0B, "make_decimal"},
		{macro.SysMakeTimestamp, 0x0C, "make_timestamp"},
		{macro.SysMakeBlob, 0x0D, "make_blob"},
		{macro.SysMakeList, 0x0E, "make_list"},
		{macro.SysMakeSExp, 0x0F, "make_sexp"},
		{macro.SysMakeField, 0x10, "make_field"},
		{macro.SysMakeStruct, 0x11, "make_struct"},
		{macro.SysParseIon, 0x12, "parse_ion"},
		{macro.SysSetSymbols, 0x13, "set_symbols"},
		{macro.SysAddSymbols, 0x14, "add_symbols"},
		{macro.SysSetMacros, 0x15, "set_macros"},
		{macro.SysAddMacros, 0x16, "add_macros"},
		{macro.SysUse, 0x17, "use"},
	}
	st := macro.SystemTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if macro.Address(tt.id) != tt.addr {
				t.Fatalf("address: got 0x%02x, want 0x%02x", macro.Address(tt.id), tt.addr)
			}
			m, ok := st.At(tt.addr)
			if !ok {
				t.Fatalf("no system macro at 0x%02x", tt.addr)
			}
			if m.Name() != tt.name {
				t.Errorf("name: got %q, want %q", m.Name(), tt.name)
			}
			if m.Kind() != macro.KindSystem {
				t.Errorf("kind: got %v, want system", m.Kind())
			}
		})
	}
}

func TestSystemTableByName(t *testing.T) {
	m, addr, ok := macro.SystemTable().ByName("make_struct")
	if !ok {
		t.Fatal("make_struct not found by name")
	}
	if addr != macro.Address(macro.SysMakeStruct) {
		t.Errorf("address: got 0x%02x", addr)
	}
	if m.System() != macro.SysMakeStruct {
		t.Errorf("system id: got %v", m.System())
	}
}

func TestTemplateCompile(t *testing.T) {
	m, err := macro.NewTemplate("point").
		Param("x", macro.ExactlyOne).
		Param("y", macro.ExactlyOne).
		Body(macro.StructOf(
			macro.FieldOf("x", macro.Param(0)),
			macro.FieldOf("y", macro.Param(1)),
		)).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !m.Analysis().MustProduceExactlyOneValue {
		t.Error("struct-literal body not classified as a singleton")
	}
	if idx := m.Body().Value.Index; len(idx["x"]) != 1 || len(idx["y"]) != 1 {
		t.Errorf("field index not built: %v", idx)
	}
}

func TestTemplateCompileIndexDuplicates(t *testing.T) {
	m := macro.NewTemplate("dup").
		Body(macro.StructOf(
			macro.FieldOf("bar", macro.Int(1)),
			macro.FieldOf("bar", macro.Int(2)),
		)).
		MustCompile()
	if got := m.Body().Value.Index["bar"]; len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("duplicate-name index: got %v, want [0 1]", got)
	}
}

func TestTemplateCompileBadParameter(t *testing.T) {
	_, err := macro.NewTemplate("broken").
		Param("a", macro.ExactlyOne).
		Body(macro.Param(3)).
		Compile()
	if err == nil {
		t.Fatal("out-of-range parameter index compiled")
	}
	if !errors.IsKind(err, errors.KindInvalidData) {
		t.Errorf("error kind: got %v", err)
	}
}

func TestSingletonAnalysis(t *testing.T) {
	tests := []struct {
		name string
		m    *macro.Macro
		want bool
	}{
		{
			"literal body",
			macro.NewTemplate("lit").Body(macro.Int(1)).MustCompile(),
			true,
		},
		{
			"values invocation",
			macro.NewTemplate("multi").
				Body(macro.CallSystem(macro.SysValues, macro.Int(1), macro.Int(2))).
				MustCompile(),
			false,
		},
		{
			"singleton invocation",
			macro.NewTemplate("wrap").
				Body(macro.CallSystem(macro.SysMakeString, macro.Str("a"))).
				MustCompile(),
			true,
		},
		{
			"optional parameter",
			macro.NewTemplate("opt").
				Param("v", macro.ZeroOrOne).
				Body(macro.Param(0)).
				MustCompile(),
			false,
		},
		{
			"required parameter",
			macro.NewTemplate("req").
				Param("v", macro.ExactlyOne).
				Body(macro.Param(0)).
				MustCompile(),
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Analysis().MustProduceExactlyOneValue; got != tt.want {
				t.Errorf("MustProduceExactlyOneValue: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTableInstallAndLookup(t *testing.T) {
	tbl := macro.NewTable()
	a := macro.NewTemplate("a").Body(macro.Int(1)).MustCompile()
	b := macro.NewTemplate("b").Body(macro.Int(2)).MustCompile()

	addrA := tbl.Install(a)
	addrB := tbl.Install(b)
	if addrA == addrB {
		t.Fatal("two installs returned the same address")
	}
	if m, ok := tbl.At(addrB); !ok || m != b {
		t.Error("At returned the wrong macro")
	}
	if m, addr, ok := tbl.ByName("a"); !ok || m != a || addr != addrA {
		t.Error("ByName returned the wrong macro")
	}
	if _, _, ok := tbl.ByName("zzz"); ok {
		t.Error("unknown name reported found")
	}
}

func TestStaleRef(t *testing.T) {
	tbl := macro.NewTable()
	old := macro.NewTemplate("v1").Body(macro.Int(1)).MustCompile()
	addr := tbl.Install(old)

	ref, err := tbl.RefAt(addr)
	if err != nil {
		t.Fatalf("RefAt: %v", err)
	}
	if m, err := ref.Resolve(); err != nil || m != old {
		t.Fatalf("fresh ref did not resolve: %v", err)
	}

	// Swapping the table contents invalidates outstanding refs.
	tbl.Replace(macro.NewTemplate("v2").Body(macro.Int(2)).MustCompile())
	if _, err := ref.Resolve(); !errors.IsKind(err, errors.KindStaleMacro) {
		t.Errorf("resolve after table change: got %v, want stale macro error", err)
	}
}

func TestRefAtUnknownAddress(t *testing.T) {
	tbl := macro.NewTable()
	if _, err := tbl.RefAt(42); !errors.IsKind(err, errors.KindUnresolvedMacro) {
		t.Errorf("got %v, want unresolved macro error", err)
	}
}
