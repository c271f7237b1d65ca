package macro

import (
	"github.com/wippyai/ion-engine/errors"
)

// Table is an ordered, append-only mapping from address to macro
// definition, optionally addressable by name. Mutation is only legal
// between top-level values; references taken before an incompatible
// mutation are detectably stale.
type Table struct {
	macros []*Macro
	byName map[string]Address
}

// NewTable creates an empty user macro table.
func NewTable() *Table {
	return &Table{byName: make(map[string]Address)}
}

// Install appends a macro to the table and returns its address.
func (t *Table) Install(m *Macro) Address {
	addr := Address(len(t.macros))
	t.macros = append(t.macros, m)
	if m.name != "" {
		t.byName[m.name] = addr
	}
	return addr
}

// Replace discards all definitions and installs the given macros in order.
// This is the set_macros-style mutation: outstanding Refs into the old
// table become stale.
func (t *Table) Replace(macros ...*Macro) {
	t.macros = t.macros[:0]
	t.byName = make(map[string]Address)
	for _, m := range macros {
		t.Install(m)
	}
}

// At returns the macro at the given address.
func (t *Table) At(addr Address) (*Macro, bool) {
	if int(addr) >= len(t.macros) {
		return nil, false
	}
	return t.macros[addr], true
}

// ByName returns the macro with the given name, if any.
func (t *Table) ByName(name string) (*Macro, Address, bool) {
	addr, ok := t.byName[name]
	if !ok {
		return nil, 0, false
	}
	return t.macros[addr], addr, true
}

// Len returns the number of installed macros.
func (t *Table) Len() int {
	return len(t.macros)
}

// Ref captures a macro address together with the definition it resolved to
// at capture time. Resolving a Ref re-checks that the table still holds the
// same definition at that address.
type Ref struct {
	table *Table
	addr  Address
	def   *Macro
}

// RefAt captures a reference to the macro at addr.
func (t *Table) RefAt(addr Address) (Ref, error) {
	m, ok := t.At(addr)
	if !ok {
		return Ref{}, errors.UnresolvedMacro("no macro at address %d", addr)
	}
	return Ref{table: t, addr: addr, def: m}, nil
}

// Address returns the captured address.
func (r Ref) Address() Address { return r.addr }

// Resolve returns the referenced definition, or a stale-macro error if the
// table no longer holds the same definition at the captured address.
func (r Ref) Resolve() (*Macro, error) {
	m, ok := r.table.At(r.addr)
	if !ok || m != r.def {
		return nil, &errors.Error{
			Phase:  errors.PhaseExpand,
			Kind:   errors.KindStaleMacro,
			Detail: "macro table changed since this reference was taken",
		}
	}
	return m, nil
}

// systemTable holds the preloaded, immutable system macro module.
var systemTable = func() *Table {
	t := NewTable()
	for id := SysNone; id <= SysUse; id++ {
		t.Install(newSystemMacro(id))
	}
	return t
}()

// SystemTable returns the fixed system macro module covering addresses
// 0x00-0x17. Callers must treat it as read-only.
func SystemTable() *Table {
	return systemTable
}

// SystemMacro returns the definition of a system macro.
func SystemMacro(id SystemID) *Macro {
	m, _ := systemTable.At(Address(id))
	return m
}
