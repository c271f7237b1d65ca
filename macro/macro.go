package macro

// Address locates a macro within a table. Addresses are stable for the
// lifetime of the table.
type Address uint32

// Kind distinguishes fixed-behavior system macros from compiled templates.
type Kind uint8

const (
	KindSystem Kind = iota
	KindTemplate
)

// SystemID identifies one of the fixed-behavior macros provided by the
// format itself. The address space is fixed: a SystemID is its address in
// the system table.
type SystemID uint8

const (
	SysNone          SystemID = 0x00
	SysValues        SystemID = 0x01
	SysDefault       SystemID = 0x02
	SysMeta          SystemID = 0x03
	SysRepeat        SystemID = 0x04
	SysFlatten       SystemID = 0x05
	SysDelta         SystemID = 0x06
	SysSum           SystemID = 0x07
	SysAnnotate      SystemID = 0x08
	SysMakeString    SystemID = 0x09
	SysMakeSymbol    SystemID = 0x0A
	SysMakeDecimal   SystemID = 0x0B
	SysMakeTimestamp SystemID = 0x0C
	SysMakeBlob      SystemID = 0x0D
	SysMakeList      SystemID = 0x0E
	SysMakeSExp      SystemID = 0x0F
	SysMakeField     SystemID = 0x10
	SysMakeStruct    SystemID = 0x11
	SysParseIon      SystemID = 0x12
	SysSetSymbols    SystemID = 0x13
	SysAddSymbols    SystemID = 0x14
	SysSetMacros     SystemID = 0x15
	SysAddMacros     SystemID = 0x16
	SysUse           SystemID = 0x17
)

var systemNames = [...]string{
	SysNone:          "none",
	SysValues:        "values",
	SysDefault:       "default",
	SysMeta:          "meta",
	SysRepeat:        "repeat",
	SysFlatten:       "flatten",
	SysDelta:         "delta",
	SysSum:           "sum",
	SysAnnotate:      "annotate",
	SysMakeString:    "make_string",
	SysMakeSymbol:    "make_symbol",
	SysMakeDecimal:   "make_decimal",
	SysMakeTimestamp: "make_timestamp",
	SysMakeBlob:      "make_blob",
	SysMakeList:      "make_list",
	SysMakeSExp:      "make_sexp",
	SysMakeField:     "make_field",
	SysMakeStruct:    "make_struct",
	SysParseIon:      "parse_ion",
	SysSetSymbols:    "set_symbols",
	SysAddSymbols:    "add_symbols",
	SysSetMacros:     "set_macros",
	SysAddMacros:     "add_macros",
	SysUse:           "use",
}

func (id SystemID) String() string {
	if int(id) < len(systemNames) {
		return systemNames[id]
	}
	return "unknown"
}

// Cardinality controls how many argument expressions a template parameter
// accepts, and whether its argument is read as a single expression or an
// argument group.
type Cardinality uint8

const (
	ExactlyOne Cardinality = iota
	ZeroOrOne
	ZeroOrMore
	OneOrMore
)

func (c Cardinality) String() string {
	switch c {
	case ExactlyOne:
		return "exactly-one"
	case ZeroOrOne:
		return "zero-or-one"
	case ZeroOrMore:
		return "zero-or-more"
	default:
		return "one-or-more"
	}
}

// AcceptsGroup reports whether an argument group may be supplied for a
// parameter of this cardinality.
func (c Cardinality) AcceptsGroup() bool {
	return c == ZeroOrMore || c == OneOrMore
}

// Parameter is one declared template parameter.
type Parameter struct {
	Name        string
	Cardinality Cardinality
}

// ExpansionAnalysis carries statically-known facts about a macro's output,
// computed once when the macro is defined.
type ExpansionAnalysis struct {
	// MustProduceExactlyOneValue permits in-place evaluation of an
	// invocation without pushing an evaluator frame. This is purely an
	// optimization; output is identical either way.
	MustProduceExactlyOneValue bool
}

// Macro is a definition addressable through a Table: a fixed-behavior
// system macro or a compiled template.
type Macro struct {
	name     string
	kind     Kind
	system   SystemID
	params   []Parameter
	body     *TemplateExpr
	analysis ExpansionAnalysis
}

// Name returns the macro's name; empty for anonymous templates.
func (m *Macro) Name() string { return m.name }

// Kind returns whether this is a system macro or a template.
func (m *Macro) Kind() Kind { return m.kind }

// System returns the fixed behavior ID of a system macro.
func (m *Macro) System() SystemID { return m.system }

// Parameters returns the declared parameter list.
func (m *Macro) Parameters() []Parameter { return m.params }

// Body returns the compiled template body; nil for system macros.
func (m *Macro) Body() *TemplateExpr { return m.body }

// Analysis returns the macro's static expansion analysis.
func (m *Macro) Analysis() ExpansionAnalysis { return m.analysis }

// systemAnalysis records which system macros are guaranteed to produce
// exactly one value per invocation.
var systemSingleton = map[SystemID]bool{
	SysAnnotate:      true,
	SysSum:           true,
	SysMakeString:    true,
	SysMakeSymbol:    true,
	SysMakeDecimal:   true,
	SysMakeTimestamp: true,
	SysMakeBlob:      true,
	SysMakeList:      true,
	SysMakeSExp:      true,
	SysMakeField:     true,
	SysMakeStruct:    true,
}

func newSystemMacro(id SystemID) *Macro {
	return &Macro{
		name:     id.String(),
		kind:     KindSystem,
		system:   id,
		analysis: ExpansionAnalysis{MustProduceExactlyOneValue: systemSingleton[id]},
	}
}
