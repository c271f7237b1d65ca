// Package macro defines macro tables and compiled macro definitions.
//
// A Table is an ordered, append-only mapping from integer address to
// definition. Two tables are in play during decoding: the user table,
// mutable only between top-level values, and the fixed system module
// returned by SystemTable covering addresses 0x00-0x17.
//
// Template macros arrive pre-compiled: template-source compilation is a
// separate concern, and TemplateBuilder is the programmatic stand-in for
// its output. A compiled body is a tree of TemplateExpr nodes; struct
// literals in the body carry a field-name index built at compile time so
// that field lookup costs O(matches).
//
//	threeValues := macro.NewTemplate("three_values").
//		Body(macro.CallSystem(macro.SysValues,
//			macro.Int(1), macro.Int(2), macro.Int(3))).
//		MustCompile()
//	addr := table.Install(threeValues)
package macro
