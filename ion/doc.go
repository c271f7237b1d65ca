// Package ion defines the core data model shared by every layer of the
// engine: the value type enumeration, symbol tokens and tables, exact
// decimals, and precision-aware timestamps.
//
// These types are deliberately small and copyable. Symbol tokens may be
// unresolved (ID-only) until the expansion layer resolves them against the
// symbol table in the active encoding context.
package ion
