// Package binary decodes the binary encoding into raw value and field
// expressions. All reads borrow from the caller's buffer; nothing past a
// value's opcode is decoded until the expansion layer asks for it.
// Truncated input surfaces as errors.Incomplete so a streaming caller can
// supply more bytes and retry.
package binary
