// Package text parses the text encoding into raw value and field
// expressions. Unlike package binary there are no lazy byte spans to
// defer to, so containers hold their parsed children; macro expansion is
// still left entirely to the expansion layer.
//
// E-expressions are written (:name arg ...) or (:address arg ...), with
// argument groups written (:: arg ...).
package text
