package ion

import (
	"fmt"
	"strings"
)

// Dec is an exact decimal value: coefficient * 10^exponent.
// Coefficients are bounded to int64; the engine never needs arbitrary
// precision for expansion semantics.
type Dec struct {
	Coefficient int64
	Exponent    int32
}

// NewDec creates a decimal from a coefficient and exponent.
func NewDec(coefficient int64, exponent int32) Dec {
	return Dec{Coefficient: coefficient, Exponent: exponent}
}

// Equal reports mathematical equality: 25 x 10^-1 equals 250 x 10^-2.
func (d Dec) Equal(o Dec) bool {
	a, b := d, o
	// Normalize by stripping trailing zeros from the coefficients.
	for a.Coefficient != 0 && a.Coefficient%10 == 0 {
		a.Coefficient /= 10
		a.Exponent++
	}
	for b.Coefficient != 0 && b.Coefficient%10 == 0 {
		b.Coefficient /= 10
		b.Exponent++
	}
	if a.Coefficient == 0 && b.Coefficient == 0 {
		return true
	}
	return a.Coefficient == b.Coefficient && a.Exponent == b.Exponent
}

func (d Dec) String() string {
	if d.Exponent == 0 {
		return fmt.Sprintf("%d.", d.Coefficient)
	}
	if d.Exponent > 0 {
		return fmt.Sprintf("%dd%d", d.Coefficient, d.Exponent)
	}
	neg := ""
	c := d.Coefficient
	if c < 0 {
		neg = "-"
		c = -c
	}
	digits := fmt.Sprintf("%d", c)
	point := len(digits) + int(d.Exponent)
	if point > 0 {
		return neg + digits[:point] + "." + digits[point:]
	}
	return neg + "0." + strings.Repeat("0", -point) + digits
}
