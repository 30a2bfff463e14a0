// Package core provides money parsing and handling utilities.
//
// This file contains the parsing rule for user-entered amounts. Amounts are
// kept as decimals end to end so sums are exact.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a non-negative decimal amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted, the
// latter only when the input has no dot. With a dot present, commas are
// thousands separators (1,234.56). Anything that does not parse to a
// finite number, or is negative, yields ErrInvalidAmount; it is never
// coerced to zero.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34, nil
//	ParseAmount("12,5")     -> 12.5, nil
//	ParseAmount("1,234.56") -> 1234.56, nil
//	ParseAmount("abc")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Sum adds up the amounts of the given expenses exactly.
func Sum(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
