// Package currency converts and formats amounts in the supported display
// currencies. Rates are fixed and expressed relative to USD.
package currency

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Default is the display currency used when none is configured.
const Default = "USD"

var ErrUnsupported = errors.New("unsupported currency")

// Info describes a supported currency.
type Info struct {
	Code   string          `json:"code"`
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Rate   decimal.Decimal `json:"rate"`
}

var table = map[string]Info{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", Rate: decimal.NewFromInt(1)},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", Rate: decimal.RequireFromString("0.85")},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", Rate: decimal.RequireFromString("0.73")},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee", Rate: decimal.RequireFromString("83.5")},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Rate: decimal.NewFromInt(110)},
	"AUD": {Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Rate: decimal.RequireFromString("1.35")},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Rate: decimal.RequireFromString("1.25")},
	"CHF": {Code: "CHF", Symbol: "Fr", Name: "Swiss Franc", Rate: decimal.RequireFromString("0.92")},
	"CNY": {Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", Rate: decimal.RequireFromString("6.45")},
	"KRW": {Code: "KRW", Symbol: "₩", Name: "Korean Won", Rate: decimal.NewFromInt(1180)},
}

// Supported reports whether code is a known currency.
func Supported(code string) bool {
	_, ok := table[strings.ToUpper(code)]
	return ok
}

// Codes lists supported currency codes in alphabetical order.
func Codes() []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// List returns every supported currency, ordered by code.
func List() []Info {
	codes := Codes()
	out := make([]Info, len(codes))
	for i, c := range codes {
		out[i] = table[c]
	}
	return out
}

// Lookup returns the currency for code.
func Lookup(code string) (Info, error) {
	info, ok := table[strings.ToUpper(code)]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnsupported, code)
	}
	return info, nil
}

// Symbol returns the display symbol for code, or the code itself when it is
// unknown.
func Symbol(code string) string {
	if info, err := Lookup(code); err == nil {
		return info.Symbol
	}
	return code
}

// Convert moves amount from one currency to another through USD. Unknown
// codes leave the amount unchanged.
func Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	f, errFrom := Lookup(from)
	t, errTo := Lookup(to)
	if errFrom != nil || errTo != nil {
		return amount
	}
	return amount.Div(f.Rate).Mul(t.Rate)
}

// Format renders amount in code's conventional notation, rounded to the
// currency's minor unit ("$1,234.56", "¥1,500").
func Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(code)
	c := money.GetCurrency(code)
	if c == nil {
		return Symbol(code) + amount.StringFixed(2)
	}
	minor := amount.Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
