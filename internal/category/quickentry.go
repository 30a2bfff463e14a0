package category

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// QuickEntry is the result of parsing a one-line free-text entry such as
// "Coffee at Starbucks 250".
type QuickEntry struct {
	Title     string
	Amount    decimal.Decimal
	HasAmount bool
	Category  string
}

var (
	amountPattern = regexp.MustCompile(`[\d,]+(\.\d+)?`)
	spacePattern  = regexp.MustCompile(`\s+`)

	// Applied in order, each to its first match only.
	connectorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s+for\s+`),
		regexp.MustCompile(`(?i)\s+in\s+`),
		regexp.MustCompile(`(?i)\s+at\s+`),
	}
)

// ParseQuickEntry extracts an amount, a category and a title from free
// text. The first number is the amount, with thousands separators dropped.
// The category comes from AutoCategorize over the whole text. The title is
// what remains after removing the amount, the first currency symbol and the
// first "for", then the first "in", then the first "at".
func ParseQuickEntry(text, currencySymbol string) QuickEntry {
	text = strings.TrimSpace(text)
	q := QuickEntry{Category: AutoCategorize(text)}
	if text == "" {
		return q
	}

	rest := text
	for _, loc := range amountPattern.FindAllStringIndex(text, -1) {
		raw := strings.ReplaceAll(text[loc[0]:loc[1]], ",", "")
		d, err := decimal.NewFromString(raw)
		if err != nil {
			// a bare comma
			continue
		}
		q.Amount = d
		q.HasAmount = true
		rest = text[:loc[0]] + " " + text[loc[1]:]
		break
	}
	if currencySymbol != "" {
		rest = strings.Replace(rest, currencySymbol, " ", 1)
	}
	for _, p := range connectorPatterns {
		if loc := p.FindStringIndex(rest); loc != nil {
			rest = rest[:loc[0]] + " " + rest[loc[1]:]
		}
	}
	q.Title = capitalize(strings.TrimSpace(spacePattern.ReplaceAllString(rest, " ")))
	return q
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
