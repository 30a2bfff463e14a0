package category

import (
	"strings"

	"expensex/internal/core"
)

// Rule maps a category to the substrings that select it.
type Rule struct {
	Category string
	Keywords []string
}

// Rules is the ordered keyword table used by AutoCategorize. Order is part of
// the behavior: the first rule with any matching keyword wins, so specific
// rules come before general ones ("gas station" is Fuel before "bus" is
// Transportation).
var Rules = []Rule{
	{"Fuel", []string{"petrol", "diesel", "cng", "fuel", "gas station"}},
	{"Transportation", []string{"uber", "ola", "rapido", "taxi", "cab", "bus", "metro", "train", "auto"}},
	{"Travel", []string{"flight", "hotel", "airbnb", "trip", "vacation", "booking"}},
	{"Phone/Internet", []string{"recharge", "data", "wifi", "broadband", "jio", "airtel", "mobile"}},
	{"Food", []string{"food", "burger", "pizza", "coffee", "cafe", "tea", "starbucks", "swiggy", "zomato", "restaurant", "lunch", "dinner"}},
	{"Housing", []string{"grocery", "vegetable", "milk", "fruit", "supermarket", "mart"}},
	{"Entertainment", []string{"movie", "netflix", "prime", "cinema", "subscription", "game"}},
	{"Bills/Utilities", []string{"electricity", "water", "bill", "rent", "maintenance"}},
	{"Healthcare", []string{"medicine", "doctor", "pharmacy", "hospital", "checkup"}},
	{"Education", []string{"fee", "course", "book", "school", "college", "tuition"}},
	{"Shopping", []string{"shirt", "pant", "cloth", "shoe", "jeans", "amazon", "flipkart", "myntra", "shop"}},
	{"Socializing", []string{"party", "drink", "beer", "alcohol", "bar", "gift"}},
}

// defaultSuggestions is offered when no keyword matches a title.
var defaultSuggestions = []string{"Food", "Transportation", "Shopping"}

// AutoCategorize classifies a title with the ordered Rules table:
// case-insensitive substring match, first matching rule in table order wins.
// Titles matching nothing are General.
func AutoCategorize(title string) string {
	t := strings.ToLower(title)
	for _, r := range Rules {
		if r.matches(t) {
			return r.Category
		}
	}
	return core.GeneralCategory
}

// Suggest returns every category whose keywords match the title, in table
// order, or a fixed trio of common categories when nothing matches.
func Suggest(title string) []string {
	if strings.TrimSpace(title) == "" {
		return nil
	}
	t := strings.ToLower(title)
	var out []string
	for _, r := range Rules {
		if r.matches(t) {
			out = append(out, r.Category)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultSuggestions...)
	}
	return out
}

func (r Rule) matches(lowerTitle string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowerTitle, kw) {
			return true
		}
	}
	return false
}
