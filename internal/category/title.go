package category

import (
	"strings"

	"github.com/shopspring/decimal"
)

var bigMeal = decimal.NewFromInt(500)

// SuggestTitle proposes a title for a record that was saved without one.
func SuggestTitle(category string, amount decimal.Decimal) string {
	c := strings.ToLower(category)
	switch {
	case strings.Contains(c, "food"):
		if amount.GreaterThan(bigMeal) {
			return "Dinner Outing"
		}
		return "Quick Snack"
	case strings.Contains(c, "travel"), strings.Contains(c, "transport"):
		return "Commute"
	case strings.Contains(c, "shopping"):
		return "Store Purchase"
	case strings.Contains(c, "bills"):
		return "Utility Bill"
	case strings.TrimSpace(category) == "":
		return "General Expense"
	}
	return category + " Expense"
}
