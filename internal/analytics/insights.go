package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"expensex/internal/core"
)

var (
	highShare      = decimal.NewFromInt(40)
	minForAverage  = 5
	weekendPortion = decimal.RequireFromString("0.4")
)

// Insights produces short spending observations computed locally: the top
// category's share, the average transaction size and how much of the
// spending falls on weekends.
func Insights(expenses []core.Expense, loc *time.Location) []string {
	if len(expenses) == 0 {
		return []string{"Start adding expenses to get personalized insights!"}
	}
	total := core.Sum(expenses)

	var out []string
	if top, ok := TopCategory(ByCategory(expenses, nil)); ok {
		out = append(out, fmt.Sprintf("Top Category: You spent %d%% of your total budget on %s.", top.Percentage, top.Name))
		if decimal.NewFromInt(top.Percentage).GreaterThan(highShare) {
			out = append(out, fmt.Sprintf("Tip: Your spending on %s is quite high. Consider setting a specific budget limit for this.", top.Name))
		}
	}

	if len(expenses) > minForAverage {
		avg := total.Div(decimal.NewFromInt(int64(len(expenses)))).Round(0)
		out = append(out, fmt.Sprintf("Average Cost: On average, you spend about %s per transaction.", avg))
	}

	weekend := decimal.Zero
	for _, e := range expenses {
		d, err := core.ParseLocalDate(e.Date, loc)
		if err != nil {
			continue
		}
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend = weekend.Add(e.Amount)
		}
	}
	if total.IsPositive() && weekend.GreaterThan(total.Mul(weekendPortion)) {
		share := weekend.Mul(hundred).Div(total).Round(0)
		out = append(out, fmt.Sprintf("Weekend Warrior: You tend to spend a significant portion of your money (%s%%) on weekends.", share))
	} else {
		out = append(out, "Steady Spender: Your spending is well-distributed throughout the week.")
	}
	return out
}
