package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"expensex/internal/core"
)

var growthFactor = decimal.RequireFromString("1.05")

// MonthlyTotals sums amounts per YYYY-MM month, in ascending month order.
func MonthlyTotals(expenses []core.Expense) []MonthTotal {
	sums := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		k := e.Month()
		sums[k] = sums[k].Add(e.Amount)
	}
	out := make([]MonthTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, MonthTotal{Month: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// MonthTotal is the spending of one calendar month.
type MonthTotal struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// PredictNextPeriod estimates next month's spending as the mean of the
// monthly totals grown by 5%, rounded to a whole unit. No history predicts 0.
func PredictNextPeriod(expenses []core.Expense) decimal.Decimal {
	months := MonthlyTotals(expenses)
	if len(months) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, m := range months {
		sum = sum.Add(m.Amount)
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(months))))
	return mean.Mul(growthFactor).Round(0)
}
