package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"expensex/internal/category"
	"expensex/internal/core"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is the spending of one category within a collection.
type CategoryTotal struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	// Percentage is the rounded share of the collection total, 0..100.
	// Shares are rounded independently and need not add up to 100.
	Percentage int64  `json:"percentage"`
	Color      string `json:"color"`
}

// ColorSource resolves a category name to its display color.
type ColorSource interface {
	ColorOf(name string) string
}

// Total sums all amounts exactly.
func Total(expenses []core.Expense) decimal.Decimal {
	return core.Sum(expenses)
}

// TotalsByCategory sums amounts per category display name.
func TotalsByCategory(expenses []core.Expense) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		name := core.CategoryName(e.Category)
		out[name] = out[name].Add(e.Amount)
	}
	return out
}

// ByCategory groups expenses by category and computes each group's share of
// the total, rounded half up to a whole percent. Groups appear in order of
// first occurrence. A zero total yields no groups.
func ByCategory(expenses []core.Expense, colors ColorSource) []CategoryTotal {
	total := Total(expenses)
	if !total.IsPositive() {
		return nil
	}

	index := make(map[string]int)
	var out []CategoryTotal
	for _, e := range expenses {
		name := core.CategoryName(e.Category)
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryTotal{Name: name, Color: colorOf(colors, name)})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	for i := range out {
		out[i].Percentage = out[i].Amount.Mul(hundred).Div(total).Round(0).IntPart()
	}
	return out
}

func colorOf(colors ColorSource, name string) string {
	if colors == nil {
		return category.FallbackColor
	}
	return colors.ColorOf(name)
}

// SortByAmount returns a copy of totals ordered by descending amount. Ties
// keep their input order.
func SortByAmount(totals []CategoryTotal) []CategoryTotal {
	out := append([]CategoryTotal(nil), totals...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// TopCategory returns the category with the largest amount.
func TopCategory(totals []CategoryTotal) (CategoryTotal, bool) {
	if len(totals) == 0 {
		return CategoryTotal{}, false
	}
	return SortByAmount(totals)[0], true
}

// ForCategory returns the expenses of one category, newest first.
func ForCategory(expenses []core.Expense, name string) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if core.CategoryName(e.Category) == name {
			out = append(out, e)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders expenses by date then time, latest first, in place.
func SortNewestFirst(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		if expenses[i].Date != expenses[j].Date {
			return expenses[i].Date > expenses[j].Date
		}
		return expenses[i].Time > expenses[j].Time
	})
}

// DailyTotal sums the expenses dated on now's calendar day.
func DailyTotal(expenses []core.Expense, now time.Time) decimal.Decimal {
	today := core.FormatDate(now)
	total := decimal.Zero
	for _, e := range expenses {
		if e.Date == today {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// MonthlyTotal sums the expenses dated in the given month.
func MonthlyTotal(expenses []core.Expense, year int, month time.Month) decimal.Decimal {
	key := fmt.Sprintf("%04d-%02d", year, int(month))
	total := decimal.Zero
	for _, e := range expenses {
		if e.Month() == key {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// BudgetProgress describes spending against a monthly budget.
type BudgetProgress struct {
	Spent     decimal.Decimal `json:"spent"`
	Budget    decimal.Decimal `json:"budget"`
	Remaining decimal.Decimal `json:"remaining"`
	// Ratio is spent/budget capped at 1.
	Ratio      float64 `json:"ratio"`
	OverBudget bool    `json:"over_budget"`
}

// Progress compares spending with a budget. A non-positive budget counts
// as fully used once anything is spent.
func Progress(spent, budget decimal.Decimal) BudgetProgress {
	p := BudgetProgress{
		Spent:      spent,
		Budget:     budget,
		Remaining:  budget.Sub(spent),
		OverBudget: spent.GreaterThan(budget),
	}
	switch {
	case budget.IsPositive():
		r, _ := spent.Div(budget).Float64()
		p.Ratio = min(r, 1)
	case spent.IsPositive():
		p.Ratio = 1
	}
	return p
}
