package analytics

import (
	"sort"
	"time"

	"expensex/internal/core"
)

// DateSection is the set of expenses recorded on one calendar day.
type DateSection struct {
	Title    string         `json:"title"`
	Date     string         `json:"date"`
	Expenses []core.Expense `json:"expenses"`
}

// GroupByDate buckets expenses by their exact date string. Sections are
// ordered newest first and keep the input order of their records. Titles
// read like "12 Mar 2024" and are formatted from local midnight in loc, so
// the label never drifts to a neighbouring day. Dates that do not parse sort
// last and use the raw string as title.
func GroupByDate(expenses []core.Expense, loc *time.Location) []DateSection {
	type bucket struct {
		section DateSection
		day     time.Time
		valid   bool
	}

	index := make(map[string]int)
	var buckets []bucket
	for _, e := range expenses {
		i, ok := index[e.Date]
		if !ok {
			b := bucket{section: DateSection{Title: e.Date, Date: e.Date}}
			if d, err := core.ParseLocalDate(e.Date, loc); err == nil {
				b.day = d
				b.valid = true
				b.section.Title = d.Format(core.LabelLayout)
			}
			i = len(buckets)
			index[e.Date] = i
			buckets = append(buckets, b)
		}
		buckets[i].section.Expenses = append(buckets[i].section.Expenses, e)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.valid != b.valid {
			return a.valid
		}
		if !a.valid {
			return false
		}
		return a.day.After(b.day)
	})

	out := make([]DateSection, len(buckets))
	for i, b := range buckets {
		out[i] = b.section
	}
	return out
}
