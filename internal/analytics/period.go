// Package analytics provides pure computations over expense collections.
//
// This file implements the Strategy Pattern for period filtering. Each
// period (day, week, month, year) has its own strategy that encapsulates how
// the start of the current window is computed.
package analytics

import (
	"fmt"
	"strings"
	"time"

	"expensex/internal/core"
)

// Period selects a trailing time window anchored at "now".
type Period string

const (
	PeriodAll   Period = "all"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod converts user input to a Period. An empty string means all.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PeriodAll, nil
	}
	if p == PeriodAll {
		return p, nil
	}
	if _, ok := cutoffStrategies[p]; !ok {
		return "", fmt.Errorf("unknown period: %q", s)
	}
	return p, nil
}

// CutoffStrategy computes the inclusive start of a period window.
type CutoffStrategy interface {
	// Cutoff returns local midnight of the first day of the window that
	// contains now.
	Cutoff(now time.Time) time.Time
}

// DayCutoff starts the window at today's local midnight.
type DayCutoff struct{}

func (DayCutoff) Cutoff(now time.Time) time.Time {
	return core.StartOfDay(now)
}

// WeekCutoff starts the window at the most recent Monday. On a Monday the
// window starts today.
type WeekCutoff struct{}

func (WeekCutoff) Cutoff(now time.Time) time.Time {
	// Weekday is 0 for Sunday; shift so Monday is 0.
	back := (int(now.Weekday()) + 6) % 7
	return core.StartOfDay(now).AddDate(0, 0, -back)
}

// MonthCutoff starts the window on the 1st of the current month.
type MonthCutoff struct{}

func (MonthCutoff) Cutoff(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// YearCutoff starts the window on January 1st.
type YearCutoff struct{}

func (YearCutoff) Cutoff(now time.Time) time.Time {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
}

var cutoffStrategies = map[Period]CutoffStrategy{
	PeriodDay:   DayCutoff{},
	PeriodWeek:  WeekCutoff{},
	PeriodMonth: MonthCutoff{},
	PeriodYear:  YearCutoff{},
}

// Cutoff returns the start of the period window containing now. The second
// result is false for PeriodAll and unknown periods, which have no cutoff.
func Cutoff(p Period, now time.Time) (time.Time, bool) {
	s, ok := cutoffStrategies[p]
	if !ok {
		return time.Time{}, false
	}
	return s.Cutoff(now), true
}

// Filter keeps the expenses dated inside the period window containing now.
// Record dates are read as local midnight in now's location. Records whose
// date does not parse are dropped. PeriodAll returns the input unchanged.
func Filter(expenses []core.Expense, p Period, now time.Time) []core.Expense {
	cutoff, ok := Cutoff(p, now)
	if !ok {
		return expenses
	}
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		d, err := core.ParseLocalDate(e.Date, now.Location())
		if err != nil {
			continue
		}
		if !d.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out
}
