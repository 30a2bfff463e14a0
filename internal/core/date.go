package core

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04"
	LabelLayout = "2 Jan 2006"

	midnightSuffix = "T00:00:00"
	parseLayout    = DateLayout + "T15:04:05"
)

// ParseLocalDate parses a YYYY-MM-DD string as midnight of that calendar day
// in loc. The fixed time of day is appended before parsing so the value is
// never read as UTC midnight, which would show the previous day under a
// negative offset. A nil loc means time.Local.
func ParseLocalDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(parseLayout, s+midnightSuffix, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders t as a YYYY-MM-DD string in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders the local time of day as HH:MM.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// StartOfDay returns local midnight of t's calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthKey returns the YYYY-MM prefix of a date string, or the whole string
// when it is shorter.
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
