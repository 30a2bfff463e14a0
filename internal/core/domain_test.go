package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"12.34", "12.34", true},
		{"12,5", "12.5", true},
		{"1,234.56", "1234.56", true},
		{"12,345,678.9", "12345678.9", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"+3", "3", true},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"NaN", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.out)), "input %q got %s", tc.in, got)
	}
}

func TestParseLocalDateKeepsCalendarDay(t *testing.T) {
	// Negative offset: a UTC-midnight parse would land on the previous day.
	loc := time.FixedZone("UTC-5", -5*3600)

	got, err := ParseLocalDate("2024-03-25", loc)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Day())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, "25 Mar 2024", got.Format(LabelLayout))

	_, err = ParseLocalDate("2024-13-01", loc)
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = ParseLocalDate("yesterday", loc)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestGenerateID(t *testing.T) {
	now := time.UnixMilli(1710496800123)
	assert.Equal(t, "1710496800123"+"42", GenerateID(now, 42))
	assert.Equal(t, "17104968001230", GenerateID(now, 0))
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{ID: "1", Title: "ok", Amount: decimal.NewFromInt(10), Category: "Food", Date: "2024-03-15"}
	require.NoError(t, good.Validate())

	bads := []Expense{
		{ID: "", Amount: decimal.NewFromInt(1), Date: "2024-03-15"},
		{ID: "1", Amount: decimal.NewFromInt(-1), Date: "2024-03-15"},
		{ID: "1", Amount: decimal.NewFromInt(1), Date: "15/03/2024"},
	}
	for i, e := range bads {
		assert.Error(t, e.Validate(), "case %d", i)
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, GeneralCategory, CategoryName("  "))
	assert.Equal(t, "Food", CategoryName("Food"))
	assert.Equal(t, UntitledTitle, TitleOrDefault(""))
	assert.Equal(t, "Lunch", TitleOrDefault("Lunch"))
	assert.Equal(t, "2024-03", MonthKey("2024-03-15"))
}
