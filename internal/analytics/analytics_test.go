package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensex/internal/category"
	"expensex/internal/core"
)

func exp(id, cat, date, amount string) core.Expense {
	return core.Expense{ID: id, Title: "t" + id, Category: cat, Date: date, Amount: decimal.RequireFromString(amount)}
}

func ids(expenses []core.Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}

var (
	minusFive = time.FixedZone("UTC-5", -5*3600)
	// Friday.
	now = time.Date(2024, time.March, 15, 10, 0, 0, 0, minusFive)
)

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"": PeriodAll, "all": PeriodAll, "Day": PeriodDay, " week ": PeriodWeek, "month": PeriodMonth, "year": PeriodYear} {
		got, err := ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePeriod("fortnight")
	assert.Error(t, err)
}

func TestCutoff(t *testing.T) {
	tests := []struct {
		period Period
		want   string
	}{
		{PeriodDay, "2024-03-15"},
		{PeriodWeek, "2024-03-11"},
		{PeriodMonth, "2024-03-01"},
		{PeriodYear, "2024-01-01"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got, ok := Cutoff(tt.period, now)
			require.True(t, ok)
			assert.Equal(t, tt.want, core.FormatDate(got))
			assert.Equal(t, 0, got.Hour())
			assert.Equal(t, minusFive, got.Location())
		})
	}

	_, ok := Cutoff(PeriodAll, now)
	assert.False(t, ok)
}

func TestWeekCutoffOnMondayAndSunday(t *testing.T) {
	monday := time.Date(2024, time.March, 11, 23, 59, 0, 0, minusFive)
	got, _ := Cutoff(PeriodWeek, monday)
	assert.Equal(t, "2024-03-11", core.FormatDate(got))

	sunday := time.Date(2024, time.March, 17, 8, 0, 0, 0, minusFive)
	got, _ = Cutoff(PeriodWeek, sunday)
	assert.Equal(t, "2024-03-11", core.FormatDate(got))
}

func TestFilter(t *testing.T) {
	all := []core.Expense{
		exp("a", "Food", "2024-03-15", "1"),
		exp("b", "Food", "2024-03-14", "1"),
		exp("c", "Food", "2024-03-11", "1"),
		exp("d", "Food", "2024-03-10", "1"),
		exp("e", "Food", "2024-02-29", "1"),
		exp("f", "Food", "2023-12-31", "1"),
		exp("g", "Food", "garbage", "1"),
	}

	assert.Equal(t, []string{"a"}, ids(Filter(all, PeriodDay, now)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Filter(all, PeriodWeek, now)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(Filter(all, PeriodMonth, now)))
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(Filter(all, PeriodYear, now)))
	assert.Equal(t, all, Filter(all, PeriodAll, now))
}

func TestByCategory(t *testing.T) {
	in := []core.Expense{
		exp("1", "Food", "2024-03-15", "0.1"),
		exp("2", "Travel", "2024-03-15", "0.2"),
		exp("3", "Food", "2024-03-15", "0.2"),
		exp("4", "", "2024-03-15", "0.1"),
	}
	got := ByCategory(in, category.Default())
	require.Len(t, got, 3)

	assert.Equal(t, "Food", got[0].Name)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("0.3")), got[0].Amount.String())
	assert.Equal(t, int64(50), got[0].Percentage)
	assert.Equal(t, "#FFD700", got[0].Color)

	assert.Equal(t, "Travel", got[1].Name)
	assert.Equal(t, int64(33), got[1].Percentage)

	assert.Equal(t, core.GeneralCategory, got[2].Name)
	assert.Equal(t, int64(17), got[2].Percentage)

	sum := decimal.Zero
	for _, c := range got {
		sum = sum.Add(c.Amount)
		assert.GreaterOrEqual(t, c.Percentage, int64(0))
		assert.LessOrEqual(t, c.Percentage, int64(100))
	}
	assert.True(t, sum.Equal(Total(in)))
}

func TestByCategoryPercentagesNeedNotSumTo100(t *testing.T) {
	in := []core.Expense{
		exp("1", "A", "2024-03-15", "1"),
		exp("2", "B", "2024-03-15", "1"),
		exp("3", "C", "2024-03-15", "1"),
	}
	got := ByCategory(in, nil)
	var pct int64
	for _, c := range got {
		pct += c.Percentage
		assert.Equal(t, category.FallbackColor, c.Color)
	}
	assert.Equal(t, int64(99), pct)
}

func TestByCategoryZeroTotal(t *testing.T) {
	assert.Empty(t, ByCategory(nil, nil))
	assert.Empty(t, ByCategory([]core.Expense{exp("1", "Food", "2024-03-15", "0")}, nil))
}

func TestTopCategory(t *testing.T) {
	totals := []CategoryTotal{
		{Name: "A", Amount: decimal.NewFromInt(5)},
		{Name: "B", Amount: decimal.NewFromInt(9)},
		{Name: "C", Amount: decimal.NewFromInt(9)},
	}
	top, ok := TopCategory(totals)
	require.True(t, ok)
	assert.Equal(t, "B", top.Name)
	assert.Equal(t, "A", totals[0].Name, "input is not reordered")

	_, ok = TopCategory(nil)
	assert.False(t, ok)
}

func TestTotalsAndForCategory(t *testing.T) {
	in := []core.Expense{
		exp("1", "Food", "2024-03-14", "10"),
		exp("2", "Food", "2024-03-15", "5.5"),
		exp("3", "Travel", "2024-02-15", "7"),
	}

	m := TotalsByCategory(in)
	assert.True(t, m["Food"].Equal(decimal.RequireFromString("15.5")))
	assert.True(t, m["Travel"].Equal(decimal.NewFromInt(7)))

	assert.Equal(t, []string{"2", "1"}, ids(ForCategory(in, "Food")))
	assert.Empty(t, ForCategory(in, "Nope"))

	assert.True(t, DailyTotal(in, now).Equal(decimal.RequireFromString("5.5")))
	assert.True(t, MonthlyTotal(in, 2024, time.March).Equal(decimal.RequireFromString("15.5")))
	assert.True(t, MonthlyTotal(in, 2024, time.February).Equal(decimal.NewFromInt(7)))
}

func TestProgress(t *testing.T) {
	p := Progress(decimal.NewFromInt(500), decimal.NewFromInt(2000))
	assert.InDelta(t, 0.25, p.Ratio, 1e-9)
	assert.False(t, p.OverBudget)
	assert.True(t, p.Remaining.Equal(decimal.NewFromInt(1500)))

	p = Progress(decimal.NewFromInt(3000), decimal.NewFromInt(2000))
	assert.Equal(t, 1.0, p.Ratio)
	assert.True(t, p.OverBudget)

	p = Progress(decimal.NewFromInt(1), decimal.Zero)
	assert.Equal(t, 1.0, p.Ratio)
}

func TestGroupByDate(t *testing.T) {
	in := []core.Expense{
		exp("a", "Food", "2024-03-10", "1"),
		exp("b", "Food", "2024-03-12", "1"),
		exp("c", "Food", "2024-03-10", "1"),
	}
	got := GroupByDate(in, minusFive)
	require.Len(t, got, 2)
	assert.Equal(t, "12 Mar 2024", got[0].Title)
	assert.Equal(t, "10 Mar 2024", got[1].Title)
	assert.Equal(t, []string{"b"}, ids(got[0].Expenses))
	assert.Equal(t, []string{"a", "c"}, ids(got[1].Expenses))
}

func TestGroupByDateInvalidLast(t *testing.T) {
	in := []core.Expense{
		exp("x", "Food", "bogus", "1"),
		exp("a", "Food", "2024-01-01", "1"),
	}
	got := GroupByDate(in, time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, "1 Jan 2024", got[0].Title)
	assert.Equal(t, "bogus", got[1].Title)
	assert.Empty(t, GroupByDate(nil, time.UTC))
}

func TestDetectAnomalies(t *testing.T) {
	var in []core.Expense
	for i := 0; i < 5; i++ {
		in = append(in, exp(string(rune('a'+i)), "Food", "2024-03-15", "100"))
	}
	in = append(in, core.Expense{ID: "big", Title: "TV", Amount: decimal.NewFromInt(1000), Date: "2024-03-15"})

	got := DetectAnomalies(in)
	require.Len(t, got, 1)
	assert.Equal(t, FindingHighValue, got[0].Kind)
	assert.Equal(t, "TV", got[0].Title)
	assert.True(t, got[0].Average.Equal(decimal.NewFromInt(250)))
	assert.Contains(t, got[0].Message(), "250")

	got = DetectAnomalies(in[:5])
	require.Len(t, got, 1)
	assert.Equal(t, FindingNone, got[0].Kind)
	assert.Equal(t, "No suspicious or unusual transactions found.", got[0].Message())

	got = DetectAnomalies(in[:4])
	require.Len(t, got, 1)
	assert.Equal(t, FindingInsufficientData, got[0].Kind)
	assert.Equal(t, "Add more expenses (at least 5) to detect anomalies.", got[0].Message())
}

func TestPredictNextPeriod(t *testing.T) {
	in := []core.Expense{
		exp("1", "Food", "2024-01-05", "400"),
		exp("2", "Food", "2024-01-20", "600"),
		exp("3", "Food", "2024-02-10", "2000"),
	}
	assert.True(t, PredictNextPeriod(in).Equal(decimal.NewFromInt(1575)), PredictNextPeriod(in).String())
	assert.True(t, PredictNextPeriod(nil).IsZero())

	months := MonthlyTotals(in)
	require.Len(t, months, 2)
	assert.Equal(t, "2024-01", months[0].Month)
}

func TestInsights(t *testing.T) {
	assert.Equal(t, []string{"Start adding expenses to get personalized insights!"}, Insights(nil, time.UTC))

	in := []core.Expense{
		exp("1", "Food", "2024-03-16", "60"), // Saturday
		exp("2", "Travel", "2024-03-13", "40"),
	}
	got := Insights(in, time.UTC)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "60% of your total budget on Food")
	assert.Contains(t, got[1], "Tip:")
	assert.Contains(t, got[2], "Weekend Warrior")
	assert.Contains(t, got[2], "(60%)")
}
