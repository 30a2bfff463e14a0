package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireSameExpenses(t *testing.T, want, got []Expense) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.True(t, w.Amount.Equal(g.Amount), "record %d amount: want %s got %s", i, w.Amount, g.Amount)
		w.Amount, g.Amount = decimal.Zero, decimal.Zero
		assert.Equal(t, w, g, "record %d", i)
	}
}

func TestExpensesRoundTrip(t *testing.T) {
	in := []Expense{
		{ID: "1710496800123042", Title: "Coffee", Amount: decimal.RequireFromString("3.75"), Category: "Food", Date: "2024-03-15", Time: "09:30", Color: "#FFD700", Icon: "🍔"},
		{ID: "1710496800999001", Title: "Bus", Amount: decimal.NewFromInt(40), Category: "Transportation", Date: "2024-03-14"},
		{ID: "3", Title: "Odd", Amount: decimal.RequireFromString("0.1"), Category: GeneralCategory, Date: "2024-01-01"},
	}

	data, err := EncodeExpenses(in)
	require.NoError(t, err)

	out, err := DecodeExpenses(data)
	require.NoError(t, err)
	requireSameExpenses(t, in, out)
}

func TestExpenseJSONShape(t *testing.T) {
	e := Expense{ID: "7", Title: "Pizza", Amount: decimal.RequireFromString("12.50"), Category: "Food", Date: "2024-03-15"}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","title":"Pizza","amount":12.5,"category":"Food","date":"2024-03-15"}`, string(b))
}

func TestDecodeCategoryShapes(t *testing.T) {
	data := `[
		{"id":"1","title":"a","amount":1,"category":"Food","date":"2024-03-01"},
		{"id":"2","title":"b","amount":2,"category":{"name":"Travel","icon":"✈️","color":"#00CED1"},"date":"2024-03-01"},
		{"id":"3","title":"c","amount":3,"category":{"icon":"x"},"date":"2024-03-01"},
		{"id":"4","title":"d","amount":4,"category":"","date":"2024-03-01"},
		{"id":"5","title":"e","amount":5,"date":"2024-03-01"},
		{"id":"6","title":"f","amount":6,"category":null,"date":"2024-03-01"},
		{"id":"7","title":"g","amount":7,"category":42,"date":"2024-03-01"},
		{"id":"8","title":"h","amount":"8.5","category":{"name":17},"date":"2024-03-01"}
	]`

	out, err := DecodeExpenses(data)
	require.NoError(t, err)
	require.Len(t, out, 8)

	want := []string{"Food", "Travel", "General", "General", "General", "General", "General", "General"}
	for i, e := range out {
		assert.Equal(t, want[i], e.Category, "record %s", e.ID)
	}
	assert.True(t, out[7].Amount.Equal(decimal.RequireFromString("8.5")))
}

func TestDecodeExpensesSkipsInvalidAmounts(t *testing.T) {
	data := `[
		{"id":"1","title":"ok","amount":10,"category":"Food","date":"2024-03-01"},
		{"id":"2","title":"bad","amount":null,"category":"Food","date":"2024-03-01"}
	]`

	out, err := DecodeExpenses(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].ID)
}

func TestDecodeExpensesMalformed(t *testing.T) {
	out, err := DecodeExpenses(`{"not":"an array"}`)
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestEncodeEmpty(t *testing.T) {
	data, err := EncodeExpenses(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", data)
}
