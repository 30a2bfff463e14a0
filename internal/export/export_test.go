package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"expensex/internal/core"
	applog "expensex/internal/log"
)

func sample() []core.Expense {
	return []core.Expense{
		{ID: "1", Title: "Pizza, large", Amount: decimal.RequireFromString("12.5"), Category: "Food", Date: "2024-03-15", Time: "19:05"},
		{ID: "2", Title: `The "big" trip`, Amount: decimal.NewFromInt(1200), Category: "Travel", Date: "2024-03-14"},
		{ID: "3", Title: "Misc", Amount: decimal.NewFromInt(3), Category: "", Date: "2024-03-13", Time: "08:00"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Category,Title,Amount,Time", lines[0])
	assert.Equal(t, `2024-03-15,Food,"Pizza, large",12.5,19:05`, lines[1])
	assert.Equal(t, `2024-03-14,Travel,"The ""big"" trip",1200,`, lines[2])
	assert.Equal(t, `2024-03-13,General,Misc,3,08:00`, lines[3])
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, nil), ErrNoData)
	assert.ErrorIs(t, WriteXLSX(&buf, nil, "USD", time.Now()), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, WriteXLSX(&buf, sample(), "USD", generated))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue(ReportSheet, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Expense Report", get("A1"))
	assert.Equal(t, "2024-03-15", get("B2"))
	assert.Equal(t, "3", get("B3"))
	assert.Equal(t, "$1,215.50", get("B4"))

	assert.Equal(t, "Date", get("A6"))
	assert.Equal(t, "Time", get("E6"))
	assert.Equal(t, "Pizza, large", get("C7"))
	assert.Equal(t, "General", get("B9"))

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 9)
}

type fakeAppender struct {
	id, rng string
	rows    [][]any
	err     error
}

func (f *fakeAppender) AppendRows(_ context.Context, id, rng string, rows [][]any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.id, f.rng, f.rows = id, rng, rows
	return "Expenses!A2:F4", nil
}

func TestSheetsExport(t *testing.T) {
	app := &fakeAppender{}
	s := NewSheetsWithAppender(app, SheetsConfig{SpreadsheetID: "sheet-123"}, applog.Discard())

	ref, err := s.Export(context.Background(), sample(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "Expenses!A2:F4", ref)
	assert.Equal(t, "sheet-123", app.id)
	assert.Equal(t, "Expenses!A:F", app.rng)
	require.Len(t, app.rows, 3)
	assert.Equal(t, []any{"2024-03-15", "Food", "Pizza, large", 12.5, "19:05", "EUR"}, app.rows[0])
}

func TestSheetsExportErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	s := NewSheetsWithAppender(&fakeAppender{err: boom}, SheetsConfig{SpreadsheetID: "x", SheetName: "Report"}, nil)

	_, err := s.Export(context.Background(), nil, "USD")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = s.Export(context.Background(), sample(), "USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Report")
}

func TestNewSheetsRequiresConfig(t *testing.T) {
	_, err := NewSheets(context.Background(), SheetsConfig{}, nil)
	assert.Error(t, err)

	_, err = NewSheets(context.Background(), SheetsConfig{SpreadsheetID: "x"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")

	_, err = NewSheets(context.Background(), SheetsConfig{SpreadsheetID: "x", CredentialsFile: "/does/not/exist.json"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}
