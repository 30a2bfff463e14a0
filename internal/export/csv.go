// Package export writes expense lists to CSV, XLSX and Google Sheets.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"expensex/internal/core"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no expenses to export")

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Date", "Category", "Title", "Amount", "Time"}

// WriteCSV writes one row per expense in the given order.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	if len(expenses) == 0 {
		return ErrNoData
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		if err := writer.Write(row(e)); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func row(e core.Expense) []string {
	return []string{
		e.Date,
		core.CategoryName(e.Category),
		e.Title,
		e.Amount.String(),
		e.Time,
	}
}
