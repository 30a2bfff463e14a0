package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"expensex/internal/core"
	"expensex/internal/currency"
)

// ReportSheet is the worksheet name of an XLSX export.
const ReportSheet = "Expense Report"

// First table row; rows above hold the summary block.
const tableHeaderRow = 6

// WriteXLSX writes a workbook with a summary block (generation date, item
// count, total spent) followed by the expense table.
func WriteXLSX(w io.Writer, expenses []core.Expense, currencyCode string, generated time.Time) error {
	if len(expenses) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F8F9FA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("label style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "D32F2F"},
		NumFmt: 4, // #,##0.00
	})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	total := core.Sum(expenses)
	summary := [][2]any{
		{"Date", core.FormatDate(generated)},
		{"Total Items", len(expenses)},
		{"Total Spent", currency.Format(total, currencyCode)},
	}

	set := func(cell string, v any) error {
		if err := f.SetCellValue(ReportSheet, cell, v); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
		return nil
	}

	if err := set("A1", "Expense Report"); err != nil {
		return err
	}
	f.SetCellStyle(ReportSheet, "A1", "A1", titleStyle)

	for i, kv := range summary {
		r := i + 2
		if err := set(fmt.Sprintf("A%d", r), kv[0]); err != nil {
			return err
		}
		if err := set(fmt.Sprintf("B%d", r), kv[1]); err != nil {
			return err
		}
		f.SetCellStyle(ReportSheet, fmt.Sprintf("A%d", r), fmt.Sprintf("A%d", r), labelStyle)
	}

	for i, h := range CSVHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableHeaderRow)
		if err := set(cell, h); err != nil {
			return err
		}
	}
	f.SetCellStyle(ReportSheet, fmt.Sprintf("A%d", tableHeaderRow), fmt.Sprintf("E%d", tableHeaderRow), headerStyle)

	for i, e := range expenses {
		r := tableHeaderRow + 1 + i
		values := []any{e.Date, core.CategoryName(e.Category), e.Title, e.Amount.InexactFloat64(), e.Time}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			if err := set(cell, v); err != nil {
				return err
			}
		}
		amountCell := fmt.Sprintf("D%d", r)
		f.SetCellStyle(ReportSheet, amountCell, amountCell, amountStyle)
	}

	f.SetColWidth(ReportSheet, "A", "B", 14)
	f.SetColWidth(ReportSheet, "C", "C", 32)
	f.SetColWidth(ReportSheet, "D", "E", 12)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
