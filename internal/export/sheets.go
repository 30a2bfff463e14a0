package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensex/internal/core"
	applog "expensex/internal/log"
)

// SheetsConfig selects the target spreadsheet and the service account used
// to reach it. CredentialsJSON wins over CredentialsFile.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// RowAppender appends rows below the last filled row of a range.
type RowAppender interface {
	AppendRows(ctx context.Context, spreadsheetID, rng string, rows [][]any) (updatedRange string, err error)
}

// Sheets exports expenses to a Google spreadsheet.
type Sheets struct {
	appender      RowAppender
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

// NewSheets creates a Sheets exporter backed by the Google Sheets API using
// service account credentials.
func NewSheets(ctx context.Context, cfg SheetsConfig, logger *applog.Logger) (*Sheets, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewSheetsWithAppender(&googleAppender{svc: svc}, cfg, logger), nil
}

// NewSheetsWithAppender creates a Sheets exporter over a custom appender.
func NewSheetsWithAppender(appender RowAppender, cfg SheetsConfig, logger *applog.Logger) *Sheets {
	if logger == nil {
		logger = applog.Discard()
	}
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = "Expenses"
	}
	return &Sheets{
		appender:      appender,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     name,
		logger:        logger.WithComponent(applog.ComponentExport),
	}
}

func credentials(cfg SheetsConfig) ([]byte, error) {
	if js := strings.TrimSpace(cfg.CredentialsJSON); js != "" {
		return []byte(js), nil
	}
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
}

// Export appends one row per expense: date, category, title, amount, time,
// currency code. It returns the range the API reports as written.
func (s *Sheets) Export(ctx context.Context, expenses []core.Expense, currencyCode string) (string, error) {
	if len(expenses) == 0 {
		return "", ErrNoData
	}
	rows := make([][]any, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, []any{
			e.Date,
			core.CategoryName(e.Category),
			e.Title,
			e.Amount.InexactFloat64(),
			e.Time,
			currencyCode,
		})
	}

	rng := fmt.Sprintf("%s!A:F", s.sheetName)
	ref, err := s.appender.AppendRows(ctx, s.spreadsheetID, rng, rows)
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", s.sheetName, err)
	}

	s.logger.InfoContext(ctx, "Exported expenses to Google Sheets",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(rows),
		"range", ref)
	return ref, nil
}

type googleAppender struct {
	svc *gsheet.Service
}

func (g *googleAppender) AppendRows(ctx context.Context, spreadsheetID, rng string, rows [][]any) (string, error) {
	resp, err := g.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if resp.Updates == nil {
		return rng, nil
	}
	return resp.Updates.UpdatedRange, nil
}
