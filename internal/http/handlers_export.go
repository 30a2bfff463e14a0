package http

import (
	"bytes"
	"net/http"

	"expensex/internal/analytics"
	"expensex/internal/core"
	"expensex/internal/export"
	applog "expensex/internal/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportSet returns the period's expenses, newest first.
func (s *Server) exportSet(r *http.Request) ([]core.Expense, error) {
	period, err := parsePeriod(r)
	if err != nil {
		return nil, err
	}
	expenses := analytics.Filter(s.app.Store.Expenses(), period, s.app.Now())
	analytics.SortNewestFirst(expenses)
	return expenses, nil
}

func (s *Server) exportFilename(ext string) string {
	return "expenses-" + core.FormatDate(s.app.Now()) + "." + ext
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.exportSet(r)
	if err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, expenses); err != nil {
		writeError(w, r, err)
		return
	}
	s.logExport(r, "csv", len(expenses))
	NewResponse().
		Bytes("text/csv; charset=utf-8", buf.Bytes()).
		Attachment(s.exportFilename("csv")).
		Write(w, r)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.exportSet(r)
	if err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, expenses, s.app.Currency(), s.app.Now()); err != nil {
		writeError(w, r, err)
		return
	}
	s.logExport(r, "xlsx", len(expenses))
	NewResponse().
		Bytes(xlsxContentType, buf.Bytes()).
		Attachment(s.exportFilename("xlsx")).
		Write(w, r)
}

type sheetsExportResponse struct {
	UpdatedRange string `json:"updated_range"`
	Rows         int    `json:"rows"`
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	if s.app.Sheets == nil {
		ServiceUnavailableError(r, "Google Sheets export is not configured").Write(w, r)
		return
	}
	expenses, err := s.exportSet(r)
	if err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}

	updated, err := s.app.Sheets.Export(r.Context(), expenses, s.app.Currency())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logExport(r, "sheets", len(expenses))
	writeJSON(w, r, http.StatusOK, sheetsExportResponse{UpdatedRange: updated, Rows: len(expenses)})
}

func (s *Server) logExport(r *http.Request, format string, n int) {
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expenses exported",
		applog.FieldOperation, applog.OpExport,
		"format", format,
		applog.FieldCount, n)
}
