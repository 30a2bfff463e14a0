package http

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"expensex/internal/analytics"
	"expensex/internal/category"
	"expensex/internal/core"
	"expensex/internal/currency"
)

type expenseList struct {
	Period   analytics.Period `json:"period"`
	Count    int              `json:"count"`
	Total    decimal.Decimal  `json:"total"`
	Expenses []core.Expense   `json:"expenses"`
}

// handleListExpenses returns the period's expenses, newest first.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}

	expenses := analytics.Filter(s.app.Store.Expenses(), period, s.app.Now())
	analytics.SortNewestFirst(expenses)
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, r, http.StatusOK, expenseList{
		Period:   period,
		Count:    len(expenses),
		Total:    analytics.Total(expenses),
		Expenses: expenses,
	})
}

type createExpenseRequest struct {
	Title    string      `json:"title"`
	Amount   AmountInput `json:"amount"`
	Category string      `json:"category"`
	Color    string      `json:"color"`
	Icon     string      `json:"icon"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}
	amount, err := req.Amount.Decimal()
	if err != nil {
		BadRequestError(r, "amount must be a non-negative number").Write(w, r)
		return
	}

	e, report, err := s.app.AddExpense(r.Context(), core.NewExpense{
		Title:  sanitizeInput(req.Title),
		Amount: amount,
		Category: core.Category{
			Name:  sanitizeInput(req.Category),
			Color: sanitizeInput(req.Color),
			Icon:  sanitizeInput(req.Icon),
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, mutationResult{Expense: &e, Alerts: report})
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	report, err := s.app.ClearExpenses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mutationResult{Alerts: report})
}

// updateExpenseRequest carries the fields to change; absent fields keep
// their stored value.
type updateExpenseRequest struct {
	Title    *string     `json:"title"`
	Amount   AmountInput `json:"amount"`
	Category *string     `json:"category"`
	Date     *string     `json:"date"`
	Time     *string     `json:"time"`
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req updateExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}

	var amount decimal.Decimal
	if req.Amount.Set() {
		var err error
		if amount, err = req.Amount.Decimal(); err != nil {
			BadRequestError(r, "amount must be a non-negative number").Write(w, r)
			return
		}
	}
	var details core.Category
	if req.Category != nil {
		details = s.app.Catalog.Details(*req.Category)
	}

	stored, found, report, err := s.app.UpdateExpense(r.Context(), id, func(e *core.Expense) {
		if req.Title != nil {
			e.Title = sanitizeInput(*req.Title)
		}
		if req.Amount.Set() {
			e.Amount = amount
		}
		if req.Category != nil {
			e.Category = core.CategoryName(sanitizeInput(*req.Category))
			e.Color = details.Color
			e.Icon = details.Icon
		}
		if req.Date != nil {
			e.Date = sanitizeInput(*req.Date)
		}
		if req.Time != nil {
			e.Time = sanitizeInput(*req.Time)
		}
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, core.ErrNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, mutationResult{Expense: &stored, Alerts: report})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	deleted, report := s.app.DeleteExpense(r.Context(), r.PathValue("id"))
	if !deleted {
		writeError(w, r, core.ErrNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, mutationResult{Alerts: report})
}

type quickEntryRequest struct {
	Text string `json:"text"`
	// Save records the parsed expense instead of only previewing it.
	Save bool `json:"save"`
}

type quickEntryResponse struct {
	Title    string          `json:"title"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	mutationResult
}

var errNoAmount = errors.New("no amount found in text")

func (s *Server) handleQuickEntry(w http.ResponseWriter, r *http.Request) {
	var req quickEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}

	q := category.ParseQuickEntry(sanitizeInput(req.Text), currency.Symbol(s.app.Currency()))
	if !q.HasAmount {
		BadRequestError(r, errNoAmount.Error()).Write(w, r)
		return
	}
	if q.Title == "" {
		q.Title = category.SuggestTitle(q.Category, q.Amount)
	}

	resp := quickEntryResponse{Title: q.Title, Amount: q.Amount, Category: q.Category}
	if !req.Save {
		writeJSON(w, r, http.StatusOK, resp)
		return
	}

	e, report, err := s.app.AddExpense(r.Context(), core.NewExpense{
		Title:    q.Title,
		Amount:   q.Amount,
		Category: core.Category{Name: q.Category},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp.Expense = &e
	resp.Alerts = report
	writeJSON(w, r, http.StatusCreated, resp)
}
