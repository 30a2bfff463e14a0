package http

import (
	"net/http"
	"slices"

	"github.com/shopspring/decimal"

	"expensex/internal/analytics"
	"expensex/internal/core"
)

type budgetResponse struct {
	Currency      string                   `json:"currency"`
	MonthlyBudget decimal.Decimal          `json:"monthly_budget"`
	Progress      analytics.BudgetProgress `json:"progress"`
}

func (s *Server) budget() budgetResponse {
	now := s.app.Now()
	budget := s.app.Settings.MonthlyBudget()
	spent := analytics.MonthlyTotal(s.app.Store.Expenses(), now.Year(), now.Month())
	return budgetResponse{
		Currency:      s.app.Currency(),
		MonthlyBudget: budget,
		Progress:      analytics.Progress(spent, budget),
	}
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.budget())
}

type amountRequest struct {
	Amount AmountInput `json:"amount"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}
	amount, err := req.Amount.Decimal()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.app.Settings.SetMonthlyBudget(r.Context(), amount); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.budget())
}

// limitStatus is one category limit with the spending it is checked
// against.
type limitStatus struct {
	Category   string                   `json:"category"`
	Limit      decimal.Decimal          `json:"limit"`
	Spent      decimal.Decimal          `json:"spent"`
	OverBudget bool                     `json:"over_budget"`
	Progress   analytics.BudgetProgress `json:"progress"`
}

// handleListLimits lists limits by category name. Spending is all-time,
// the same total the alert evaluator uses.
func (s *Server) handleListLimits(w http.ResponseWriter, r *http.Request) {
	limits := s.app.Settings.Limits()
	totals := analytics.TotalsByCategory(s.app.Store.Expenses())
	flagged := s.app.Alerts.OverBudget()

	out := make([]limitStatus, 0, len(limits))
	for name, limit := range limits {
		spent := totals[name]
		out = append(out, limitStatus{
			Category:   name,
			Limit:      limit,
			Spent:      spent,
			OverBudget: slices.Contains(flagged, name),
			Progress:   analytics.Progress(spent, limit),
		})
	}
	slices.SortFunc(out, func(a, b limitStatus) int {
		switch {
		case a.Category < b.Category:
			return -1
		case a.Category > b.Category:
			return 1
		}
		return 0
	})
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleSetLimit(w http.ResponseWriter, r *http.Request) {
	name := core.CategoryName(sanitizeInput(r.PathValue("category")))
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}
	amount, err := req.Amount.Decimal()
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := s.app.SetLimit(r.Context(), name, amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mutationResult{Alerts: report})
}

func (s *Server) handleDeleteLimit(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("category")
	removed, report, err := s.app.DeleteLimit(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !removed {
		NotFoundError(r, "no limit set for "+name).Write(w, r)
		return
	}
	writeJSON(w, r, http.StatusOK, mutationResult{Alerts: report})
}

func (s *Server) handleCheckAlerts(w http.ResponseWriter, r *http.Request) {
	report, err := s.app.CheckBudgets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}
