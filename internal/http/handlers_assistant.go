package http

import (
	"errors"
	"net/http"

	"expensex/internal/assistant"
	"expensex/internal/category"
	"expensex/internal/currency"
	applog "expensex/internal/log"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.app.Catalog.All())
}

type categorizeRequest struct {
	Title string `json:"title"`
}

type categorizeResponse struct {
	assistant.Categorization
	Suggestions []string `json:"suggestions"`
}

// handleCategorize proposes categories for a title. The assistant is used
// when configured; local keyword rules otherwise.
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}
	title := sanitizeInput(req.Title)
	writeJSON(w, r, http.StatusOK, categorizeResponse{
		Categorization: s.app.Assistant.Categorize(r.Context(), title),
		Suggestions:    category.Suggest(title),
	})
}

type assistantRequest struct {
	Question string `json:"question"`
}

type assistantResponse struct {
	Answer string `json:"answer"`
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}

	answer, err := s.app.Assistant.Ask(r.Context(), sanitizeInput(req.Question), s.app.Store.Expenses())
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, assistantResponse{Answer: answer})
	case errors.Is(err, assistant.ErrEmptyQuery), errors.Is(err, assistant.ErrUnavailable):
		writeError(w, r, err)
	default:
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Assistant request failed", applog.FieldError, err)
		ErrorResponse(r, http.StatusBadGateway, assistant.NoAnswer).Write(w, r)
	}
}

type currenciesResponse struct {
	Current   string          `json:"current"`
	Supported []currency.Info `json:"supported"`
}

func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, currenciesResponse{
		Current:   s.app.Currency(),
		Supported: currency.List(),
	})
}
