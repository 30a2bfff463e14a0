package http

import (
	"net/http"

	"expensex/internal/analytics"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}
	writeJSON(w, r, http.StatusOK, s.app.Summarize(period))
}

type historyResponse struct {
	Period   analytics.Period        `json:"period"`
	Sections []analytics.DateSection `json:"sections"`
}

// handleHistory returns the period's expenses grouped by day, newest day
// first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		BadRequestError(r, err.Error()).Write(w, r)
		return
	}
	sections := s.app.History(period)
	if sections == nil {
		sections = []analytics.DateSection{}
	}
	writeJSON(w, r, http.StatusOK, historyResponse{Period: period, Sections: sections})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.app.Analyze())
}
