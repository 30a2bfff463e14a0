package http

import (
	"errors"
	"net/http"

	"expensex/internal/assistant"
	"expensex/internal/core"
	"expensex/internal/export"
	applog "expensex/internal/log"
	"expensex/internal/services"
)

// mutationResult is returned by every endpoint that may move a category
// across its limit.
type mutationResult struct {
	Expense *core.Expense        `json:"expense,omitempty"`
	Alerts  services.AlertReport `json:"alerts"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyID),
		errors.Is(err, assistant.ErrEmptyQuery),
		errors.Is(err, errEmptyBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, export.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, assistant.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and writes the JSON error. Client
// errors keep their message; 5xx responses hide it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		msg = "internal error"
	}
	ErrorResponse(r, status, msg).Write(w, r)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	NewResponse().Status(status).JSON(v).Write(w, r)
}
