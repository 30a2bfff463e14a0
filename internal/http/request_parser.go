package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"expensex/internal/analytics"
	"expensex/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is required")

// AmountInput accepts an amount as a JSON number or string. Strings go
// through core.ParseAmount, so "12,50" is accepted.
type AmountInput struct {
	raw string
	set bool
}

func (a *AmountInput) UnmarshalJSON(data []byte) error {
	a.set = true
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.raw)
	}
	if string(data) == "null" {
		a.set = false
		return nil
	}
	a.raw = string(data)
	return nil
}

// Set reports whether the field was present.
func (a AmountInput) Set() bool { return a.set }

// Decimal parses the amount; a missing or malformed value is
// core.ErrInvalidAmount.
func (a AmountInput) Decimal() (decimal.Decimal, error) {
	if !a.set {
		return decimal.Zero, core.ErrInvalidAmount
	}
	return core.ParseAmount(a.raw)
}

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// parsePeriod reads the period query parameter; absent means all.
func parsePeriod(r *http.Request) (analytics.Period, error) {
	return analytics.ParsePeriod(r.URL.Query().Get("period"))
}

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 127 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
