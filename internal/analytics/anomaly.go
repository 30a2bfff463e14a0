package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"expensex/internal/core"
)

// MinAnomalySample is the smallest collection scanned for outliers.
const MinAnomalySample = 5

// FindingKind classifies an anomaly scan result.
type FindingKind string

const (
	FindingInsufficientData FindingKind = "insufficient_data"
	FindingHighValue        FindingKind = "high_value"
	FindingNone             FindingKind = "none"
)

var anomalyFactor = decimal.NewFromInt(3)

// Finding is one line of an anomaly report.
type Finding struct {
	Kind    FindingKind     `json:"kind"`
	Title   string          `json:"title,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	Average decimal.Decimal `json:"average"`
}

// Message renders the finding as a user-facing sentence.
func (f Finding) Message() string {
	switch f.Kind {
	case FindingInsufficientData:
		return fmt.Sprintf("Add more expenses (at least %d) to detect anomalies.", MinAnomalySample)
	case FindingHighValue:
		return fmt.Sprintf("High value transaction: %q for %s is well above your average of %s.",
			f.Title, f.Amount.StringFixed(2), f.Average.Round(0).String())
	default:
		return "No suspicious or unusual transactions found."
	}
}

// DetectAnomalies flags expenses whose amount is more than three times the
// average of the whole collection. Fewer than MinAnomalySample records give
// a single insufficient-data finding; a clean scan gives a single none
// finding. The result is never empty.
func DetectAnomalies(expenses []core.Expense) []Finding {
	if len(expenses) < MinAnomalySample {
		return []Finding{{Kind: FindingInsufficientData}}
	}

	avg := core.Sum(expenses).Div(decimal.NewFromInt(int64(len(expenses))))
	threshold := avg.Mul(anomalyFactor)

	var out []Finding
	for _, e := range expenses {
		if e.Amount.GreaterThan(threshold) {
			out = append(out, Finding{
				Kind:    FindingHighValue,
				Title:   core.TitleOrDefault(e.Title),
				Amount:  e.Amount,
				Average: avg,
			})
		}
	}
	if len(out) == 0 {
		return []Finding{{Kind: FindingNone, Average: avg}}
	}
	return out
}
