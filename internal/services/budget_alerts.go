package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"expensex/internal/analytics"
	"expensex/internal/blob"
	"expensex/internal/core"
	"expensex/internal/currency"
	applog "expensex/internal/log"
)

// AlertTitle is the title of every budget alert.
const AlertTitle = "Budget Exceeded"

// AlertReport summarizes one evaluation pass.
type AlertReport struct {
	// Crossed lists categories that went over their limit in this pass.
	Crossed []string `json:"crossed"`
	// Reset lists categories that came back under their limit.
	Reset []string `json:"reset"`
	// Notified and Failed split Crossed by delivery outcome.
	Notified []string `json:"notified"`
	Failed   []string `json:"failed"`
	// OverBudget is the full set of categories over their limit afterwards.
	OverBudget []string `json:"over_budget"`
}

// BudgetAlerts tracks which categories are over their limit and notifies
// once per crossing. The over-budget set is persisted before any
// notification is attempted, so a crash cannot cause a repeat.
type BudgetAlerts struct {
	store    blob.Store
	notifier Notifier
	currency string
	logger   *applog.Logger
	now      func() time.Time

	mu      sync.Mutex
	flagged map[string]struct{}
}

// NewBudgetAlerts creates an evaluator. A nil notifier drops alerts.
func NewBudgetAlerts(store blob.Store, notifier Notifier, currencyCode string, logger *applog.Logger) *BudgetAlerts {
	if logger == nil {
		logger = applog.Discard()
	}
	if currencyCode == "" {
		currencyCode = currency.Default
	}
	return &BudgetAlerts{
		store:    store,
		notifier: notifier,
		currency: currencyCode,
		logger:   logger.WithComponent(applog.ComponentAlerts),
		now:      time.Now,
		flagged:  make(map[string]struct{}),
	}
}

// Load reads the persisted over-budget set. Failures leave it empty.
func (a *BudgetAlerts) Load(ctx context.Context) {
	flagged := make(map[string]struct{})
	defer func() {
		a.mu.Lock()
		a.flagged = flagged
		a.mu.Unlock()
	}()

	raw, ok, err := a.store.Get(ctx, blob.KeyAlertHistory)
	if err != nil {
		a.logger.ErrorContext(ctx, "Failed to read alert history", applog.FieldOperation, applog.OpLoad, applog.FieldError, err)
		return
	}
	if !ok {
		return
	}
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		a.logger.WarnContext(ctx, "Ignoring unreadable alert history", applog.FieldError, err)
		return
	}
	for _, n := range names {
		flagged[n] = struct{}{}
	}
}

// OverBudget returns the categories currently flagged, sorted.
func (a *BudgetAlerts) OverBudget() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return sortedKeys(a.flagged)
}

// Evaluate recomputes category totals over all expenses and applies the
// state transitions for every limit: a category over its limit that was not
// flagged becomes flagged and is notified; a flagged category at or under
// its limit is reset. Flagged categories that no longer have a limit are
// reset as well.
//
// The new state is persisted before notifying. If persisting fails nothing
// is notified, the in-memory state is unchanged and the error is returned.
// Notification failures are logged and reported, never retried.
func (a *BudgetAlerts) Evaluate(ctx context.Context, expenses []core.Expense, limits map[string]decimal.Decimal) (AlertReport, error) {
	totals := analytics.TotalsByCategory(expenses)

	a.mu.Lock()
	next := make(map[string]struct{}, len(a.flagged))
	for k := range a.flagged {
		next[k] = struct{}{}
	}

	var report AlertReport
	for _, name := range sortedKeys(limits) {
		limit := limits[name]
		// Non-positive limits only come from hand-edited data; ignore them.
		if !limit.IsPositive() {
			continue
		}
		_, flagged := next[name]
		over := totals[name].GreaterThan(limit)
		switch {
		case over && !flagged:
			next[name] = struct{}{}
			report.Crossed = append(report.Crossed, name)
		case !over && flagged:
			delete(next, name)
			report.Reset = append(report.Reset, name)
		}
	}
	for _, name := range sortedKeys(next) {
		if limit, ok := limits[name]; !ok || !limit.IsPositive() {
			delete(next, name)
			report.Reset = append(report.Reset, name)
		}
	}
	sort.Strings(report.Reset)

	if len(report.Crossed) > 0 || len(report.Reset) > 0 {
		if err := a.persist(ctx, next); err != nil {
			a.mu.Unlock()
			a.logger.ErrorContext(ctx, "Failed to persist alert state; skipping notifications",
				applog.FieldOperation, applog.OpEvaluate, applog.FieldError, err)
			return AlertReport{OverBudget: a.OverBudget()}, err
		}
		a.flagged = next
	}
	report.OverBudget = sortedKeys(a.flagged)
	a.mu.Unlock()

	for _, name := range report.Crossed {
		alert := a.buildAlert(name, totals[name], limits[name])
		if err := a.notify(ctx, alert); err != nil {
			a.logger.WarnContext(ctx, "Budget alert delivery failed",
				applog.FieldCategory, name,
				applog.FieldOperation, applog.OpNotify,
				applog.FieldError, err)
			report.Failed = append(report.Failed, name)
			continue
		}
		report.Notified = append(report.Notified, name)
	}

	if len(report.Crossed) > 0 || len(report.Reset) > 0 {
		a.logger.InfoContext(ctx, "Budget alerts evaluated",
			"crossed", report.Crossed, "reset", report.Reset, "failed", report.Failed)
	}
	return report, nil
}

func (a *BudgetAlerts) notify(ctx context.Context, alert Alert) error {
	if a.notifier == nil {
		return nil
	}
	return a.notifier.Notify(ctx, alert)
}

func (a *BudgetAlerts) buildAlert(name string, total, limit decimal.Decimal) Alert {
	return Alert{
		ID:       "alert-" + name,
		Title:    AlertTitle,
		Body:     AlertBody(name, total, limit, a.currency),
		Category: name,
		Total:    total,
		Limit:    limit,
		Currency: a.currency,
		RaisedAt: a.now(),
	}
}

// AlertBody renders the alert message for a category.
func AlertBody(category string, total, limit decimal.Decimal, currencyCode string) string {
	return fmt.Sprintf("You've spent %s on %s. Limit: %s",
		currency.Format(total, currencyCode), category, currency.Format(limit, currencyCode))
}

func (a *BudgetAlerts) persist(ctx context.Context, flagged map[string]struct{}) error {
	data, err := json.Marshal(sortedKeys(flagged))
	if err != nil {
		return fmt.Errorf("encode alert history: %w", err)
	}
	if err := a.store.Set(ctx, blob.KeyAlertHistory, string(data)); err != nil {
		return fmt.Errorf("save alert history: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
