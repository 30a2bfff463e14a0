// Package app holds the application state shared by the HTTP API: the
// expense store, budget settings, alert evaluator and display currency.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"expensex/internal/analytics"
	"expensex/internal/assistant"
	"expensex/internal/blob"
	"expensex/internal/category"
	"expensex/internal/core"
	"expensex/internal/currency"
	"expensex/internal/export"
	applog "expensex/internal/log"
	"expensex/internal/services"
)

// Options configures New. Zero values pick defaults.
type Options struct {
	Currency string
	Location *time.Location
	Catalog  *category.Catalog
	// Completer backs the assistant; nil keeps it local-only.
	Completer assistant.Completer
	// Sheets enables Google Sheets export when set.
	Sheets *export.Sheets
	// StoreOptions are passed to the expense store (clock, id suffix).
	StoreOptions []services.StoreOption
}

// App is the explicit application state. It is safe for concurrent use.
type App struct {
	Catalog   *category.Catalog
	Queue     *services.WriteQueue
	Store     *services.ExpenseStore
	Settings  *services.BudgetSettings
	Alerts    *services.BudgetAlerts
	Assistant *assistant.Assistant
	Sheets    *export.Sheets

	currency string
	loc      *time.Location
	logger   *applog.Logger

	// checkMu makes snapshot and evaluation one step, so a stale snapshot
	// cannot be evaluated after a newer one.
	checkMu sync.Mutex
}

func New(store blob.Store, notifier services.Notifier, opts Options, logger *applog.Logger) *App {
	if logger == nil {
		logger = applog.Discard()
	}
	if opts.Currency == "" {
		opts.Currency = currency.Default
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Catalog == nil {
		opts.Catalog = category.Default()
	}

	queue := services.NewWriteQueue(store, logger)
	return &App{
		Catalog:   opts.Catalog,
		Queue:     queue,
		Store:     services.NewExpenseStore(store, queue, opts.Catalog, logger, opts.StoreOptions...),
		Settings:  services.NewBudgetSettings(store, queue, logger),
		Alerts:    services.NewBudgetAlerts(store, notifier, opts.Currency, logger),
		Assistant: assistant.New(opts.Completer, opts.Catalog, opts.Currency, logger),
		Sheets:    opts.Sheets,
		currency:  opts.Currency,
		loc:       opts.Location,
		logger:    logger.WithComponent(applog.ComponentApp),
	}
}

// Currency returns the display currency code.
func (a *App) Currency() string { return a.currency }

// Location is the time zone used for calendar-day computations.
func (a *App) Location() *time.Location { return a.loc }

// Now is the store's clock in the app's location.
func (a *App) Now() time.Time { return a.Store.Now().In(a.loc) }

// Load restores the expense collection, budget settings and alert state
// concurrently. Each component degrades to defaults on its own failures.
func (a *App) Load(ctx context.Context) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { a.Store.Load(gctx); return nil })
	g.Go(func() error { a.Settings.Load(gctx); return nil })
	g.Go(func() error { a.Alerts.Load(gctx); return nil })
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	a.logger.InfoContext(ctx, "Application state loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldCount, a.Store.Len(),
		"limits", len(a.Settings.Limits()),
		"over_budget", len(a.Alerts.OverBudget()),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// CheckBudgets evaluates every category limit against the current
// collection.
func (a *App) CheckBudgets(ctx context.Context) (services.AlertReport, error) {
	a.checkMu.Lock()
	defer a.checkMu.Unlock()
	return a.Alerts.Evaluate(ctx, a.Store.Expenses(), a.Settings.Limits())
}

// AddExpense adds an expense and re-evaluates budgets. An evaluation error
// is logged; the expense is kept.
func (a *App) AddExpense(ctx context.Context, in core.NewExpense) (core.Expense, services.AlertReport, error) {
	e, err := a.Store.Add(ctx, in)
	if err != nil {
		return core.Expense{}, services.AlertReport{}, err
	}
	return e, a.checkAfterChange(ctx), nil
}

// UpdateExpense applies change to the expense with the given id and
// re-evaluates budgets. It returns the stored record.
func (a *App) UpdateExpense(ctx context.Context, id string, change func(*core.Expense)) (core.Expense, bool, services.AlertReport, error) {
	e, found, err := a.Store.Modify(ctx, id, change)
	if err != nil || !found {
		return core.Expense{}, found, services.AlertReport{}, err
	}
	return e, true, a.checkAfterChange(ctx), nil
}

// DeleteExpense removes an expense by id and re-evaluates budgets.
func (a *App) DeleteExpense(ctx context.Context, id string) (bool, services.AlertReport) {
	if !a.Store.Delete(ctx, id) {
		return false, services.AlertReport{}
	}
	return true, a.checkAfterChange(ctx)
}

// ClearExpenses empties the collection and re-evaluates budgets so every
// flagged category resets.
func (a *App) ClearExpenses(ctx context.Context) (services.AlertReport, error) {
	if err := a.Store.ClearAll(ctx); err != nil {
		return services.AlertReport{}, err
	}
	return a.checkAfterChange(ctx), nil
}

// SetLimit sets a category limit and re-evaluates budgets.
func (a *App) SetLimit(ctx context.Context, category string, amount decimal.Decimal) (services.AlertReport, error) {
	if err := a.Settings.SetLimit(ctx, category, amount); err != nil {
		return services.AlertReport{}, err
	}
	return a.checkAfterChange(ctx), nil
}

// DeleteLimit removes a category limit and re-evaluates budgets.
func (a *App) DeleteLimit(ctx context.Context, category string) (bool, services.AlertReport, error) {
	removed, err := a.Settings.DeleteLimit(ctx, category)
	if err != nil || !removed {
		return removed, services.AlertReport{}, err
	}
	return true, a.checkAfterChange(ctx), nil
}

func (a *App) checkAfterChange(ctx context.Context) services.AlertReport {
	report, err := a.CheckBudgets(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "Budget evaluation failed",
			applog.FieldOperation, applog.OpEvaluate,
			applog.FieldError, err)
	}
	return report
}

// Summary is the dashboard view over one period.
type Summary struct {
	Period     analytics.Period          `json:"period"`
	Currency   string                    `json:"currency"`
	Total      decimal.Decimal           `json:"total"`
	Today      decimal.Decimal           `json:"today"`
	ThisMonth  decimal.Decimal           `json:"this_month"`
	Budget     analytics.BudgetProgress  `json:"budget"`
	Categories []analytics.CategoryTotal `json:"categories"`
	Recent     []core.Expense            `json:"recent"`
}

const recentCount = 5

// Summarize computes the dashboard for the period.
func (a *App) Summarize(p analytics.Period) Summary {
	now := a.Now()
	all := a.Store.Expenses()
	filtered := analytics.Filter(all, p, now)

	recent := append([]core.Expense(nil), filtered...)
	analytics.SortNewestFirst(recent)
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}

	thisMonth := analytics.MonthlyTotal(all, now.Year(), now.Month())
	return Summary{
		Period:     p,
		Currency:   a.currency,
		Total:      analytics.Total(filtered),
		Today:      analytics.DailyTotal(all, now),
		ThisMonth:  thisMonth,
		Budget:     analytics.Progress(thisMonth, a.Settings.MonthlyBudget()),
		Categories: analytics.SortByAmount(analytics.ByCategory(filtered, a.Catalog)),
		Recent:     recent,
	}
}

// History returns the period's expenses grouped by calendar day.
func (a *App) History(p analytics.Period) []analytics.DateSection {
	return analytics.GroupByDate(analytics.Filter(a.Store.Expenses(), p, a.Now()), a.loc)
}

// Analysis bundles the anomaly scan, monthly totals, forecast and insights.
type Analysis struct {
	Findings []analytics.Finding    `json:"findings"`
	Messages []string               `json:"messages"`
	Monthly  []analytics.MonthTotal `json:"monthly"`
	Forecast decimal.Decimal        `json:"forecast"`
	Insights []string               `json:"insights"`
}

func (a *App) Analyze() Analysis {
	all := a.Store.Expenses()
	findings := analytics.DetectAnomalies(all)
	messages := make([]string, 0, len(findings))
	for _, f := range findings {
		messages = append(messages, f.Message())
	}
	return Analysis{
		Findings: findings,
		Messages: messages,
		Monthly:  analytics.MonthlyTotals(all),
		Forecast: analytics.PredictNextPeriod(all),
		Insights: analytics.Insights(all, a.loc),
	}
}

// Close flushes pending writes and stops the writer.
func (a *App) Close(ctx context.Context) error {
	return a.Queue.Close(ctx)
}
