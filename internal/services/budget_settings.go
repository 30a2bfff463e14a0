package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"expensex/internal/blob"
	"expensex/internal/core"
	applog "expensex/internal/log"
)

// DefaultMonthlyBudget applies until the user sets one.
var DefaultMonthlyBudget = decimal.NewFromInt(20000)

// BudgetSettings holds the monthly budget and the per-category limits.
type BudgetSettings struct {
	store  blob.Store
	queue  *WriteQueue
	logger *applog.Logger

	mu     sync.RWMutex
	budget decimal.Decimal
	limits map[string]decimal.Decimal
}

func NewBudgetSettings(store blob.Store, queue *WriteQueue, logger *applog.Logger) *BudgetSettings {
	if logger == nil {
		logger = applog.Discard()
	}
	return &BudgetSettings{
		store:  store,
		queue:  queue,
		logger: logger.WithComponent(applog.ComponentSettings),
		budget: DefaultMonthlyBudget,
		limits: make(map[string]decimal.Decimal),
	}
}

// Load reads persisted settings. Anything unreadable falls back to the
// defaults and is logged.
func (b *BudgetSettings) Load(ctx context.Context) {
	budget := DefaultMonthlyBudget
	if raw, ok, err := b.store.Get(ctx, blob.KeyMonthlyBudget); err != nil {
		b.logger.ErrorContext(ctx, "Failed to read monthly budget", applog.FieldError, err)
	} else if ok {
		if d, err := core.ParseAmount(raw); err == nil && d.IsPositive() {
			budget = d
		} else {
			b.logger.WarnContext(ctx, "Ignoring invalid monthly budget", "value", raw)
		}
	}

	limits := make(map[string]decimal.Decimal)
	if raw, ok, err := b.store.Get(ctx, blob.KeyCategoryLimits); err != nil {
		b.logger.ErrorContext(ctx, "Failed to read category limits", applog.FieldError, err)
	} else if ok {
		decoded, err := decodeLimits(raw)
		if err != nil {
			b.logger.WarnContext(ctx, "Ignoring invalid category limits", applog.FieldError, err)
		}
		limits = decoded
	}

	b.mu.Lock()
	b.budget = budget
	b.limits = limits
	b.mu.Unlock()
}

// MonthlyBudget returns the current monthly budget.
func (b *BudgetSettings) MonthlyBudget() decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.budget
}

// SetMonthlyBudget changes the monthly budget. It must be positive.
func (b *BudgetSettings) SetMonthlyBudget(ctx context.Context, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: monthly budget must be positive", core.ErrInvalidAmount)
	}
	b.mu.Lock()
	b.budget = amount
	err := b.queue.Set(blob.KeyMonthlyBudget, amount.String())
	b.mu.Unlock()
	if err != nil {
		return err
	}

	b.logger.InfoContext(ctx, "Monthly budget set", applog.FieldAmount, amount.String())
	return nil
}

// Limits returns a copy of the per-category limits.
func (b *BudgetSettings) Limits() map[string]decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(b.limits))
	for k, v := range b.limits {
		out[k] = v
	}
	return out
}

// SetLimit sets a positive spending limit for a category.
func (b *BudgetSettings) SetLimit(ctx context.Context, category string, amount decimal.Decimal) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return fmt.Errorf("category name is required")
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: limit must be positive", core.ErrInvalidAmount)
	}

	b.mu.Lock()
	b.limits[category] = amount
	err := b.persistLimitsLocked()
	b.mu.Unlock()
	if err != nil {
		return err
	}

	b.logger.InfoContext(ctx, "Category limit set", applog.FieldCategory, category, applog.FieldLimit, amount.String())
	return nil
}

// DeleteLimit removes a category limit and reports whether it existed.
func (b *BudgetSettings) DeleteLimit(ctx context.Context, category string) (bool, error) {
	b.mu.Lock()
	if _, ok := b.limits[category]; !ok {
		b.mu.Unlock()
		return false, nil
	}
	delete(b.limits, category)
	err := b.persistLimitsLocked()
	b.mu.Unlock()
	if err != nil {
		return true, err
	}

	b.logger.InfoContext(ctx, "Category limit removed", applog.FieldCategory, category)
	return true, nil
}

// persistLimitsLocked queues the current limits. Callers hold b.mu.
func (b *BudgetSettings) persistLimitsLocked() error {
	data, err := encodeLimits(b.limits)
	if err != nil {
		return err
	}
	return b.queue.Set(blob.KeyCategoryLimits, data)
}

func encodeLimits(limits map[string]decimal.Decimal) (string, error) {
	out := make(map[string]json.Number, len(limits))
	for k, v := range limits {
		out[k] = json.Number(v.String())
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode category limits: %w", err)
	}
	return string(b), nil
}

// decodeLimits parses a {"category": amount} object. Entries that are not
// positive numbers are dropped and reported.
func decodeLimits(raw string) (map[string]decimal.Decimal, error) {
	var in map[string]json.Number
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return map[string]decimal.Decimal{}, fmt.Errorf("decode category limits: %w", err)
	}
	out := make(map[string]decimal.Decimal, len(in))
	var bad []string
	for k, v := range in {
		d, err := decimal.NewFromString(v.String())
		if err != nil || !d.IsPositive() || strings.TrimSpace(k) == "" {
			bad = append(bad, k)
			continue
		}
		out[k] = d
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return out, fmt.Errorf("invalid limits for %v", bad)
	}
	return out, nil
}
