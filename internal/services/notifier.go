package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Alert is a budget-crossing notification.
type Alert struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Body     string          `json:"body"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Limit    decimal.Decimal `json:"limit"`
	Currency string          `json:"currency"`
	RaisedAt time.Time       `json:"raised_at"`
}

// Notifier delivers alerts to the user. Delivery is best effort; callers
// log failures and never retry.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, alert Alert) error

func (f NotifierFunc) Notify(ctx context.Context, alert Alert) error {
	return f(ctx, alert)
}

// MultiNotifier fans an alert out to several notifiers and returns the
// first error after trying all of them.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, alert Alert) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, alert); err != nil && first == nil {
			first = err
		}
	}
	return first
}
