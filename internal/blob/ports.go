// Package blob defines the string-blob persistence port the application
// state is saved through, plus a read-through cache wrapper.
package blob

import (
	"context"
	"errors"
)

// Keys under which application state is persisted.
const (
	KeyExpenses       = "expenseslist"
	KeyMonthlyBudget  = "monthly_budget"
	KeyCategoryLimits = "category_limits"
	KeyAlertHistory   = "alert_history"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("blob store closed")

// Store persists opaque string values by key.
type Store interface {
	// Get returns the value stored under key. The boolean is false when
	// nothing is stored; that is not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
