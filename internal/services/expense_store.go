package services

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"expensex/internal/analytics"
	"expensex/internal/blob"
	"expensex/internal/category"
	"expensex/internal/core"
	applog "expensex/internal/log"
)

const maxIDAttempts = 8

// ExpenseStore owns the in-memory expense collection and mirrors every
// change to the blob store through a WriteQueue. Reads never wait on
// persistence.
type ExpenseStore struct {
	store   blob.Store
	queue   *WriteQueue
	catalog *category.Catalog
	logger  *applog.Logger
	now     func() time.Time
	suffix  func() int

	mu       sync.RWMutex
	expenses []core.Expense
}

// StoreOption customizes an ExpenseStore.
type StoreOption func(*ExpenseStore)

// WithClock sets the time source used for ids, dates and totals.
func WithClock(now func() time.Time) StoreOption {
	return func(s *ExpenseStore) { s.now = now }
}

// WithIDSuffix sets the source of the id suffix appended to the creation
// millisecond. It must return values in [0, 999].
func WithIDSuffix(suffix func() int) StoreOption {
	return func(s *ExpenseStore) { s.suffix = suffix }
}

// NewExpenseStore creates an empty store. Call Load to read persisted data.
func NewExpenseStore(store blob.Store, queue *WriteQueue, catalog *category.Catalog, logger *applog.Logger, opts ...StoreOption) *ExpenseStore {
	if logger == nil {
		logger = applog.Discard()
	}
	if catalog == nil {
		catalog = category.Default()
	}
	s := &ExpenseStore{
		store:   store,
		queue:   queue,
		catalog: catalog,
		logger:  logger.WithComponent(applog.ComponentStore),
		now:     time.Now,
		suffix:  func() int { return rand.IntN(1000) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted one. A missing blob is an
// empty collection. Read or decode failures are logged and leave the
// collection empty; individually broken records are skipped.
func (s *ExpenseStore) Load(ctx context.Context) {
	var loaded []core.Expense
	defer func() {
		s.mu.Lock()
		s.expenses = loaded
		s.mu.Unlock()
	}()

	raw, ok, err := s.store.Get(ctx, blob.KeyExpenses)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read expenses", applog.FieldOperation, applog.OpLoad, applog.FieldError, err)
		return
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}

	expenses, err := core.DecodeExpenses(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Persisted expenses partly unreadable",
			applog.FieldOperation, applog.OpLoad,
			applog.FieldCount, len(expenses),
			applog.FieldError, err)
	}
	loaded = expenses
	s.logger.InfoContext(ctx, "Expenses loaded", applog.FieldCount, len(loaded))
}

// Expenses returns a snapshot of the collection in insertion order.
func (s *ExpenseStore) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Expense(nil), s.expenses...)
}

// Len returns the number of stored expenses.
func (s *ExpenseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expenses)
}

// Get returns the expense with the given id.
func (s *ExpenseStore) Get(id string) (core.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.expenses[i], true
	}
	return core.Expense{}, false
}

// Add records a new expense dated now. The amount must already be parsed;
// negative amounts are rejected.
func (s *ExpenseStore) Add(ctx context.Context, in core.NewExpense) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	now := s.now()
	name := category.DisplayName(in.Category)
	details := s.catalog.Details(name)

	color := details.Color
	if strings.TrimSpace(in.Category.Color) != "" {
		color = s.catalog.ResolveColor(in.Category.Color)
	}
	icon := in.Category.Icon
	if icon == "" {
		icon = details.Icon
	}

	e := core.Expense{
		Title:    core.TitleOrDefault(strings.TrimSpace(in.Title)),
		Amount:   in.Amount,
		Category: name,
		Date:     core.FormatDate(now),
		Time:     core.FormatTime(now),
		Color:    color,
		Icon:     icon,
	}

	s.mu.Lock()
	e.ID = s.newIDLocked(now)
	s.expenses = append(s.expenses, e)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense added",
		applog.NewFields().WithExpense(e.ID, e.Title, e.Amount, e.Category).WithOperation(applog.OpCreate).ToSlice()...)
	return e, nil
}

// Update replaces the stored expense carrying e.ID. It reports false, and
// changes nothing, when no such expense exists.
func (s *ExpenseStore) Update(ctx context.Context, e core.Expense) (bool, error) {
	_, found, err := s.Modify(ctx, e.ID, func(stored *core.Expense) { *stored = e })
	return found, err
}

// Modify applies change to a copy of the expense with the given id and
// stores the result, all under the store lock. It returns the record as
// stored and reports false when no such expense exists. A result failing
// validation is not stored.
func (s *ExpenseStore) Modify(ctx context.Context, id string, change func(*core.Expense)) (core.Expense, bool, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Expense{}, false, nil
	}
	e := s.expenses[i]
	change(&e)
	e.ID = id
	e.Category = core.CategoryName(strings.TrimSpace(e.Category))
	e.Title = core.TitleOrDefault(strings.TrimSpace(e.Title))
	if err := e.Validate(); err != nil {
		s.mu.Unlock()
		return core.Expense{}, true, err
	}
	if sameExpense(s.expenses[i], e) {
		s.mu.Unlock()
		return e, true, nil
	}
	s.expenses[i] = e
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense updated", applog.FieldExpenseID, id, applog.FieldOperation, applog.OpUpdate)
	return e, true, nil
}

// Delete removes the expense with the given id and reports whether it
// existed.
func (s *ExpenseStore) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.expenses = append(s.expenses[:i:i], s.expenses[i+1:]...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id, applog.FieldOperation, applog.OpDelete)
	return true
}

// ClearAll empties the collection and removes the persisted blob. The
// removal is queued behind any pending write of the collection.
func (s *ExpenseStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	n := len(s.expenses)
	s.expenses = nil
	err := s.queue.Remove(blob.KeyExpenses)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "All expenses cleared", applog.FieldCount, n, applog.FieldOperation, applog.OpDelete)
	return nil
}

// DailyTotal sums today's expenses.
func (s *ExpenseStore) DailyTotal() decimal.Decimal {
	return analytics.DailyTotal(s.Expenses(), s.now())
}

// MonthlyTotal sums the expenses of the given month. A zero year or month
// means the current one.
func (s *ExpenseStore) MonthlyTotal(year int, month time.Month) decimal.Decimal {
	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = now.Month()
	}
	return analytics.MonthlyTotal(s.Expenses(), year, month)
}

// Now returns the store's current time.
func (s *ExpenseStore) Now() time.Time {
	return s.now()
}

// Flush waits until queued writes have been attempted.
func (s *ExpenseStore) Flush(ctx context.Context) error {
	return s.queue.Flush(ctx)
}

// newIDLocked draws suffixes until the id is unused in the collection.
func (s *ExpenseStore) newIDLocked(now time.Time) string {
	id := core.GenerateID(now, s.suffix())
	for attempt := 0; s.indexOf(id) >= 0; attempt++ {
		if attempt >= maxIDAttempts {
			id = core.GenerateID(now, s.suffix()) + "-" + strconv.Itoa(attempt)
			continue
		}
		id = core.GenerateID(now, s.suffix())
	}
	return id
}

func (s *ExpenseStore) indexOf(id string) int {
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked queues the current collection. Callers hold s.mu so the
// queue sees writes in the order the collection changed.
func (s *ExpenseStore) persistLocked(ctx context.Context) {
	data, err := core.EncodeExpenses(s.expenses)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode expenses", applog.FieldOperation, applog.OpPersist, applog.FieldError, err)
		return
	}
	if err := s.queue.Set(blob.KeyExpenses, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to schedule expenses write", applog.FieldOperation, applog.OpPersist, applog.FieldError, err)
	}
}

func sameExpense(a, b core.Expense) bool {
	amount := a.Amount.Equal(b.Amount)
	a.Amount, b.Amount = decimal.Zero, decimal.Zero
	return amount && a == b
}
