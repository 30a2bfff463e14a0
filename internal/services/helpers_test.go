package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"expensex/internal/blob/memory"
	"expensex/internal/core"
	applog "expensex/internal/log"
)

var errDiskFull = errors.New("disk full")

// recordingStore wraps a memory store, records writes and can fail or
// block them on demand.
type recordingStore struct {
	*memory.Store

	mu      sync.Mutex
	sets    []string
	removes int
	failSet bool
	gate    chan struct{}
	entered chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Store: memory.New(nil)}
}

func (r *recordingStore) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	gate, entered := r.gate, r.entered
	r.gate, r.entered = nil, nil
	r.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	r.sets = append(r.sets, key+"="+value)
	fail := r.failSet
	r.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return r.Store.Set(ctx, key, value)
}

func (r *recordingStore) Remove(ctx context.Context, key string) error {
	r.mu.Lock()
	r.removes++
	r.mu.Unlock()
	return r.Store.Remove(ctx, key)
}

func (r *recordingStore) setFail(fail bool) {
	r.mu.Lock()
	r.failSet = fail
	r.mu.Unlock()
}

// blockNextSet makes the next Set wait until the returned release func is
// called. The returned channel is closed once that Set has started.
func (r *recordingStore) blockNextSet() (started <-chan struct{}, release func()) {
	gate := make(chan struct{})
	entered := make(chan struct{})
	r.mu.Lock()
	r.gate, r.entered = gate, entered
	r.mu.Unlock()
	return entered, func() { close(gate) }
}

func (r *recordingStore) writes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sets...)
}

func newQueue(t *testing.T, store *recordingStore) *WriteQueue {
	t.Helper()
	q := NewWriteQueue(store, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = q.Close(ctx)
	})
	return q
}

func flush(t *testing.T, q *WriteQueue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Flush(ctx))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(id, cat, date, amount string) core.Expense {
	return core.Expense{ID: id, Title: "t" + id, Category: cat, Date: date, Amount: dec(amount)}
}

// pausingHandler holds the first log record carrying msg until release is
// called. Mutations log after they take effect, so this parks a caller
// between its change and its return.
type pausingHandler struct {
	msg     string
	once    sync.Once
	reached chan struct{}
	gate    chan struct{}
}

func newPausingLogger(msg string) (*applog.Logger, *pausingHandler) {
	h := &pausingHandler{msg: msg, reached: make(chan struct{}), gate: make(chan struct{})}
	return applog.New(applog.Config{Handler: h}), h
}

func (h *pausingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *pausingHandler) Handle(_ context.Context, r slog.Record) error {
	if r.Message != h.msg {
		return nil
	}
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.reached)
		<-h.gate
	}
	return nil
}

func (h *pausingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *pausingHandler) WithGroup(string) slog.Handler      { return h }

func (h *pausingHandler) waitReached(t *testing.T) {
	t.Helper()
	select {
	case <-h.reached:
	case <-time.After(2 * time.Second):
		t.Fatalf("no %q record logged", h.msg)
	}
}

func (h *pausingHandler) release() { close(h.gate) }
