// Package services holds the stateful application services: the expense
// store, budget settings and the budget alert evaluator.
package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"expensex/internal/blob"
	applog "expensex/internal/log"
)

// ErrQueueClosed is returned when writing through a closed WriteQueue.
var ErrQueueClosed = errors.New("write queue closed")

const defaultWriteTimeout = 10 * time.Second

type writeOp struct {
	value  string
	remove bool
}

// WriteQueue persists blobs asynchronously with at most one write in
// flight. Writes queued for the same key while another write is running
// coalesce: only the latest value (or removal) is applied. Failed writes are
// logged and dropped.
type WriteQueue struct {
	store   blob.Store
	logger  *applog.Logger
	timeout time.Duration

	mu       sync.Mutex
	pending  map[string]writeOp
	order    []string
	inflight bool
	closed   bool
	waiters  []chan struct{}

	wake     chan struct{}
	done     chan struct{}
	failures atomic.Int64
	writes   atomic.Int64
}

// NewWriteQueue starts the writer goroutine. Call Close to stop it.
func NewWriteQueue(store blob.Store, logger *applog.Logger) *WriteQueue {
	if logger == nil {
		logger = applog.Discard()
	}
	q := &WriteQueue{
		store:   store,
		logger:  logger.WithComponent(applog.ComponentBlob),
		timeout: defaultWriteTimeout,
		pending: make(map[string]writeOp),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// Set schedules value to be stored under key.
func (q *WriteQueue) Set(key, value string) error {
	return q.enqueue(key, writeOp{value: value})
}

// Remove schedules key for deletion.
func (q *WriteQueue) Remove(key string) error {
	return q.enqueue(key, writeOp{remove: true})
}

func (q *WriteQueue) enqueue(key string, op writeOp) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if _, queued := q.pending[key]; !queued {
		q.order = append(q.order, key)
	}
	q.pending[key] = op
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush blocks until every write queued so far has been attempted or ctx
// is done.
func (q *WriteQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	if q.idleLocked() {
		q.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	q.waiters = append(q.waiters, ch)
	q.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the writer. Further writes fail
// with ErrQueueClosed.
func (q *WriteQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failures returns how many writes have failed since start.
func (q *WriteQueue) Failures() int64 { return q.failures.Load() }

// Writes returns how many writes have been attempted since start.
func (q *WriteQueue) Writes() int64 { return q.writes.Load() }

func (q *WriteQueue) idleLocked() bool {
	return len(q.order) == 0 && !q.inflight
}

func (q *WriteQueue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.order) == 0 {
			q.inflight = false
			for _, w := range q.waiters {
				close(w)
			}
			q.waiters = nil
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.wake
			continue
		}
		key := q.order[0]
		q.order = q.order[1:]
		op := q.pending[key]
		delete(q.pending, key)
		q.inflight = true
		q.mu.Unlock()

		q.apply(key, op)
	}
}

func (q *WriteQueue) apply(key string, op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	q.writes.Add(1)
	var err error
	if op.remove {
		err = q.store.Remove(ctx, key)
	} else {
		err = q.store.Set(ctx, key, op.value)
	}
	if err != nil {
		q.failures.Add(1)
		q.logger.Error("Failed to persist blob",
			applog.FieldKey, key,
			applog.FieldOperation, applog.OpPersist,
			applog.FieldError, err)
	}
}
