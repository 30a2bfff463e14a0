// Package worker runs the notifier side of the alert queue: it consumes
// budget alerts published by the API process and delivers them.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"expensex/internal/amqp"
	"expensex/internal/cache"
	applog "expensex/internal/log"
	"expensex/internal/services"
)

// AlertSource feeds alerts to a handler until ctx ends. *amqp.Client
// satisfies it.
type AlertSource interface {
	ConsumeWithRetry(ctx context.Context, handler amqp.AlertHandler) error
}

// RelayConfig holds configuration for the alert relay
type RelayConfig struct {
	// MaxAttempts is how many deliveries of one alert are tried before it
	// is dropped (default: 1, a failed delivery is logged and acknowledged)
	MaxAttempts int

	// DedupeWindow is how long a handled alert is remembered so broker
	// redeliveries are not attempted again (default: 1h)
	DedupeWindow time.Duration

	// DedupeSize bounds the number of remembered alerts (default: 512)
	DedupeSize int
}

// DefaultRelayConfig returns sensible defaults
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		MaxAttempts:  1,
		DedupeWindow: time.Hour,
		DedupeSize:   512,
	}
}

// RelayStats counts relay outcomes since start.
type RelayStats struct {
	Delivered  int64
	Duplicates int64
	Failed     int64
	Dropped    int64
}

// AlertRelay hands consumed alerts to a downstream Notifier.
type AlertRelay struct {
	source   AlertSource
	notifier services.Notifier
	config   RelayConfig
	logger   *applog.Logger

	handled   *cache.LRUCache[struct{}]
	attempts  *cache.LRUCache[int]

	stats struct {
		delivered, duplicates, failed, dropped atomic.Int64
	}

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
	err     error
}

func NewAlertRelay(source AlertSource, notifier services.Notifier, config RelayConfig, logger *applog.Logger) *AlertRelay {
	def := DefaultRelayConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.DedupeWindow <= 0 {
		config.DedupeWindow = def.DedupeWindow
	}
	if config.DedupeSize <= 0 {
		config.DedupeSize = def.DedupeSize
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &AlertRelay{
		source:    source,
		notifier:  notifier,
		config:    config,
		logger:    logger.WithComponent(applog.ComponentWorker),
		handled:   cache.NewLRUCache[struct{}](config.DedupeSize, config.DedupeWindow),
		attempts:  cache.NewLRUCache[int](config.DedupeSize, config.DedupeWindow),
	}
}

// Cleaners exposes the relay's caches for periodic expiry.
func (r *AlertRelay) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{r.handled, r.attempts}
}

// HandleAlert delivers one alert. A returned error asks the source to
// redeliver; once MaxAttempts is reached the alert is logged and dropped.
// Delivered and dropped alerts are not attempted again.
func (r *AlertRelay) HandleAlert(ctx context.Context, alert services.Alert) error {
	key := alertKey(alert)
	if _, ok := r.handled.Get(key); ok {
		r.stats.duplicates.Add(1)
		r.logger.DebugContext(ctx, "Skipping already handled alert", "alert_id", alert.ID)
		return nil
	}

	err := r.notifier.Notify(ctx, alert)
	if err == nil {
		r.handled.Set(key, struct{}{})
		r.attempts.Delete(key)
		r.stats.delivered.Add(1)
		r.logger.InfoContext(ctx, "Delivered budget alert",
			"alert_id", alert.ID,
			applog.FieldCategory, alert.Category)
		return nil
	}

	n, _ := r.attempts.Get(key)
	n++
	if n >= r.config.MaxAttempts {
		r.attempts.Delete(key)
		r.handled.Set(key, struct{}{})
		r.stats.dropped.Add(1)
		r.logger.ErrorContext(ctx, "Dropping budget alert after failed delivery",
			"alert_id", alert.ID,
			"attempts", n,
			applog.FieldError, err)
		return nil
	}
	r.attempts.Set(key, n)
	r.stats.failed.Add(1)
	r.logger.WarnContext(ctx, "Budget alert delivery failed",
		"alert_id", alert.ID,
		"attempts", n,
		applog.FieldError, err)
	return fmt.Errorf("deliver alert %s: %w", alert.ID, err)
}

// Start begins consuming in the background. Returns an error if already running.
func (r *AlertRelay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("alert relay is already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.running = true
	r.cancel = cancel
	r.doneCh = make(chan struct{})
	r.err = nil

	go r.run(runCtx)

	r.logger.InfoContext(ctx, "Alert relay started",
		"max_attempts", r.config.MaxAttempts,
		"dedupe_window", r.config.DedupeWindow)
	return nil
}

func (r *AlertRelay) run(ctx context.Context) {
	defer close(r.doneCh)
	err := r.source.ConsumeWithRetry(ctx, r.HandleAlert)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "Alert consumer stopped", applog.FieldError, err)
	}
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// Stop cancels consumption and waits for the consumer to return.
func (r *AlertRelay) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	cancel, done := r.cancel, r.doneCh
	r.mu.Unlock()

	cancel()

	select {
	case <-done:
		r.logger.InfoContext(ctx, "Alert relay stopped gracefully")
	case <-ctx.Done():
		r.logger.WarnContext(ctx, "Alert relay stop timed out")
		return ctx.Err()
	}

	r.mu.Lock()
	r.running = false
	err := r.err
	r.mu.Unlock()
	return err
}

// Done is closed when the consumer returns. Nil before Start.
func (r *AlertRelay) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doneCh
}

// IsRunning returns whether the relay is currently running
func (r *AlertRelay) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *AlertRelay) Stats() RelayStats {
	return RelayStats{
		Delivered:  r.stats.delivered.Load(),
		Duplicates: r.stats.duplicates.Load(),
		Failed:     r.stats.failed.Load(),
		Dropped:    r.stats.dropped.Load(),
	}
}

func alertKey(a services.Alert) string {
	return a.ID + "@" + strconv.FormatInt(a.RaisedAt.UnixNano(), 10)
}
