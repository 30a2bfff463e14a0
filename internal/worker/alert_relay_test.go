package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensex/internal/amqp"
	applog "expensex/internal/log"
	"expensex/internal/services"
)

var errSMTPDown = errors.New("smtp: connection refused")

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []services.Alert
	fails int
}

func (n *recordingNotifier) Notify(_ context.Context, a services.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fails > 0 {
		n.fails--
		return errSMTPDown
	}
	n.sent = append(n.sent, a)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// chanSource feeds alerts from a channel and records handler results.
type chanSource struct {
	alerts  chan services.Alert
	results chan error
}

func newChanSource() *chanSource {
	return &chanSource{alerts: make(chan services.Alert), results: make(chan error, 8)}
}

func (s *chanSource) ConsumeWithRetry(ctx context.Context, handler amqp.AlertHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-s.alerts:
			s.results <- handler(ctx, a)
		}
	}
}

type failingSource struct{ err error }

func (s failingSource) ConsumeWithRetry(context.Context, amqp.AlertHandler) error { return s.err }

func testAlert(id string) services.Alert {
	return services.Alert{
		ID:       id,
		Title:    services.AlertTitle,
		Category: "Food",
		RaisedAt: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestHandleAlertDelivers(t *testing.T) {
	n := &recordingNotifier{}
	r := NewAlertRelay(nil, n, RelayConfig{}, applog.Discard())

	require.NoError(t, r.HandleAlert(context.Background(), testAlert("alert-Food")))
	assert.Equal(t, 1, n.count())
	assert.Equal(t, RelayStats{Delivered: 1}, r.Stats())
}

func TestHandleAlertSkipsRedelivery(t *testing.T) {
	n := &recordingNotifier{}
	r := NewAlertRelay(nil, n, RelayConfig{}, applog.Discard())
	ctx := context.Background()

	require.NoError(t, r.HandleAlert(ctx, testAlert("alert-Food")))
	require.NoError(t, r.HandleAlert(ctx, testAlert("alert-Food")))
	assert.Equal(t, 1, n.count())

	// The same category crossing again later is a new alert.
	again := testAlert("alert-Food")
	again.RaisedAt = again.RaisedAt.Add(24 * time.Hour)
	require.NoError(t, r.HandleAlert(ctx, again))
	assert.Equal(t, 2, n.count())
	assert.EqualValues(t, 1, r.Stats().Duplicates)
}

func TestHandleAlertAttemptsOnceByDefault(t *testing.T) {
	n := &recordingNotifier{fails: 1}
	r := NewAlertRelay(nil, n, DefaultRelayConfig(), applog.Discard())
	ctx := context.Background()
	a := testAlert("alert-Food")

	// A failed delivery is acknowledged, not redelivered.
	require.NoError(t, r.HandleAlert(ctx, a))
	assert.Equal(t, RelayStats{Dropped: 1}, r.Stats())

	// A broker redelivery of the same alert is not attempted again.
	require.NoError(t, r.HandleAlert(ctx, a))
	assert.Zero(t, n.count())
	assert.Equal(t, RelayStats{Duplicates: 1, Dropped: 1}, r.Stats())
}

func TestHandleAlertRetriesThenDrops(t *testing.T) {
	n := &recordingNotifier{fails: 10}
	r := NewAlertRelay(nil, n, RelayConfig{MaxAttempts: 3}, applog.Discard())
	ctx := context.Background()
	a := testAlert("alert-Travel")

	err := r.HandleAlert(ctx, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, errSMTPDown)
	require.Error(t, r.HandleAlert(ctx, a))

	// Third failure reaches the limit and is acknowledged.
	require.NoError(t, r.HandleAlert(ctx, a))
	assert.Zero(t, n.count())
	assert.Equal(t, RelayStats{Failed: 2, Dropped: 1}, r.Stats())
}

func TestHandleAlertRecoversAfterFailure(t *testing.T) {
	n := &recordingNotifier{fails: 1}
	r := NewAlertRelay(nil, n, RelayConfig{MaxAttempts: 2}, applog.Discard())
	ctx := context.Background()

	require.Error(t, r.HandleAlert(ctx, testAlert("alert-Food")))
	require.NoError(t, r.HandleAlert(ctx, testAlert("alert-Food")))
	assert.Equal(t, 1, n.count())
}

func TestRelayLifecycle(t *testing.T) {
	src := newChanSource()
	n := &recordingNotifier{}
	r := NewAlertRelay(src, n, DefaultRelayConfig(), applog.Discard())
	ctx := context.Background()

	require.NoError(t, r.Start(ctx))
	assert.True(t, r.IsRunning())
	assert.Error(t, r.Start(ctx), "second start must fail")

	src.alerts <- testAlert("alert-Food")
	assert.NoError(t, <-src.results)
	assert.Equal(t, 1, n.count())

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, r.Stop(stopCtx))
	assert.False(t, r.IsRunning())
	require.NoError(t, r.Stop(stopCtx))
}

func TestRelayReportsConsumerError(t *testing.T) {
	boom := errors.New("start consuming: access refused")
	r := NewAlertRelay(failingSource{err: boom}, &recordingNotifier{}, RelayConfig{}, applog.Discard())

	require.NoError(t, r.Start(context.Background()))
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("consumer did not return")
	}

	err := r.Stop(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRelayCleaners(t *testing.T) {
	r := NewAlertRelay(nil, &recordingNotifier{}, RelayConfig{}, applog.Discard())
	assert.Len(t, r.Cleaners(), 2)
}
