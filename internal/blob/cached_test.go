package blob_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensex/internal/blob"
	"expensex/internal/blob/memory"
)

type countingStore struct {
	blob.Store
	gets   int
	setErr error
}

func (c *countingStore) Get(ctx context.Context, key string) (string, bool, error) {
	c.gets++
	return c.Store.Get(ctx, key)
}

func (c *countingStore) Set(ctx context.Context, key, value string) error {
	if c.setErr != nil {
		return c.setErr
	}
	return c.Store.Set(ctx, key, value)
}

func TestCachedReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: memory.New(map[string]string{blob.KeyMonthlyBudget: "20000"})}
	c := blob.NewCached(inner, 8, time.Minute)

	for i := 0; i < 3; i++ {
		v, ok, err := c.Get(ctx, blob.KeyMonthlyBudget)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "20000", v)
	}
	assert.Equal(t, 1, inner.gets)

	_, ok, err := c.Get(ctx, blob.KeyAlertHistory)
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, _ = c.Get(ctx, blob.KeyAlertHistory)
	assert.Equal(t, 2, inner.gets, "misses are cached too")
}

func TestCachedWriteThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: memory.New(nil)}
	c := blob.NewCached(inner, 8, time.Minute)

	require.NoError(t, c.Set(ctx, blob.KeyExpenses, "[]"))
	v, ok, err := c.Get(ctx, blob.KeyExpenses)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
	assert.Equal(t, 0, inner.gets)

	require.NoError(t, c.Remove(ctx, blob.KeyExpenses))
	_, ok, _ = c.Get(ctx, blob.KeyExpenses)
	assert.False(t, ok)

	inner.setErr = errors.New("disk full")
	assert.Error(t, c.Set(ctx, blob.KeyExpenses, "[1]"))
	_, ok, _ = c.Get(ctx, blob.KeyExpenses)
	assert.False(t, ok, "failed write must not be visible")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New(nil)
	require.NoError(t, s.Set(ctx, "k", "v"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	require.NoError(t, s.Remove(ctx, "k"))
	require.NoError(t, s.Remove(ctx, "k"))
	assert.Equal(t, 0, s.Keys())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = s.Get(cctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
