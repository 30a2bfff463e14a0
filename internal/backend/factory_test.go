package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensex/internal/blob"
	"expensex/internal/config"
	applog "expensex/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:   config.BackendSQLite,
		SQLiteDBPath:  "./data/x.db",
		BlobCacheSize: 8,
		BlobCacheTTL:  time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: SQLiteBackend, SQLiteDBPath: "./data/x.db", CacheSize: 8, CacheTTL: time.Minute}, cfg)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "redis"}, true},
		{"negative cache", Config{Type: MemoryBackend, CacheSize: -1}, true},
		{"cache without ttl", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db", CacheSize: 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(applog.Discard()).CreateBackend(ctx, Config{
		Type: MemoryBackend,
		Seed: map[string]string{blob.KeyMonthlyBudget: "500"},
	})
	require.NoError(t, err)
	defer res.Close()

	v, ok, err := res.Store.Get(ctx, blob.KeyMonthlyBudget)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "500", v)
	assert.Empty(t, res.Cleaners)
}

func TestCreateSQLiteBackendWithCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expensex.db")

	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: path,
		CacheSize:    4,
		CacheTTL:     time.Minute,
	})
	require.NoError(t, err)

	_, isCached := res.Store.(*blob.Cached)
	assert.True(t, isCached)
	assert.Len(t, res.Cleaners, 1)

	require.NoError(t, res.Store.Set(ctx, blob.KeyExpenses, "[]"))
	require.NoError(t, res.Close())

	// Data survives reopening without the cache.
	res, err = NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	defer res.Close()

	v, ok, err := res.Store.Get(ctx, blob.KeyExpenses)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestBackendTypes(t *testing.T) {
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
	var nilResult *BackendResult
	assert.NoError(t, nilResult.Close())
}
