// Package backend builds the blob store selected by configuration.
package backend

import (
	"context"
	"time"

	"expensex/internal/blob"
	"expensex/internal/cache"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the store and what the caller must run alongside it.
type BackendResult struct {
	Store blob.Store
	// Cleaners are caches that should be registered with a cache.Manager.
	Cleaners []cache.Cleaner
	Cleanup  CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Read-through cache in front of durable stores; size 0 disables it.
	CacheSize int
	CacheTTL  time.Duration

	// Memory specific: initial blobs, mostly for tests.
	Seed map[string]string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
