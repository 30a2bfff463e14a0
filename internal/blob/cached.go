package blob

import (
	"context"
	"time"

	"expensex/internal/cache"
)

// Cached is a read-through cache in front of a Store. Writes go to the
// backing store first and update the cache only on success.
type Cached struct {
	next  Store
	cache *cache.LRUCache[entry]
}

type entry struct {
	value string
	ok    bool
}

// NewCached wraps next with an LRU cache of the given size and TTL.
func NewCached(next Store, size int, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache.NewLRUCache[entry](size, ttl)}
}

// Cleaner exposes the underlying LRU so it can be registered with a
// cache.Manager for periodic cleanup.
func (c *Cached) Cleaner() cache.Cleaner {
	return c.cache
}

func (c *Cached) Get(ctx context.Context, key string) (string, bool, error) {
	if e, ok := c.cache.Get(key); ok {
		return e.value, e.ok, nil
	}
	v, ok, err := c.next.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.cache.Set(key, entry{value: v, ok: ok})
	return v, ok, nil
}

func (c *Cached) Set(ctx context.Context, key, value string) error {
	if err := c.next.Set(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, entry{value: value, ok: true})
	return nil
}

func (c *Cached) Remove(ctx context.Context, key string) error {
	if err := c.next.Remove(ctx, key); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, entry{})
	return nil
}
