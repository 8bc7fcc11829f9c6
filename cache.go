package bucketfront

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache is a bounded, expiring key-value store safe for concurrent use.
// When full, the least recently used entry is evicted. Expired entries
// are never returned.
type Cache[K comparable, V any] struct {
	items *ttlcache.Cache[K, V]
	ttl   time.Duration
}

// NewCache creates a cache whose entries live for ttl. A capacity of zero
// means unbounded.
func NewCache[K comparable, V any](ttl time.Duration, capacity uint64) *Cache[K, V] {
	opts := []ttlcache.Option[K, V]{
		ttlcache.WithTTL[K, V](ttl),
		ttlcache.WithDisableTouchOnHit[K, V](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[K, V](capacity))
	}

	return &Cache[K, V]{
		items: ttlcache.New[K, V](opts...),
		ttl:   ttl,
	}
}

// Get returns the value stored under key, if present and unexpired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	item := c.items.Get(key)
	if item == nil {
		var zero V
		return zero, false
	}
	return item.Value(), true
}

// Set stores value under key with the cache's default TTL, replacing any
// existing entry.
func (c *Cache[K, V]) Set(key K, value V) {
	c.items.Set(key, value, ttlcache.DefaultTTL)
}

// GetOrCompute returns the cached value for key, or calls compute and
// caches its result. Errors are returned as-is and never cached.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return v, err
	}

	c.Set(key, v)
	return v, nil
}

func (c *Cache[K, V]) TTL() time.Duration {
	return c.ttl
}

// Len returns the number of unexpired entries.
func (c *Cache[K, V]) Len() int {
	return c.items.Len()
}

func (c *Cache[K, V]) Stats() CacheStats {
	m := c.items.Metrics()
	return CacheStats{
		Entries:    c.items.Len(),
		Hits:       m.Hits,
		Misses:     m.Misses,
		Insertions: m.Insertions,
		Evictions:  m.Evictions,
	}
}

// Run purges expired entries in the background until ctx is cancelled.
// It blocks, so callers typically start it in its own goroutine.
func (c *Cache[K, V]) Run(ctx context.Context) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			c.items.Stop()
		case <-done:
		}
	}()

	c.items.Start()
}
