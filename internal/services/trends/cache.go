package trends

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"hermes/internal/metrics"
	"hermes/pkg/logger"
)

// CacheKind names one cached result family
type CacheKind string

const (
	CacheChannels CacheKind = "channels"
	CacheCoins    CacheKind = "coins"
	CacheTopics   CacheKind = "topics"
)

type cacheEntry struct {
	data     interface{}
	storedAt time.Time
}

// ResultCache is a process-local TTL cache keyed by result kind. Concurrent
// misses for the same kind collapse into a single recomputation; waiters
// share the computed value or the computation's error.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[CacheKind]cacheEntry
	group   singleflight.Group
	now     func() time.Time
	log     *logger.Logger
}

// NewResultCache creates an empty result cache
func NewResultCache() *ResultCache {
	return &ResultCache{
		entries: make(map[CacheKind]cacheEntry),
		now:     time.Now,
		log:     logger.Get().With("component", "result_cache"),
	}
}

// GetOrCompute returns the cached value for kind when it is younger than
// ttl, otherwise runs compute once and caches its result. An entry is valid
// iff it exists and the elapsed time since its last successful write is
// below ttl; expiry is the sole retry trigger for failed upstream fetches.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	kind CacheKind,
	ttl time.Duration,
	compute func(ctx context.Context) (interface{}, error),
) (interface{}, error) {
	if data, ok := c.lookup(kind, ttl); ok {
		metrics.RecordCacheRead(string(kind), true)
		c.log.Debugf("Cache hit for %s", kind)
		return data, nil
	}
	metrics.RecordCacheRead(string(kind), false)

	data, err, shared := c.group.Do(string(kind), func() (interface{}, error) {
		// A caller that queued behind a completed flight reads its write
		if data, ok := c.lookup(kind, ttl); ok {
			return data, nil
		}

		data, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[kind] = cacheEntry{data: data, storedAt: c.now()}
		c.mu.Unlock()

		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Debugf("Shared in-flight computation for %s", kind)
	}
	return data, nil
}

// Clear drops a single kind, or every kind when kind is empty. It always
// succeeds; the next read for a cleared kind recomputes.
func (c *ResultCache) Clear(kind CacheKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if kind == "" {
		c.entries = make(map[CacheKind]cacheEntry)
		metrics.CacheClears.WithLabelValues("all").Inc()
		c.log.Info("All cache entries cleared")
		return
	}

	delete(c.entries, kind)
	metrics.CacheClears.WithLabelValues(string(kind)).Inc()
	c.log.Infof("Cache cleared for %s", kind)
}

func (c *ResultCache) lookup(kind CacheKind, ttl time.Duration) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[kind]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= ttl {
		return nil, false
	}
	return entry.data, true
}
