package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hybriddb/hybriddb/internal/telemetry/metric"
)

// Cache is a fixed-capacity key->record cache with hit/miss counters.
type Cache[K comparable, V any] struct {
	lru      *lru.Cache[K, V]
	capacity int
	hits     atomic.Int64
	misses   atomic.Int64
	metrics  atomic.Pointer[metric.Registry]
}

// SetMetrics attaches reg so every subsequent Get reports into the
// registry's cache counters in addition to this cache's own Stats.
func (c *Cache[K, V]) SetMetrics(reg *metric.Registry) {
	c.metrics.Store(reg)
}

// New creates a Cache of the given capacity. capacity must be positive.
func New[K comparable, V any](capacity int) (*Cache[K, V], error) {
	l, err := lru.New[K, V](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{lru: l, capacity: capacity}, nil
}

// Get returns the cached value for key, recording a hit or a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	reg := c.metrics.Load()
	if ok {
		c.hits.Add(1)
		if reg != nil {
			reg.CacheHitsTotal.Inc()
		}
	} else {
		c.misses.Add(1)
		if reg != nil {
			reg.CacheMissesTotal.Inc()
		}
	}
	return v, ok
}

// Put stores value under key, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *Cache[K, V]) Put(key K, value V) {
	c.lru.Add(key, value)
}

// Invalidate removes key from the cache, if present.
func (c *Cache[K, V]) Invalidate(key K) {
	c.lru.Remove(key)
}

// Clear empties the cache and resets the hit/miss counters.
func (c *Cache[K, V]) Clear() {
	c.lru.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats summarizes the cache's current effectiveness.
type Stats struct {
	Hits     int64
	Misses   int64
	Size     int
	Capacity int
	HitRatio float64
}

// Stats returns the cache's current hit/miss statistics.
func (c *Cache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var ratio float64
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return Stats{
		Hits:     hits,
		Misses:   misses,
		Size:     c.lru.Len(),
		Capacity: c.capacity,
		HitRatio: ratio,
	}
}
