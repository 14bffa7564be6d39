package cache

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/tallyapp/tally/internal/observability/metrics"
)

// DefaultResponseTTL is how long a read payload stays servable before the
// next lookup evicts it.
const DefaultResponseTTL = 30 * time.Second

// Metrics tracks cache performance counters.
type Metrics struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// ResponseCache is a generic TTL cache for read-endpoint payloads. Expired
// entries are evicted lazily: the first Get past the TTL deletes the entry
// and reports a miss. There is no background sweeper.
type ResponseCache[T any] struct {
	mu      sync.Mutex
	items   map[string]entry[T]
	ttl     time.Duration
	name    string
	logger  *zap.Logger
	metrics Metrics
}

type entry[T any] struct {
	value      T
	insertedAt time.Time
}

// NewResponseCache creates a cache with the given TTL and name.
func NewResponseCache[T any](ttl time.Duration, name string, logger *zap.Logger) *ResponseCache[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseCache[T]{
		items:  make(map[string]entry[T]),
		ttl:    ttl,
		name:   name,
		logger: logger,
	}
}

// Get returns the payload for key if it was set within the TTL window.
// An expired entry is deleted on the spot, so a later Set starts a fresh
// window.
func (c *ResponseCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		c.metrics.Misses++
		c.recordLookup(false)
		var zero T
		return zero, false
	}

	if time.Since(item.insertedAt) > c.ttl {
		delete(c.items, key)
		c.metrics.Misses++
		c.recordLookup(false)
		var zero T
		c.logger.Debug("Cache expired",
			zap.String("cache", c.name),
			zap.String("key", key),
		)
		return zero, false
	}

	c.metrics.Hits++
	c.recordLookup(true)
	return item.value, true
}

func (c *ResponseCache[T]) recordLookup(hit bool) {
	m := metrics.Get()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("cache", c.name))
	if hit {
		m.CacheHitsTotal.Add(context.Background(), 1, attrs)
	} else {
		m.CacheMissesTotal.Add(context.Background(), 1, attrs)
	}
}

// Set stores value under key, overwriting any existing entry and stamping
// the insertion time to now.
func (c *ResponseCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:      value,
		insertedAt: time.Now(),
	}
	c.metrics.Sets++

	c.logger.Debug("Cache set",
		zap.String("cache", c.name),
		zap.String("key", key),
		zap.Duration("ttl", c.ttl),
	)
}

// Delete removes a single entry.
func (c *ResponseCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear drops all entries. Used after a mutation when no per-key
// invalidation signal exists.
func (c *ResponseCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry[T])
	c.logger.Debug("Cache cleared", zap.String("cache", c.name))
}

// GetMetrics returns a snapshot of the hit/miss/set counters.
func (c *ResponseCache[T]) GetMetrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Size returns the number of live-or-expired entries currently held.
func (c *ResponseCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Key builds a cache key from a logical resource name and an optional
// filter suffix, so differently-filtered queries never collide.
func Key(resource, filter string) string {
	if filter == "" {
		return resource
	}
	return resource + "-" + filter
}
