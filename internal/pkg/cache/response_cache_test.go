package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tallyapp/tally/internal/app/models"
)

func TestResponseCacheSetGet(t *testing.T) {
	c := NewResponseCache[string](30*time.Second, "test", nil)

	t.Run("MissOnEmptyCache", func(t *testing.T) {
		value, found := c.Get("absent")
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("HitAfterSet", func(t *testing.T) {
		c.Set("greeting", "hello")
		value, found := c.Get("greeting")
		assert.True(t, found)
		assert.Equal(t, "hello", value)
	})

	t.Run("SetOverwritesExisting", func(t *testing.T) {
		c.Set("greeting", "hello")
		c.Set("greeting", "goodbye")
		value, found := c.Get("greeting")
		assert.True(t, found)
		assert.Equal(t, "goodbye", value)
		assert.Equal(t, 1, countKey(c, "greeting"))
	})
}

func countKey[T any](c *ResponseCache[T], key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		return 1
	}
	return 0
}

func TestResponseCacheExpiry(t *testing.T) {
	t.Run("ExpiredEntryIsDeletedOnLookup", func(t *testing.T) {
		c := NewResponseCache[string](20*time.Millisecond, "test", nil)
		c.Set("k", "v")
		assert.Equal(t, 1, c.Size())

		time.Sleep(30 * time.Millisecond)

		value, found := c.Get("k")
		assert.False(t, found)
		assert.Empty(t, value)
		// Lazy eviction: the expired lookup removed the entry.
		assert.Equal(t, 0, c.Size())
	})

	t.Run("EntryServedWithinTTL", func(t *testing.T) {
		c := NewResponseCache[string](50*time.Millisecond, "test", nil)
		c.Set("k", "v")

		time.Sleep(10 * time.Millisecond)

		value, found := c.Get("k")
		assert.True(t, found)
		assert.Equal(t, "v", value)
	})

	t.Run("SetAfterExpiryStartsFreshWindow", func(t *testing.T) {
		c := NewResponseCache[string](20*time.Millisecond, "test", nil)
		c.Set("k", "stale")
		time.Sleep(30 * time.Millisecond)

		_, found := c.Get("k")
		assert.False(t, found)

		c.Set("k", "fresh")
		value, found := c.Get("k")
		assert.True(t, found)
		assert.Equal(t, "fresh", value)
	})

	t.Run("ExpiredEntriesLingerUntilLookedUp", func(t *testing.T) {
		c := NewResponseCache[string](20*time.Millisecond, "test", nil)
		c.Set("a", "1")
		c.Set("b", "2")
		time.Sleep(30 * time.Millisecond)

		// No background sweeper: both entries still occupy the map.
		assert.Equal(t, 2, c.Size())

		_, _ = c.Get("a")
		assert.Equal(t, 1, c.Size())
	})
}

func TestResponseCacheClearAndDelete(t *testing.T) {
	c := NewResponseCache[int](30*time.Second, "test", nil)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("b")
	_, found := c.Get("b")
	assert.False(t, found)
	assert.Equal(t, 2, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
	_, found = c.Get("a")
	assert.False(t, found)
}

func TestResponseCacheMetrics(t *testing.T) {
	c := NewResponseCache[string](30*time.Second, "test", nil)

	_, _ = c.Get("missing")
	c.Set("k", "v")
	_, _ = c.Get("k")
	_, _ = c.Get("k")

	m := c.GetMetrics()
	assert.Equal(t, int64(2), m.Hits)
	assert.Equal(t, int64(1), m.Misses)
	assert.Equal(t, int64(1), m.Sets)
}

func TestResponseCacheConcurrentAccess(t *testing.T) {
	c := NewResponseCache[int](30*time.Second, "test", nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set(fmt.Sprintf("key-%d", n%10), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_, _ = c.Get(fmt.Sprintf("key-%d", n%10))
		}(i)
	}
	wg.Wait()

	// Every key written must be readable and intact afterwards.
	for i := 0; i < 10; i++ {
		value, found := c.Get(fmt.Sprintf("key-%d", i))
		assert.True(t, found)
		assert.Equal(t, i, value%10)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "clients", Key("clients", ""))
	assert.Equal(t, "clients-active", Key("clients", "active"))
	assert.Equal(t, "clients-archived", Key("clients", "archived"))
	assert.Equal(t, "user-123", Key("user", "123"))
}

func TestManager(t *testing.T) {
	m := NewManager(30*time.Second, nil)

	t.Run("FilteredKeysDoNotCollide", func(t *testing.T) {
		active := []models.Client{{Name: "Acme", Status: "active"}}
		archived := []models.Client{{Name: "Initech", Status: "archived"}}

		m.Clients.Set(Key("clients", "active"), active)
		m.Clients.Set(Key("clients", "archived"), archived)

		got, found := m.Clients.Get("clients-active")
		assert.True(t, found)
		assert.Equal(t, "Acme", got[0].Name)

		got, found = m.Clients.Get("clients-archived")
		assert.True(t, found)
		assert.Equal(t, "Initech", got[0].Name)
	})

	t.Run("ClearAllDropsEveryCache", func(t *testing.T) {
		m.Clients.Set("clients", []models.Client{{Name: "Acme"}})
		m.Analytics.Set("analytics", models.AnalyticsSummary{ActiveClients: 3})

		m.ClearAll()

		_, found := m.Clients.Get("clients")
		assert.False(t, found)
		_, found = m.Analytics.Get("analytics")
		assert.False(t, found)
	})

	t.Run("GetAllMetricsCoversEveryResource", func(t *testing.T) {
		metrics := m.GetAllMetrics()
		for _, name := range []string{"user", "clients", "projects", "expenses", "revenue", "analytics"} {
			_, ok := metrics[name]
			assert.True(t, ok, "missing metrics for %s", name)
		}
	})
}
