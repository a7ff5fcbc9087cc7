package store

import (
	"sync"

	"github.com/rylanturner02/weather-microservice/internal/weather"
)

// MemoryCache is a concurrency-safe in-memory forecast cache. Entries are
// never evicted or expired; the cache lives for the process lifetime only.
type MemoryCache struct {
	mu sync.RWMutex

	// key: "{course}_{meeting date}_{meeting time}" at minute precision
	data map[string]weather.ForecastResult
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]weather.ForecastResult),
	}
}

// Get returns the memoized result for a key, if present.
func (c *MemoryCache) Get(key string) (weather.ForecastResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.data[key]
	return result, ok
}

// Put stores a result. Concurrent misses on the same key may both write;
// last write wins, and identical keys carry identical values.
func (c *MemoryCache) Put(key string, result weather.ForecastResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = result
}

// Snapshot returns a copy of the current cache contents for read-only
// inspection.
func (c *MemoryCache) Snapshot() map[string]weather.ForecastResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]weather.ForecastResult, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}
