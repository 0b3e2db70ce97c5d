package conditionscache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/sunday/internal/domain/conditions"
)

type entry struct {
	forecast  conditions.Forecast
	expiresAt time.Time
}

// MemoryCache is an in-memory forecast cache for tests/dev.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs a cache backed by process memory.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry), now: time.Now}
}

// Get implements conditions.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (conditions.Forecast, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return conditions.Forecast{}, false, nil
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return conditions.Forecast{}, false, nil
	}
	return e.forecast, true, nil
}

// Set stores the forecast with an optional TTL.
func (c *MemoryCache) Set(_ context.Context, key string, forecast conditions.Forecast, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.entries[key] = entry{forecast: forecast, expiresAt: exp}
	return nil
}

var _ conditions.Cache = (*MemoryCache)(nil)
