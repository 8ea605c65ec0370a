package cache

import (
	"context"
	"sync"
	"time"

	"MarketMind/internal/domain/models"
	pkgcache "MarketMind/pkg/cache"
)

const resultKey = "intelligence:latest"

// ResultCache is the single shared slot for the intelligence result: one
// value, its timestamp, and a TTL. A second, optional shared tier (layered
// memory/Redis) lets multiple instances share the slot. The last value is
// kept past the TTL so closed-market responses can return it annotated
// instead of erroring.
type ResultCache struct {
	mu     sync.RWMutex
	cur    *models.MarketIntelligenceResult
	at     time.Time
	ttl    time.Duration
	shared pkgcache.Service
}

func NewResultCache(ttl time.Duration, shared pkgcache.Service) *ResultCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ResultCache{ttl: ttl, shared: shared}
}

// TTL returns the configured validity window.
func (c *ResultCache) TTL() time.Duration { return c.ttl }

// Get returns the cached result if it is still within the TTL, falling back
// to the shared tier on a local miss.
func (c *ResultCache) Get(ctx context.Context) (*models.MarketIntelligenceResult, bool) {
	c.mu.RLock()
	cur, at := c.cur, c.at
	c.mu.RUnlock()

	if cur != nil && time.Since(at) < c.ttl {
		return cur, true
	}

	if c.shared == nil {
		return nil, false
	}
	var r models.MarketIntelligenceResult
	if err := c.shared.Get(ctx, resultKey, &r); err != nil {
		return nil, false
	}
	c.mu.Lock()
	c.cur = &r
	c.at = r.GeneratedAt
	c.mu.Unlock()
	if time.Since(r.GeneratedAt) >= c.ttl {
		return nil, false
	}
	return &r, true
}

// Put stores a fresh result in the slot and mirrors it to the shared tier.
func (c *ResultCache) Put(ctx context.Context, r *models.MarketIntelligenceResult) {
	c.mu.Lock()
	c.cur = r
	c.at = r.GeneratedAt
	c.mu.Unlock()

	if c.shared != nil {
		_ = c.shared.Set(ctx, resultKey, r, c.ttl)
	}
}

// Last returns the most recent result regardless of TTL.
func (c *ResultCache) Last() (*models.MarketIntelligenceResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur, c.cur != nil
}
