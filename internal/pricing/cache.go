package pricing

import (
	"sync"
	"time"
)

type cacheEntry struct {
	price     Price
	expiresAt time.Time
}

// priceCache is a single-slot TTL cache for the current price row.
type priceCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	entry *cacheEntry
}

func newPriceCache(ttl time.Duration) *priceCache {
	return &priceCache{ttl: ttl}
}

func (c *priceCache) get() (Price, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil || time.Now().After(c.entry.expiresAt) {
		return Price{}, false
	}
	return c.entry.price, true
}

func (c *priceCache) set(p Price) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = &cacheEntry{price: p, expiresAt: time.Now().Add(c.ttl)}
}

func (c *priceCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = nil
}
