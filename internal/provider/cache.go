package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fundamentals-agent/internal/interfaces"
	"fundamentals-agent/internal/types"
)

type cacheEntry struct {
	records   []types.FinancialMetrics
	timestamp time.Time
}

// CachedProvider memoizes successful fetches for a TTL. Failures are not cached.
// Returned slices are fresh, but the *float64 fields inside each record are shared with
// the cache, so callers must treat records as read-only.
type CachedProvider struct {
	inner interfaces.MetricsProvider
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

var _ interfaces.MetricsProvider = (*CachedProvider)(nil)

// NewCachedProvider wraps inner with an in-memory cache. A non-positive ttl disables caching.
func NewCachedProvider(inner interfaces.MetricsProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func cacheKey(ticker string, asOf time.Time, limit int) string {
	return fmt.Sprintf("%s|%s|%d", strings.ToUpper(ticker), asOf.Format("2006-01-02"), limit)
}

// FetchMetrics returns a cached copy when fresh, otherwise fetches from the inner provider
func (c *CachedProvider) FetchMetrics(ctx context.Context, ticker string, asOf time.Time, limit int) ([]types.FinancialMetrics, error) {
	if c.ttl <= 0 {
		return c.inner.FetchMetrics(ctx, ticker, asOf, limit)
	}

	key := cacheKey(ticker, asOf, limit)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !c.expired(entry) {
		return append([]types.FinancialMetrics(nil), entry.records...), nil
	}

	records, err := c.inner.FetchMetrics(ctx, ticker, asOf, limit)
	if err != nil {
		if ok {
			c.mu.Lock()
			c.purgeExpired()
			c.mu.Unlock()
		}
		return nil, err
	}

	c.mu.Lock()
	c.purgeExpired()
	c.entries[key] = cacheEntry{records: records, timestamp: c.now()}
	c.mu.Unlock()

	return append([]types.FinancialMetrics(nil), records...), nil
}

// size reports how many entries are held, expired or not
func (c *CachedProvider) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *CachedProvider) expired(e cacheEntry) bool {
	return c.now().Sub(e.timestamp) > c.ttl
}

// purgeExpired runs on every write so the map never holds more than one TTL's worth of
// keys. Callers hold c.mu.
func (c *CachedProvider) purgeExpired() {
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
		}
	}
}
