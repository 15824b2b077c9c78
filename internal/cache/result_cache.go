package cache

import (
	"context"
	"sync"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/redis"
)

// SecondTier is a shared cache consulted after a local miss
type SecondTier interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type entry struct {
	result   *contracts.ShieldResult
	storedAt time.Time
}

// ResultCache is a bounded in-memory cache of scored results keyed by signal_id.
// Entries expire after ttl; at capacity the oldest insertion is evicted.
// ⭐ SSOT: Shield 결과 캐싱은 이 구조체에서만
type ResultCache struct {
	mu       sync.Mutex
	entries  map[string]entry
	order    []string
	capacity int
	ttl      time.Duration
	l2       SecondTier
	clock    contracts.Clock
	logger   *logger.Logger
}

// New creates a result cache. l2 may be nil.
func New(capacity int, ttl time.Duration, l2 SecondTier, log *logger.Logger, clock contracts.Clock) *ResultCache {
	if capacity <= 0 {
		capacity = 1
	}
	if clock == nil {
		clock = contracts.SystemClock
	}
	return &ResultCache{
		entries:  make(map[string]entry, capacity),
		capacity: capacity,
		ttl:      ttl,
		l2:       l2,
		clock:    clock,
		logger:   log.Component("result_cache"),
	}
}

// Put stores a copy of r. A later write for the same signal replaces the earlier one.
func (c *ResultCache) Put(ctx context.Context, r *contracts.ShieldResult) {
	if r == nil || r.SignalID == "" {
		return
	}
	c.putLocal(r.Clone())

	if c.l2 != nil {
		if err := c.l2.Set(ctx, redis.ResultKey(r.SignalID), r, c.ttl); err != nil {
			c.logger.WithError(err).WithField("signal_id", r.SignalID).Warn("Failed to write second-tier cache")
		}
	}
}

func (c *ResultCache) putLocal(r *contracts.ShieldResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[r.SignalID]; exists {
		c.removeFromOrder(r.SignalID)
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.logger.WithField("signal_id", oldest).Debug("Evicted oldest cache entry")
	}

	c.entries[r.SignalID] = entry{result: r, storedAt: c.clock()}
	c.order = append(c.order, r.SignalID)
}

// Get returns a copy of the cached result, consulting the second tier on a local miss
func (c *ResultCache) Get(ctx context.Context, signalID string) (*contracts.ShieldResult, bool) {
	if r, ok := c.getLocal(signalID); ok {
		return r, true
	}
	if c.l2 == nil {
		return nil, false
	}

	var r contracts.ShieldResult
	found, err := c.l2.Get(ctx, redis.ResultKey(signalID), &r)
	if err != nil {
		c.logger.WithError(err).WithField("signal_id", signalID).Warn("Failed to read second-tier cache")
		return nil, false
	}
	if !found {
		return nil, false
	}

	c.putLocal(r.Clone())
	return &r, true
}

func (c *ResultCache) getLocal(signalID string) (*contracts.ShieldResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[signalID]
	if !ok {
		return nil, false
	}
	if c.expired(e) {
		delete(c.entries, signalID)
		c.removeFromOrder(signalID)
		return nil, false
	}
	return e.result.Clone(), true
}

// Delete removes a signal from both tiers
func (c *ResultCache) Delete(ctx context.Context, signalID string) {
	c.mu.Lock()
	if _, ok := c.entries[signalID]; ok {
		delete(c.entries, signalID)
		c.removeFromOrder(signalID)
	}
	c.mu.Unlock()

	if c.l2 != nil {
		if err := c.l2.Delete(ctx, redis.ResultKey(signalID)); err != nil {
			c.logger.WithError(err).WithField("signal_id", signalID).Warn("Failed to delete second-tier cache entry")
		}
	}
}

// Clear empties the local tier
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry, c.capacity)
	c.order = nil
	c.logger.Info("Cleared result cache")
}

// Len returns the number of locally cached entries, expired ones included
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// CleanExpired removes expired entries from the local tier
func (c *ResultCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	count := 0
	for _, id := range c.order {
		if c.expired(c.entries[id]) {
			delete(c.entries, id)
			count++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept

	if count > 0 {
		c.logger.WithField("count", count).Info("Cleaned expired results from cache")
	}
	return count
}

// Stats returns cache statistics
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		TotalCount: len(c.entries),
		Capacity:   c.capacity,
		SecondTier: c.l2 != nil,
	}
	for _, e := range c.entries {
		if c.expired(e) {
			stats.ExpiredCount++
		}
	}
	stats.FreshCount = stats.TotalCount - stats.ExpiredCount
	return stats
}

// Stats represents cache statistics
type Stats struct {
	TotalCount   int  `json:"total_count"`
	FreshCount   int  `json:"fresh_count"`
	ExpiredCount int  `json:"expired_count"`
	Capacity     int  `json:"capacity"`
	SecondTier   bool `json:"second_tier"`
}

func (c *ResultCache) expired(e entry) bool {
	return c.ttl > 0 && c.clock().Sub(e.storedAt) > c.ttl
}

func (c *ResultCache) removeFromOrder(signalID string) {
	for i, id := range c.order {
		if id == signalID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
