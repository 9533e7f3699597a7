package redis

import (
	"context"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

// CounterCache implements teacher.CounterCache on top of the generic Cache.
// The counter is display-only; payouts always recount from attendance rows.
type CounterCache struct {
	cache *Cache
}

// NewCounterCache creates a new CounterCache.
func NewCounterCache(cache *Cache) *CounterCache {
	return &CounterCache{cache: cache}
}

// compile-time interface check
var _ teacher.CounterCache = (*CounterCache)(nil)

// GetCount returns the cached attendance counter for a teacher.
// Returns ErrCacheMiss when the entry is absent.
func (c *CounterCache) GetCount(ctx context.Context, teacherID string) (int, error) {
	return c.cache.GetInt(ctx, CounterKey(teacherID))
}

// SetCount caches the attendance counter for a teacher.
func (c *CounterCache) SetCount(ctx context.Context, teacherID string, count int, ttl time.Duration) error {
	return c.cache.Set(ctx, CounterKey(teacherID), count, ttl)
}

// Invalidate drops the teacher's cached counter. The single mutating event
// that requires this is recording a payout, which resets the counter to zero.
func (c *CounterCache) Invalidate(ctx context.Context, teacherID string) error {
	return c.cache.Delete(ctx, CounterKey(teacherID))
}
