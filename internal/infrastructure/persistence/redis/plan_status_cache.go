package redis

import (
	"context"
	"errors"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
)

// PlanStatusCache implements student.StatusCache on top of the generic Cache.
// Values are stored as raw status strings, already normalized by the domain.
type PlanStatusCache struct {
	cache *Cache
}

// NewPlanStatusCache creates a new PlanStatusCache.
func NewPlanStatusCache(cache *Cache) *PlanStatusCache {
	return &PlanStatusCache{cache: cache}
}

// compile-time interface check
var _ student.StatusCache = (*PlanStatusCache)(nil)

// GetStatus returns the cached payment status of a student.
// Returns ErrCacheMiss when the entry is absent or holds an unknown value;
// a poisoned entry must not surface as a valid status.
func (c *PlanStatusCache) GetStatus(ctx context.Context, studentID string) (student.PaymentStatus, error) {
	raw, err := c.cache.GetString(ctx, PlanStatusKey(studentID))
	if err != nil {
		return "", err
	}

	status, err := student.NormalizePaymentStatus(raw)
	if err != nil {
		if delErr := c.cache.Delete(ctx, PlanStatusKey(studentID)); delErr != nil {
			return "", errors.Join(err, delErr)
		}
		return "", ErrCacheMiss
	}

	return status, nil
}

// SetStatus caches the payment status of a student.
func (c *PlanStatusCache) SetStatus(ctx context.Context, studentID string, status student.PaymentStatus, ttl time.Duration) error {
	return c.cache.SetString(ctx, PlanStatusKey(studentID), string(status), ttl)
}

// Invalidate drops the student's cached status. Called on every status
// mutation so stale reads cannot outlive a write.
func (c *PlanStatusCache) Invalidate(ctx context.Context, studentID string) error {
	return c.cache.Delete(ctx, PlanStatusKey(studentID))
}
