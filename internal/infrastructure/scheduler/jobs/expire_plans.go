// Package jobs contains implementations of scheduled jobs for Lingua Academy Hub.
// Each job is registered once at worker startup; the schedule decides when it fires.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/config"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE PLANS JOB
// ══════════════════════════════════════════════════════════════════════════════

// ExpirePlansJob runs the nightly plan-expiry sweep.
//
// The sweep is a single conditional UPDATE: every student whose plan end date
// has passed and who is not already pending is flipped to pending in one
// statement. Running it twice in a row is harmless — the second pass matches
// zero rows. The job only reports how many rows the database flipped; it never
// loads students into memory.
type ExpirePlansJob struct {
	studentRepo    student.Repository
	statusCache    StatusCachePurger
	eventPublisher shared.EventPublisher
	flags          *config.FeatureFlags
	logger         *slog.Logger

	lastStats atomic.Value // *SweepStats
}

// StatusCachePurger drops cached plan statuses in bulk after a sweep.
// The sweep flips rows it never reads, so per-student invalidation is not
// possible; the whole status keyspace is purged instead.
type StatusCachePurger interface {
	DeleteByPattern(ctx context.Context, pattern string) (int64, error)
}

// SweepStats contains statistics from a sweep run.
type SweepStats struct {
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	ExpiredCount int64
	PurgedKeys   int64
}

// NewExpirePlansJob creates the sweep job. statusCache may be nil when the
// Redis cache is disabled.
func NewExpirePlansJob(
	studentRepo student.Repository,
	statusCache StatusCachePurger,
	eventPublisher shared.EventPublisher,
	flags *config.FeatureFlags,
	logger *slog.Logger,
) *ExpirePlansJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExpirePlansJob{
		studentRepo:    studentRepo,
		statusCache:    statusCache,
		eventPublisher: eventPublisher,
		flags:          flags,
		logger:         logger,
	}
}

// Name returns the job name.
func (j *ExpirePlansJob) Name() string {
	return "expire_plans"
}

// Description returns a human-readable description.
func (j *ExpirePlansJob) Description() string {
	return "Flips students with a passed plan end date to pending payment status"
}

// Run executes the sweep.
func (j *ExpirePlansJob) Run(ctx context.Context) error {
	if j.flags != nil && !j.flags.IsEnabled(config.FeaturePlanExpirySweep, nil) {
		j.logger.Info("expire_plans sweep skipped: feature disabled")
		return nil
	}

	startedAt := time.Now()
	stats := &SweepStats{StartedAt: startedAt}

	j.logger.Info("starting expire_plans sweep")

	expired, err := j.studentRepo.ExpirePlans(ctx, startedAt)
	if err != nil {
		return fmt.Errorf("expire plans sweep: %w", err)
	}
	stats.ExpiredCount = expired

	// Cached statuses for the flipped rows are now stale. The keys carry a
	// short TTL anyway, but a pending status must not be shadowed by a
	// cached "completed" for even that long.
	if expired > 0 && j.statusCache != nil {
		purged, err := j.statusCache.DeleteByPattern(ctx, "plan:status:*")
		if err != nil {
			j.logger.Warn("failed to purge plan status cache after sweep", "error", err)
		} else {
			stats.PurgedKeys = purged
		}
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastStats.Store(stats)

	if j.eventPublisher != nil {
		event := shared.NewSweepCompletedEvent(int(expired), startedAt)
		if err := j.eventPublisher.Publish(event); err != nil {
			j.logger.Warn("failed to publish sweep completed event", "error", err)
		}
	}

	j.logger.Info("expire_plans sweep completed",
		"expired", expired,
		"purged_cache_keys", stats.PurgedKeys,
		"duration", stats.Duration.String(),
	)

	return nil
}

// LastStats returns statistics from the most recent sweep run, or nil if the
// job has not run yet.
func (j *ExpirePlansJob) LastStats() *SweepStats {
	stats := j.lastStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*SweepStats)
}
