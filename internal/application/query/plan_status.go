// Package query contains read operations (CQRS - Queries).
// Queries never mutate domain state, with one deliberate exception: the plan
// status read self-heals a stale stored status before answering, so a caller
// never sees an active plan the calendar has already ended.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/config"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAN STATUS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// statusCacheTTL bounds how stale a cached status may get. A plan that
// expires mid-TTL is corrected by the next cache miss or the nightly sweep.
const statusCacheTTL = 5 * time.Minute

// PlanStatusQuery identifies the student whose status is requested.
type PlanStatusQuery struct {
	StudentID string

	// ParentID, when set, restricts the read to the requesting parent's
	// own children.
	ParentID string
}

// Validate validates the query.
func (q PlanStatusQuery) Validate() error {
	if q.StudentID == "" {
		return fmt.Errorf("%w: student_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// PlanStatusResult contains the student's plan state.
type PlanStatusResult struct {
	StudentID string
	Status    student.PaymentStatus

	// AllowsBooking reports whether paid sessions can be booked right now.
	AllowsBooking bool

	// FromCache is true when the status came from the cache layer.
	FromCache bool

	PlanStartDate     *time.Time
	PlanEndDate       *time.Time
	SessionsRemaining int
}

// PlanStatusHandler handles the PlanStatusQuery.
type PlanStatusHandler struct {
	studentRepo student.Repository
	statusCache student.StatusCache
	flags       *config.FeatureFlags
}

// NewPlanStatusHandler creates a new PlanStatusHandler.
// statusCache and flags may be nil; without a cache every read hits the
// repository.
func NewPlanStatusHandler(studentRepo student.Repository, statusCache student.StatusCache, flags *config.FeatureFlags) *PlanStatusHandler {
	return &PlanStatusHandler{
		studentRepo: studentRepo,
		statusCache: statusCache,
		flags:       flags,
	}
}

// Handle returns the student's current plan status.
func (h *PlanStatusHandler) Handle(ctx context.Context, q PlanStatusQuery) (*PlanStatusResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("plan_status: %w", err)
	}

	if q.ParentID != "" {
		owned, err := h.studentRepo.BelongsToParent(ctx, q.StudentID, q.ParentID)
		if err != nil {
			return nil, fmt.Errorf("plan_status: check ownership: %w", err)
		}
		if !owned {
			return nil, fmt.Errorf("plan_status: %w", shared.ErrStudentNotOwned)
		}
	}

	if h.cacheEnabled() {
		if status, err := h.statusCache.GetStatus(ctx, q.StudentID); err == nil {
			return &PlanStatusResult{
				StudentID:     q.StudentID,
				Status:        status,
				AllowsBooking: status.AllowsBooking(),
				FromCache:     true,
			}, nil
		}
	}

	s, err := h.studentRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("plan_status: %w", err)
	}

	// Self-heal: the stored status may predate the plan's end date. Persist
	// the corrected status so the next reader and the cache agree with the
	// calendar.
	now := time.Now()
	if s.PlanEndDate != nil && s.ApplyEvaluation(now) {
		if err := h.studentRepo.UpdatePaymentStatus(ctx, s.ID, s.PaymentStatus); err != nil {
			return nil, fmt.Errorf("plan_status: persist status: %w", err)
		}
	}

	if h.cacheEnabled() {
		_ = h.statusCache.SetStatus(ctx, s.ID, s.PaymentStatus, statusCacheTTL)
	}

	return &PlanStatusResult{
		StudentID:         s.ID,
		Status:            s.PaymentStatus,
		AllowsBooking:     s.PaymentStatus.AllowsBooking(),
		PlanStartDate:     s.PlanStartDate,
		PlanEndDate:       s.PlanEndDate,
		SessionsRemaining: s.SessionsRemaining(),
	}, nil
}

func (h *PlanStatusHandler) cacheEnabled() bool {
	if h.statusCache == nil {
		return false
	}
	if h.flags == nil {
		return true
	}
	return h.flags.IsEnabled(config.FeaturePlanStatusCache, nil)
}
