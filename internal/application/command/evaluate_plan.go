// Package command contains write operations (CQRS - Commands).
// Commands change system state and publish domain events; reads live in the
// query package.
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVALUATE PLAN COMMAND
// On-demand re-evaluation of a single student's payment status against the
// clock. The nightly sweep does the same thing in bulk; this command exists so
// a status read never serves a plan the calendar has already ended.
// ══════════════════════════════════════════════════════════════════════════════

// EvaluatePlanCommand identifies the student to re-evaluate.
type EvaluatePlanCommand struct {
	StudentID string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c EvaluatePlanCommand) Validate() error {
	if c.StudentID == "" {
		return fmt.Errorf("%w: student_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// EvaluatePlanResult contains the evaluation outcome.
type EvaluatePlanResult struct {
	StudentID string
	Status    student.PaymentStatus

	// Changed is true when the evaluation flipped the stored status.
	// A second evaluation right after returns Changed=false.
	Changed bool

	EvaluatedAt time.Time
}

// EvaluatePlanHandler handles the EvaluatePlanCommand.
type EvaluatePlanHandler struct {
	studentRepo    student.Repository
	parentRepo     parent.Repository
	statusCache    student.StatusCache
	eventPublisher shared.EventPublisher
}

// NewEvaluatePlanHandler creates a new EvaluatePlanHandler.
// statusCache and eventPublisher may be nil.
func NewEvaluatePlanHandler(
	studentRepo student.Repository,
	parentRepo parent.Repository,
	statusCache student.StatusCache,
	eventPublisher shared.EventPublisher,
) *EvaluatePlanHandler {
	return &EvaluatePlanHandler{
		studentRepo:    studentRepo,
		parentRepo:     parentRepo,
		statusCache:    statusCache,
		eventPublisher: eventPublisher,
	}
}

// Handle re-evaluates the student's plan against the current time.
func (h *EvaluatePlanHandler) Handle(ctx context.Context, cmd EvaluatePlanCommand) (*EvaluatePlanResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate_plan: %w", err)
	}

	now := time.Now()

	s, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("evaluate_plan: %w", err)
	}

	// An orphaned student is a data-integrity fault, not a plan state; refuse
	// to evaluate until the parent link is repaired.
	if _, err := h.parentRepo.GetByID(ctx, s.ParentID); err != nil {
		return nil, fmt.Errorf("evaluate_plan: parent link: %w", err)
	}

	result := &EvaluatePlanResult{
		StudentID:   s.ID,
		EvaluatedAt: now,
	}

	// Students without a plan window are never touched by evaluation.
	if s.PlanEndDate == nil {
		result.Status = s.PaymentStatus
		return result, nil
	}

	changed := s.ApplyEvaluation(now)
	result.Status = s.PaymentStatus
	result.Changed = changed

	if !changed {
		return result, nil
	}

	if err := h.studentRepo.UpdatePaymentStatus(ctx, s.ID, s.PaymentStatus); err != nil {
		// The student can disappear between the read and the write; report
		// it as the not-found it is rather than a generic failure.
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("evaluate_plan: %w", err)
		}
		return nil, fmt.Errorf("evaluate_plan: persist status: %w", err)
	}

	if h.statusCache != nil {
		// Best effort: a stale cache entry heals within its TTL, the write
		// above already landed.
		_ = h.statusCache.Invalidate(ctx, s.ID)
	}

	if h.eventPublisher != nil && s.PaymentStatus == student.PaymentPending {
		event := shared.NewPlanExpiredEvent(s.ID, s.ParentID, *s.PlanEndDate, "on_demand")
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
