package command

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

// UpdateTeacherRateCommand changes a teacher's per-session rate.
// Recorded payouts are untouched: the ledger stores settled amounts, the rate
// only shapes settlements that have not happened yet.
type UpdateTeacherRateCommand struct {
	TeacherID string
	RateCents int64
}

// Validate checks if the command is valid.
func (c UpdateTeacherRateCommand) Validate() error {
	if c.TeacherID == "" {
		return fmt.Errorf("%w: teacher_id is required", shared.ErrInvalidInput)
	}
	if c.RateCents < 0 {
		return fmt.Errorf("%w: rate_cents must be non-negative", shared.ErrInvalidInput)
	}
	return nil
}

// UpdateTeacherRateResult contains the updated rate.
type UpdateTeacherRateResult struct {
	TeacherID string
	RateCents int64
}

// UpdateTeacherRateHandler changes teacher rates.
type UpdateTeacherRateHandler struct {
	teacherRepo teacher.Repository
}

// NewUpdateTeacherRateHandler creates a new UpdateTeacherRateHandler.
func NewUpdateTeacherRateHandler(teacherRepo teacher.Repository) *UpdateTeacherRateHandler {
	return &UpdateTeacherRateHandler{teacherRepo: teacherRepo}
}

// Handle applies the new rate.
func (h *UpdateTeacherRateHandler) Handle(ctx context.Context, cmd UpdateTeacherRateCommand) (*UpdateTeacherRateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_teacher_rate: %w", err)
	}

	t, err := h.teacherRepo.GetByID(ctx, cmd.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("update_teacher_rate: %w", err)
	}

	t.RateCents = cmd.RateCents
	t.UpdatedAt = time.Now().UTC()

	if err := h.teacherRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update_teacher_rate: %w", err)
	}

	return &UpdateTeacherRateResult{TeacherID: t.ID, RateCents: t.RateCents}, nil
}
