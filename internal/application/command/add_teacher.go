package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

// AddTeacherCommand onboards a new teacher.
type AddTeacherCommand struct {
	FullName  string
	Email     string
	RateCents int64
}

// Validate checks if the command is valid.
func (c AddTeacherCommand) Validate() error {
	if c.FullName == "" {
		return fmt.Errorf("%w: full_name is required", shared.ErrInvalidInput)
	}
	if c.Email == "" {
		return fmt.Errorf("%w: email is required", shared.ErrInvalidInput)
	}
	if c.RateCents < 0 {
		return fmt.Errorf("%w: rate_cents must be non-negative", shared.ErrInvalidInput)
	}
	return nil
}

// AddTeacherResult contains the outcome of onboarding a teacher.
type AddTeacherResult struct {
	TeacherID string
	RateCents int64
}

// AddTeacherHandler creates teacher records.
type AddTeacherHandler struct {
	teacherRepo teacher.Repository
}

// NewAddTeacherHandler creates a new AddTeacherHandler.
func NewAddTeacherHandler(teacherRepo teacher.Repository) *AddTeacherHandler {
	return &AddTeacherHandler{teacherRepo: teacherRepo}
}

// Handle onboards the teacher.
func (h *AddTeacherHandler) Handle(ctx context.Context, cmd AddTeacherCommand) (*AddTeacherResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("add_teacher: %w", err)
	}

	t, err := teacher.NewTeacher(teacher.NewTeacherParams{
		ID:        uuid.NewString(),
		FullName:  cmd.FullName,
		Email:     cmd.Email,
		RateCents: cmd.RateCents,
	})
	if err != nil {
		return nil, fmt.Errorf("add_teacher: %w: %v", shared.ErrInvalidInput, err)
	}

	if err := h.teacherRepo.Create(ctx, t); err != nil {
		if shared.IsAlreadyExists(err) || errors.Is(err, teacher.ErrTeacherAlreadyExists) {
			return nil, fmt.Errorf("add_teacher: %w", shared.ErrTeacherAlreadyExists)
		}
		return nil, fmt.Errorf("add_teacher: %w", err)
	}

	return &AddTeacherResult{TeacherID: t.ID, RateCents: t.RateCents}, nil
}
