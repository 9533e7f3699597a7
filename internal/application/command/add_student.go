package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD STUDENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentCommand contains the data for enrolling a student under a parent.
type AddStudentCommand struct {
	ParentID string
	FullName string
	Language student.Language
}

// Validate validates the command.
func (c AddStudentCommand) Validate() error {
	if c.ParentID == "" {
		return fmt.Errorf("%w: parent_id is required", shared.ErrInvalidInput)
	}
	if c.FullName == "" {
		return fmt.Errorf("%w: full name is required", shared.ErrInvalidInput)
	}
	if !c.Language.IsValid() {
		return fmt.Errorf("%w: unknown language %q", shared.ErrInvalidInput, c.Language)
	}
	return nil
}

// AddStudentResult contains the newly enrolled student.
type AddStudentResult struct {
	StudentID     string
	ParentID      string
	PaymentStatus student.PaymentStatus
}

// AddStudentHandler handles the AddStudentCommand.
type AddStudentHandler struct {
	studentRepo student.Repository
	parentRepo  parent.Repository
}

// NewAddStudentHandler creates a new AddStudentHandler.
func NewAddStudentHandler(studentRepo student.Repository, parentRepo parent.Repository) *AddStudentHandler {
	return &AddStudentHandler{
		studentRepo: studentRepo,
		parentRepo:  parentRepo,
	}
}

// Handle enrolls a new student under the given parent.
func (h *AddStudentHandler) Handle(ctx context.Context, cmd AddStudentCommand) (*AddStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("add_student: %w", err)
	}

	if _, err := h.parentRepo.GetByID(ctx, cmd.ParentID); err != nil {
		return nil, fmt.Errorf("add_student: %w", err)
	}

	s, err := student.NewStudent(student.NewStudentParams{
		ID:       uuid.NewString(),
		ParentID: cmd.ParentID,
		FullName: cmd.FullName,
		Language: cmd.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("add_student: %w: %s", shared.ErrInvalidInput, err)
	}

	if err := h.studentRepo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("add_student: %w", err)
	}

	return &AddStudentResult{
		StudentID:     s.ID,
		ParentID:      s.ParentID,
		PaymentStatus: s.PaymentStatus,
	}, nil
}
