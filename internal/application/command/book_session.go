package command

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOOK SESSION COMMAND
// Books a regular session slot for a student with an active, paid plan.
// The slot grab is a conditional UPDATE in the repository, so two students
// racing for the same slot cannot both win.
// ══════════════════════════════════════════════════════════════════════════════

// BookSessionCommand contains the data needed to book a session.
type BookSessionCommand struct {
	ParentID  string
	StudentID string
	SlotID    string

	CorrelationID string
}

// Validate validates the command.
func (c BookSessionCommand) Validate() error {
	if c.ParentID == "" {
		return fmt.Errorf("%w: parent_id is required", shared.ErrInvalidInput)
	}
	if c.StudentID == "" {
		return fmt.Errorf("%w: student_id is required", shared.ErrInvalidInput)
	}
	if c.SlotID == "" {
		return fmt.Errorf("%w: slot_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// BookSessionResult contains the booking outcome.
type BookSessionResult struct {
	BookingID string
	TeacherID string
	StartAt   time.Time
	EndAt     time.Time

	// SessionsRemaining after this booking, per the student's plan.
	SessionsRemaining int
}

// BookSessionHandler handles the BookSessionCommand.
type BookSessionHandler struct {
	bookingRepo    booking.Repository
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewBookSessionHandler creates a new BookSessionHandler.
func NewBookSessionHandler(
	bookingRepo booking.Repository,
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *BookSessionHandler {
	return &BookSessionHandler{
		bookingRepo:    bookingRepo,
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle books a session slot for the student.
func (h *BookSessionHandler) Handle(ctx context.Context, cmd BookSessionCommand) (*BookSessionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("book_session: %w", err)
	}

	owned, err := h.studentRepo.BelongsToParent(ctx, cmd.StudentID, cmd.ParentID)
	if err != nil {
		return nil, fmt.Errorf("book_session: check ownership: %w", err)
	}
	if !owned {
		return nil, fmt.Errorf("book_session: %w", shared.ErrStudentNotOwned)
	}

	s, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("book_session: %w", err)
	}

	now := time.Now()
	if !s.HasActivePlan(now) {
		return nil, fmt.Errorf("book_session: %w", shared.ErrPlanNotActive)
	}
	if s.SessionsRemaining() <= 0 {
		return nil, fmt.Errorf("book_session: %w", shared.ErrSessionLimitReached)
	}

	if err := h.bookingRepo.BookSlot(ctx, cmd.SlotID, cmd.StudentID); err != nil {
		return nil, fmt.Errorf("book_session: %w", err)
	}

	// Consuming after the grab: if the consume loses a race against another
	// booking for the same student, release the slot rather than leave the
	// student over-committed.
	if err := h.studentRepo.ConsumeSession(ctx, cmd.StudentID); err != nil {
		h.releaseSlot(ctx, cmd.SlotID)
		return nil, fmt.Errorf("book_session: %w", err)
	}

	b, err := h.bookingRepo.GetByID(ctx, cmd.SlotID)
	if err != nil {
		return nil, fmt.Errorf("book_session: reload booking: %w", err)
	}

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(shared.NewSessionBookedEvent(b.ID, cmd.StudentID, b.TeacherID, b.StartAt))
	}

	return &BookSessionResult{
		BookingID:         b.ID,
		TeacherID:         b.TeacherID,
		StartAt:           b.StartAt,
		EndAt:             b.EndAt,
		SessionsRemaining: s.SessionsRemaining() - 1,
	}, nil
}

// releaseSlot is best-effort compensation.
func (h *BookSessionHandler) releaseSlot(ctx context.Context, slotID string) {
	b, err := h.bookingRepo.GetByID(ctx, slotID)
	if err != nil {
		return
	}
	if err := b.Release(); err != nil {
		return
	}
	_ = h.bookingRepo.Update(ctx, b)
}
