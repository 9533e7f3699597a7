package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/trial"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOOK TRIAL COMMAND
// One free trial per family, keyed by parent email. The repository pre-check
// is a fast path for a friendly error; the unique index behind trialRepo.Create
// is what actually holds the line when two requests race.
// ══════════════════════════════════════════════════════════════════════════════

// BookTrialCommand contains the data needed to book a free trial.
type BookTrialCommand struct {
	ParentID  string
	StudentID string

	// SlotID optionally pins the trial to a concrete open slot.
	SlotID string

	CorrelationID string
}

// Validate validates the command.
func (c BookTrialCommand) Validate() error {
	if c.ParentID == "" {
		return fmt.Errorf("%w: parent_id is required", shared.ErrInvalidInput)
	}
	if c.StudentID == "" {
		return fmt.Errorf("%w: student_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// BookTrialResult contains the booking outcome.
type BookTrialResult struct {
	TrialID   string
	BookingID string
}

// BookTrialHandler handles the BookTrialCommand.
type BookTrialHandler struct {
	trialRepo      trial.Repository
	parentRepo     parent.Repository
	studentRepo    student.Repository
	bookingRepo    booking.Repository
	eventPublisher shared.EventPublisher
}

// NewBookTrialHandler creates a new BookTrialHandler.
func NewBookTrialHandler(
	trialRepo trial.Repository,
	parentRepo parent.Repository,
	studentRepo student.Repository,
	bookingRepo booking.Repository,
	eventPublisher shared.EventPublisher,
) *BookTrialHandler {
	return &BookTrialHandler{
		trialRepo:      trialRepo,
		parentRepo:     parentRepo,
		studentRepo:    studentRepo,
		bookingRepo:    bookingRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle books the family's one-time free trial.
func (h *BookTrialHandler) Handle(ctx context.Context, cmd BookTrialCommand) (*BookTrialResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("book_trial: %w", err)
	}

	p, err := h.parentRepo.GetByID(ctx, cmd.ParentID)
	if err != nil {
		return nil, fmt.Errorf("book_trial: %w", err)
	}

	// The student must belong to the requesting parent. A mismatch is an
	// authorization failure, not a missing record.
	owned, err := h.studentRepo.BelongsToParent(ctx, cmd.StudentID, cmd.ParentID)
	if err != nil {
		return nil, fmt.Errorf("book_trial: check ownership: %w", err)
	}
	if !owned {
		return nil, fmt.Errorf("book_trial: %w", shared.ErrStudentNotOwned)
	}

	email := p.Email.Normalized().String()

	// Fast path for UX; the unique index on Create is the deciding check.
	used, err := h.trialRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("book_trial: check eligibility: %w", err)
	}
	if used {
		return nil, fmt.Errorf("book_trial: %w", shared.ErrTrialAlreadyUsed)
	}

	result := &BookTrialResult{}

	if cmd.SlotID != "" {
		if err := h.bookingRepo.BookSlot(ctx, cmd.SlotID, cmd.StudentID); err != nil {
			return nil, fmt.Errorf("book_trial: book slot: %w", err)
		}
		result.BookingID = cmd.SlotID
	}

	t, err := trial.NewFreeTrial(uuid.NewString(), email, cmd.ParentID, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("book_trial: %w", err)
	}

	if err := h.trialRepo.Create(ctx, t); err != nil {
		// A concurrent booking won the race. Free the slot we just took so
		// it is not burned on a trial that never happened.
		if cmd.SlotID != "" {
			h.releaseSlot(ctx, cmd.SlotID)
		}
		if errors.Is(err, trial.ErrAlreadyUsed) {
			return nil, fmt.Errorf("book_trial: %w", shared.ErrTrialAlreadyUsed)
		}
		return nil, fmt.Errorf("book_trial: %w", err)
	}

	result.TrialID = t.ID

	if h.eventPublisher != nil {
		_ = h.eventPublisher.Publish(shared.NewTrialBookedEvent(cmd.ParentID, email, cmd.StudentID))
	}

	return result, nil
}

// releaseSlot is best-effort compensation; a failure leaves the slot booked
// and an operator frees it by hand.
func (h *BookTrialHandler) releaseSlot(ctx context.Context, slotID string) {
	b, err := h.bookingRepo.GetByID(ctx, slotID)
	if err != nil {
		return
	}
	if err := b.Release(); err != nil {
		return
	}
	_ = h.bookingRepo.Update(ctx, b)
}
