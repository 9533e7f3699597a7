package command

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/config"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/external/billing"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIRM PAYMENT COMMAND
// Activates a student's plan after a payment. The webhook that triggers this
// is a hint, not proof: when verification is enabled, the provider API is
// asked for the authoritative outcome before any plan is written.
// ══════════════════════════════════════════════════════════════════════════════

// PaymentVerifier asks the billing provider for the authoritative record.
type PaymentVerifier interface {
	VerifyPayment(ctx context.Context, reference string) (*billing.PaymentVerification, error)
}

// ConfirmPaymentCommand contains the payment confirmation data.
type ConfirmPaymentCommand struct {
	StudentID string
	Reference string

	// Plan window and session allowance to activate on success.
	PlanStart    time.Time
	PlanEnd      time.Time
	SessionLimit int

	CorrelationID string
}

// Validate validates the command.
func (c ConfirmPaymentCommand) Validate() error {
	if c.StudentID == "" {
		return fmt.Errorf("%w: student_id is required", shared.ErrInvalidInput)
	}
	if c.Reference == "" {
		return fmt.Errorf("%w: payment reference is required", shared.ErrInvalidInput)
	}
	if !c.PlanStart.Before(c.PlanEnd) {
		return fmt.Errorf("%w: plan start must precede plan end", shared.ErrInvalidInput)
	}
	if c.SessionLimit <= 0 {
		return fmt.Errorf("%w: session limit must be positive", shared.ErrInvalidInput)
	}
	return nil
}

// ConfirmPaymentResult contains the confirmation outcome.
type ConfirmPaymentResult struct {
	StudentID string
	Activated bool
	Status    student.PaymentStatus
}

// ConfirmPaymentHandler handles the ConfirmPaymentCommand.
type ConfirmPaymentHandler struct {
	studentRepo    student.Repository
	verifier       PaymentVerifier
	statusCache    student.StatusCache
	eventPublisher shared.EventPublisher
	flags          *config.FeatureFlags
}

// NewConfirmPaymentHandler creates a new ConfirmPaymentHandler.
func NewConfirmPaymentHandler(
	studentRepo student.Repository,
	verifier PaymentVerifier,
	statusCache student.StatusCache,
	eventPublisher shared.EventPublisher,
	flags *config.FeatureFlags,
) *ConfirmPaymentHandler {
	return &ConfirmPaymentHandler{
		studentRepo:    studentRepo,
		verifier:       verifier,
		statusCache:    statusCache,
		eventPublisher: eventPublisher,
		flags:          flags,
	}
}

// Handle confirms the payment and activates the plan.
func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("confirm_payment: %w", err)
	}

	s, err := h.studentRepo.GetByID(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("confirm_payment: %w", err)
	}

	if h.verificationEnabled() {
		verification, err := h.verifier.VerifyPayment(ctx, cmd.Reference)
		if err != nil {
			return nil, fmt.Errorf("confirm_payment: %w", shared.WrapError(
				"billing", "Verify", shared.ErrServiceUnavailable, "payment verification failed", err))
		}

		if verification.Failed() {
			return h.markFailed(ctx, s, cmd)
		}
		if !verification.Completed() {
			// Still pending at the provider; leave the student untouched
			// and let the provider's next webhook finish the story.
			return &ConfirmPaymentResult{
				StudentID: s.ID,
				Activated: false,
				Status:    s.PaymentStatus,
			}, nil
		}
	}

	if err := h.studentRepo.ActivatePlan(ctx, s.ID, cmd.PlanStart, cmd.PlanEnd, cmd.SessionLimit); err != nil {
		return nil, fmt.Errorf("confirm_payment: activate plan: %w", err)
	}

	if h.statusCache != nil {
		_ = h.statusCache.Invalidate(ctx, s.ID)
	}

	if h.eventPublisher != nil {
		event := shared.NewPlanActivatedEvent(s.ID, s.ParentID, cmd.PlanStart, cmd.PlanEnd, cmd.SessionLimit)
		_ = h.eventPublisher.Publish(event)
	}

	return &ConfirmPaymentResult{
		StudentID: s.ID,
		Activated: true,
		Status:    student.PaymentCompleted,
	}, nil
}

// markFailed records a provider-rejected payment.
func (h *ConfirmPaymentHandler) markFailed(ctx context.Context, s *student.Student, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	if err := h.studentRepo.UpdatePaymentStatus(ctx, s.ID, student.PaymentFailed); err != nil {
		return nil, fmt.Errorf("confirm_payment: mark failed: %w", err)
	}

	if h.statusCache != nil {
		_ = h.statusCache.Invalidate(ctx, s.ID)
	}

	if h.eventPublisher != nil {
		event := shared.NewPlanPaymentFailedEvent(s.ID, cmd.Reference, "provider reported failure")
		_ = h.eventPublisher.Publish(event)
	}

	return &ConfirmPaymentResult{
		StudentID: s.ID,
		Activated: false,
		Status:    student.PaymentFailed,
	}, nil
}

func (h *ConfirmPaymentHandler) verificationEnabled() bool {
	if h.verifier == nil {
		return false
	}
	if h.flags == nil {
		return true
	}
	return h.flags.IsEnabled(config.FeatureBillingVerification, nil)
}
