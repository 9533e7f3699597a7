package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lingua-hub/lingua-academy-hub/config"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/notify"
)

// parentLookup resolves the parent email for a student. Implemented by
// composing the student and parent repositories in wiring.
type parentLookup interface {
	EmailForStudent(ctx context.Context, studentID string) (email, fullName string, err error)
}

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT FAILED HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// OnPaymentFailed notifies the parent when the billing provider rejects a
// plan payment.
type OnPaymentFailed struct {
	lookup parentLookup
	sender notify.Sender
	flags  *config.FeatureFlags
	logger *slog.Logger
}

// NewOnPaymentFailed creates the handler.
func NewOnPaymentFailed(lookup parentLookup, sender notify.Sender, flags *config.FeatureFlags, logger *slog.Logger) *OnPaymentFailed {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnPaymentFailed{
		lookup: lookup,
		sender: sender,
		flags:  flags,
		logger: logger,
	}
}

// Name implements shared.EventHandler.
func (h *OnPaymentFailed) Name() string {
	return "notify_payment_failed"
}

// Handle implements shared.EventHandler.
func (h *OnPaymentFailed) Handle(event shared.Event) error {
	failed, ok := event.(shared.PlanPaymentFailedEvent)
	if !ok {
		return fmt.Errorf("notify_payment_failed: unexpected event type %s", event.EventType())
	}

	if h.flags != nil && !h.flags.IsEnabled(config.FeatureNotifyPaymentFailed, nil) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	email, fullName, err := h.lookup.EmailForStudent(ctx, failed.AggregateID())
	if err != nil {
		return fmt.Errorf("notify_payment_failed: resolve parent: %w", err)
	}

	n := notify.NewNotification(
		notify.KindPaymentFailed,
		email,
		"Оплата не прошла",
		fmt.Sprintf(
			"Здравствуйте, %s! Оплата абонемента не прошла (платёж %s). Попробуйте ещё раз или свяжитесь с нами.",
			fullName, failed.Reference,
		),
	)

	if err := h.sender.Send(ctx, n); err != nil {
		return fmt.Errorf("notify_payment_failed: %w", err)
	}

	h.logger.Info("payment failure notification sent",
		slog.String("student_id", failed.AggregateID()),
		slog.String("reference", failed.Reference),
	)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PARENT LOOKUP
// ══════════════════════════════════════════════════════════════════════════════

// RepoParentLookup resolves a student's parent through the repositories.
type RepoParentLookup struct {
	studentRepo student.Repository
	parentRepo  parent.Repository
}

// NewRepoParentLookup creates a RepoParentLookup.
func NewRepoParentLookup(studentRepo student.Repository, parentRepo parent.Repository) *RepoParentLookup {
	return &RepoParentLookup{studentRepo: studentRepo, parentRepo: parentRepo}
}

// EmailForStudent implements parentLookup.
func (l *RepoParentLookup) EmailForStudent(ctx context.Context, studentID string) (string, string, error) {
	s, err := l.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return "", "", err
	}
	p, err := l.parentRepo.GetByID(ctx, s.ParentID)
	if err != nil {
		return "", "", err
	}
	return p.Email.String(), p.FullName, nil
}
