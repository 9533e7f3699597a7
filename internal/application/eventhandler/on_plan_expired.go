// Package eventhandler contains subscribers that react to domain events with
// side effects outside the originating transaction, mostly parent-facing
// notifications. A failed side effect never rolls back the state change that
// produced the event.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/config"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/infrastructure/notify"
	"github.com/lingua-hub/lingua-academy-hub/pkg/timeutil"
)

// sendTimeout bounds each outbound notification. The bus does not carry a
// context, so the handler owns its own deadline.
const sendTimeout = 10 * time.Second

// ══════════════════════════════════════════════════════════════════════════════
// PLAN EXPIRED HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// OnPlanExpired notifies the parent when a student's plan runs out.
type OnPlanExpired struct {
	parentRepo parent.Repository
	sender     notify.Sender
	flags      *config.FeatureFlags
	logger     *slog.Logger
}

// NewOnPlanExpired creates the handler. flags may be nil, in which case the
// notification is always sent.
func NewOnPlanExpired(parentRepo parent.Repository, sender notify.Sender, flags *config.FeatureFlags, logger *slog.Logger) *OnPlanExpired {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnPlanExpired{
		parentRepo: parentRepo,
		sender:     sender,
		flags:      flags,
		logger:     logger,
	}
}

// Name implements shared.EventHandler.
func (h *OnPlanExpired) Name() string {
	return "notify_plan_expired"
}

// Handle implements shared.EventHandler.
func (h *OnPlanExpired) Handle(event shared.Event) error {
	expired, ok := event.(shared.PlanExpiredEvent)
	if !ok {
		return fmt.Errorf("notify_plan_expired: unexpected event type %s", event.EventType())
	}

	if h.flags != nil && !h.flags.IsEnabled(config.FeatureNotifyPlanExpired, nil) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	p, err := h.parentRepo.GetByID(ctx, expired.ParentID)
	if err != nil {
		return fmt.Errorf("notify_plan_expired: load parent: %w", err)
	}

	n := notify.NewNotification(
		notify.KindPlanExpired,
		p.Email.String(),
		"Абонемент закончился",
		fmt.Sprintf(
			"Здравствуйте, %s! Абонемент вашего ученика закончился %s. Продлите его, чтобы продолжить занятия.",
			p.FullName, timeutil.FormatDate(expired.PlanEnd),
		),
	)

	if err := h.sender.Send(ctx, n); err != nil {
		return fmt.Errorf("notify_plan_expired: %w", err)
	}

	h.logger.Info("plan expiry notification sent",
		slog.String("student_id", expired.AggregateID()),
		slog.String("parent_id", expired.ParentID),
		slog.String("expired_by", expired.ExpiredBy),
	)
	return nil
}
