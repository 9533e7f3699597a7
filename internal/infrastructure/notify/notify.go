// Package notify delivers parent-facing notifications.
// Delivery is best-effort: the plan lifecycle never depends on whether a
// notification went out, so senders log failures instead of propagating them
// into command handlers.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Kind identifies what a notification is about.
type Kind string

const (
	KindPlanExpired   Kind = "plan_expired"
	KindPaymentFailed Kind = "payment_failed"
	KindTrialBooked   Kind = "trial_booked"
	KindPlanActivated Kind = "plan_activated"
)

// Notification is a single message addressed to a parent.
type Notification struct {
	Kind      Kind
	Recipient string // parent email
	Subject   string
	Body      string
	CreatedAt time.Time
}

// NewNotification creates a notification stamped with the current time.
func NewNotification(kind Kind, recipient, subject, body string) *Notification {
	return &Notification{
		Kind:      kind,
		Recipient: recipient,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

// Validate checks the notification is deliverable.
func (n *Notification) Validate() error {
	if n.Recipient == "" {
		return errors.New("notification recipient is required")
	}
	if n.Subject == "" && n.Body == "" {
		return errors.New("notification must have a subject or body")
	}
	return nil
}

// Sender delivers notifications over some channel.
type Sender interface {
	// Send delivers a single notification.
	Send(ctx context.Context, n *Notification) error

	// Name returns the channel name for logging.
	Name() string
}

// ─────────────────────────────────────────────────────────────────────────────
// Console sender
// ─────────────────────────────────────────────────────────────────────────────

// ConsoleSender writes notifications to the structured log. Used in
// development and as the fallback channel when no mail provider is wired.
type ConsoleSender struct {
	logger *slog.Logger
}

// NewConsoleSender creates a console sender.
func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleSender{logger: logger}
}

// Name returns the channel name.
func (s *ConsoleSender) Name() string { return "console" }

// Send logs the notification.
func (s *ConsoleSender) Send(ctx context.Context, n *Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	s.logger.Info("notification",
		"kind", n.Kind,
		"recipient", n.Recipient,
		"subject", n.Subject,
		"body", n.Body,
	)

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fan-out sender
// ─────────────────────────────────────────────────────────────────────────────

// MultiSender delivers each notification over every configured channel.
// A channel failure is logged and does not stop the remaining channels.
type MultiSender struct {
	senders []Sender
	logger  *slog.Logger
}

// NewMultiSender creates a fan-out sender.
func NewMultiSender(logger *slog.Logger, senders ...Sender) *MultiSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSender{senders: senders, logger: logger}
}

// Name returns the channel name.
func (s *MultiSender) Name() string { return "multi" }

// Send fans the notification out to all channels.
func (s *MultiSender) Send(ctx context.Context, n *Notification) error {
	if err := n.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	for _, sender := range s.senders {
		if err := sender.Send(ctx, n); err != nil {
			s.logger.Error("notification channel failed",
				"channel", sender.Name(),
				"kind", n.Kind,
				"recipient", n.Recipient,
				"error", err,
			)
		}
	}

	return nil
}
