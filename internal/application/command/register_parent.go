package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER PARENT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RegisterParentCommand contains the registration data.
type RegisterParentCommand struct {
	Email    string
	FullName string
	Phone    string
	Password string
}

// Validate validates the command.
func (c RegisterParentCommand) Validate() error {
	if !parent.Email(c.Email).IsValid() {
		return fmt.Errorf("%w: invalid email", shared.ErrInvalidInput)
	}
	if c.FullName == "" {
		return fmt.Errorf("%w: full name is required", shared.ErrInvalidInput)
	}
	if len(c.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", shared.ErrInvalidInput)
	}
	return nil
}

// RegisterParentResult contains the newly registered parent.
type RegisterParentResult struct {
	ParentID string
	Email    string
}

// RegisterParentHandler handles the RegisterParentCommand.
type RegisterParentHandler struct {
	parentRepo     parent.Repository
	eventPublisher shared.EventPublisher
}

// NewRegisterParentHandler creates a new RegisterParentHandler.
func NewRegisterParentHandler(parentRepo parent.Repository, eventPublisher shared.EventPublisher) *RegisterParentHandler {
	return &RegisterParentHandler{
		parentRepo:     parentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle registers a new parent account.
func (h *RegisterParentHandler) Handle(ctx context.Context, cmd RegisterParentCommand) (*RegisterParentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("register_parent: %w", err)
	}

	email := parent.Email(cmd.Email).Normalized()

	// Fast path for a friendly error; the unique index on email is the
	// real guard against a concurrent duplicate registration.
	exists, err := h.parentRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register_parent: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("register_parent: %w", shared.ErrParentAlreadyExists)
	}

	p, err := parent.NewParent(parent.NewParentParams{
		ID:       uuid.NewString(),
		Email:    email,
		FullName: cmd.FullName,
		Phone:    cmd.Phone,
		Password: cmd.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("register_parent: %w: %s", shared.ErrInvalidInput, err)
	}

	if err := h.parentRepo.Create(ctx, p); err != nil {
		if isParentDuplicate(err) {
			return nil, fmt.Errorf("register_parent: %w", shared.ErrParentAlreadyExists)
		}
		return nil, fmt.Errorf("register_parent: %w", err)
	}

	if h.eventPublisher != nil {
		event := shared.NewParentRegisteredEvent(p.ID, p.Email.String(), p.FullName)
		_ = h.eventPublisher.Publish(event)
	}

	return &RegisterParentResult{
		ParentID: p.ID,
		Email:    p.Email.String(),
	}, nil
}

func isParentDuplicate(err error) bool {
	return shared.IsAlreadyExists(err) || errors.Is(err, parent.ErrParentAlreadyExists)
}
