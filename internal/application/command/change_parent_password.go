package command

import (
	"context"
	"fmt"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

// ChangeParentPasswordCommand rotates a parent's password.
type ChangeParentPasswordCommand struct {
	ParentID        string
	CurrentPassword string
	NewPassword     string
}

// Validate checks if the command is valid.
func (c ChangeParentPasswordCommand) Validate() error {
	if c.ParentID == "" {
		return fmt.Errorf("%w: parent_id is required", shared.ErrInvalidInput)
	}
	if c.CurrentPassword == "" {
		return fmt.Errorf("%w: current_password is required", shared.ErrInvalidInput)
	}
	if len(c.NewPassword) < 8 {
		return fmt.Errorf("%w: new password must be at least 8 characters", shared.ErrInvalidInput)
	}
	return nil
}

// ChangeParentPasswordHandler rotates parent passwords.
type ChangeParentPasswordHandler struct {
	parentRepo parent.Repository
}

// NewChangeParentPasswordHandler creates a new ChangeParentPasswordHandler.
func NewChangeParentPasswordHandler(parentRepo parent.Repository) *ChangeParentPasswordHandler {
	return &ChangeParentPasswordHandler{parentRepo: parentRepo}
}

// Handle verifies the current password and stores the new hash.
func (h *ChangeParentPasswordHandler) Handle(ctx context.Context, cmd ChangeParentPasswordCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("change_parent_password: %w", err)
	}

	p, err := h.parentRepo.GetByID(ctx, cmd.ParentID)
	if err != nil {
		return fmt.Errorf("change_parent_password: %w", err)
	}

	if !p.CheckPassword(cmd.CurrentPassword) {
		return fmt.Errorf("change_parent_password: %w", shared.ErrWrongCredentials)
	}

	if err := p.ChangePassword(cmd.NewPassword); err != nil {
		return fmt.Errorf("change_parent_password: %w: %v", shared.ErrInvalidInput, err)
	}

	if err := h.parentRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("change_parent_password: %w", err)
	}

	return nil
}
