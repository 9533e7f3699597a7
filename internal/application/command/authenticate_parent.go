package command

import (
	"context"
	"fmt"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

// AuthenticateParentCommand checks a parent's credentials.
type AuthenticateParentCommand struct {
	Email    string
	Password string
}

// Validate checks if the command is valid.
func (c AuthenticateParentCommand) Validate() error {
	if !parent.Email(c.Email).IsValid() {
		return fmt.Errorf("%w: email is invalid", shared.ErrInvalidInput)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrInvalidInput)
	}
	return nil
}

// AuthenticateParentResult contains the outcome of a successful login.
type AuthenticateParentResult struct {
	ParentID string
	FullName string
	Email    string
}

// AuthenticateParentHandler verifies a parent's email and password.
type AuthenticateParentHandler struct {
	parentRepo parent.Repository
}

// NewAuthenticateParentHandler creates a new AuthenticateParentHandler.
func NewAuthenticateParentHandler(parentRepo parent.Repository) *AuthenticateParentHandler {
	return &AuthenticateParentHandler{parentRepo: parentRepo}
}

// Handle checks the credentials. An unknown email and a wrong password both
// map to the same error so the endpoint cannot be used to probe for accounts.
func (h *AuthenticateParentHandler) Handle(ctx context.Context, cmd AuthenticateParentCommand) (*AuthenticateParentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("authenticate_parent: %w", err)
	}

	email := parent.Email(cmd.Email).Normalized()

	p, err := h.parentRepo.GetByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, fmt.Errorf("authenticate_parent: %w", shared.ErrWrongCredentials)
		}
		return nil, fmt.Errorf("authenticate_parent: %w", err)
	}

	if !p.CheckPassword(cmd.Password) {
		return nil, fmt.Errorf("authenticate_parent: %w", shared.ErrWrongCredentials)
	}

	return &AuthenticateParentResult{
		ParentID: p.ID,
		FullName: p.FullName,
		Email:    p.Email.String(),
	}, nil
}
