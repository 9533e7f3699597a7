package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/trial"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRIAL ELIGIBILITY QUERY
// Answers "can this family still take its free trial?". The answer is
// advisory: a yes can be stale by the time the family books, and the booking
// path re-checks under the unique index.
// ══════════════════════════════════════════════════════════════════════════════

// TrialEligibilityQuery identifies the family by parent email.
type TrialEligibilityQuery struct {
	ParentEmail string
}

// Validate validates the query.
func (q TrialEligibilityQuery) Validate() error {
	if !parent.Email(q.ParentEmail).IsValid() {
		return fmt.Errorf("%w: invalid parent email", shared.ErrInvalidInput)
	}
	return nil
}

// TrialEligibilityResult contains the eligibility answer.
type TrialEligibilityResult struct {
	ParentEmail string
	Eligible    bool

	// UsedAt is set when the family already took its trial.
	UsedAt *time.Time
}

// TrialEligibilityHandler handles the TrialEligibilityQuery.
type TrialEligibilityHandler struct {
	trialRepo trial.Repository
}

// NewTrialEligibilityHandler creates a new TrialEligibilityHandler.
func NewTrialEligibilityHandler(trialRepo trial.Repository) *TrialEligibilityHandler {
	return &TrialEligibilityHandler{trialRepo: trialRepo}
}

// Handle reports whether the family's free trial is still available.
func (h *TrialEligibilityHandler) Handle(ctx context.Context, q TrialEligibilityQuery) (*TrialEligibilityResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("trial_eligibility: %w", err)
	}

	email := parent.Email(q.ParentEmail).Normalized().String()

	t, err := h.trialRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, trial.ErrTrialNotFound) || shared.IsNotFound(err) {
			return &TrialEligibilityResult{ParentEmail: email, Eligible: true}, nil
		}
		return nil, fmt.Errorf("trial_eligibility: %w", err)
	}

	bookedAt := t.BookedAt
	return &TrialEligibilityResult{
		ParentEmail: email,
		Eligible:    false,
		UsedAt:      &bookedAt,
	}, nil
}
