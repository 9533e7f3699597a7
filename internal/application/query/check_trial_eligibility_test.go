package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/trial"
)

type stubTrialRepo struct {
	trial.Repository

	trials map[string]*trial.FreeTrial
	getErr error
}

func (r *stubTrialRepo) GetByEmail(_ context.Context, parentEmail string) (*trial.FreeTrial, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	t, ok := r.trials[parentEmail]
	if !ok {
		return nil, trial.ErrTrialNotFound
	}
	return t, nil
}

func TestTrialEligibility_FreshFamilyIsEligible(t *testing.T) {
	handler := NewTrialEligibilityHandler(&stubTrialRepo{trials: map[string]*trial.FreeTrial{}})

	result, err := handler.Handle(context.Background(), TrialEligibilityQuery{ParentEmail: "Family@Example.com"})

	require.NoError(t, err)
	assert.True(t, result.Eligible)
	assert.Equal(t, "family@example.com", result.ParentEmail)
	assert.Nil(t, result.UsedAt)
}

func TestTrialEligibility_UsedTrialReportsWhen(t *testing.T) {
	used, err := trial.NewFreeTrial("trial1", "family@example.com", "parent1", "student1")
	require.NoError(t, err)
	handler := NewTrialEligibilityHandler(&stubTrialRepo{
		trials: map[string]*trial.FreeTrial{"family@example.com": used},
	})

	result, err := handler.Handle(context.Background(), TrialEligibilityQuery{ParentEmail: "FAMILY@example.com"})

	require.NoError(t, err)
	assert.False(t, result.Eligible)
	require.NotNil(t, result.UsedAt)
	assert.WithinDuration(t, time.Now(), *result.UsedAt, time.Minute)
}

func TestTrialEligibility_RepoErrorPropagates(t *testing.T) {
	handler := NewTrialEligibilityHandler(&stubTrialRepo{getErr: assert.AnError})

	_, err := handler.Handle(context.Background(), TrialEligibilityQuery{ParentEmail: "family@example.com"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestTrialEligibility_InvalidEmail(t *testing.T) {
	handler := NewTrialEligibilityHandler(&stubTrialRepo{})

	_, err := handler.Handle(context.Background(), TrialEligibilityQuery{ParentEmail: "not-an-email"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
