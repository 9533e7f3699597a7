package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStudent(t *testing.T) *Student {
	t.Helper()

	s, err := NewStudent(NewStudentParams{
		ID:       "student1",
		ParentID: "parent1",
		FullName: "Aliya Bekova",
		Language: "english",
	})
	require.NoError(t, err)
	return s
}

func TestNewStudent_Defaults(t *testing.T) {
	s := mustStudent(t)

	assert.Equal(t, PaymentNotRequired, s.PaymentStatus)
	assert.Nil(t, s.PlanStartDate)
	assert.Nil(t, s.PlanEndDate)
	assert.Equal(t, 0, s.SessionLimit)
	assert.Equal(t, 0, s.SessionUsed)
}

func TestNewStudent_Validation(t *testing.T) {
	_, err := NewStudent(NewStudentParams{ID: "s", ParentID: "p", FullName: "", Language: "english"})
	assert.ErrorIs(t, err, ErrInvalidFullName)

	_, err = NewStudent(NewStudentParams{ID: "s", ParentID: "p", FullName: "Aliya", Language: "e n"})
	assert.ErrorIs(t, err, ErrInvalidLanguage)
}

func TestEvaluatePlan_ExpiredPlanBecomesPending(t *testing.T) {
	s := mustStudent(t)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	s.PlanEndDate = &end

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, PaymentPending, s.EvaluatePlan(now))
}

func TestEvaluatePlan_ActivePlanIsCompleted(t *testing.T) {
	s := mustStudent(t)
	end := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	s.PlanEndDate = &end

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, PaymentCompleted, s.EvaluatePlan(now))
}

func TestEvaluatePlan_Idempotent(t *testing.T) {
	s := mustStudent(t)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	s.PlanEndDate = &end

	now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	first := s.EvaluatePlan(now)
	second := s.EvaluatePlan(now)
	assert.Equal(t, first, second)

	// Применение результата меняет сущность только один раз.
	assert.True(t, s.ApplyEvaluation(now))
	assert.False(t, s.ApplyEvaluation(now))
	assert.Equal(t, PaymentPending, s.PaymentStatus)
}

func TestActivatePlan(t *testing.T) {
	s := mustStudent(t)
	s.SessionUsed = 3

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ActivatePlan(start, end, 8))

	assert.Equal(t, PaymentCompleted, s.PaymentStatus)
	assert.Equal(t, 8, s.SessionLimit)
	assert.Equal(t, 0, s.SessionUsed)
	require.NotNil(t, s.PlanEndDate)
	assert.True(t, s.PlanEndDate.Equal(end))
}

func TestActivatePlan_Validation(t *testing.T) {
	s := mustStudent(t)
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, s.ActivatePlan(at, at, 8), ErrInvalidPlanWindow)
	assert.ErrorIs(t, s.ActivatePlan(at, at.AddDate(0, 1, 0), 0), ErrInvalidSessionLimit)
}

func TestConsumeSession(t *testing.T) {
	s := mustStudent(t)
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ActivatePlan(start, start.AddDate(0, 1, 0), 2))

	require.NoError(t, s.ConsumeSession())
	require.NoError(t, s.ConsumeSession())
	assert.Equal(t, 0, s.SessionsRemaining())
	assert.ErrorIs(t, s.ConsumeSession(), ErrSessionLimitReached)
}

func TestHasActivePlan(t *testing.T) {
	s := mustStudent(t)
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ActivatePlan(start, start.AddDate(0, 1, 0), 4))

	assert.True(t, s.HasActivePlan(start.AddDate(0, 0, 10)))
	assert.False(t, s.HasActivePlan(start.AddDate(0, 2, 0)))
	assert.False(t, s.HasActivePlan(start.AddDate(0, 0, -1)))
}

func TestNormalizePaymentStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    PaymentStatus
		wantErr bool
	}{
		{"completed", PaymentCompleted, false},
		{"success", PaymentCompleted, false}, // устаревшее написание старого бэкенда
		{"pending", PaymentPending, false},
		{"not-required", PaymentNotRequired, false},
		{"failed", PaymentFailed, false},
		{"paid", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizePaymentStatus(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "raw=%q", tt.raw)
			continue
		}
		assert.NoError(t, err, "raw=%q", tt.raw)
		assert.Equal(t, tt.want, got, "raw=%q", tt.raw)
	}
}

func TestClone_DeepCopiesPlanDates(t *testing.T) {
	s := mustStudent(t)
	end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	s.PlanEndDate = &end

	clone := s.Clone()
	require.NotNil(t, clone.PlanEndDate)

	later := end.AddDate(0, 1, 0)
	*clone.PlanEndDate = later
	assert.True(t, s.PlanEndDate.Equal(end))
}
