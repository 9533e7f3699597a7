package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

type stubPayoutLedger struct {
	stubTeacherRepo

	payments []*teacher.Payment
}

func (r *stubPayoutLedger) GetPayments(_ context.Context, _ string) ([]*teacher.Payment, error) {
	return r.payments, nil
}

func mustPayment(t *testing.T, id string, count int, amount int64, paidAt time.Time) *teacher.Payment {
	t.Helper()
	p, err := teacher.NewPayment(id, "teacher1", count, amount, paidAt)
	require.NoError(t, err)
	return p
}

func TestPayoutHistory_LedgerNewestFirst(t *testing.T) {
	repo := &stubPayoutLedger{
		stubTeacherRepo: stubTeacherRepo{teachers: map[string]*teacher.Teacher{
			"teacher1": mustQueryTeacher(t, "teacher1", 2000),
		}},
		payments: []*teacher.Payment{
			mustPayment(t, "pay2", 14, 28000, time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC)),
			mustPayment(t, "pay1", 9, 18000, time.Date(2026, 2, 28, 18, 0, 0, 0, time.UTC)),
		},
	}

	handler := NewPayoutHistoryHandler(repo)
	result, err := handler.Handle(context.Background(), PayoutHistoryQuery{TeacherID: "teacher1"})

	require.NoError(t, err)
	require.Len(t, result.Payments, 2)
	assert.Equal(t, "pay2", result.Payments[0].PaymentID)
	assert.Equal(t, "2026-03", result.Payments[0].Period)
	assert.Equal(t, int64(28000), result.Payments[0].AmountCents)
	assert.Equal(t, "2026-02", result.Payments[1].Period)
}

func TestPayoutHistory_EmptyLedger(t *testing.T) {
	repo := &stubPayoutLedger{
		stubTeacherRepo: stubTeacherRepo{teachers: map[string]*teacher.Teacher{
			"teacher1": mustQueryTeacher(t, "teacher1", 2000),
		}},
	}

	handler := NewPayoutHistoryHandler(repo)
	result, err := handler.Handle(context.Background(), PayoutHistoryQuery{TeacherID: "teacher1"})

	require.NoError(t, err)
	assert.Empty(t, result.Payments)
}

func TestPayoutHistory_UnknownTeacher(t *testing.T) {
	repo := &stubPayoutLedger{
		stubTeacherRepo: stubTeacherRepo{teachers: map[string]*teacher.Teacher{}},
	}

	handler := NewPayoutHistoryHandler(repo)
	_, err := handler.Handle(context.Background(), PayoutHistoryQuery{TeacherID: "ghost"})

	assert.True(t, shared.IsNotFound(err))
}
