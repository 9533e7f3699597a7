package query

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
	"github.com/lingua-hub/lingua-academy-hub/pkg/timeutil"
)

// PayoutHistoryQuery requests the payment ledger of one teacher.
type PayoutHistoryQuery struct {
	TeacherID string
}

// Validate checks if the query is valid.
func (q PayoutHistoryQuery) Validate() error {
	if q.TeacherID == "" {
		return fmt.Errorf("%w: teacher_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// PayoutHistoryEntry is one settled payment.
type PayoutHistoryEntry struct {
	PaymentID       string
	Period          string
	AttendanceCount int
	AmountCents     int64
	PaidAt          time.Time
}

// PayoutHistoryResult contains the teacher's settlement ledger, newest first.
type PayoutHistoryResult struct {
	TeacherID string
	Payments  []PayoutHistoryEntry
}

// PayoutHistoryHandler reads the append-only payment ledger.
type PayoutHistoryHandler struct {
	teacherRepo teacher.Repository
}

// NewPayoutHistoryHandler creates a new PayoutHistoryHandler.
func NewPayoutHistoryHandler(teacherRepo teacher.Repository) *PayoutHistoryHandler {
	return &PayoutHistoryHandler{teacherRepo: teacherRepo}
}

// Handle returns all recorded payouts for the teacher.
func (h *PayoutHistoryHandler) Handle(ctx context.Context, q PayoutHistoryQuery) (*PayoutHistoryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("payout_history: %w", err)
	}

	// Existence check first: an empty ledger for a real teacher is a valid
	// answer, a ledger for a ghost is not.
	if _, err := h.teacherRepo.GetByID(ctx, q.TeacherID); err != nil {
		return nil, fmt.Errorf("payout_history: %w", err)
	}

	payments, err := h.teacherRepo.GetPayments(ctx, q.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("payout_history: %w", err)
	}

	entries := make([]PayoutHistoryEntry, 0, len(payments))
	for _, p := range payments {
		entries = append(entries, PayoutHistoryEntry{
			PaymentID:       p.ID,
			Period:          timeutil.MonthKey(p.Year, time.Month(p.Month)),
			AttendanceCount: p.AttendanceCount,
			AmountCents:     p.AmountCents,
			PaidAt:          p.PaidAt,
		})
	}

	return &PayoutHistoryResult{TeacherID: q.TeacherID, Payments: entries}, nil
}
