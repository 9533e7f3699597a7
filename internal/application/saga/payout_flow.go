// Package saga contains business processes that orchestrate multiple domain
// operations in a coordinated manner.
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
	"github.com/lingua-hub/lingua-academy-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYOUT FLOW SAGA
// Flow: Load Teacher → Count Attendance → Compute Amount → Record Payment
// (counter reset rides in the same transaction) → Invalidate Cache →
// Publish Event
//
// The count comes from attendance rows, never from the teacher's denormalized
// display counter: the rows are the ledger, the counter is a cache.
// ══════════════════════════════════════════════════════════════════════════════

// PayoutInput identifies the teacher and settlement period.
type PayoutInput struct {
	TeacherID string

	// Since bounds the attendance rows that enter the settlement. Zero
	// means the start of the current month.
	Since time.Time

	// PaidAt stamps the payment; zero means now.
	PaidAt time.Time
}

// Validate checks if the input is valid.
func (i PayoutInput) Validate() error {
	if i.TeacherID == "" {
		return fmt.Errorf("%w: teacher_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// PayoutResult contains the outcome of a completed payout flow.
type PayoutResult struct {
	TeacherID string

	// PaymentID is empty when there was nothing to pay.
	PaymentID string

	AttendanceCount int
	AmountCents     int64
	PaidAt          time.Time
}

// Paid reports whether a payment was actually recorded.
func (r *PayoutResult) Paid() bool {
	return r.PaymentID != ""
}

// PayoutStep represents a step in the payout flow.
type PayoutStep string

const (
	StepLoadTeacher     PayoutStep = "load_teacher"
	StepCountAttendance PayoutStep = "count_attendance"
	StepRecordPayment   PayoutStep = "record_payment"
	StepInvalidateCache PayoutStep = "invalidate_cache"
	StepPublishPayout   PayoutStep = "publish_event"
	StepPayoutComplete  PayoutStep = "complete"
)

// payoutState tracks the flow across steps.
type payoutState struct {
	input   PayoutInput
	teacher *teacher.Teacher
	count   int
	amount  int64
	payment *teacher.Payment
}

// PayoutFlowSaga orchestrates a teacher settlement.
type PayoutFlowSaga struct {
	teacherRepo    teacher.Repository
	attendanceRepo booking.AttendanceRepository
	counterCache   teacher.CounterCache
	eventPublisher shared.EventPublisher
}

// NewPayoutFlowSaga creates a new PayoutFlowSaga.
// counterCache and eventPublisher may be nil.
func NewPayoutFlowSaga(
	teacherRepo teacher.Repository,
	attendanceRepo booking.AttendanceRepository,
	counterCache teacher.CounterCache,
	eventPublisher shared.EventPublisher,
) *PayoutFlowSaga {
	return &PayoutFlowSaga{
		teacherRepo:    teacherRepo,
		attendanceRepo: attendanceRepo,
		counterCache:   counterCache,
		eventPublisher: eventPublisher,
	}
}

// Execute runs the settlement for one teacher.
func (s *PayoutFlowSaga) Execute(ctx context.Context, input PayoutInput) (*PayoutResult, error) {
	if err := input.Validate(); err != nil {
		return nil, &PayoutFlowError{Step: StepLoadTeacher, TeacherID: input.TeacherID, Cause: err}
	}

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	since := input.Since
	if since.IsZero() {
		since = timeutil.StartOfMonth(paidAt)
	}

	state := &payoutState{input: input}

	// Step 1: load the teacher for the rate.
	t, err := s.teacherRepo.GetByID(ctx, input.TeacherID)
	if err != nil {
		return nil, &PayoutFlowError{Step: StepLoadTeacher, TeacherID: input.TeacherID, Cause: err}
	}
	state.teacher = t

	// Step 2: count countable attendance rows in the period.
	count, err := s.attendanceRepo.CountByTeacherSince(ctx, input.TeacherID, since)
	if err != nil {
		return nil, &PayoutFlowError{Step: StepCountAttendance, TeacherID: input.TeacherID, Cause: err}
	}
	state.count = count
	state.amount = t.PayoutFor(count)

	// Nothing to settle: not an error, just an empty period.
	if count == 0 {
		return &PayoutResult{TeacherID: t.ID, PaidAt: paidAt}, nil
	}

	// Step 3: append to the payment ledger. The repository resets the
	// teacher's display counter in the same transaction, so a crash here
	// cannot leave a payout recorded with the counter still running.
	payment, err := teacher.NewPayment(uuid.NewString(), t.ID, count, state.amount, paidAt)
	if err != nil {
		return nil, &PayoutFlowError{Step: StepRecordPayment, TeacherID: t.ID, Cause: err}
	}
	if err := s.teacherRepo.RecordPayment(ctx, payment); err != nil {
		return nil, &PayoutFlowError{Step: StepRecordPayment, TeacherID: t.ID, Cause: err}
	}
	state.payment = payment

	// Step 4: drop the cached counter so dashboards see the fresh period.
	// Non-critical: the key carries a TTL and rebuilds from the column.
	if s.counterCache != nil {
		_ = s.counterCache.Invalidate(ctx, t.ID)
	}

	// Step 5: publish. Non-critical, events can be replayed.
	if s.eventPublisher != nil {
		event := shared.NewTeacherPaymentRecordedEvent(
			payment.ID, t.ID, payment.AttendanceCount, payment.AmountCents, payment.Month, payment.Year)
		_ = s.eventPublisher.Publish(event)
	}

	return &PayoutResult{
		TeacherID:       t.ID,
		PaymentID:       payment.ID,
		AttendanceCount: payment.AttendanceCount,
		AmountCents:     payment.AmountCents,
		PaidAt:          paidAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// PayoutFlowError represents an error during the payout flow.
type PayoutFlowError struct {
	Step      PayoutStep
	TeacherID string
	Cause     error
}

// Error implements the error interface.
func (e *PayoutFlowError) Error() string {
	return fmt.Sprintf("payout flow failed at step '%s' for teacher %s: %v", e.Step, e.TeacherID, e.Cause)
}

// Unwrap returns the underlying error.
func (e *PayoutFlowError) Unwrap() error {
	return e.Cause
}
