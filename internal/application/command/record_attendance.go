package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ATTENDANCE COMMAND
// Links a session outcome to its booking. One outcome per booking, enforced
// by a unique index; the handler also cross-checks that the booking really
// belongs to the student named in the record. A countable outcome (PRESENT or
// LATE) bumps the teacher's display counter.
// ══════════════════════════════════════════════════════════════════════════════

// RecordAttendanceCommand contains the session outcome to record.
type RecordAttendanceCommand struct {
	BookingID   string
	StudentID   string
	Status      booking.AttendanceStatus
	LateMinutes int

	CorrelationID string
}

// Validate validates the command.
func (c RecordAttendanceCommand) Validate() error {
	if c.BookingID == "" {
		return fmt.Errorf("%w: booking_id is required", shared.ErrInvalidInput)
	}
	if c.StudentID == "" {
		return fmt.Errorf("%w: student_id is required", shared.ErrInvalidInput)
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("%w: unknown attendance status %q", shared.ErrInvalidInput, c.Status)
	}
	return nil
}

// RecordAttendanceResult contains the recording outcome.
type RecordAttendanceResult struct {
	AttendanceID string
	TeacherID    string
	Counted      bool
}

// RecordAttendanceHandler handles the RecordAttendanceCommand.
type RecordAttendanceHandler struct {
	bookingRepo    booking.Repository
	attendanceRepo booking.AttendanceRepository
	teacherRepo    teacher.Repository
	counterCache   teacher.CounterCache
	studentRepo    student.Repository
	eventPublisher shared.EventPublisher
}

// NewRecordAttendanceHandler creates a new RecordAttendanceHandler.
func NewRecordAttendanceHandler(
	bookingRepo booking.Repository,
	attendanceRepo booking.AttendanceRepository,
	teacherRepo teacher.Repository,
	counterCache teacher.CounterCache,
	studentRepo student.Repository,
	eventPublisher shared.EventPublisher,
) *RecordAttendanceHandler {
	return &RecordAttendanceHandler{
		bookingRepo:    bookingRepo,
		attendanceRepo: attendanceRepo,
		teacherRepo:    teacherRepo,
		counterCache:   counterCache,
		studentRepo:    studentRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle records the session outcome for a booking.
func (h *RecordAttendanceHandler) Handle(ctx context.Context, cmd RecordAttendanceCommand) (*RecordAttendanceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_attendance: %w", err)
	}

	b, err := h.bookingRepo.GetByID(ctx, cmd.BookingID)
	if err != nil {
		return nil, fmt.Errorf("record_attendance: %w", err)
	}

	// The link must hold in both directions: the booking must be booked,
	// and booked by the student the record names.
	if b.Status != booking.StatusBooked {
		return nil, fmt.Errorf("record_attendance: %w", booking.ErrNotBooked)
	}
	if b.StudentID != cmd.StudentID {
		return nil, fmt.Errorf("record_attendance: %w", shared.ErrStudentNotOwned)
	}

	now := time.Now()
	if now.Before(b.StartAt) {
		return nil, fmt.Errorf("record_attendance: %w", shared.ErrAttendanceBeforeStart)
	}

	a, err := booking.NewAttendance(booking.NewAttendanceParams{
		ID:          uuid.NewString(),
		BookingID:   cmd.BookingID,
		StudentID:   cmd.StudentID,
		Status:      cmd.Status,
		LateMinutes: cmd.LateMinutes,
		AttendedOn:  b.StartAt,
	})
	if err != nil {
		return nil, fmt.Errorf("record_attendance: %w", err)
	}

	if err := h.attendanceRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("record_attendance: %w", err)
	}

	result := &RecordAttendanceResult{
		AttendanceID: a.ID,
		TeacherID:    b.TeacherID,
		Counted:      cmd.Status.Counts(),
	}

	// Only countable outcomes move the display counter. The attendance row
	// is already durable; a failed bump here is repaired by the payout
	// flow, which recounts from attendance rows anyway.
	if result.Counted {
		if err := h.teacherRepo.IncrementAttendanceCount(ctx, b.TeacherID); err != nil {
			slog.Warn("attendance counter bump failed",
				slog.String("teacher_id", b.TeacherID),
				slog.String("attendance_id", a.ID),
				slog.Any("error", err),
			)
		} else if h.counterCache != nil {
			_ = h.counterCache.Invalidate(ctx, b.TeacherID)
		}
	}

	if h.eventPublisher != nil {
		event := shared.NewAttendanceRecordedEvent(a.ID, a.BookingID, a.StudentID, string(a.Status))
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
