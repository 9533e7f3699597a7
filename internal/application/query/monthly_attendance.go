package query

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
	"github.com/lingua-hub/lingua-academy-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MONTHLY ATTENDANCE QUERY
// Payout-facing report: countable sessions per teacher broken down by month.
// Counts come from attendance rows, not the teacher's display counter.
// ══════════════════════════════════════════════════════════════════════════════

// MonthlyAttendanceQuery identifies the teacher to report on.
type MonthlyAttendanceQuery struct {
	TeacherID string
}

// Validate validates the query.
func (q MonthlyAttendanceQuery) Validate() error {
	if q.TeacherID == "" {
		return fmt.Errorf("%w: teacher_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// MonthlyAttendanceRow is one month of a teacher's report.
type MonthlyAttendanceRow struct {
	Year  int
	Month int

	// Period is the row's "YYYY-MM" label.
	Period string

	Count int

	// AmountCents is the payout this month's count is worth at the
	// teacher's current rate.
	AmountCents int64
}

// MonthlyAttendanceResult contains the teacher's attendance report.
type MonthlyAttendanceResult struct {
	TeacherID   string
	TeacherName string
	Rows        []MonthlyAttendanceRow
}

// MonthlyAttendanceHandler handles the MonthlyAttendanceQuery.
type MonthlyAttendanceHandler struct {
	teacherRepo    teacher.Repository
	attendanceRepo booking.AttendanceRepository
}

// NewMonthlyAttendanceHandler creates a new MonthlyAttendanceHandler.
func NewMonthlyAttendanceHandler(teacherRepo teacher.Repository, attendanceRepo booking.AttendanceRepository) *MonthlyAttendanceHandler {
	return &MonthlyAttendanceHandler{
		teacherRepo:    teacherRepo,
		attendanceRepo: attendanceRepo,
	}
}

// Handle returns the teacher's monthly attendance report, newest month first.
func (h *MonthlyAttendanceHandler) Handle(ctx context.Context, q MonthlyAttendanceQuery) (*MonthlyAttendanceResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("monthly_attendance: %w", err)
	}

	t, err := h.teacherRepo.GetByID(ctx, q.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("monthly_attendance: %w", err)
	}

	counts, err := h.attendanceRepo.MonthlyCountsByTeacher(ctx, q.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("monthly_attendance: %w", err)
	}

	result := &MonthlyAttendanceResult{
		TeacherID:   t.ID,
		TeacherName: t.FullName,
		Rows:        make([]MonthlyAttendanceRow, 0, len(counts)),
	}

	for _, c := range counts {
		result.Rows = append(result.Rows, MonthlyAttendanceRow{
			Year:        c.Year,
			Month:       c.Month,
			Period:      timeutil.MonthKey(c.Year, time.Month(c.Month)),
			Count:       c.Count,
			AmountCents: t.PayoutFor(c.Count),
		})
	}

	return result, nil
}
