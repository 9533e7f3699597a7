package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TODAY'S SESSIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// TodaysSessionsQuery identifies the family whose schedule is requested.
type TodaysSessionsQuery struct {
	ParentID string

	// Day defaults to today when zero.
	Day time.Time
}

// Validate validates the query.
func (q TodaysSessionsQuery) Validate() error {
	if q.ParentID == "" {
		return fmt.Errorf("%w: parent_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// SessionEntry is one booked session on the family's schedule.
type SessionEntry struct {
	BookingID   string
	StudentID   string
	StudentName string
	TeacherID   string
	StartAt     time.Time
	EndAt       time.Time
}

// TodaysSessionsResult contains the family's schedule for the day.
type TodaysSessionsResult struct {
	ParentID string
	Day      time.Time
	Sessions []SessionEntry
}

// TodaysSessionsHandler handles the TodaysSessionsQuery.
type TodaysSessionsHandler struct {
	studentRepo student.Repository
	bookingRepo booking.Repository
}

// NewTodaysSessionsHandler creates a new TodaysSessionsHandler.
func NewTodaysSessionsHandler(studentRepo student.Repository, bookingRepo booking.Repository) *TodaysSessionsHandler {
	return &TodaysSessionsHandler{
		studentRepo: studentRepo,
		bookingRepo: bookingRepo,
	}
}

// Handle returns every booked session for the parent's children on the day.
func (h *TodaysSessionsHandler) Handle(ctx context.Context, q TodaysSessionsQuery) (*TodaysSessionsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("todays_sessions: %w", err)
	}

	day := q.Day
	if day.IsZero() {
		day = time.Now()
	}

	students, err := h.studentRepo.GetByParentID(ctx, q.ParentID)
	if err != nil {
		return nil, fmt.Errorf("todays_sessions: %w", err)
	}

	result := &TodaysSessionsResult{
		ParentID: q.ParentID,
		Day:      timeutil.StartOfDay(day),
		Sessions: []SessionEntry{},
	}

	if len(students) == 0 {
		return result, nil
	}

	names := make(map[string]string, len(students))
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
		names[s.ID] = s.FullName
	}

	bookings, err := h.bookingRepo.FindBookedInWindow(ctx, ids, timeutil.StartOfDay(day), timeutil.EndOfDay(day))
	if err != nil {
		return nil, fmt.Errorf("todays_sessions: %w", err)
	}

	for _, b := range bookings {
		result.Sessions = append(result.Sessions, SessionEntry{
			BookingID:   b.ID,
			StudentID:   b.StudentID,
			StudentName: names[b.StudentID],
			TeacherID:   b.TeacherID,
			StartAt:     b.StartAt,
			EndAt:       b.EndAt,
		})
	}

	sort.Slice(result.Sessions, func(i, j int) bool {
		return result.Sessions[i].StartAt.Before(result.Sessions[j].StartAt)
	})

	return result, nil
}
