package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

type stubBookingRepo struct {
	booking.Repository

	bookings []*booking.Booking
}

func (r *stubBookingRepo) FindBookedInWindow(_ context.Context, studentIDs []string, from, to time.Time) ([]*booking.Booking, error) {
	ids := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		ids[id] = true
	}
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.Status == booking.StatusBooked && ids[b.StudentID] &&
			!b.StartAt.Before(from) && !b.StartAt.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func mustBookedSlot(t *testing.T, id, teacherID, studentID string, startAt time.Time) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(booking.NewBookingParams{
		ID:        id,
		TeacherID: teacherID,
		StartAt:   startAt,
		EndAt:     startAt.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, b.Book(studentID))
	return b
}

func TestTodaysSessions_ReturnsFamilyScheduleSorted(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	older := mustQueryStudent(t, "student1", "parent1")
	younger := mustQueryStudent(t, "student2", "parent1")

	bookings := &stubBookingRepo{bookings: []*booking.Booking{
		mustBookedSlot(t, "slot-late", "teacher1", "student2", day.Add(16*time.Hour)),
		mustBookedSlot(t, "slot-early", "teacher2", "student1", day.Add(9*time.Hour)),
		// Another family's session on the same day.
		mustBookedSlot(t, "slot-other", "teacher1", "stranger", day.Add(12*time.Hour)),
		// Same family, different day.
		mustBookedSlot(t, "slot-tomorrow", "teacher1", "student1", day.Add(33*time.Hour)),
	}}

	handler := NewTodaysSessionsHandler(newStubStudentRepo(older, younger), bookings)
	result, err := handler.Handle(context.Background(), TodaysSessionsQuery{ParentID: "parent1", Day: day})

	require.NoError(t, err)
	require.Len(t, result.Sessions, 2)
	assert.Equal(t, "slot-early", result.Sessions[0].BookingID)
	assert.Equal(t, "slot-late", result.Sessions[1].BookingID)
	assert.Equal(t, "Aliya Bekova", result.Sessions[0].StudentName)
}

func TestTodaysSessions_NoChildrenMeansEmptySchedule(t *testing.T) {
	handler := NewTodaysSessionsHandler(newStubStudentRepo(), &stubBookingRepo{})

	result, err := handler.Handle(context.Background(), TodaysSessionsQuery{ParentID: "parent1"})

	require.NoError(t, err)
	assert.Empty(t, result.Sessions)
}

func TestTodaysSessions_ValidatesParentID(t *testing.T) {
	handler := NewTodaysSessionsHandler(newStubStudentRepo(), &stubBookingRepo{})

	_, err := handler.Handle(context.Background(), TodaysSessionsQuery{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
