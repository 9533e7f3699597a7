package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSlot(t *testing.T) *Booking {
	t.Helper()

	start := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	b, err := NewBooking(NewBookingParams{
		ID:        "booking1",
		TeacherID: "teacher1",
		StartAt:   start,
		EndAt:     start.Add(50 * time.Minute),
	})
	require.NoError(t, err)
	return b
}

func TestNewBooking_InvalidWindow(t *testing.T) {
	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

	_, err := NewBooking(NewBookingParams{ID: "b", TeacherID: "t", StartAt: at, EndAt: at})
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)

	_, err = NewBooking(NewBookingParams{ID: "b", TeacherID: "t", StartAt: at, EndAt: at.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)
}

func TestBook_TransitionsAndRejectsDouble(t *testing.T) {
	b := mustSlot(t)
	assert.Equal(t, StatusAvailable, b.Status)

	require.NoError(t, b.Book("student1"))
	assert.Equal(t, StatusBooked, b.Status)
	assert.Equal(t, "student1", b.StudentID)

	assert.ErrorIs(t, b.Book("student2"), ErrAlreadyBooked)
}

func TestRelease(t *testing.T) {
	b := mustSlot(t)

	assert.ErrorIs(t, b.Release(), ErrNotBooked)

	require.NoError(t, b.Book("student1"))
	require.NoError(t, b.Release())
	assert.Equal(t, StatusAvailable, b.Status)
	assert.Empty(t, b.StudentID)
}

func TestAttendanceStatus(t *testing.T) {
	assert.True(t, AttendancePresent.IsValid())
	assert.True(t, AttendanceAbsent.IsValid())
	assert.True(t, AttendanceLate.IsValid())
	assert.False(t, AttendanceStatus("present").IsValid()) // только верхний регистр
	assert.False(t, AttendanceStatus("EXCUSED").IsValid())

	// LATE засчитывается преподавателю наравне с PRESENT.
	assert.True(t, AttendancePresent.Counts())
	assert.True(t, AttendanceLate.Counts())
	assert.False(t, AttendanceAbsent.Counts())
}

func TestNewAttendance_LateMinutes(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	_, err := NewAttendance(NewAttendanceParams{
		ID:          "a1",
		BookingID:   "b1",
		StudentID:   "s1",
		Status:      AttendanceLate,
		LateMinutes: 10,
		AttendedOn:  day,
	})
	assert.NoError(t, err)

	_, err = NewAttendance(NewAttendanceParams{
		ID:          "a2",
		BookingID:   "b2",
		StudentID:   "s1",
		Status:      AttendanceLate,
		LateMinutes: -1,
		AttendedOn:  day,
	})
	assert.ErrorIs(t, err, ErrInvalidLateMinutes)

	_, err = NewAttendance(NewAttendanceParams{
		ID:          "a3",
		BookingID:   "b3",
		StudentID:   "s1",
		Status:      AttendancePresent,
		LateMinutes: 5,
		AttendedOn:  day,
	})
	assert.ErrorIs(t, err, ErrInvalidLateMinutes)
}

func TestHasEnded(t *testing.T) {
	b := mustSlot(t)

	assert.False(t, b.HasEnded(b.StartAt.Add(10*time.Minute)))
	assert.True(t, b.HasEnded(b.EndAt.Add(time.Minute)))
}
