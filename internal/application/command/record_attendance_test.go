package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

func newRecordAttendanceFixture(t *testing.T, startAt time.Time) (*RecordAttendanceHandler, *memAttendanceRepo, *memTeacherRepo, *memCounterCache, *capturingPublisher) {
	t.Helper()
	slot := mustTestSlot(t, "slot1", "teacher1", startAt)
	require.NoError(t, slot.Book("student1"))

	attendance := newMemAttendanceRepo()
	teachers := newMemTeacherRepo()
	counters := newMemCounterCache()
	publisher := &capturingPublisher{}
	handler := NewRecordAttendanceHandler(
		newMemBookingRepo(slot), attendance, teachers, counters,
		newMemStudentRepo(mustTestStudent(t, "student1", "parent1")), publisher)
	return handler, attendance, teachers, counters, publisher
}

func TestRecordAttendance_PresentCountsForTeacher(t *testing.T) {
	handler, attendance, teachers, counters, publisher := newRecordAttendanceFixture(t, time.Now().Add(-2*time.Hour))

	result, err := handler.Handle(context.Background(), RecordAttendanceCommand{
		BookingID: "slot1",
		StudentID: "student1",
		Status:    booking.AttendancePresent,
	})

	require.NoError(t, err)
	assert.True(t, result.Counted)
	assert.Equal(t, "teacher1", result.TeacherID)

	stored, err := attendance.GetByBookingID(context.Background(), "slot1")
	require.NoError(t, err)
	assert.Equal(t, booking.AttendancePresent, stored.Status)

	assert.Equal(t, 1, teachers.counts["teacher1"])
	assert.Contains(t, counters.invalidated, "teacher1")

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventAttendanceRecorded, events[0].EventType())
}

func TestRecordAttendance_AbsentDoesNotCount(t *testing.T) {
	handler, _, teachers, _, _ := newRecordAttendanceFixture(t, time.Now().Add(-2*time.Hour))

	result, err := handler.Handle(context.Background(), RecordAttendanceCommand{
		BookingID: "slot1",
		StudentID: "student1",
		Status:    booking.AttendanceAbsent,
	})

	require.NoError(t, err)
	assert.False(t, result.Counted)
	assert.Zero(t, teachers.counts["teacher1"])
}

func TestRecordAttendance_LateCounts(t *testing.T) {
	handler, _, teachers, _, _ := newRecordAttendanceFixture(t, time.Now().Add(-2*time.Hour))

	result, err := handler.Handle(context.Background(), RecordAttendanceCommand{
		BookingID:   "slot1",
		StudentID:   "student1",
		Status:      booking.AttendanceLate,
		LateMinutes: 10,
	})

	require.NoError(t, err)
	assert.True(t, result.Counted)
	assert.Equal(t, 1, teachers.counts["teacher1"])
}

func TestRecordAttendance_DuplicateRejected(t *testing.T) {
	handler, _, teachers, _, _ := newRecordAttendanceFixture(t, time.Now().Add(-2*time.Hour))
	ctx := context.Background()

	_, err := handler.Handle(ctx, RecordAttendanceCommand{
		BookingID: "slot1", StudentID: "student1", Status: booking.AttendancePresent,
	})
	require.NoError(t, err)

	_, err = handler.Handle(ctx, RecordAttendanceCommand{
		BookingID: "slot1", StudentID: "student1", Status: booking.AttendancePresent,
	})
	assert.ErrorIs(t, err, booking.ErrAttendanceExists)

	// The duplicate must not double-bump the counter.
	assert.Equal(t, 1, teachers.counts["teacher1"])
}

func TestRecordAttendance_WrongStudentIsForbidden(t *testing.T) {
	handler, _, _, _, _ := newRecordAttendanceFixture(t, time.Now().Add(-2*time.Hour))

	_, err := handler.Handle(context.Background(), RecordAttendanceCommand{
		BookingID: "slot1",
		StudentID: "impostor",
		Status:    booking.AttendancePresent,
	})

	assert.ErrorIs(t, err, shared.ErrStudentNotOwned)
}

func TestRecordAttendance_BeforeSessionStart(t *testing.T) {
	handler, _, _, _, _ := newRecordAttendanceFixture(t, time.Now().Add(24*time.Hour))

	_, err := handler.Handle(context.Background(), RecordAttendanceCommand{
		BookingID: "slot1",
		StudentID: "student1",
		Status:    booking.AttendancePresent,
	})

	assert.ErrorIs(t, err, shared.ErrAttendanceBeforeStart)
}

func TestRecordAttendance_UnbookedSlot(t *testing.T) {
	slot := mustTestSlot(t, "slot1", "teacher1", time.Now().Add(-2*time.Hour))
	handler := NewRecordAttendanceHandler(
		newMemBookingRepo(slot), newMemAttendanceRepo(), newMemTeacherRepo(),
		nil, newMemStudentRepo(), nil)

	_, err := handler.Handle(context.Background(), RecordAttendanceCommand{
		BookingID: "slot1",
		StudentID: "student1",
		Status:    booking.AttendancePresent,
	})

	assert.ErrorIs(t, err, booking.ErrNotBooked)
}

func TestRecordAttendance_CounterBumpFailureIsNotFatal(t *testing.T) {
	handler, attendance, teachers, counters, _ := newRecordAttendanceFixture(t, time.Now().Add(-2*time.Hour))
	teachers.incrementErr = shared.ErrTeacherNotFound

	result, err := handler.Handle(context.Background(), RecordAttendanceCommand{
		BookingID: "slot1",
		StudentID: "student1",
		Status:    booking.AttendancePresent,
	})

	require.NoError(t, err)
	assert.True(t, result.Counted)

	// The attendance row is durable even though the display counter lagged.
	_, err = attendance.GetByBookingID(context.Background(), "slot1")
	require.NoError(t, err)
	assert.Empty(t, counters.invalidated)
}
