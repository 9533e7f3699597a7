package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

type stubTeacherRepo struct {
	teacher.Repository

	teachers map[string]*teacher.Teacher
}

func (r *stubTeacherRepo) GetByID(_ context.Context, id string) (*teacher.Teacher, error) {
	t, ok := r.teachers[id]
	if !ok {
		return nil, shared.ErrTeacherNotFound
	}
	return t, nil
}

type stubAttendanceRepo struct {
	booking.AttendanceRepository

	counts []booking.MonthlyCount
}

func (r *stubAttendanceRepo) MonthlyCountsByTeacher(_ context.Context, _ string) ([]booking.MonthlyCount, error) {
	return r.counts, nil
}

func mustQueryTeacher(t *testing.T, id string, rateCents int64) *teacher.Teacher {
	t.Helper()
	tc, err := teacher.NewTeacher(teacher.NewTeacherParams{
		ID:        id,
		FullName:  "Dana Serik",
		Email:     "dana@example.com",
		RateCents: rateCents,
	})
	require.NoError(t, err)
	return tc
}

func TestMonthlyAttendance_ReportWithPayoutAmounts(t *testing.T) {
	teachers := &stubTeacherRepo{teachers: map[string]*teacher.Teacher{
		"teacher1": mustQueryTeacher(t, "teacher1", 1500),
	}}
	attendance := &stubAttendanceRepo{counts: []booking.MonthlyCount{
		{Year: 2026, Month: int(time.March), Count: 12},
		{Year: 2026, Month: int(time.February), Count: 9},
	}}

	handler := NewMonthlyAttendanceHandler(teachers, attendance)
	result, err := handler.Handle(context.Background(), MonthlyAttendanceQuery{TeacherID: "teacher1"})

	require.NoError(t, err)
	assert.Equal(t, "Dana Serik", result.TeacherName)
	require.Len(t, result.Rows, 2)

	assert.Equal(t, "2026-03", result.Rows[0].Period)
	assert.Equal(t, 12, result.Rows[0].Count)
	assert.Equal(t, int64(18000), result.Rows[0].AmountCents)

	assert.Equal(t, "2026-02", result.Rows[1].Period)
	assert.Equal(t, int64(13500), result.Rows[1].AmountCents)
}

func TestMonthlyAttendance_TeacherWithoutSessions(t *testing.T) {
	teachers := &stubTeacherRepo{teachers: map[string]*teacher.Teacher{
		"teacher1": mustQueryTeacher(t, "teacher1", 1500),
	}}

	handler := NewMonthlyAttendanceHandler(teachers, &stubAttendanceRepo{})
	result, err := handler.Handle(context.Background(), MonthlyAttendanceQuery{TeacherID: "teacher1"})

	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestMonthlyAttendance_UnknownTeacher(t *testing.T) {
	handler := NewMonthlyAttendanceHandler(&stubTeacherRepo{teachers: map[string]*teacher.Teacher{}}, &stubAttendanceRepo{})

	_, err := handler.Handle(context.Background(), MonthlyAttendanceQuery{TeacherID: "ghost"})
	assert.True(t, shared.IsNotFound(err))
}
