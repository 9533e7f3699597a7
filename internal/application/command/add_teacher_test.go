package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

func mustTestTeacher(t *testing.T, id string, rateCents int64) *teacher.Teacher {
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

func TestAddTeacher_Onboards(t *testing.T) {
	teachers := newMemTeacherRepo()
	handler := NewAddTeacherHandler(teachers)

	result, err := handler.Handle(context.Background(), AddTeacherCommand{
		FullName:  "Dana Serik",
		Email:     "dana@example.com",
		RateCents: 2000,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.TeacherID)
	assert.Equal(t, int64(2000), result.RateCents)

	stored, err := teachers.GetByID(context.Background(), result.TeacherID)
	require.NoError(t, err)
	assert.Equal(t, "Dana Serik", stored.FullName)
	assert.Zero(t, stored.AttendanceCount)
}

func TestAddTeacher_DuplicateEmail(t *testing.T) {
	teachers := newMemTeacherRepo()
	handler := NewAddTeacherHandler(teachers)

	cmd := AddTeacherCommand{FullName: "Dana Serik", Email: "dana@example.com", RateCents: 2000}
	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), cmd)
	assert.ErrorIs(t, err, shared.ErrTeacherAlreadyExists)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestAddTeacher_Validation(t *testing.T) {
	handler := NewAddTeacherHandler(newMemTeacherRepo())

	cases := []AddTeacherCommand{
		{Email: "dana@example.com", RateCents: 2000},
		{FullName: "Dana Serik", RateCents: 2000},
		{FullName: "Dana Serik", Email: "dana@example.com", RateCents: -1},
	}
	for _, cmd := range cases {
		_, err := handler.Handle(context.Background(), cmd)
		assert.True(t, shared.IsValidation(err), "command %+v", cmd)
	}
}

func TestUpdateTeacherRate_AppliesToFutureSettlements(t *testing.T) {
	tc := mustTestTeacher(t, "teacher1", 1500)
	teachers := newMemTeacherRepo(tc)
	handler := NewUpdateTeacherRateHandler(teachers)

	result, err := handler.Handle(context.Background(), UpdateTeacherRateCommand{
		TeacherID: "teacher1",
		RateCents: 2500,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2500), result.RateCents)

	stored, err := teachers.GetByID(context.Background(), "teacher1")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), stored.RateCents)
	assert.Equal(t, int64(25000), stored.PayoutFor(10))
}

func TestUpdateTeacherRate_UnknownTeacher(t *testing.T) {
	handler := NewUpdateTeacherRateHandler(newMemTeacherRepo())

	_, err := handler.Handle(context.Background(), UpdateTeacherRateCommand{TeacherID: "ghost", RateCents: 2000})
	assert.True(t, shared.IsNotFound(err))
}

func TestUpdateTeacherRate_NegativeRate(t *testing.T) {
	handler := NewUpdateTeacherRateHandler(newMemTeacherRepo())

	_, err := handler.Handle(context.Background(), UpdateTeacherRateCommand{TeacherID: "teacher1", RateCents: -100})
	assert.True(t, shared.IsValidation(err))
}
