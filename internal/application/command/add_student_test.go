package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
)

func TestAddStudent_EnrollsUnderParent(t *testing.T) {
	parents := newMemParentRepo(mustTestParent(t, "parent1", "family@example.com"))
	students := newMemStudentRepo()
	handler := NewAddStudentHandler(students, parents)

	result, err := handler.Handle(context.Background(), AddStudentCommand{
		ParentID: "parent1",
		FullName: "Aliya Bekova",
		Language: "english",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.StudentID)
	assert.Equal(t, "parent1", result.ParentID)
	// New students start outside the plan lifecycle.
	assert.Equal(t, student.PaymentNotRequired, result.PaymentStatus)

	stored, err := students.GetByID(context.Background(), result.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "parent1", stored.ParentID)
	assert.Nil(t, stored.PlanEndDate)
}

func TestAddStudent_UnknownParent(t *testing.T) {
	handler := NewAddStudentHandler(newMemStudentRepo(), newMemParentRepo())

	_, err := handler.Handle(context.Background(), AddStudentCommand{
		ParentID: "ghost",
		FullName: "Aliya Bekova",
		Language: "english",
	})

	assert.True(t, shared.IsNotFound(err))
}

func TestAddStudent_Validation(t *testing.T) {
	handler := NewAddStudentHandler(newMemStudentRepo(), newMemParentRepo())
	ctx := context.Background()

	_, err := handler.Handle(ctx, AddStudentCommand{FullName: "A", Language: "english"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = handler.Handle(ctx, AddStudentCommand{ParentID: "p", Language: "english"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = handler.Handle(ctx, AddStudentCommand{ParentID: "p", FullName: "A", Language: "e n"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
