package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

func TestRegisterParent_CreatesAccount(t *testing.T) {
	repo := newMemParentRepo()
	publisher := &capturingPublisher{}
	handler := NewRegisterParentHandler(repo, publisher)

	result, err := handler.Handle(context.Background(), RegisterParentCommand{
		Email:    "Family@Example.com",
		FullName: "Aigerim Bekova",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.ParentID)
	assert.Equal(t, "family@example.com", result.Email)

	stored, err := repo.GetByID(context.Background(), result.ParentID)
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("correct-horse"))
	assert.NotEqual(t, "correct-horse", stored.PasswordHash)

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, shared.EventParentRegistered, events[0].EventType())
}

func TestRegisterParent_DuplicateEmailRejected(t *testing.T) {
	repo := newMemParentRepo(mustTestParent(t, "parent1", "family@example.com"))
	handler := NewRegisterParentHandler(repo, nil)

	_, err := handler.Handle(context.Background(), RegisterParentCommand{
		Email:    "FAMILY@example.com",
		FullName: "Someone Else",
		Password: "correct-horse",
	})

	assert.ErrorIs(t, err, shared.ErrParentAlreadyExists)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestRegisterParent_DuplicateLostRaceMapped(t *testing.T) {
	repo := newMemParentRepo()
	repo.createErr = parent.ErrParentAlreadyExists
	handler := NewRegisterParentHandler(repo, nil)

	_, err := handler.Handle(context.Background(), RegisterParentCommand{
		Email:    "family@example.com",
		FullName: "Aigerim Bekova",
		Password: "correct-horse",
	})

	assert.ErrorIs(t, err, shared.ErrParentAlreadyExists)
}

func TestRegisterParent_Validation(t *testing.T) {
	handler := NewRegisterParentHandler(newMemParentRepo(), nil)
	ctx := context.Background()

	_, err := handler.Handle(ctx, RegisterParentCommand{
		Email: "not-an-email", FullName: "A", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = handler.Handle(ctx, RegisterParentCommand{
		Email: "family@example.com", FullName: "A", Password: "short",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = handler.Handle(ctx, RegisterParentCommand{
		Email: "family@example.com", Password: "correct-horse",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
