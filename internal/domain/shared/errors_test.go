package shared_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/trial"
)

// The repositories answer with the entity-package sentinels. Those must be
// the same values the shared predicates match, or a storage-level not-found
// degrades to a generic 500 at the HTTP boundary.
func TestEntitySentinelsSatisfySharedPredicates(t *testing.T) {
	notFound := []error{
		student.ErrStudentNotFound,
		parent.ErrParentNotFound,
		teacher.ErrTeacherNotFound,
		booking.ErrBookingNotFound,
		booking.ErrAttendanceNotFound,
		trial.ErrTrialNotFound,
	}
	for _, err := range notFound {
		assert.True(t, shared.IsNotFound(fmt.Errorf("op: %w", err)), "%v", err)
	}

	alreadyExists := []error{
		student.ErrStudentAlreadyExists,
		parent.ErrParentAlreadyExists,
		teacher.ErrTeacherAlreadyExists,
		booking.ErrAttendanceExists,
		trial.ErrAlreadyUsed,
	}
	for _, err := range alreadyExists {
		assert.True(t, shared.IsAlreadyExists(fmt.Errorf("op: %w", err)), "%v", err)
	}

	// The conditional-update repos also surface the exhausted session limit.
	assert.True(t, shared.IsValidation(fmt.Errorf("op: %w", student.ErrSessionLimitReached)))
}

// Both layers name the same error object, so handler checks written against
// either family match storage errors from the other.
func TestEntitySentinelsAliasSharedErrors(t *testing.T) {
	assert.ErrorIs(t, student.ErrStudentNotFound, shared.ErrStudentNotFound)
	assert.ErrorIs(t, parent.ErrParentNotFound, shared.ErrParentNotFound)
	assert.ErrorIs(t, teacher.ErrTeacherNotFound, shared.ErrTeacherNotFound)
	assert.ErrorIs(t, booking.ErrBookingNotFound, shared.ErrBookingNotFound)
	assert.ErrorIs(t, trial.ErrAlreadyUsed, shared.ErrTrialAlreadyUsed)
}

// Not-found sentinels from different domains never cross-match.
func TestSentinelsStayDomainScoped(t *testing.T) {
	assert.NotErrorIs(t, student.ErrStudentNotFound, parent.ErrParentNotFound)
	assert.NotErrorIs(t, teacher.ErrTeacherNotFound, booking.ErrBookingNotFound)
	assert.NotErrorIs(t, trial.ErrTrialNotFound, student.ErrStudentNotFound)
}
