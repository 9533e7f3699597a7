package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
)

// stubStudentRepo implements only the methods this package's queries touch;
// the embedded interface panics on anything else, which is the point.
type stubStudentRepo struct {
	student.Repository

	students map[string]*student.Student

	statusUpdates []student.PaymentStatus
}

func newStubStudentRepo(students ...*student.Student) *stubStudentRepo {
	r := &stubStudentRepo{students: make(map[string]*student.Student)}
	for _, s := range students {
		r.students[s.ID] = s
	}
	return r
}

func (r *stubStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (r *stubStudentRepo) GetByParentID(_ context.Context, parentID string) ([]*student.Student, error) {
	var out []*student.Student
	for _, s := range r.students {
		if s.ParentID == parentID {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *stubStudentRepo) UpdatePaymentStatus(_ context.Context, id string, status student.PaymentStatus) error {
	s, ok := r.students[id]
	if !ok {
		return shared.ErrStudentNotFound
	}
	s.PaymentStatus = status
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *stubStudentRepo) BelongsToParent(_ context.Context, studentID, parentID string) (bool, error) {
	s, ok := r.students[studentID]
	return ok && s.ParentID == parentID, nil
}

type stubStatusCache struct {
	statuses map[string]student.PaymentStatus
	sets     int
}

func newStubStatusCache() *stubStatusCache {
	return &stubStatusCache{statuses: make(map[string]student.PaymentStatus)}
}

func (c *stubStatusCache) GetStatus(_ context.Context, studentID string) (student.PaymentStatus, error) {
	status, ok := c.statuses[studentID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return status, nil
}

func (c *stubStatusCache) SetStatus(_ context.Context, studentID string, status student.PaymentStatus, _ time.Duration) error {
	c.statuses[studentID] = status
	c.sets++
	return nil
}

func (c *stubStatusCache) Invalidate(_ context.Context, studentID string) error {
	delete(c.statuses, studentID)
	return nil
}

func mustQueryStudent(t *testing.T, id, parentID string) *student.Student {
	t.Helper()
	s, err := student.NewStudent(student.NewStudentParams{
		ID:       id,
		ParentID: parentID,
		FullName: "Aliya Bekova",
		Language: "english",
	})
	require.NoError(t, err)
	return s
}

func TestPlanStatus_CacheMissReadsRepoAndFillsCache(t *testing.T) {
	s := mustQueryStudent(t, "student1", "parent1")
	require.NoError(t, s.ActivatePlan(time.Now(), time.Now().AddDate(0, 1, 0), 8))
	cache := newStubStatusCache()

	handler := NewPlanStatusHandler(newStubStudentRepo(s), cache, nil)
	result, err := handler.Handle(context.Background(), PlanStatusQuery{StudentID: "student1"})

	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, student.PaymentCompleted, result.Status)
	assert.True(t, result.AllowsBooking)
	assert.Equal(t, 8, result.SessionsRemaining)
	assert.Equal(t, student.PaymentCompleted, cache.statuses["student1"])
}

func TestPlanStatus_CacheHitSkipsRepo(t *testing.T) {
	cache := newStubStatusCache()
	cache.statuses["student1"] = student.PaymentCompleted

	// No student in the repo: a repo read would fail.
	handler := NewPlanStatusHandler(newStubStudentRepo(), cache, nil)
	result, err := handler.Handle(context.Background(), PlanStatusQuery{StudentID: "student1"})

	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, student.PaymentCompleted, result.Status)
}

func TestPlanStatus_SelfHealsExpiredPlan(t *testing.T) {
	s := mustQueryStudent(t, "student1", "parent1")
	start := time.Now().AddDate(0, -2, 0)
	end := time.Now().AddDate(0, -1, 0)
	s.PlanStartDate = &start
	s.PlanEndDate = &end
	s.PaymentStatus = student.PaymentCompleted

	repo := newStubStudentRepo(s)
	cache := newStubStatusCache()
	handler := NewPlanStatusHandler(repo, cache, nil)

	result, err := handler.Handle(context.Background(), PlanStatusQuery{StudentID: "student1"})

	require.NoError(t, err)
	assert.Equal(t, student.PaymentPending, result.Status)
	assert.False(t, result.AllowsBooking)

	// The correction is persisted and cached, not just reported.
	assert.Equal(t, []student.PaymentStatus{student.PaymentPending}, repo.statusUpdates)
	assert.Equal(t, student.PaymentPending, cache.statuses["student1"])
}

func TestPlanStatus_OwnershipEnforcedWhenParentGiven(t *testing.T) {
	s := mustQueryStudent(t, "student1", "parent1")
	handler := NewPlanStatusHandler(newStubStudentRepo(s), nil, nil)

	_, err := handler.Handle(context.Background(), PlanStatusQuery{
		StudentID: "student1",
		ParentID:  "stranger",
	})

	assert.ErrorIs(t, err, shared.ErrStudentNotOwned)
}

func TestPlanStatus_StudentNotFound(t *testing.T) {
	handler := NewPlanStatusHandler(newStubStudentRepo(), nil, nil)

	_, err := handler.Handle(context.Background(), PlanStatusQuery{StudentID: "ghost"})
	assert.True(t, shared.IsNotFound(err))
}
