package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

type stubCounterCache struct {
	teacher.CounterCache

	counts map[string]int
	sets   map[string]int
}

func newStubCounterCache() *stubCounterCache {
	return &stubCounterCache{counts: make(map[string]int), sets: make(map[string]int)}
}

func (c *stubCounterCache) GetCount(_ context.Context, teacherID string) (int, error) {
	count, ok := c.counts[teacherID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return count, nil
}

func (c *stubCounterCache) SetCount(_ context.Context, teacherID string, count int, _ time.Duration) error {
	c.sets[teacherID] = count
	return nil
}

func TestTeacherProfile_CounterFromCache(t *testing.T) {
	tc := mustQueryTeacher(t, "teacher1", 2000)
	tc.AttendanceCount = 3 // stale column

	cache := newStubCounterCache()
	cache.counts["teacher1"] = 7

	handler := NewTeacherProfileHandler(
		&stubTeacherRepo{teachers: map[string]*teacher.Teacher{"teacher1": tc}}, cache)
	result, err := handler.Handle(context.Background(), TeacherProfileQuery{TeacherID: "teacher1"})

	require.NoError(t, err)
	assert.Equal(t, "Dana Serik", result.FullName)
	assert.Equal(t, int64(2000), result.RateCents)
	assert.Equal(t, 7, result.AttendanceCount)
	assert.True(t, result.CounterFromCache)
}

func TestTeacherProfile_CacheMissRefills(t *testing.T) {
	tc := mustQueryTeacher(t, "teacher1", 2000)
	tc.AttendanceCount = 5

	cache := newStubCounterCache()
	handler := NewTeacherProfileHandler(
		&stubTeacherRepo{teachers: map[string]*teacher.Teacher{"teacher1": tc}}, cache)
	result, err := handler.Handle(context.Background(), TeacherProfileQuery{TeacherID: "teacher1"})

	require.NoError(t, err)
	assert.Equal(t, 5, result.AttendanceCount)
	assert.False(t, result.CounterFromCache)
	assert.Equal(t, 5, cache.sets["teacher1"])
}

func TestTeacherProfile_NoCache(t *testing.T) {
	tc := mustQueryTeacher(t, "teacher1", 2000)
	tc.AttendanceCount = 2

	handler := NewTeacherProfileHandler(
		&stubTeacherRepo{teachers: map[string]*teacher.Teacher{"teacher1": tc}}, nil)
	result, err := handler.Handle(context.Background(), TeacherProfileQuery{TeacherID: "teacher1"})

	require.NoError(t, err)
	assert.Equal(t, 2, result.AttendanceCount)
	assert.False(t, result.CounterFromCache)
}

func TestTeacherProfile_UnknownTeacher(t *testing.T) {
	handler := NewTeacherProfileHandler(&stubTeacherRepo{teachers: map[string]*teacher.Teacher{}}, nil)

	_, err := handler.Handle(context.Background(), TeacherProfileQuery{TeacherID: "ghost"})
	assert.True(t, shared.IsNotFound(err))
}
