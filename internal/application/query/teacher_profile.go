package query

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
)

// counterCacheTTL bounds how long a cached display counter may lag behind the
// column. The counter changes on every recorded attendance, so the TTL is
// short relative to the payout cycle.
const counterCacheTTL = 24 * time.Hour

// TeacherProfileQuery requests one teacher's profile and display counter.
type TeacherProfileQuery struct {
	TeacherID string
}

// Validate checks if the query is valid.
func (q TeacherProfileQuery) Validate() error {
	if q.TeacherID == "" {
		return fmt.Errorf("%w: teacher_id is required", shared.ErrInvalidInput)
	}
	return nil
}

// TeacherProfileResult contains the teacher's profile.
type TeacherProfileResult struct {
	TeacherID string
	FullName  string
	Email     string
	RateCents int64

	// AttendanceCount is the display counter since the last payout. It may
	// come from the cache and lag the column by at most the cache TTL.
	AttendanceCount  int
	CounterFromCache bool
}

// TeacherProfileHandler serves the teacher dashboard header.
type TeacherProfileHandler struct {
	teacherRepo  teacher.Repository
	counterCache teacher.CounterCache
}

// NewTeacherProfileHandler creates a new TeacherProfileHandler.
// counterCache may be nil; the counter then always comes from the store.
func NewTeacherProfileHandler(teacherRepo teacher.Repository, counterCache teacher.CounterCache) *TeacherProfileHandler {
	return &TeacherProfileHandler{teacherRepo: teacherRepo, counterCache: counterCache}
}

// Handle returns the profile. The profile row is always read; only the
// counter takes the cache shortcut, because it is the one field that churns.
func (h *TeacherProfileHandler) Handle(ctx context.Context, q TeacherProfileQuery) (*TeacherProfileResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("teacher_profile: %w", err)
	}

	t, err := h.teacherRepo.GetByID(ctx, q.TeacherID)
	if err != nil {
		return nil, fmt.Errorf("teacher_profile: %w", err)
	}

	result := &TeacherProfileResult{
		TeacherID:       t.ID,
		FullName:        t.FullName,
		Email:           t.Email,
		RateCents:       t.RateCents,
		AttendanceCount: t.AttendanceCount,
	}

	if h.counterCache != nil {
		if count, err := h.counterCache.GetCount(ctx, t.ID); err == nil {
			result.AttendanceCount = count
			result.CounterFromCache = true
		} else {
			// Miss or cache failure: serve the column and refill.
			_ = h.counterCache.SetCount(ctx, t.ID, t.AttendanceCount, counterCacheTTL)
		}
	}

	return result, nil
}
