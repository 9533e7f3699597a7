package scheduler

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Interval schedule
// ─────────────────────────────────────────────────────────────────────────────

// IntervalSchedule runs a job at a fixed interval from its last run.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{Interval: interval}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}

// ─────────────────────────────────────────────────────────────────────────────
// Daily schedule
// ─────────────────────────────────────────────────────────────────────────────

// DailySchedule runs a job once a day at a fixed wall-clock time in a given
// location. The expiry sweep uses this with the server's local zone, because
// plan end dates are compared against server-local "today".
type DailySchedule struct {
	Hour     int // 0-23
	Minute   int // 0-59
	Location *time.Location
}

// NewDailySchedule creates a DailySchedule. Out-of-range values are rejected.
func NewDailySchedule(hour, minute int, loc *time.Location) (*DailySchedule, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid hour %d: must be in [0,23]", hour)
	}
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid minute %d: must be in [0,59]", minute)
	}
	if loc == nil {
		loc = time.Local
	}
	return &DailySchedule{Hour: hour, Minute: minute, Location: loc}, nil
}

// MustDailySchedule creates a DailySchedule or panics.
// Use only with compile-time constants.
func MustDailySchedule(hour, minute int, loc *time.Location) *DailySchedule {
	s, err := NewDailySchedule(hour, minute, loc)
	if err != nil {
		panic(err)
	}
	return s
}

// Next returns the next occurrence of Hour:Minute after t.
func (s *DailySchedule) Next(t time.Time) time.Time {
	t = t.In(s.Location)
	next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, s.Location)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// String returns the string representation of the schedule.
func (s *DailySchedule) String() string {
	return fmt.Sprintf("@daily %02d:%02d %s", s.Hour, s.Minute, s.Location.String())
}
