// Package shared contains common domain types, errors and events that are used
// across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Parent events
	EventParentRegistered EventType = "parent.registered"

	// Plan lifecycle events
	EventPlanActivated     EventType = "plan.activated"
	EventPlanExpired       EventType = "plan.expired"
	EventPlanPaymentFailed EventType = "plan.payment_failed"
	EventPlanReevaluated   EventType = "plan.reevaluated"

	// Trial events
	EventTrialBooked EventType = "trial.booked"

	// Booking and attendance events
	EventSessionBooked      EventType = "booking.session_booked"
	EventAttendanceRecorded EventType = "attendance.recorded"

	// Payout events
	EventTeacherPaymentRecorded EventType = "payout.recorded"

	// System events
	EventSweepCompleted EventType = "system.sweep_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// EventHandler processes a single domain event.
type EventHandler interface {
	// Handle processes the event. Errors are logged by the bus, not propagated
	// to the publisher.
	Handle(event Event) error

	// Name returns a stable identifier for logging and metrics.
	Name() string
}

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Parent Events
// ═══════════════════════════════════════════════════════════════════════════

// ParentRegisteredEvent is emitted when a new parent account is created.
type ParentRegisteredEvent struct {
	BaseEvent
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Payload implements Event interface.
func (e ParentRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"email":     e.Email,
		"full_name": e.FullName,
	}
}

// NewParentRegisteredEvent creates a new ParentRegisteredEvent.
func NewParentRegisteredEvent(parentID, email, fullName string) ParentRegisteredEvent {
	return ParentRegisteredEvent{
		BaseEvent: NewBaseEvent(EventParentRegistered, parentID),
		Email:     email,
		FullName:  fullName,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Plan Lifecycle Events
// ═══════════════════════════════════════════════════════════════════════════

// PlanActivatedEvent is emitted when a payment confirmation activates a plan.
type PlanActivatedEvent struct {
	BaseEvent
	ParentID     string    `json:"parent_id"`
	PlanStart    time.Time `json:"plan_start"`
	PlanEnd      time.Time `json:"plan_end"`
	SessionLimit int       `json:"session_limit"`
}

// Payload implements Event interface.
func (e PlanActivatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"parent_id":     e.ParentID,
		"plan_start":    e.PlanStart,
		"plan_end":      e.PlanEnd,
		"session_limit": e.SessionLimit,
	}
}

// NewPlanActivatedEvent creates a new PlanActivatedEvent.
func NewPlanActivatedEvent(studentID, parentID string, start, end time.Time, limit int) PlanActivatedEvent {
	return PlanActivatedEvent{
		BaseEvent:    NewBaseEvent(EventPlanActivated, studentID),
		ParentID:     parentID,
		PlanStart:    start,
		PlanEnd:      end,
		SessionLimit: limit,
	}
}

// PlanExpiredEvent is emitted when a student's plan passes its end date,
// either by the daily sweep or by an on-demand status check.
type PlanExpiredEvent struct {
	BaseEvent
	ParentID  string    `json:"parent_id,omitempty"`
	PlanEnd   time.Time `json:"plan_end"`
	ExpiredBy string    `json:"expired_by"` // "sweep" or "on_demand"
}

// Payload implements Event interface.
func (e PlanExpiredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"parent_id":  e.ParentID,
		"plan_end":   e.PlanEnd,
		"expired_by": e.ExpiredBy,
	}
}

// NewPlanExpiredEvent creates a new PlanExpiredEvent.
func NewPlanExpiredEvent(studentID, parentID string, planEnd time.Time, expiredBy string) PlanExpiredEvent {
	return PlanExpiredEvent{
		BaseEvent: NewBaseEvent(EventPlanExpired, studentID),
		ParentID:  parentID,
		PlanEnd:   planEnd,
		ExpiredBy: expiredBy,
	}
}

// PlanPaymentFailedEvent is emitted when the billing provider reports a
// failed payment for a student's plan purchase.
type PlanPaymentFailedEvent struct {
	BaseEvent
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

// Payload implements Event interface.
func (e PlanPaymentFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"reference": e.Reference,
		"reason":    e.Reason,
	}
}

// NewPlanPaymentFailedEvent creates a new PlanPaymentFailedEvent.
func NewPlanPaymentFailedEvent(studentID, reference, reason string) PlanPaymentFailedEvent {
	return PlanPaymentFailedEvent{
		BaseEvent: NewBaseEvent(EventPlanPaymentFailed, studentID),
		Reference: reference,
		Reason:    reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Trial Events
// ═══════════════════════════════════════════════════════════════════════════

// TrialBookedEvent is emitted when a family books its one-time free trial.
type TrialBookedEvent struct {
	BaseEvent
	ParentEmail string `json:"parent_email"`
	StudentID   string `json:"student_id"`
}

// Payload implements Event interface.
func (e TrialBookedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"parent_email": e.ParentEmail,
		"student_id":   e.StudentID,
	}
}

// NewTrialBookedEvent creates a new TrialBookedEvent.
func NewTrialBookedEvent(parentID, parentEmail, studentID string) TrialBookedEvent {
	return TrialBookedEvent{
		BaseEvent:   NewBaseEvent(EventTrialBooked, parentID),
		ParentEmail: parentEmail,
		StudentID:   studentID,
	}
}

// SessionBookedEvent is emitted when a regular session slot is booked.
type SessionBookedEvent struct {
	BaseEvent
	StudentID string    `json:"student_id"`
	TeacherID string    `json:"teacher_id"`
	StartAt   time.Time `json:"start_at"`
}

// Payload implements Event interface.
func (e SessionBookedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"teacher_id": e.TeacherID,
		"start_at":   e.StartAt,
	}
}

// NewSessionBookedEvent creates a new SessionBookedEvent.
func NewSessionBookedEvent(bookingID, studentID, teacherID string, startAt time.Time) SessionBookedEvent {
	return SessionBookedEvent{
		BaseEvent: NewBaseEvent(EventSessionBooked, bookingID),
		StudentID: studentID,
		TeacherID: teacherID,
		StartAt:   startAt,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Attendance & Payout Events
// ═══════════════════════════════════════════════════════════════════════════

// AttendanceRecordedEvent is emitted after a session outcome is recorded.
type AttendanceRecordedEvent struct {
	BaseEvent
	BookingID string `json:"booking_id"`
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
}

// Payload implements Event interface.
func (e AttendanceRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"booking_id": e.BookingID,
		"student_id": e.StudentID,
		"status":     e.Status,
	}
}

// NewAttendanceRecordedEvent creates a new AttendanceRecordedEvent.
func NewAttendanceRecordedEvent(attendanceID, bookingID, studentID, status string) AttendanceRecordedEvent {
	return AttendanceRecordedEvent{
		BaseEvent: NewBaseEvent(EventAttendanceRecorded, attendanceID),
		BookingID: bookingID,
		StudentID: studentID,
		Status:    status,
	}
}

// TeacherPaymentRecordedEvent is emitted after a payout ledger row is written.
type TeacherPaymentRecordedEvent struct {
	BaseEvent
	TeacherID       string `json:"teacher_id"`
	AttendanceCount int    `json:"attendance_count"`
	AmountCents     int64  `json:"amount_cents"`
	Month           int    `json:"month"`
	Year            int    `json:"year"`
}

// Payload implements Event interface.
func (e TeacherPaymentRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"teacher_id":       e.TeacherID,
		"attendance_count": e.AttendanceCount,
		"amount_cents":     e.AmountCents,
		"month":            e.Month,
		"year":             e.Year,
	}
}

// NewTeacherPaymentRecordedEvent creates a new TeacherPaymentRecordedEvent.
func NewTeacherPaymentRecordedEvent(paymentID, teacherID string, count int, amountCents int64, month, year int) TeacherPaymentRecordedEvent {
	return TeacherPaymentRecordedEvent{
		BaseEvent:       NewBaseEvent(EventTeacherPaymentRecorded, paymentID),
		TeacherID:       teacherID,
		AttendanceCount: count,
		AmountCents:     amountCents,
		Month:           month,
		Year:            year,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// SweepCompletedEvent is emitted after each plan-expiry sweep run.
type SweepCompletedEvent struct {
	BaseEvent
	ExpiredCount int       `json:"expired_count"`
	SweptAt      time.Time `json:"swept_at"`
}

// Payload implements Event interface.
func (e SweepCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"expired_count": e.ExpiredCount,
		"swept_at":      e.SweptAt,
	}
}

// NewSweepCompletedEvent creates a new SweepCompletedEvent.
func NewSweepCompletedEvent(expiredCount int, sweptAt time.Time) SweepCompletedEvent {
	return SweepCompletedEvent{
		BaseEvent:    NewBaseEvent(EventSweepCompleted, "sweep"),
		ExpiredCount: expiredCount,
		SweptAt:      sweptAt,
	}
}
