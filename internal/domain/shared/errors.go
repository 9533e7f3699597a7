// Package shared contains common domain types, errors and events that are used
// across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrExpired         = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")

	// Internal errors (storage and infrastructure failures surfaced generically)
	ErrInternal = errors.New("internal error")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "trial", "booking"
	Op      string // Operation that failed, e.g., "Create", "Evaluate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Parent domain errors
var (
	ErrParentNotFound      = NewDomainError("parent", "Find", ErrNotFound, "parent not found")
	ErrParentAlreadyExists = NewDomainError("parent", "Create", ErrAlreadyExists, "parent already registered")
	ErrInvalidParentEmail  = NewDomainError("parent", "Validate", ErrInvalidInput, "invalid parent email")
	ErrWrongCredentials    = NewDomainError("parent", "Authenticate", ErrUnauthorized, "wrong email or password")
)

// Student domain errors
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "student already exists")
	ErrStudentNotOwned      = NewDomainError("student", "CheckOwnership", ErrForbidden, "student does not belong to parent")
	ErrInvalidPaymentStatus = NewDomainError("student", "UpdateStatus", ErrStateTransition, "invalid payment status")
	ErrInvalidPlanWindow    = NewDomainError("student", "ActivatePlan", ErrInvalidInput, "plan start must precede plan end")
	ErrSessionLimitReached  = NewDomainError("student", "ConsumeSession", ErrValueOutOfRange, "session limit reached")
	ErrPlanNotActive        = NewDomainError("student", "CheckPlan", ErrForbidden, "student has no active plan")
)

// Teacher domain errors
var (
	ErrTeacherNotFound      = NewDomainError("teacher", "Find", ErrNotFound, "teacher not found")
	ErrTeacherAlreadyExists = NewDomainError("teacher", "Create", ErrAlreadyExists, "teacher already exists")
	ErrInvalidPayoutAmount  = NewDomainError("teacher", "RecordPayment", ErrInvalidInput, "payout amount must be positive")
)

// Booking and attendance domain errors
var (
	ErrBookingNotFound       = NewDomainError("booking", "Find", ErrNotFound, "booking not found")
	ErrInvalidTimeWindow     = NewDomainError("booking", "Validate", ErrInvalidInput, "booking start must precede end")
	ErrBookingAlreadyBooked  = NewDomainError("booking", "Book", ErrInvalidState, "booking slot is already taken")
	ErrAttendanceNotFound    = NewDomainError("attendance", "Find", ErrNotFound, "attendance record not found")
	ErrInvalidAttendance     = NewDomainError("attendance", "Validate", ErrInvalidInput, "invalid attendance status")
	ErrAttendanceForBooking  = NewDomainError("attendance", "Create", ErrAlreadyExists, "attendance already recorded for booking")
	ErrAttendanceBeforeStart = NewDomainError("attendance", "Create", ErrInvalidState, "attendance recorded before session start")
)

// Free trial domain errors
var (
	ErrTrialNotFound    = NewDomainError("trial", "Find", ErrNotFound, "free trial not found")
	ErrTrialAlreadyUsed = NewDomainError("trial", "Book", ErrAlreadyExists, "free trial already used for this family")
)

// External service errors
var (
	ErrBillingUnavailable     = NewDomainError("billing", "Request", ErrServiceUnavailable, "billing provider is unavailable")
	ErrBillingTimeout         = NewDomainError("billing", "Request", ErrTimeout, "billing provider request timeout")
	ErrBillingInvalidResponse = NewDomainError("billing", "Parse", ErrInvalidFormat, "invalid response from billing provider")
	ErrWebhookSignature       = NewDomainError("billing", "Verify", ErrUnauthorized, "webhook signature mismatch")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
// The trial gate maps unique-constraint violations here.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsForbidden checks if the error is an ownership/authorization error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
