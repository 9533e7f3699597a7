// Package booking содержит доменную модель занятий: запланированные слоты
// (Booking) и их фактические исходы (Attendance). Связка этих двух сущностей
// питает отчёты и расчёт выплат преподавателям.
package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет состояние слота занятия.
type Status string

const (
	// StatusAvailable - слот открыт для бронирования.
	StatusAvailable Status = "available"
	// StatusBooked - слот забронирован учеником.
	StatusBooked Status = "booked"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	return s == StatusAvailable || s == StatusBooked
}

// AttendanceStatus определяет исход проведённого занятия.
// Значения хранятся в верхнем регистре - так их писал исходный бэкенд,
// и так они остаются на проводе.
type AttendanceStatus string

const (
	// AttendancePresent - ученик присутствовал.
	AttendancePresent AttendanceStatus = "PRESENT"
	// AttendanceAbsent - ученик отсутствовал.
	AttendanceAbsent AttendanceStatus = "ABSENT"
	// AttendanceLate - ученик опоздал.
	AttendanceLate AttendanceStatus = "LATE"
)

// IsValid проверяет, что статус посещаемости корректен.
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	default:
		return false
	}
}

// Counts возвращает true, если занятие засчитывается преподавателю
// как проведённое.
func (s AttendanceStatus) Counts() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: BOOKING
// ══════════════════════════════════════════════════════════════════════════════

// Booking - запланированный слот занятия между учеником и преподавателем.
type Booking struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// StudentID - ученик слота (пустой, пока слот available).
	StudentID string

	// TeacherID - преподаватель слота.
	TeacherID string

	// StartAt, EndAt - окно занятия [StartAt, EndAt). Инвариант: StartAt < EndAt.
	StartAt time.Time
	EndAt   time.Time

	// Status - состояние слота.
	Status Status

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

// Attendance - зафиксированный исход занятия. Создаётся только после того,
// как дата занятия прошла.
type Attendance struct {
	// ID - уникальный идентификатор записи.
	ID string

	// BookingID - обратная ссылка на слот.
	BookingID string

	// StudentID - ученик занятия.
	StudentID string

	// Status - исход занятия.
	Status AttendanceStatus

	// LateMinutes - длительность опоздания в минутах (только для LATE).
	LateMinutes int

	// AttendedOn - дата занятия; по ней строятся месячные отчёты.
	AttendedOn time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// MonthlyCount - агрегат посещаемости за один календарный месяц.
type MonthlyCount struct {
	Year  int
	Month int
	Count int
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTimeWindow - начало окна не раньше конца.
	ErrInvalidTimeWindow = errors.New("invalid time window: start must precede end")

	// ErrInvalidStatus - невалидный статус слота.
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrAlreadyBooked - слот уже забронирован.
	ErrAlreadyBooked = errors.New("booking slot is already taken")

	// ErrNotBooked - операция требует забронированного слота.
	ErrNotBooked = errors.New("booking slot is not booked")

	// ErrInvalidAttendanceStatus - невалидный статус посещаемости.
	ErrInvalidAttendanceStatus = errors.New("invalid attendance status")

	// ErrInvalidLateMinutes - опоздание фиксируется только для статуса LATE.
	ErrInvalidLateMinutes = errors.New("late minutes require LATE status")

	// ErrBookingNotFound - слот не найден. Тот же объект, что и
	// shared.ErrBookingNotFound: репозитории и HTTP-слой видят одну ошибку.
	ErrBookingNotFound = shared.ErrBookingNotFound

	// ErrAttendanceNotFound - исход занятия ещё не зафиксирован.
	ErrAttendanceNotFound = shared.ErrAttendanceNotFound

	// ErrAttendanceExists - исход занятия уже зафиксирован.
	ErrAttendanceExists = shared.ErrAttendanceForBooking
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewBookingParams содержит параметры для создания слота.
type NewBookingParams struct {
	ID        string
	TeacherID string
	StartAt   time.Time
	EndAt     time.Time
}

// NewBooking создаёт открытый для бронирования слот с валидацией окна.
func NewBooking(params NewBookingParams) (*Booking, error) {
	if params.ID == "" {
		return nil, errors.New("booking id is required")
	}
	if params.TeacherID == "" {
		return nil, errors.New("teacher id is required")
	}
	if !params.StartAt.Before(params.EndAt) {
		return nil, ErrInvalidTimeWindow
	}

	now := time.Now().UTC()

	return &Booking{
		ID:        params.ID,
		TeacherID: params.TeacherID,
		StartAt:   params.StartAt,
		EndAt:     params.EndAt,
		Status:    StatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewAttendanceParams содержит параметры для фиксации исхода занятия.
type NewAttendanceParams struct {
	ID          string
	BookingID   string
	StudentID   string
	Status      AttendanceStatus
	LateMinutes int
	AttendedOn  time.Time
}

// NewAttendance создаёт запись посещаемости с валидацией полей.
func NewAttendance(params NewAttendanceParams) (*Attendance, error) {
	if params.ID == "" || params.BookingID == "" || params.StudentID == "" {
		return nil, errors.New("attendance id, booking id and student id are required")
	}
	if !params.Status.IsValid() {
		return nil, ErrInvalidAttendanceStatus
	}
	if params.LateMinutes > 0 && params.Status != AttendanceLate {
		return nil, ErrInvalidLateMinutes
	}
	if params.LateMinutes < 0 {
		return nil, ErrInvalidLateMinutes
	}

	return &Attendance{
		ID:          params.ID,
		BookingID:   params.BookingID,
		StudentID:   params.StudentID,
		Status:      params.Status,
		LateMinutes: params.LateMinutes,
		AttendedOn:  params.AttendedOn,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// Book бронирует слот за учеником.
func (b *Booking) Book(studentID string) error {
	if studentID == "" {
		return errors.New("student id is required")
	}
	if b.Status == StatusBooked {
		return ErrAlreadyBooked
	}

	b.StudentID = studentID
	b.Status = StatusBooked
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Release возвращает слот в состояние available.
func (b *Booking) Release() error {
	if b.Status != StatusBooked {
		return ErrNotBooked
	}

	b.StudentID = ""
	b.Status = StatusAvailable
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Duration возвращает длительность занятия.
func (b *Booking) Duration() time.Duration {
	return b.EndAt.Sub(b.StartAt)
}

// HasEnded возвращает true, если занятие уже закончилось на момент now.
// Посещаемость фиксируется только для закончившихся занятий.
func (b *Booking) HasEnded(now time.Time) bool {
	return !now.Before(b.EndAt)
}

// String возвращает строковое представление слота для логирования.
func (b *Booking) String() string {
	return fmt.Sprintf("Booking{ID: %s, Teacher: %s, Start: %s, Status: %s}",
		b.ID, b.TeacherID, b.StartAt.Format(time.RFC3339), b.Status)
}
