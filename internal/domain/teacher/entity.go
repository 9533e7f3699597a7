// Package teacher содержит доменную модель преподавателя и журнал выплат.
// Выплаты считаются по записям посещаемости; счётчик attendance_count на
// преподавателе - денормализованный кеш для отображения, а не источник истины.
package teacher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: TEACHER
// ══════════════════════════════════════════════════════════════════════════════

// Teacher - преподаватель академии.
type Teacher struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// FullName - имя преподавателя.
	FullName string

	// Email - уникальный email.
	Email string

	// RateCents - ставка за одно проведённое занятие, в центах.
	RateCents int64

	// AttendanceCount - денормализованный счётчик проведённых занятий
	// с момента последней выплаты. Кеш для отображения: авторитетным
	// источником остаётся коллекция посещаемости.
	AttendanceCount int

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// Payment - запись журнала выплат. Журнал только пополняется;
// созданная запись никогда не изменяется.
type Payment struct {
	// ID - уникальный идентификатор выплаты.
	ID string

	// TeacherID - преподаватель, получивший выплату.
	TeacherID string

	// AttendanceCount - количество занятий, за которые произведена выплата.
	AttendanceCount int

	// AmountCents - сумма выплаты в центах.
	AmountCents int64

	// Month, Year - расчётный период выплаты.
	Month int
	Year  int

	// PaidAt - время проведения выплаты.
	PaidAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidFullName - невалидное имя преподавателя.
	ErrInvalidFullName = errors.New("invalid full name: must be 1-100 chars")

	// ErrInvalidRate - ставка должна быть неотрицательной.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrInvalidPayment - невалидные параметры выплаты.
	ErrInvalidPayment = errors.New("invalid payment: amount and count must be positive")

	// ErrTeacherNotFound - преподаватель не найден. Тот же объект, что и
	// shared.ErrTeacherNotFound: репозитории и HTTP-слой видят одну ошибку.
	ErrTeacherNotFound = shared.ErrTeacherNotFound

	// ErrTeacherAlreadyExists - преподаватель уже существует.
	ErrTeacherAlreadyExists = shared.ErrTeacherAlreadyExists
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewTeacherParams содержит параметры для создания преподавателя.
type NewTeacherParams struct {
	ID        string
	FullName  string
	Email     string
	RateCents int64
}

// NewTeacher создаёт нового преподавателя с валидацией полей.
func NewTeacher(params NewTeacherParams) (*Teacher, error) {
	if params.ID == "" {
		return nil, errors.New("teacher id is required")
	}

	fullName := strings.TrimSpace(params.FullName)
	if len(fullName) == 0 || len(fullName) > 100 {
		return nil, ErrInvalidFullName
	}

	if params.RateCents < 0 {
		return nil, ErrInvalidRate
	}

	now := time.Now().UTC()

	return &Teacher{
		ID:              params.ID,
		FullName:        fullName,
		Email:           strings.ToLower(strings.TrimSpace(params.Email)),
		RateCents:       params.RateCents,
		AttendanceCount: 0,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// NewPayment формирует запись выплаты за расчётный период.
func NewPayment(id, teacherID string, attendanceCount int, amountCents int64, paidAt time.Time) (*Payment, error) {
	if id == "" || teacherID == "" {
		return nil, errors.New("payment id and teacher id are required")
	}
	if attendanceCount <= 0 || amountCents <= 0 {
		return nil, ErrInvalidPayment
	}

	return &Payment{
		ID:              id,
		TeacherID:       teacherID,
		AttendanceCount: attendanceCount,
		AmountCents:     amountCents,
		Month:           int(paidAt.Month()),
		Year:            paidAt.Year(),
		PaidAt:          paidAt,
	}, nil
}

// PayoutFor вычисляет сумму выплаты за указанное число занятий.
func (t *Teacher) PayoutFor(attendanceCount int) int64 {
	if attendanceCount <= 0 {
		return 0
	}
	return t.RateCents * int64(attendanceCount)
}

// String возвращает строковое представление преподавателя для логирования.
func (t *Teacher) String() string {
	return fmt.Sprintf("Teacher{ID: %s, Name: %s, AttendanceCount: %d}",
		t.ID, t.FullName, t.AttendanceCount)
}
