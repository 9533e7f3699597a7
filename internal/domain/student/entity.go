// Package student содержит доменную модель ученика языковой академии.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package student

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Language представляет изучаемый язык (например, "english", "korean").
type Language string

// IsValid проверяет корректность названия языка.
func (l Language) IsValid() bool {
	s := string(l)
	return len(s) >= 2 && len(s) <= 30 && !strings.ContainsAny(s, " \t\n\r")
}

// String возвращает строковое представление языка.
func (l Language) String() string {
	return string(l)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// PaymentStatus определяет статус оплаты абонемента ученика.
// Именно это поле открывает или закрывает доступ к платным занятиям.
type PaymentStatus string

const (
	// PaymentNotRequired - оплата не требуется (новый ученик без абонемента).
	PaymentNotRequired PaymentStatus = "not-required"
	// PaymentPending - абонемент истёк или ожидает оплаты.
	PaymentPending PaymentStatus = "pending"
	// PaymentCompleted - абонемент оплачен и действует.
	PaymentCompleted PaymentStatus = "completed"
	// PaymentFailed - платёж отклонён платёжным провайдером.
	PaymentFailed PaymentStatus = "failed"
)

// IsValid проверяет, что статус корректен.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentNotRequired, PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	default:
		return false
	}
}

// AllowsBooking возвращает true, если статус разрешает бронировать платные занятия.
func (p PaymentStatus) AllowsBooking() bool {
	return p == PaymentCompleted
}

// NormalizePaymentStatus приводит устаревшие написания к каноническим значениям.
// Старый бэкенд записывал "success" вместо "completed"; при чтении из хранилища
// оба написания принимаются, при записи используется только каноническое.
func NormalizePaymentStatus(raw string) (PaymentStatus, error) {
	switch raw {
	case "success":
		return PaymentCompleted, nil
	case string(PaymentNotRequired), string(PaymentPending), string(PaymentCompleted), string(PaymentFailed):
		return PaymentStatus(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, raw)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student - центральная сущность системы, представляющая ученика академии.
type Student struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// ParentID - идентификатор родителя-владельца аккаунта.
	ParentID string

	// FullName - имя ученика.
	FullName string

	// Language - изучаемый язык.
	Language Language

	// PaymentStatus - текущий статус оплаты абонемента.
	PaymentStatus PaymentStatus

	// PlanStartDate - начало действия абонемента (nil, если абонемента нет).
	PlanStartDate *time.Time

	// PlanEndDate - окончание действия абонемента (nil, если абонемента нет).
	PlanEndDate *time.Time

	// SessionLimit - количество занятий, включённых в абонемент.
	SessionLimit int

	// SessionUsed - количество уже использованных занятий.
	SessionUsed int

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidFullName - невалидное имя ученика.
	ErrInvalidFullName = errors.New("invalid full name: must be 1-100 chars")

	// ErrInvalidLanguage - невалидное название языка.
	ErrInvalidLanguage = errors.New("invalid language: must be 2-30 chars without whitespace")

	// ErrInvalidPaymentStatus - невалидный статус оплаты.
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrInvalidPlanWindow - дата начала абонемента не раньше даты окончания.
	ErrInvalidPlanWindow = errors.New("invalid plan window: start must precede end")

	// ErrInvalidSessionLimit - лимит занятий должен быть положительным.
	ErrInvalidSessionLimit = errors.New("invalid session limit: must be positive")

	// ErrSessionLimitReached - все занятия абонемента уже использованы.
	// Тот же объект, что и shared.ErrSessionLimitReached.
	ErrSessionLimitReached = shared.ErrSessionLimitReached

	// ErrStudentNotFound - ученик не найден. Тот же объект, что и
	// shared.ErrStudentNotFound: репозитории и HTTP-слой видят одну ошибку.
	ErrStudentNotFound = shared.ErrStudentNotFound

	// ErrStudentAlreadyExists - ученик уже существует.
	ErrStudentAlreadyExists = shared.ErrStudentAlreadyExists
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewStudentParams содержит параметры для создания нового ученика.
type NewStudentParams struct {
	ID       string
	ParentID string
	FullName string
	Language Language
}

// NewStudent создаёт нового ученика с валидацией всех полей.
// Новый ученик начинает без абонемента со статусом "not-required".
func NewStudent(params NewStudentParams) (*Student, error) {
	if params.ID == "" {
		return nil, errors.New("student id is required")
	}

	if params.ParentID == "" {
		return nil, errors.New("parent id is required")
	}

	fullName := strings.TrimSpace(params.FullName)
	if len(fullName) == 0 || len(fullName) > 100 {
		return nil, ErrInvalidFullName
	}

	if !params.Language.IsValid() {
		return nil, ErrInvalidLanguage
	}

	now := time.Now().UTC()

	return &Student{
		ID:            params.ID,
		ParentID:      params.ParentID,
		FullName:      fullName,
		Language:      params.Language,
		PaymentStatus: PaymentNotRequired,
		SessionLimit:  0,
		SessionUsed:   0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// EvaluatePlan вычисляет статус оплаты на момент времени now.
// Чистая функция без побочных эффектов: два вызова с одинаковым now
// и неизменными датами абонемента дают одинаковый результат.
//
//   - PlanEndDate установлена и now позже неё  → PaymentPending
//   - иначе                                   → PaymentCompleted
func (s *Student) EvaluatePlan(now time.Time) PaymentStatus {
	if s.PlanEndDate != nil && now.After(*s.PlanEndDate) {
		return PaymentPending
	}
	return PaymentCompleted
}

// ApplyEvaluation записывает результат EvaluatePlan в сущность.
// Возвращает true, если статус изменился.
func (s *Student) ApplyEvaluation(now time.Time) bool {
	next := s.EvaluatePlan(now)
	if s.PaymentStatus == next {
		return false
	}
	s.PaymentStatus = next
	s.UpdatedAt = time.Now().UTC()
	return true
}

// ActivatePlan активирует оплаченный абонемент с заданным окном действия
// и лимитом занятий. Счётчик использованных занятий сбрасывается.
func (s *Student) ActivatePlan(start, end time.Time, sessionLimit int) error {
	if !start.Before(end) {
		return ErrInvalidPlanWindow
	}
	if sessionLimit <= 0 {
		return ErrInvalidSessionLimit
	}

	s.PlanStartDate = &start
	s.PlanEndDate = &end
	s.SessionLimit = sessionLimit
	s.SessionUsed = 0
	s.PaymentStatus = PaymentCompleted
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkPaymentFailed помечает платёж за абонемент как отклонённый.
// Статус "failed" терминален до покупки нового абонемента.
func (s *Student) MarkPaymentFailed() {
	s.PaymentStatus = PaymentFailed
	s.UpdatedAt = time.Now().UTC()
}

// HasActivePlan возвращает true, если абонемент действует на момент now.
func (s *Student) HasActivePlan(now time.Time) bool {
	if s.PlanStartDate == nil || s.PlanEndDate == nil {
		return false
	}
	return !now.Before(*s.PlanStartDate) && !now.After(*s.PlanEndDate)
}

// SessionsRemaining возвращает количество оставшихся занятий абонемента.
func (s *Student) SessionsRemaining() int {
	remaining := s.SessionLimit - s.SessionUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ConsumeSession списывает одно занятие абонемента.
// Инвариант SessionUsed <= SessionLimit поддерживается здесь; в хранилище
// он дополнительно закреплён CHECK-ограничением и условным UPDATE.
func (s *Student) ConsumeSession() error {
	if s.SessionUsed >= s.SessionLimit {
		return ErrSessionLimitReached
	}
	s.SessionUsed++
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// String возвращает строковое представление ученика для логирования.
func (s *Student) String() string {
	return fmt.Sprintf(
		"Student{ID: %s, Name: %s, Language: %s, PaymentStatus: %s}",
		s.ID, s.FullName, s.Language, s.PaymentStatus,
	)
}

// Clone создаёт глубокую копию ученика.
func (s *Student) Clone() *Student {
	if s == nil {
		return nil
	}

	clone := *s
	if s.PlanStartDate != nil {
		start := *s.PlanStartDate
		clone.PlanStartDate = &start
	}
	if s.PlanEndDate != nil {
		end := *s.PlanEndDate
		clone.PlanEndDate = &end
	}
	return &clone
}
