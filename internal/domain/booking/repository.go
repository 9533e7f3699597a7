package booking

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранилища для слотов занятий.
type Repository interface {
	// Create создаёт новый слот.
	Create(ctx context.Context, booking *Booking) error

	// GetByID возвращает слот по ID.
	// Возвращает ErrBookingNotFound, если слот не найден.
	GetByID(ctx context.Context, id string) (*Booking, error)

	// Update обновляет слот.
	Update(ctx context.Context, booking *Booking) error

	// BookSlot атомарно бронирует слот за учеником условным UPDATE
	// (status = 'available' → 'booked'). Возвращает ErrAlreadyBooked,
	// если слот успел забрать параллельный вызов.
	BookSlot(ctx context.Context, bookingID, studentID string) error

	// GetByTeacherID возвращает все слоты преподавателя.
	GetByTeacherID(ctx context.Context, teacherID string) ([]*Booking, error)

	// FindBookedInWindow возвращает забронированные слоты указанных
	// учеников, начинающиеся в окне [from, to]. Используется для
	// выборки "сегодняшних" занятий с границами локального дня сервера.
	FindBookedInWindow(ctx context.Context, studentIDs []string, from, to time.Time) ([]*Booking, error)
}

// AttendanceRepository определяет операции хранилища для посещаемости.
type AttendanceRepository interface {
	// Create создаёт запись посещаемости.
	// Возвращает ErrAttendanceExists, если исход слота уже зафиксирован
	// (уникальный индекс по booking_id).
	Create(ctx context.Context, attendance *Attendance) error

	// GetByBookingID возвращает исход слота.
	// Возвращает ErrAttendanceNotFound, если исход ещё не зафиксирован.
	GetByBookingID(ctx context.Context, bookingID string) (*Attendance, error)

	// GetByStudentID возвращает записи посещаемости ученика, новые первыми.
	GetByStudentID(ctx context.Context, studentID string) ([]*Attendance, error)

	// MonthlyCountsByTeacher агрегирует посещаемость по занятиям
	// преподавателя в разрезе (год, месяц), сортировка по убыванию
	// (год, месяц). Преподаватель без слотов - пустой срез, не ошибка.
	MonthlyCountsByTeacher(ctx context.Context, teacherID string) ([]MonthlyCount, error)

	// CountByTeacherSince возвращает авторитетное количество засчитанных
	// занятий преподавателя с указанного момента. Именно это число, а не
	// денормализованный счётчик, используется при расчёте выплаты.
	CountByTeacherSince(ctx context.Context, teacherID string, since time.Time) (int, error)
}
