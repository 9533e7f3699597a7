package teacher

import (
	"context"
	"time"
)

// Repository определяет операции хранилища для преподавателей и журнала выплат.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Create создаёт нового преподавателя.
	// Возвращает ErrTeacherAlreadyExists при дубликате email.
	Create(ctx context.Context, teacher *Teacher) error

	// GetByID возвращает преподавателя по ID.
	// Возвращает ErrTeacherNotFound, если преподаватель не найден.
	GetByID(ctx context.Context, id string) (*Teacher, error)

	// Update обновляет данные преподавателя.
	Update(ctx context.Context, teacher *Teacher) error

	// IncrementAttendanceCount атомарно увеличивает денормализованный
	// счётчик занятий (вызывается при записи посещаемости).
	IncrementAttendanceCount(ctx context.Context, id string) error

	// RecordPayment записывает выплату в журнал и сбрасывает
	// attendance_count преподавателя в 0 одной транзакцией: сбой между
	// двумя шагами не может оставить выплату без сброса счётчика.
	RecordPayment(ctx context.Context, payment *Payment) error

	// GetPayments возвращает журнал выплат преподавателя, новые первыми.
	GetPayments(ctx context.Context, teacherID string) ([]*Payment, error)
}

// CounterCache определяет кеш отображаемого счётчика занятий.
// Инвалидация обязана происходить на единственном мутирующем событии -
// создании выплаты.
type CounterCache interface {
	// GetCount получает счётчик из кеша.
	GetCount(ctx context.Context, teacherID string) (int, error)

	// SetCount сохраняет счётчик в кеш.
	SetCount(ctx context.Context, teacherID string, count int, ttl time.Duration) error

	// Invalidate удаляет счётчик преподавателя из кеша.
	Invalidate(ctx context.Context, teacherID string) error
}
