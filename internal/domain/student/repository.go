package student

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет основные операции CRUD для учеников.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create создаёт нового ученика.
	// Возвращает ErrStudentAlreadyExists, если ученик уже существует.
	Create(ctx context.Context, student *Student) error

	// GetByID возвращает ученика по внутреннему ID.
	// Возвращает ErrStudentNotFound, если ученик не найден.
	GetByID(ctx context.Context, id string) (*Student, error)

	// GetByParentID возвращает всех детей указанного родителя.
	GetByParentID(ctx context.Context, parentID string) ([]*Student, error)

	// Update обновляет данные ученика.
	// Возвращает ErrStudentNotFound, если ученик не найден.
	Update(ctx context.Context, student *Student) error

	// ─────────────────────────────────────────────────────────────────────────
	// Plan Lifecycle Operations
	// Все мутации статуса выражены одной атомарной операцией хранилища -
	// условный UPDATE, возвращающий количество затронутых строк.
	// ─────────────────────────────────────────────────────────────────────────

	// UpdatePaymentStatus атомарно устанавливает статус оплаты одного ученика.
	// Возвращает ErrStudentNotFound, если ученик не найден.
	UpdatePaymentStatus(ctx context.Context, id string, status PaymentStatus) error

	// ActivatePlan атомарно записывает оплаченный абонемент:
	// окно действия, лимит занятий, сброс счётчика и статус "completed".
	ActivatePlan(ctx context.Context, id string, start, end time.Time, sessionLimit int) error

	// ExpirePlans переводит в "pending" всех учеников, у которых
	// plan_end_date < now и payment_status != 'pending', одним пакетным
	// UPDATE. Возвращает количество затронутых строк. Ученики, уже
	// находящиеся в "pending", не учитываются в счётчике.
	ExpirePlans(ctx context.Context, now time.Time) (int64, error)

	// ConsumeSession атомарно списывает одно занятие, если лимит не исчерпан.
	// Возвращает ErrSessionLimitReached при исчерпанном лимите.
	ConsumeSession(ctx context.Context, id string) error

	// ─────────────────────────────────────────────────────────────────────────
	// Existence & Ownership Checks
	// ─────────────────────────────────────────────────────────────────────────

	// Exists проверяет существование ученика по ID.
	Exists(ctx context.Context, id string) (bool, error)

	// BelongsToParent проверяет, принадлежит ли ученик родителю.
	BelongsToParent(ctx context.Context, studentID, parentID string) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Для кеширования статуса абонемента (обычно реализуется через Redis).
// ══════════════════════════════════════════════════════════════════════════════

// StatusCache определяет операции кеширования статуса оплаты.
// Кеш - только ускорение чтения; источником истины остаётся хранилище,
// поэтому каждая мутация статуса обязана инвалидировать запись.
type StatusCache interface {
	// GetStatus получает статус из кеша.
	GetStatus(ctx context.Context, studentID string) (PaymentStatus, error)

	// SetStatus сохраняет статус в кеш.
	SetStatus(ctx context.Context, studentID string, status PaymentStatus, ttl time.Duration) error

	// Invalidate удаляет запись ученика из кеша.
	Invalidate(ctx context.Context, studentID string) error
}
