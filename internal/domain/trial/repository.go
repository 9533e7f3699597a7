package trial

import (
	"context"
)

// Repository определяет операции хранилища для пробных занятий.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Create вставляет запись о пробном занятии. Корректность при
	// конкурентных вызовах обеспечивает уникальный индекс по
	// parent_email: нарушение ограничения возвращается как ErrAlreadyUsed.
	Create(ctx context.Context, trial *FreeTrial) error

	// GetByEmail возвращает запись по email семьи.
	// Возвращает ErrTrialNotFound, если записи нет.
	GetByEmail(ctx context.Context, parentEmail string) (*FreeTrial, error)

	// ExistsByEmail проверяет, использовала ли семья пробное занятие.
	// Только быстрый путь для UX: решающей проверкой остаётся
	// уникальный индекс при вставке.
	ExistsByEmail(ctx context.Context, parentEmail string) (bool, error)
}
