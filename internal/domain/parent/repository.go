package parent

import (
	"context"
)

// Repository определяет операции хранилища для родителей.
// Реализации находятся в infrastructure/persistence.
type Repository interface {
	// Create создаёт нового родителя.
	// Возвращает ErrParentAlreadyExists при дубликате email.
	Create(ctx context.Context, parent *Parent) error

	// GetByID возвращает родителя по внутреннему ID.
	// Возвращает ErrParentNotFound, если родитель не найден.
	GetByID(ctx context.Context, id string) (*Parent, error)

	// GetByEmail возвращает родителя по email.
	// Возвращает ErrParentNotFound, если родитель не найден.
	GetByEmail(ctx context.Context, email Email) (*Parent, error)

	// Update обновляет данные родителя.
	Update(ctx context.Context, parent *Parent) error

	// ExistsByEmail проверяет существование родителя по email.
	ExistsByEmail(ctx context.Context, email Email) (bool, error)
}
