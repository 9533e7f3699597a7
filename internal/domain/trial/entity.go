// Package trial содержит доменную модель бесплатного пробного занятия.
// Правило бизнеса: одна семья (один email родителя) получает ровно одно
// пробное занятие за всю историю аккаунта. Последним рубежом защиты от
// гонок служит уникальный индекс по parent_email в хранилище.
package trial

import (
	"errors"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

// FreeTrial - запись об использованном пробном занятии.
// Создаётся один раз и при нормальной работе никогда не обновляется
// и не удаляется.
type FreeTrial struct {
	// ID - уникальный идентификатор записи.
	ID string

	// ParentEmail - email семьи; глобально уникален среди всех записей.
	ParentEmail string

	// ParentID - родитель, забронировавший пробное занятие.
	ParentID string

	// StudentID - ребёнок, на которого оформлено пробное занятие.
	StudentID string

	// BookedAt - время бронирования.
	BookedAt time.Time
}

var (
	// ErrTrialNotFound - запись о пробном занятии не найдена. Тот же объект,
	// что и shared.ErrTrialNotFound: репозитории и HTTP-слой видят одну ошибку.
	ErrTrialNotFound = shared.ErrTrialNotFound

	// ErrAlreadyUsed - семья уже использовала пробное занятие.
	ErrAlreadyUsed = shared.ErrTrialAlreadyUsed
)

// NewFreeTrial создаёт запись о пробном занятии.
func NewFreeTrial(id, parentEmail, parentID, studentID string) (*FreeTrial, error) {
	if id == "" || parentEmail == "" || parentID == "" || studentID == "" {
		return nil, errors.New("trial id, parent email, parent id and student id are required")
	}

	return &FreeTrial{
		ID:          id,
		ParentEmail: parentEmail,
		ParentID:    parentID,
		StudentID:   studentID,
		BookedAt:    time.Now().UTC(),
	}, nil
}

// String возвращает строковое представление записи для логирования.
func (t *FreeTrial) String() string {
	return fmt.Sprintf("FreeTrial{Email: %s, Student: %s}", t.ParentEmail, t.StudentID)
}
