// Package parent содержит доменную модель родителя - владельца семейного
// аккаунта академии. Родитель регистрируется по email, владеет учениками
// и ровно одним бесплатным пробным занятием на семью.
package parent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Email представляет email родителя - его уникальный идентификатор для
// проверки права на пробное занятие.
type Email string

// IsValid выполняет минимальную проверку формата email.
func (e Email) IsValid() bool {
	s := string(e)
	at := strings.IndexByte(s, '@')
	dot := strings.LastIndexByte(s, '.')
	return len(s) >= 5 && len(s) <= 254 && at > 0 && dot > at+1 && dot < len(s)-1
}

// Normalized возвращает email в каноническом виде (в нижнем регистре).
func (e Email) Normalized() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

// String возвращает строковое представление email.
func (e Email) String() string {
	return string(e)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: PARENT
// ══════════════════════════════════════════════════════════════════════════════

// Parent - родитель, владелец семейного аккаунта.
type Parent struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Email - уникальный email аккаунта.
	Email Email

	// FullName - имя родителя.
	FullName string

	// Phone - контактный телефон (опционально).
	Phone string

	// PasswordHash - bcrypt-хеш пароля.
	PasswordHash string

	// CreatedAt - время регистрации.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidEmail - невалидный email.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidFullName - невалидное имя.
	ErrInvalidFullName = errors.New("invalid full name: must be 1-100 chars")

	// ErrInvalidPassword - пароль слишком короткий.
	ErrInvalidPassword = errors.New("invalid password: must be at least 8 chars")

	// ErrParentNotFound - родитель не найден. Тот же объект, что и
	// shared.ErrParentNotFound: репозитории и HTTP-слой видят одну ошибку.
	ErrParentNotFound = shared.ErrParentNotFound

	// ErrParentAlreadyExists - родитель с таким email уже зарегистрирован.
	ErrParentAlreadyExists = shared.ErrParentAlreadyExists
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewParentParams содержит параметры для регистрации родителя.
type NewParentParams struct {
	ID       string
	Email    Email
	FullName string
	Phone    string
	Password string
}

// NewParent создаёт нового родителя с валидацией и хешированием пароля.
func NewParent(params NewParentParams) (*Parent, error) {
	if params.ID == "" {
		return nil, errors.New("parent id is required")
	}

	email := params.Email.Normalized()
	if !email.IsValid() {
		return nil, ErrInvalidEmail
	}

	fullName := strings.TrimSpace(params.FullName)
	if len(fullName) == 0 || len(fullName) > 100 {
		return nil, ErrInvalidFullName
	}

	if len(params.Password) < 8 {
		return nil, ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()

	return &Parent{
		ID:           params.ID,
		Email:        email,
		FullName:     fullName,
		Phone:        strings.TrimSpace(params.Phone),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS
// ══════════════════════════════════════════════════════════════════════════════

// CheckPassword сравнивает пароль с сохранённым хешем.
func (p *Parent) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

// ChangePassword устанавливает новый пароль.
func (p *Parent) ChangePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	p.PasswordHash = string(hash)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// String возвращает строковое представление родителя для логирования.
// Хеш пароля намеренно не выводится.
func (p *Parent) String() string {
	return fmt.Sprintf("Parent{ID: %s, Email: %s}", p.ID, p.Email)
}
