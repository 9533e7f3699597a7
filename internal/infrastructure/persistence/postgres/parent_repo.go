package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PARENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ParentRepository implements parent.Repository for PostgreSQL.
type ParentRepository struct {
	conn *Connection
}

// NewParentRepository creates a new ParentRepository.
func NewParentRepository(conn *Connection) *ParentRepository {
	return &ParentRepository{conn: conn}
}

const parentColumns = `id, email, full_name, phone, password_hash, created_at, updated_at`

// Create creates a new parent account.
func (r *ParentRepository) Create(ctx context.Context, p *parent.Parent) error {
	query := `
		INSERT INTO parents (id, email, full_name, phone, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		string(p.Email),
		p.FullName,
		p.Phone,
		p.PasswordHash,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return parent.ErrParentAlreadyExists
		}
		return fmt.Errorf("failed to create parent: %w", err)
	}

	return nil
}

// GetByID returns a parent by internal ID.
func (r *ParentRepository) GetByID(ctx context.Context, id string) (*parent.Parent, error) {
	query := `SELECT ` + parentColumns + ` FROM parents WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanParent(row)
}

// GetByEmail returns a parent by email. The lookup uses the normalized
// (lowercase) form, matching what Create stores.
func (r *ParentRepository) GetByEmail(ctx context.Context, email parent.Email) (*parent.Parent, error) {
	query := `SELECT ` + parentColumns + ` FROM parents WHERE email = $1`

	row := r.conn.QueryRow(ctx, query, string(email.Normalized()))
	return r.scanParent(row)
}

// Update updates a parent account.
func (r *ParentRepository) Update(ctx context.Context, p *parent.Parent) error {
	query := `
		UPDATE parents SET
			email = $1,
			full_name = $2,
			phone = $3,
			password_hash = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		string(p.Email),
		p.FullName,
		p.Phone,
		p.PasswordHash,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return parent.ErrParentAlreadyExists
		}
		return fmt.Errorf("failed to update parent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return parent.ErrParentNotFound
	}

	return nil
}

// ExistsByEmail checks whether a parent with the given email is registered.
func (r *ParentRepository) ExistsByEmail(ctx context.Context, email parent.Email) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM parents WHERE email = $1)",
		string(email.Normalized()),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check parent existence: %w", err)
	}
	return exists, nil
}

func (r *ParentRepository) scanParent(row pgx.Row) (*parent.Parent, error) {
	var p parent.Parent

	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.Phone,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, parent.ErrParentNotFound
		}
		return nil, fmt.Errorf("failed to scan parent: %w", err)
	}

	return &p, nil
}
