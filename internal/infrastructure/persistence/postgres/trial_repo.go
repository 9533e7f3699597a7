package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/trial"
)

// ══════════════════════════════════════════════════════════════════════════════
// FREE TRIAL REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TrialRepository implements trial.Repository for PostgreSQL.
type TrialRepository struct {
	conn *Connection
}

// NewTrialRepository creates a new TrialRepository.
func NewTrialRepository(conn *Connection) *TrialRepository {
	return &TrialRepository{conn: conn}
}

// Create inserts a trial record. The unique index on parent_email is the
// actual one-per-family enforcement: a concurrent duplicate surfaces here as
// trial.ErrAlreadyUsed regardless of what the pre-check saw.
func (r *TrialRepository) Create(ctx context.Context, t *trial.FreeTrial) error {
	query := `
		INSERT INTO free_trials (id, parent_email, parent_id, student_id, booked_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query,
		t.ID,
		normalizeEmail(t.ParentEmail),
		t.ParentID,
		t.StudentID,
		t.BookedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return trial.ErrAlreadyUsed
		}
		return fmt.Errorf("failed to create trial record: %w", err)
	}

	return nil
}

// GetByEmail returns the trial record for a family email.
func (r *TrialRepository) GetByEmail(ctx context.Context, parentEmail string) (*trial.FreeTrial, error) {
	query := `
		SELECT id, parent_email, parent_id, student_id, booked_at
		FROM free_trials
		WHERE parent_email = $1
	`

	var t trial.FreeTrial
	err := r.conn.QueryRow(ctx, query, normalizeEmail(parentEmail)).Scan(
		&t.ID,
		&t.ParentEmail,
		&t.ParentID,
		&t.StudentID,
		&t.BookedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, trial.ErrTrialNotFound
		}
		return nil, fmt.Errorf("failed to scan trial record: %w", err)
	}

	return &t, nil
}

// ExistsByEmail reports whether the family has already used its trial.
// Fast path for UX only; Create remains the deciding check.
func (r *TrialRepository) ExistsByEmail(ctx context.Context, parentEmail string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM free_trials WHERE parent_email = $1)",
		normalizeEmail(parentEmail),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check trial existence: %w", err)
	}
	return exists, nil
}

// normalizeEmail lowercases and trims an email so that lookups and the
// unique index agree on the canonical form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
