package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TeacherRepository implements teacher.Repository for PostgreSQL.
type TeacherRepository struct {
	conn *Connection
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(conn *Connection) *TeacherRepository {
	return &TeacherRepository{conn: conn}
}

// Create creates a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, t *teacher.Teacher) error {
	query := `
		INSERT INTO teachers (id, full_name, email, rate_cents, attendance_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		t.ID,
		t.FullName,
		t.Email,
		t.RateCents,
		t.AttendanceCount,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return teacher.ErrTeacherAlreadyExists
		}
		return fmt.Errorf("failed to create teacher: %w", err)
	}

	return nil
}

// GetByID returns a teacher by ID.
func (r *TeacherRepository) GetByID(ctx context.Context, id string) (*teacher.Teacher, error) {
	query := `
		SELECT id, full_name, email, rate_cents, attendance_count, created_at, updated_at
		FROM teachers
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanTeacher(row)
}

// Update updates a teacher.
func (r *TeacherRepository) Update(ctx context.Context, t *teacher.Teacher) error {
	query := `
		UPDATE teachers SET
			full_name = $1,
			email = $2,
			rate_cents = $3,
			attendance_count = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		t.FullName,
		t.Email,
		t.RateCents,
		t.AttendanceCount,
		time.Now().UTC(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update teacher: %w", err)
	}

	if result.RowsAffected() == 0 {
		return teacher.ErrTeacherNotFound
	}

	return nil
}

// IncrementAttendanceCount atomically bumps the denormalized display counter.
func (r *TeacherRepository) IncrementAttendanceCount(ctx context.Context, id string) error {
	query := `
		UPDATE teachers
		SET attendance_count = attendance_count + 1, updated_at = $1
		WHERE id = $2
	`

	result, err := r.conn.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to increment attendance count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return teacher.ErrTeacherNotFound
	}

	return nil
}

// RecordPayment inserts a ledger entry and resets the teacher's
// attendance_count in one transaction. A crash between the two steps cannot
// leave a payout recorded with the counter still running.
func (r *TeacherRepository) RecordPayment(ctx context.Context, p *teacher.Payment) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		insertQuery := `
			INSERT INTO teacher_payments (id, teacher_id, amount_cents, attendance_count, month, year, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		if _, err := tx.Exec(ctx, insertQuery,
			p.ID,
			p.TeacherID,
			p.AmountCents,
			p.AttendanceCount,
			p.Month,
			p.Year,
			p.PaidAt,
		); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		resetQuery := `
			UPDATE teachers
			SET attendance_count = 0, updated_at = $1
			WHERE id = $2
		`

		result, err := tx.Exec(ctx, resetQuery, time.Now().UTC(), p.TeacherID)
		if err != nil {
			return fmt.Errorf("failed to reset attendance count: %w", err)
		}

		if result.RowsAffected() == 0 {
			return teacher.ErrTeacherNotFound
		}

		return nil
	})
}

// GetPayments returns the teacher's payment ledger, newest first.
func (r *TeacherRepository) GetPayments(ctx context.Context, teacherID string) ([]*teacher.Payment, error) {
	query := `
		SELECT id, teacher_id, amount_cents, attendance_count, month, year, paid_at
		FROM teacher_payments
		WHERE teacher_id = $1
		ORDER BY paid_at DESC
	`

	rows, err := r.conn.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]*teacher.Payment, 0)
	for rows.Next() {
		var p teacher.Payment
		if err := rows.Scan(
			&p.ID,
			&p.TeacherID,
			&p.AmountCents,
			&p.AttendanceCount,
			&p.Month,
			&p.Year,
			&p.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}

func (r *TeacherRepository) scanTeacher(row pgx.Row) (*teacher.Teacher, error) {
	var t teacher.Teacher

	err := row.Scan(
		&t.ID,
		&t.FullName,
		&t.Email,
		&t.RateCents,
		&t.AttendanceCount,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, teacher.ErrTeacherNotFound
		}
		return nil, fmt.Errorf("failed to scan teacher: %w", err)
	}

	return &t, nil
}
