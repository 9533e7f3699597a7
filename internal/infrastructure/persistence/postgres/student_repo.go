package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StudentRepository implements student.Repository for PostgreSQL.
type StudentRepository struct {
	conn *Connection
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(conn *Connection) *StudentRepository {
	return &StudentRepository{conn: conn}
}

const studentColumns = `
	id, parent_id, full_name, language, payment_status,
	plan_start_date, plan_end_date, session_limit, session_used,
	created_at, updated_at
`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new student.
func (r *StudentRepository) Create(ctx context.Context, s *student.Student) error {
	query := `
		INSERT INTO students (
			id, parent_id, full_name, language, payment_status,
			plan_start_date, plan_end_date, session_limit, session_used,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.ParentID,
		s.FullName,
		string(s.Language),
		string(s.PaymentStatus),
		s.PlanStartDate,
		s.PlanEndDate,
		s.SessionLimit,
		s.SessionUsed,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return student.ErrStudentAlreadyExists
		}
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

// GetByID returns a student by internal ID.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanStudent(row)
}

// GetByParentID returns all children of the given parent.
func (r *StudentRepository) GetByParentID(ctx context.Context, parentID string) ([]*student.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE parent_id = $1 ORDER BY created_at`

	rows, err := r.conn.Query(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query students by parent: %w", err)
	}
	defer rows.Close()

	return r.scanStudents(rows)
}

// Update updates a student.
func (r *StudentRepository) Update(ctx context.Context, s *student.Student) error {
	query := `
		UPDATE students SET
			full_name = $1,
			language = $2,
			payment_status = $3,
			plan_start_date = $4,
			plan_end_date = $5,
			session_limit = $6,
			session_used = $7,
			updated_at = $8
		WHERE id = $9
	`

	result, err := r.conn.Exec(ctx, query,
		s.FullName,
		string(s.Language),
		string(s.PaymentStatus),
		s.PlanStartDate,
		s.PlanEndDate,
		s.SessionLimit,
		s.SessionUsed,
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Plan Lifecycle Operations
// ─────────────────────────────────────────────────────────────────────────────

// UpdatePaymentStatus atomically sets the payment status of one student.
func (r *StudentRepository) UpdatePaymentStatus(ctx context.Context, id string, status student.PaymentStatus) error {
	query := `
		UPDATE students
		SET payment_status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.conn.Exec(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}

	return nil
}

// ActivatePlan atomically records a paid plan: active window, session limit,
// counter reset and "completed" status, all in one statement.
func (r *StudentRepository) ActivatePlan(ctx context.Context, id string, start, end time.Time, sessionLimit int) error {
	query := `
		UPDATE students
		SET payment_status = $1,
		    plan_start_date = $2,
		    plan_end_date = $3,
		    session_limit = $4,
		    session_used = 0,
		    updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		string(student.PaymentCompleted),
		start,
		end,
		sessionLimit,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to activate plan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return student.ErrStudentNotFound
	}

	return nil
}

// ExpirePlans flips every student whose plan has ended to "pending" in a
// single batch UPDATE and returns the number of affected rows. Students
// already pending are skipped, so re-running the sweep is a no-op.
func (r *StudentRepository) ExpirePlans(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE students
		SET payment_status = $1, updated_at = $2
		WHERE plan_end_date IS NOT NULL
		  AND plan_end_date < $3
		  AND payment_status != $1
	`

	result, err := r.conn.Exec(ctx, query,
		string(student.PaymentPending),
		time.Now().UTC(),
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire plans: %w", err)
	}

	return result.RowsAffected(), nil
}

// ConsumeSession atomically spends one plan session if the limit allows.
func (r *StudentRepository) ConsumeSession(ctx context.Context, id string) error {
	query := `
		UPDATE students
		SET session_used = session_used + 1, updated_at = $1
		WHERE id = $2 AND session_used < session_limit
	`

	result, err := r.conn.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to consume session: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either no such student or the limit is spent.
		exists, err := r.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return student.ErrStudentNotFound
		}
		return student.ErrSessionLimitReached
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence & Ownership Checks
// ─────────────────────────────────────────────────────────────────────────────

// Exists checks whether a student with the given ID exists.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check student existence: %w", err)
	}
	return exists, nil
}

// BelongsToParent checks whether the student belongs to the given parent.
func (r *StudentRepository) BelongsToParent(ctx context.Context, studentID, parentID string) (bool, error) {
	var belongs bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM students WHERE id = $1 AND parent_id = $2)",
		studentID, parentID,
	).Scan(&belongs)
	if err != nil {
		return false, fmt.Errorf("failed to check student ownership: %w", err)
	}
	return belongs, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *StudentRepository) scanStudent(row pgx.Row) (*student.Student, error) {
	var s student.Student
	var rawStatus string

	err := row.Scan(
		&s.ID,
		&s.ParentID,
		&s.FullName,
		&s.Language,
		&rawStatus,
		&s.PlanStartDate,
		&s.PlanEndDate,
		&s.SessionLimit,
		&s.SessionUsed,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, student.ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}

	// Rows written by the old backend may still carry the legacy
	// "success" label; it is normalized on every read.
	status, err := student.NormalizePaymentStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("student %s: %w", s.ID, err)
	}
	s.PaymentStatus = status

	return &s, nil
}

func (r *StudentRepository) scanStudents(rows pgx.Rows) ([]*student.Student, error) {
	students := make([]*student.Student, 0)

	for rows.Next() {
		s, err := r.scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}

	return students, rows.Err()
}
