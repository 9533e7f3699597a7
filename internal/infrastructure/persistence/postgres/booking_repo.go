package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOOKING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BookingRepository implements booking.Repository for PostgreSQL.
type BookingRepository struct {
	conn *Connection
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(conn *Connection) *BookingRepository {
	return &BookingRepository{conn: conn}
}

const bookingColumns = `id, teacher_id, student_id, status, start_at, end_at, created_at, updated_at`

// Create creates a new booking slot.
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (id, teacher_id, student_id, status, start_at, end_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		b.ID,
		b.TeacherID,
		nullableID(b.StudentID),
		string(b.Status),
		b.StartAt,
		b.EndAt,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID returns a booking slot by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanBooking(row)
}

// Update updates a booking slot.
func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	query := `
		UPDATE bookings SET
			student_id = $1,
			status = $2,
			start_at = $3,
			end_at = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		nullableID(b.StudentID),
		string(b.Status),
		b.StartAt,
		b.EndAt,
		time.Now().UTC(),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return booking.ErrBookingNotFound
	}

	return nil
}

// BookSlot atomically claims a slot for a student. The conditional UPDATE is
// the concurrency guard: two parallel calls can both see "available", but
// only one UPDATE matches.
func (r *BookingRepository) BookSlot(ctx context.Context, bookingID, studentID string) error {
	query := `
		UPDATE bookings
		SET student_id = $1, status = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.conn.Exec(ctx, query,
		studentID,
		string(booking.StatusBooked),
		time.Now().UTC(),
		bookingID,
		string(booking.StatusAvailable),
	)
	if err != nil {
		return fmt.Errorf("failed to book slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		exists, err := r.exists(ctx, bookingID)
		if err != nil {
			return err
		}
		if !exists {
			return booking.ErrBookingNotFound
		}
		return booking.ErrAlreadyBooked
	}

	return nil
}

// GetByTeacherID returns all slots of a teacher.
func (r *BookingRepository) GetByTeacherID(ctx context.Context, teacherID string) ([]*booking.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE teacher_id = $1 ORDER BY start_at`

	rows, err := r.conn.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by teacher: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// FindBookedInWindow returns booked slots for the given students that start
// inside [from, to]. Callers pass local-day boundaries to get "today's"
// sessions.
func (r *BookingRepository) FindBookedInWindow(ctx context.Context, studentIDs []string, from, to time.Time) ([]*booking.Booking, error) {
	if len(studentIDs) == 0 {
		return []*booking.Booking{}, nil
	}

	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1
		  AND student_id = ANY($2)
		  AND start_at >= $3
		  AND start_at <= $4
		ORDER BY start_at
	`

	rows, err := r.conn.Query(ctx, query,
		string(booking.StatusBooked),
		studentIDs,
		from,
		to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings in window: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

func (r *BookingRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check booking existence: %w", err)
	}
	return exists, nil
}

func (r *BookingRepository) scanBooking(row pgx.Row) (*booking.Booking, error) {
	var b booking.Booking
	var studentID *string

	err := row.Scan(
		&b.ID,
		&b.TeacherID,
		&studentID,
		&b.Status,
		&b.StartAt,
		&b.EndAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}

	if studentID != nil {
		b.StudentID = *studentID
	}

	return &b, nil
}

func (r *BookingRepository) scanBookings(rows pgx.Rows) ([]*booking.Booking, error) {
	bookings := make([]*booking.Booking, 0)

	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// nullableID maps an empty domain ID to SQL NULL.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceRepository implements booking.AttendanceRepository for PostgreSQL.
type AttendanceRepository struct {
	conn *Connection
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(conn *Connection) *AttendanceRepository {
	return &AttendanceRepository{conn: conn}
}

const attendanceColumns = `id, booking_id, student_id, status, late_minutes, attended_on, created_at`

// Create records the outcome of a finished session. The unique index on
// booking_id makes a second outcome for the same slot impossible.
func (r *AttendanceRepository) Create(ctx context.Context, a *booking.Attendance) error {
	query := `
		INSERT INTO attendance (id, booking_id, student_id, status, late_minutes, attended_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		a.ID,
		a.BookingID,
		a.StudentID,
		string(a.Status),
		a.LateMinutes,
		a.AttendedOn,
		a.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return booking.ErrAttendanceExists
		}
		return fmt.Errorf("failed to create attendance: %w", err)
	}

	return nil
}

// GetByBookingID returns the recorded outcome of a slot.
func (r *AttendanceRepository) GetByBookingID(ctx context.Context, bookingID string) (*booking.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE booking_id = $1`

	row := r.conn.QueryRow(ctx, query, bookingID)
	return r.scanAttendance(row)
}

// GetByStudentID returns a student's attendance records, newest first.
func (r *AttendanceRepository) GetByStudentID(ctx context.Context, studentID string) ([]*booking.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE student_id = $1 ORDER BY attended_on DESC`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance by student: %w", err)
	}
	defer rows.Close()

	records := make([]*booking.Attendance, 0)
	for rows.Next() {
		a, err := r.scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}

	return records, rows.Err()
}

// MonthlyCountsByTeacher aggregates attendance on a teacher's sessions per
// calendar month, most recent month first. The aggregation happens in SQL;
// a teacher with no sessions yields an empty slice, not an error.
func (r *AttendanceRepository) MonthlyCountsByTeacher(ctx context.Context, teacherID string) ([]booking.MonthlyCount, error) {
	query := `
		SELECT EXTRACT(YEAR FROM a.attended_on)::int AS year,
		       EXTRACT(MONTH FROM a.attended_on)::int AS month,
		       COUNT(*)::int AS count
		FROM attendance a
		JOIN bookings b ON b.id = a.booking_id
		WHERE b.teacher_id = $1
		GROUP BY year, month
		ORDER BY year DESC, month DESC
	`

	rows, err := r.conn.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly attendance: %w", err)
	}
	defer rows.Close()

	counts := make([]booking.MonthlyCount, 0)
	for rows.Next() {
		var c booking.MonthlyCount
		if err := rows.Scan(&c.Year, &c.Month, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly count: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// CountByTeacherSince returns the authoritative number of countable sessions
// (PRESENT or LATE) a teacher has run since the given moment. Payouts are
// computed from this number, never from the denormalized display counter.
func (r *AttendanceRepository) CountByTeacherSince(ctx context.Context, teacherID string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)::int
		FROM attendance a
		JOIN bookings b ON b.id = a.booking_id
		WHERE b.teacher_id = $1
		  AND a.attended_on >= $2
		  AND a.status IN ($3, $4)
	`

	var count int
	err := r.conn.QueryRow(ctx, query,
		teacherID,
		since,
		string(booking.AttendancePresent),
		string(booking.AttendanceLate),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	return count, nil
}

func (r *AttendanceRepository) scanAttendance(row pgx.Row) (*booking.Attendance, error) {
	var a booking.Attendance

	err := row.Scan(
		&a.ID,
		&a.BookingID,
		&a.StudentID,
		&a.Status,
		&a.LateMinutes,
		&a.AttendedOn,
		&a.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			// The slot may exist with no recorded outcome yet; that is not
			// the same as an unknown booking.
			return nil, booking.ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to scan attendance: %w", err)
	}

	return &a, nil
}
