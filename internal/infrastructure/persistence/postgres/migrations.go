package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE ACCOUNTS (PARENTS, STUDENTS, TEACHERS)
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create parent, student and teacher tables
-- Version: 001

CREATE TABLE IF NOT EXISTS parents (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    full_name VARCHAR(100) NOT NULL,
    phone VARCHAR(30) NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_parents_email ON parents(email);

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    parent_id UUID NOT NULL REFERENCES parents(id) ON DELETE CASCADE,
    full_name VARCHAR(100) NOT NULL,
    language VARCHAR(30) NOT NULL,
    payment_status VARCHAR(20) NOT NULL DEFAULT 'not-required',
    plan_start_date TIMESTAMP WITH TIME ZONE,
    plan_end_date TIMESTAMP WITH TIME ZONE,
    session_limit INTEGER NOT NULL DEFAULT 0,
    session_used INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_payment_status CHECK (payment_status IN ('not-required', 'pending', 'completed', 'failed')),
    CONSTRAINT valid_session_limit CHECK (session_limit >= 0),
    CONSTRAINT valid_session_used CHECK (session_used >= 0)
);

CREATE INDEX IF NOT EXISTS idx_students_parent_id ON students(parent_id);
CREATE INDEX IF NOT EXISTS idx_students_payment_status ON students(payment_status);

-- Partial index backing the nightly expiry sweep
CREATE INDEX IF NOT EXISTS idx_students_plan_end ON students(plan_end_date)
    WHERE plan_end_date IS NOT NULL AND payment_status != 'pending';

CREATE TABLE IF NOT EXISTS teachers (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    full_name VARCHAR(100) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    rate_cents BIGINT NOT NULL DEFAULT 0,
    attendance_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_rate CHECK (rate_cents >= 0),
    CONSTRAINT valid_attendance_count CHECK (attendance_count >= 0)
);
`

const migration001Down = `
DROP TABLE IF EXISTS teachers;
DROP TABLE IF EXISTS students;
DROP TABLE IF EXISTS parents;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE BOOKINGS AND ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create booking slots and attendance records
-- Version: 002

CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    teacher_id UUID NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
    student_id UUID REFERENCES students(id) ON DELETE SET NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'available',
    start_at TIMESTAMP WITH TIME ZONE NOT NULL,
    end_at TIMESTAMP WITH TIME ZONE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_booking_status CHECK (status IN ('available', 'booked')),
    CONSTRAINT valid_time_window CHECK (start_at < end_at),
    CONSTRAINT booked_has_student CHECK (status != 'booked' OR student_id IS NOT NULL)
);

CREATE INDEX IF NOT EXISTS idx_bookings_teacher_id ON bookings(teacher_id);
CREATE INDEX IF NOT EXISTS idx_bookings_student_id ON bookings(student_id) WHERE student_id IS NOT NULL;

-- Composite index for "today's sessions" window queries
CREATE INDEX IF NOT EXISTS idx_bookings_student_start ON bookings(student_id, start_at) WHERE status = 'booked';

CREATE TABLE IF NOT EXISTS attendance (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    booking_id UUID NOT NULL UNIQUE REFERENCES bookings(id) ON DELETE CASCADE,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    status VARCHAR(10) NOT NULL,
    late_minutes INTEGER NOT NULL DEFAULT 0,
    attended_on TIMESTAMP WITH TIME ZONE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_attendance_status CHECK (status IN ('PRESENT', 'ABSENT', 'LATE')),
    CONSTRAINT valid_late_minutes CHECK (late_minutes >= 0),
    CONSTRAINT late_only_when_late CHECK (status = 'LATE' OR late_minutes = 0)
);

CREATE INDEX IF NOT EXISTS idx_attendance_student_id ON attendance(student_id, attended_on DESC);

-- Per-teacher monthly aggregation joins through bookings
CREATE INDEX IF NOT EXISTS idx_attendance_booking_id ON attendance(booking_id);
CREATE INDEX IF NOT EXISTS idx_attendance_attended_on ON attendance(attended_on DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS attendance;
DROP TABLE IF EXISTS bookings;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE FREE TRIALS AND TEACHER PAYMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create free trial registry and teacher payment ledger
-- Version: 003

CREATE TABLE IF NOT EXISTS free_trials (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    parent_email VARCHAR(255) NOT NULL,
    parent_id UUID NOT NULL REFERENCES parents(id) ON DELETE CASCADE,
    student_id UUID NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    booked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- One trial per parent email. This index, not the application pre-check,
-- is what actually enforces the rule under concurrency.
CREATE UNIQUE INDEX IF NOT EXISTS idx_free_trials_parent_email ON free_trials(parent_email);

CREATE TABLE IF NOT EXISTS teacher_payments (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    teacher_id UUID NOT NULL REFERENCES teachers(id) ON DELETE CASCADE,
    amount_cents BIGINT NOT NULL,
    attendance_count INTEGER NOT NULL,
    month INTEGER NOT NULL,
    year INTEGER NOT NULL,
    paid_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_amount CHECK (amount_cents > 0),
    CONSTRAINT valid_attendance CHECK (attendance_count > 0),
    CONSTRAINT valid_month CHECK (month >= 1 AND month <= 12),
    CONSTRAINT valid_year CHECK (year >= 2020)
);

CREATE INDEX IF NOT EXISTS idx_teacher_payments_teacher ON teacher_payments(teacher_id, year DESC, month DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS teacher_payments;
DROP TABLE IF EXISTS free_trials;
`
