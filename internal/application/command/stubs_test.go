package command

import (
	"context"
	"sync"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/trial"
)

// In-memory fakes shared by the handler tests. Each fake implements the full
// repository interface over a map and mirrors the real implementation's error
// contract, so handlers are exercised against the same failure shapes they
// see in production.

// ─────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────

type memStudentRepo struct {
	mu       sync.Mutex
	students map[string]*student.Student

	getErr     error
	consumeErr error

	statusUpdates []student.PaymentStatus
	consumed      []string
}

func newMemStudentRepo(students ...*student.Student) *memStudentRepo {
	r := &memStudentRepo{students: make(map[string]*student.Student)}
	for _, s := range students {
		r.students[s.ID] = s
	}
	return r
}

func (r *memStudentRepo) Create(_ context.Context, s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.ID]; ok {
		return shared.ErrStudentAlreadyExists
	}
	r.students[s.ID] = s.Clone()
	return nil
}

func (r *memStudentRepo) GetByID(_ context.Context, id string) (*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.students[id]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	return s.Clone(), nil
}

func (r *memStudentRepo) GetByParentID(_ context.Context, parentID string) ([]*student.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*student.Student
	for _, s := range r.students {
		if s.ParentID == parentID {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *memStudentRepo) Update(_ context.Context, s *student.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.ID]; !ok {
		return shared.ErrStudentNotFound
	}
	r.students[s.ID] = s.Clone()
	return nil
}

func (r *memStudentRepo) UpdatePaymentStatus(_ context.Context, id string, status student.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return shared.ErrStudentNotFound
	}
	s.PaymentStatus = status
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *memStudentRepo) ActivatePlan(_ context.Context, id string, start, end time.Time, sessionLimit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return shared.ErrStudentNotFound
	}
	return s.ActivatePlan(start, end, sessionLimit)
}

func (r *memStudentRepo) ExpirePlans(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.students {
		if s.ApplyEvaluation(now) {
			n++
		}
	}
	return n, nil
}

func (r *memStudentRepo) ConsumeSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumeErr != nil {
		return r.consumeErr
	}
	s, ok := r.students[id]
	if !ok {
		return shared.ErrStudentNotFound
	}
	if err := s.ConsumeSession(); err != nil {
		return err
	}
	r.consumed = append(r.consumed, id)
	return nil
}

func (r *memStudentRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.students[id]
	return ok, nil
}

func (r *memStudentRepo) BelongsToParent(_ context.Context, studentID, parentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[studentID]
	return ok && s.ParentID == parentID, nil
}

type memStatusCache struct {
	mu          sync.Mutex
	statuses    map[string]student.PaymentStatus
	invalidated []string
}

func newMemStatusCache() *memStatusCache {
	return &memStatusCache{statuses: make(map[string]student.PaymentStatus)}
}

func (c *memStatusCache) GetStatus(_ context.Context, studentID string) (student.PaymentStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.statuses[studentID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return status, nil
}

func (c *memStatusCache) SetStatus(_ context.Context, studentID string, status student.PaymentStatus, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[studentID] = status
	return nil
}

func (c *memStatusCache) Invalidate(_ context.Context, studentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.statuses, studentID)
	c.invalidated = append(c.invalidated, studentID)
	return nil
}

// ─────────────────────────────────────────────
// Parents
// ─────────────────────────────────────────────

type memParentRepo struct {
	mu      sync.Mutex
	parents map[string]*parent.Parent

	createErr error
}

func newMemParentRepo(parents ...*parent.Parent) *memParentRepo {
	r := &memParentRepo{parents: make(map[string]*parent.Parent)}
	for _, p := range parents {
		r.parents[p.ID] = p
	}
	return r
}

func (r *memParentRepo) Create(_ context.Context, p *parent.Parent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.parents {
		if existing.Email.Normalized() == p.Email.Normalized() {
			return parent.ErrParentAlreadyExists
		}
	}
	r.parents[p.ID] = p
	return nil
}

func (r *memParentRepo) GetByID(_ context.Context, id string) (*parent.Parent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parents[id]
	if !ok {
		return nil, shared.ErrParentNotFound
	}
	return p, nil
}

func (r *memParentRepo) GetByEmail(_ context.Context, email parent.Email) (*parent.Parent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parents {
		if p.Email.Normalized() == email.Normalized() {
			return p, nil
		}
	}
	return nil, shared.ErrParentNotFound
}

func (r *memParentRepo) Update(_ context.Context, p *parent.Parent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parents[p.ID] = p
	return nil
}

func (r *memParentRepo) ExistsByEmail(_ context.Context, email parent.Email) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parents {
		if p.Email.Normalized() == email.Normalized() {
			return true, nil
		}
	}
	return false, nil
}

// ─────────────────────────────────────────────
// Trials
// ─────────────────────────────────────────────

type memTrialRepo struct {
	mu     sync.Mutex
	trials map[string]*trial.FreeTrial // keyed by parent email

	existsErr error
	createErr error
}

func newMemTrialRepo() *memTrialRepo {
	return &memTrialRepo{trials: make(map[string]*trial.FreeTrial)}
}

func (r *memTrialRepo) Create(_ context.Context, t *trial.FreeTrial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.trials[t.ParentEmail]; ok {
		return trial.ErrAlreadyUsed
	}
	r.trials[t.ParentEmail] = t
	return nil
}

func (r *memTrialRepo) GetByEmail(_ context.Context, parentEmail string) (*trial.FreeTrial, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trials[parentEmail]
	if !ok {
		return nil, trial.ErrTrialNotFound
	}
	return t, nil
}

func (r *memTrialRepo) ExistsByEmail(_ context.Context, parentEmail string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.trials[parentEmail]
	return ok, nil
}

// ─────────────────────────────────────────────
// Bookings & attendance
// ─────────────────────────────────────────────

type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*booking.Booking
}

func newMemBookingRepo(bookings ...*booking.Booking) *memBookingRepo {
	r := &memBookingRepo{bookings: make(map[string]*booking.Booking)}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *memBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID] = b
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, id string) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *memBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return booking.ErrBookingNotFound
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

// BookSlot mirrors the conditional UPDATE of the real repository: the
// transition succeeds only from 'available'.
func (r *memBookingRepo) BookSlot(_ context.Context, bookingID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	return b.Book(studentID)
}

func (r *memBookingRepo) GetByTeacherID(_ context.Context, teacherID string) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.TeacherID == teacherID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memBookingRepo) FindBookedInWindow(_ context.Context, studentIDs []string, from, to time.Time) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		ids[id] = true
	}
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.Status == booking.StatusBooked && ids[b.StudentID] &&
			!b.StartAt.Before(from) && b.StartAt.Before(to) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*booking.Attendance // keyed by booking ID

	createErr error
}

func newMemAttendanceRepo() *memAttendanceRepo {
	return &memAttendanceRepo{records: make(map[string]*booking.Attendance)}
}

func (r *memAttendanceRepo) Create(_ context.Context, a *booking.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.records[a.BookingID]; ok {
		return booking.ErrAttendanceExists
	}
	r.records[a.BookingID] = a
	return nil
}

func (r *memAttendanceRepo) GetByBookingID(_ context.Context, bookingID string) (*booking.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.records[bookingID]
	if !ok {
		return nil, shared.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *memAttendanceRepo) GetByStudentID(_ context.Context, studentID string) ([]*booking.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Attendance
	for _, a := range r.records {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAttendanceRepo) MonthlyCountsByTeacher(_ context.Context, _ string) ([]booking.MonthlyCount, error) {
	return nil, nil
}

func (r *memAttendanceRepo) CountByTeacherSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return 0, nil
}

// ─────────────────────────────────────────────
// Teachers
// ─────────────────────────────────────────────

type memTeacherRepo struct {
	mu       sync.Mutex
	teachers map[string]*teacher.Teacher
	counts   map[string]int

	incrementErr error
}

func newMemTeacherRepo(teachers ...*teacher.Teacher) *memTeacherRepo {
	r := &memTeacherRepo{
		teachers: make(map[string]*teacher.Teacher),
		counts:   make(map[string]int),
	}
	for _, t := range teachers {
		r.teachers[t.ID] = t
	}
	return r
}

func (r *memTeacherRepo) Create(_ context.Context, t *teacher.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teachers {
		if existing.Email == t.Email {
			return teacher.ErrTeacherAlreadyExists
		}
	}
	r.teachers[t.ID] = t
	return nil
}

func (r *memTeacherRepo) GetByID(_ context.Context, id string) (*teacher.Teacher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.teachers[id]
	if !ok {
		return nil, shared.ErrTeacherNotFound
	}
	return t, nil
}

func (r *memTeacherRepo) Update(_ context.Context, t *teacher.Teacher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teachers[t.ID] = t
	return nil
}

func (r *memTeacherRepo) IncrementAttendanceCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	r.counts[id]++
	return nil
}

func (r *memTeacherRepo) RecordPayment(_ context.Context, _ *teacher.Payment) error {
	return nil
}

func (r *memTeacherRepo) GetPayments(_ context.Context, _ string) ([]*teacher.Payment, error) {
	return nil, nil
}

type memCounterCache struct {
	mu          sync.Mutex
	counts      map[string]int
	invalidated []string
}

func newMemCounterCache() *memCounterCache {
	return &memCounterCache{counts: make(map[string]int)}
}

func (c *memCounterCache) GetCount(_ context.Context, teacherID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.counts[teacherID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return count, nil
}

func (c *memCounterCache) SetCount(_ context.Context, teacherID string, count int, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[teacherID] = count
	return nil
}

func (c *memCounterCache) Invalidate(_ context.Context, teacherID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, teacherID)
	c.invalidated = append(c.invalidated, teacherID)
	return nil
}

// ─────────────────────────────────────────────
// Event publisher
// ─────────────────────────────────────────────

type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) published() []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.Event(nil), p.events...)
}

func (p *capturingPublisher) lastEvent() shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}
