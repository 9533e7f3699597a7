package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/internal/application/command"
	"github.com/lingua-hub/lingua-academy-hub/internal/application/query"
	"github.com/lingua-hub/lingua-academy-hub/internal/application/saga"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot returns basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "lingua-academy-hub",
		"version": "1.0.0",
		"status":  "operational",
	})
}

// handleHealth returns detailed health status of backing services.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"uptime": s.Uptime().String(),
		})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"healthy": status.Healthy,
		"checks":  status.Checks,
		"uptime":  s.Uptime().String(),
	})
}

// handleLive is the liveness probe: the process responds, nothing else.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PARENT & STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerParentRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// handleRegisterParent creates a new parent account.
// POST /api/v1/parents
func (s *Server) handleRegisterParent(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterParent == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Parent registration is not available")
		return
	}

	var req registerParentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.RegisterParent.Handle(r.Context(), command.RegisterParentCommand{
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"parent_id": result.ParentID,
		"email":     result.Email,
	})
}

type parentLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleParentLogin checks parent credentials.
// POST /api/v1/parents/login
func (s *Server) handleParentLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.AuthenticateParent == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Parent login is not available")
		return
	}

	var req parentLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.AuthenticateParent.Handle(r.Context(), command.AuthenticateParentCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"parent_id": result.ParentID,
		"full_name": result.FullName,
		"email":     result.Email,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleChangeParentPassword rotates a parent's password.
// POST /api/v1/parents/{id}/password
func (s *Server) handleChangeParentPassword(w http.ResponseWriter, r *http.Request) {
	if s.deps.ChangeParentPassword == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Password change is not available")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	err := s.deps.ChangeParentPassword.Handle(r.Context(), command.ChangeParentPasswordCommand{
		ParentID:        r.PathValue("id"),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"changed": true})
}

type addStudentRequest struct {
	FullName string `json:"full_name"`
	Language string `json:"language"`
}

// handleAddStudent enrolls a child under a parent account.
// POST /api/v1/parents/{id}/students
func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.AddStudent == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Student enrollment is not available")
		return
	}

	var req addStudentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.AddStudent.Handle(r.Context(), command.AddStudentCommand{
		ParentID: r.PathValue("id"),
		FullName: req.FullName,
		Language: student.Language(req.Language),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"student_id":     result.StudentID,
		"parent_id":      result.ParentID,
		"payment_status": result.PaymentStatus,
	})
}

// handleTodaysSessions returns the family's booked sessions for one day.
// GET /api/v1/parents/{id}/sessions/today
func (s *Server) handleTodaysSessions(w http.ResponseWriter, r *http.Request) {
	if s.deps.TodaysSessions == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Schedule lookup is not available")
		return
	}

	q := query.TodaysSessionsQuery{ParentID: r.PathValue("id")}
	if day := r.URL.Query().Get("date"); day != "" {
		parsed, err := time.ParseInLocation("2006-01-02", day, time.Local)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		q.Day = parsed
	}

	result, err := s.deps.TodaysSessions.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	sessions := make([]map[string]interface{}, 0, len(result.Sessions))
	for _, entry := range result.Sessions {
		sessions = append(sessions, map[string]interface{}{
			"booking_id":   entry.BookingID,
			"student_id":   entry.StudentID,
			"student_name": entry.StudentName,
			"teacher_id":   entry.TeacherID,
			"start_at":     entry.StartAt,
			"end_at":       entry.EndAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"parent_id": result.ParentID,
		"date":      timeutil.FormatDate(result.Day),
		"sessions":  sessions,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handlePlanStatus returns the current plan state for a student.
// GET /api/v1/students/{id}/plan?parent_id=...
func (s *Server) handlePlanStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.PlanStatus == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Plan status is not available")
		return
	}

	result, err := s.deps.PlanStatus.Handle(r.Context(), query.PlanStatusQuery{
		StudentID: r.PathValue("id"),
		ParentID:  r.URL.Query().Get("parent_id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	payload := map[string]interface{}{
		"student_id":         result.StudentID,
		"status":             result.Status,
		"allows_booking":     result.AllowsBooking,
		"from_cache":         result.FromCache,
		"sessions_remaining": result.SessionsRemaining,
	}
	if result.PlanStartDate != nil {
		payload["plan_start_date"] = timeutil.FormatDate(*result.PlanStartDate)
	}
	if result.PlanEndDate != nil {
		payload["plan_end_date"] = timeutil.FormatDate(*result.PlanEndDate)
	}

	writeJSON(w, http.StatusOK, payload)
}

// handleEvaluatePlan forces an on-demand plan evaluation for a student.
// POST /api/v1/students/{id}/plan/evaluate
func (s *Server) handleEvaluatePlan(w http.ResponseWriter, r *http.Request) {
	if s.deps.EvaluatePlan == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Plan evaluation is not available")
		return
	}

	result, err := s.deps.EvaluatePlan.Handle(r.Context(), command.EvaluatePlanCommand{
		StudentID:     r.PathValue("id"),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"student_id":   result.StudentID,
		"status":       result.Status,
		"changed":      result.Changed,
		"evaluated_at": result.EvaluatedAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// TRIAL & BOOKING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleTrialEligibility checks whether a family can still book a free trial.
// GET /api/v1/trials/eligibility?email=...
func (s *Server) handleTrialEligibility(w http.ResponseWriter, r *http.Request) {
	if s.deps.TrialEligibility == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Trial eligibility is not available")
		return
	}

	result, err := s.deps.TrialEligibility.Handle(r.Context(), query.TrialEligibilityQuery{
		ParentEmail: r.URL.Query().Get("email"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	payload := map[string]interface{}{
		"parent_email": result.ParentEmail,
		"eligible":     result.Eligible,
	}
	if result.UsedAt != nil {
		payload["used_at"] = result.UsedAt
	}

	writeJSON(w, http.StatusOK, payload)
}

type bookTrialRequest struct {
	ParentID  string `json:"parent_id"`
	StudentID string `json:"student_id"`
	SlotID    string `json:"slot_id,omitempty"`
}

// handleBookTrial books the family's one free trial lesson.
// POST /api/v1/trials
func (s *Server) handleBookTrial(w http.ResponseWriter, r *http.Request) {
	if s.deps.BookTrial == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Trial booking is not available")
		return
	}

	var req bookTrialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.BookTrial.Handle(r.Context(), command.BookTrialCommand{
		ParentID:      req.ParentID,
		StudentID:     req.StudentID,
		SlotID:        req.SlotID,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"trial_id":   result.TrialID,
		"booking_id": result.BookingID,
	})
}

type bookSessionRequest struct {
	ParentID  string `json:"parent_id"`
	StudentID string `json:"student_id"`
	SlotID    string `json:"slot_id"`
}

// handleBookSession books a paid session slot for a student.
// POST /api/v1/bookings
func (s *Server) handleBookSession(w http.ResponseWriter, r *http.Request) {
	if s.deps.BookSession == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Session booking is not available")
		return
	}

	var req bookSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.BookSession.Handle(r.Context(), command.BookSessionCommand{
		ParentID:      req.ParentID,
		StudentID:     req.StudentID,
		SlotID:        req.SlotID,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"booking_id":         result.BookingID,
		"teacher_id":         result.TeacherID,
		"start_at":           result.StartAt,
		"end_at":             result.EndAt,
		"sessions_remaining": result.SessionsRemaining,
	})
}

type recordAttendanceRequest struct {
	StudentID   string `json:"student_id"`
	Status      string `json:"status"`
	LateMinutes int    `json:"late_minutes,omitempty"`
}

// handleRecordAttendance records the outcome of a completed session.
// POST /api/v1/bookings/{id}/attendance
func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	if s.deps.RecordAttendance == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Attendance recording is not available")
		return
	}

	var req recordAttendanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.RecordAttendance.Handle(r.Context(), command.RecordAttendanceCommand{
		BookingID:     r.PathValue("id"),
		StudentID:     req.StudentID,
		Status:        booking.AttendanceStatus(req.Status),
		LateMinutes:   req.LateMinutes,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"attendance_id": result.AttendanceID,
		"teacher_id":    result.TeacherID,
		"counted":       result.Counted,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER & PAYOUT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type addTeacherRequest struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	RateCents int64  `json:"rate_cents"`
}

// handleAddTeacher onboards a teacher with a per-session rate.
// POST /api/v1/teachers
func (s *Server) handleAddTeacher(w http.ResponseWriter, r *http.Request) {
	if s.deps.AddTeacher == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Teacher onboarding is not available")
		return
	}

	var req addTeacherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.AddTeacher.Handle(r.Context(), command.AddTeacherCommand{
		FullName:  req.FullName,
		Email:     req.Email,
		RateCents: req.RateCents,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"teacher_id": result.TeacherID,
		"rate_cents": result.RateCents,
	})
}

// handleTeacherProfile returns the teacher's profile and display counter.
// GET /api/v1/teachers/{id}
func (s *Server) handleTeacherProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.TeacherProfile == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Teacher profile is not available")
		return
	}

	result, err := s.deps.TeacherProfile.Handle(r.Context(), query.TeacherProfileQuery{
		TeacherID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teacher_id":       result.TeacherID,
		"full_name":        result.FullName,
		"email":            result.Email,
		"rate_cents":       result.RateCents,
		"attendance_count": result.AttendanceCount,
	})
}

type updateRateRequest struct {
	RateCents int64 `json:"rate_cents"`
}

// handleUpdateTeacherRate changes the per-session rate for future settlements.
// PUT /api/v1/teachers/{id}/rate
func (s *Server) handleUpdateTeacherRate(w http.ResponseWriter, r *http.Request) {
	if s.deps.UpdateTeacherRate == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Rate change is not available")
		return
	}

	var req updateRateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
		return
	}

	result, err := s.deps.UpdateTeacherRate.Handle(r.Context(), command.UpdateTeacherRateCommand{
		TeacherID: r.PathValue("id"),
		RateCents: req.RateCents,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teacher_id": result.TeacherID,
		"rate_cents": result.RateCents,
	})
}

// handleMonthlyAttendance returns the per-month attendance and payout report.
// GET /api/v1/teachers/{id}/attendance/monthly
func (s *Server) handleMonthlyAttendance(w http.ResponseWriter, r *http.Request) {
	if s.deps.MonthlyAttendance == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Attendance report is not available")
		return
	}

	result, err := s.deps.MonthlyAttendance.Handle(r.Context(), query.MonthlyAttendanceQuery{
		TeacherID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	rows := make([]map[string]interface{}, 0, len(result.Rows))
	for _, row := range result.Rows {
		rows = append(rows, map[string]interface{}{
			"period":       row.Period,
			"count":        row.Count,
			"amount_cents": row.AmountCents,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teacher_id":   result.TeacherID,
		"teacher_name": result.TeacherName,
		"rows":         rows,
	})
}

// handlePayoutHistory returns the teacher's settlement ledger, newest first.
// GET /api/v1/teachers/{id}/payouts
func (s *Server) handlePayoutHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.PayoutHistory == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Payout history is not available")
		return
	}

	result, err := s.deps.PayoutHistory.Handle(r.Context(), query.PayoutHistoryQuery{
		TeacherID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	payments := make([]map[string]interface{}, 0, len(result.Payments))
	for _, p := range result.Payments {
		payments = append(payments, map[string]interface{}{
			"payment_id":       p.PaymentID,
			"period":           p.Period,
			"attendance_count": p.AttendanceCount,
			"amount_cents":     p.AmountCents,
			"paid_at":          p.PaidAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teacher_id": result.TeacherID,
		"payments":   payments,
	})
}

type payoutRequest struct {
	Since string `json:"since,omitempty"` // YYYY-MM-DD, default: start of current month
}

// handlePayout settles the teacher's attendance since the given date.
// POST /api/v1/teachers/{id}/payouts
func (s *Server) handlePayout(w http.ResponseWriter, r *http.Request) {
	if s.deps.PayoutFlow == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Payouts are not available")
		return
	}

	var req payoutRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
			return
		}
	}

	input := saga.PayoutInput{TeacherID: r.PathValue("id")}
	if req.Since != "" {
		since, err := time.ParseInLocation("2006-01-02", req.Since, time.Local)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_date", "since must be YYYY-MM-DD")
			return
		}
		input.Since = since
	}

	result, err := s.deps.PayoutFlow.Execute(r.Context(), input)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if !result.Paid() {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"teacher_id": result.TeacherID,
			"paid":       false,
		})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"teacher_id":       result.TeacherID,
		"payment_id":       result.PaymentID,
		"attendance_count": result.AttendanceCount,
		"amount_cents":     result.AmountCents,
		"paid":             true,
		"paid_at":          result.PaidAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// BILLING WEBHOOK
// ══════════════════════════════════════════════════════════════════════════════

type billingWebhookPayload struct {
	Reference    string `json:"reference"`
	StudentID    string `json:"student_id"`
	PlanStart    string `json:"plan_start"` // YYYY-MM-DD
	PlanEnd      string `json:"plan_end"`
	SessionLimit int    `json:"session_limit"`
}

// handleBillingWebhook receives payment notifications from the billing
// provider. The signature is checked before the payload is trusted; the
// payment itself is still re-verified against the provider by the handler.
// POST /webhook/billing
func (s *Server) handleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	if s.deps.ConfirmPayment == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Billing webhook is not available")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Unable to read request body")
		return
	}

	if s.deps.WebhookVerifier != nil {
		signature := r.Header.Get("X-Webhook-Signature")
		if err := s.deps.WebhookVerifier.VerifyWebhookSignature(body, signature); err != nil {
			s.logger.Warn("webhook signature rejected",
				slog.String("ip", getClientIP(r)),
				slog.String("request_id", getRequestID(r.Context())),
			)
			writeJSONError(w, http.StatusUnauthorized, "invalid_signature", "Webhook signature verification failed")
			return
		}
	}

	var payload billingWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Webhook payload must be valid JSON")
		return
	}

	planStart, err := time.ParseInLocation("2006-01-02", payload.PlanStart, time.Local)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_date", "plan_start must be YYYY-MM-DD")
		return
	}
	planEnd, err := time.ParseInLocation("2006-01-02", payload.PlanEnd, time.Local)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_date", "plan_end must be YYYY-MM-DD")
		return
	}

	result, err := s.deps.ConfirmPayment.Handle(r.Context(), command.ConfirmPaymentCommand{
		StudentID:     payload.StudentID,
		Reference:     payload.Reference,
		PlanStart:     planStart,
		PlanEnd:       timeutil.EndOfDay(planEnd),
		SessionLimit:  payload.SessionLimit,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"student_id": result.StudentID,
		"activated":  result.Activated,
		"status":     result.Status,
	})
}
