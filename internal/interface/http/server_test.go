package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/application/command"
	"github.com/lingua-hub/lingua-academy-hub/internal/application/query"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/booking"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/parent"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/student"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/teacher"
	"github.com/lingua-hub/lingua-academy-hub/internal/domain/trial"
)

// ─────────────────────────────────────────────
// Test doubles
// ─────────────────────────────────────────────

type fakeParentRepo struct {
	parent.Repository

	mu      sync.Mutex
	parents map[string]*parent.Parent
}

func newFakeParentRepo() *fakeParentRepo {
	return &fakeParentRepo{parents: make(map[string]*parent.Parent)}
}

func (r *fakeParentRepo) Create(_ context.Context, p *parent.Parent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.parents {
		if existing.Email == p.Email {
			return parent.ErrParentAlreadyExists
		}
	}
	r.parents[p.ID] = p
	return nil
}

func (r *fakeParentRepo) GetByEmail(_ context.Context, email parent.Email) (*parent.Parent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.parents {
		if existing.Email == email {
			return existing, nil
		}
	}
	return nil, shared.ErrParentNotFound
}

func (r *fakeParentRepo) ExistsByEmail(_ context.Context, email parent.Email) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.parents {
		if existing.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type fakeTrialRepo struct {
	trial.Repository

	trials map[string]*trial.FreeTrial
}

func (r *fakeTrialRepo) GetByEmail(_ context.Context, email string) (*trial.FreeTrial, error) {
	t, ok := r.trials[email]
	if !ok {
		return nil, trial.ErrTrialNotFound
	}
	return t, nil
}

type dropPublisher struct{}

func (dropPublisher) Publish(shared.Event) error { return nil }

type stubHealthChecker struct {
	status HealthStatus
}

func (c stubHealthChecker) Check(context.Context) HealthStatus { return c.status }

type stubWebhookVerifier struct {
	err error
}

func (v stubWebhookVerifier) VerifyWebhookSignature([]byte, string) error { return v.err }

func newTestServer(t *testing.T, deps Dependencies) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0
	return NewServer(cfg, deps)
}

// ─────────────────────────────────────────────
// Routing & status endpoints
// ─────────────────────────────────────────────

func TestRootEndpoint(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestRootEndpoint_UnknownPath(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, Dependencies{
		HealthChecker: stubHealthChecker{status: HealthStatus{
			Healthy: true,
			Checks:  map[string]string{"postgres": "ok", "redis": "ok"},
		}},
	})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "postgres")
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	srv := newTestServer(t, Dependencies{
		HealthChecker: stubHealthChecker{status: HealthStatus{
			Healthy: false,
			Checks:  map[string]string{"postgres": "connection refused"},
		}},
	})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDisabledRouteReturns501(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parents", strings.NewReader(`{}`))
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

// ─────────────────────────────────────────────
// Parent registration through the full stack
// ─────────────────────────────────────────────

func TestRegisterParent(t *testing.T) {
	repo := newFakeParentRepo()
	srv := newTestServer(t, Dependencies{
		RegisterParent: command.NewRegisterParentHandler(repo, dropPublisher{}),
	})

	body := `{"email":"Family@Example.com","full_name":"Aigerim Bekova","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parents", strings.NewReader(body))
	srv.httpServer.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ParentID string `json:"parent_id"`
			Email    string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.ParentID)
	assert.Equal(t, "family@example.com", resp.Data.Email)
}

func TestRegisterParent_Duplicate(t *testing.T) {
	repo := newFakeParentRepo()
	srv := newTestServer(t, Dependencies{
		RegisterParent: command.NewRegisterParentHandler(repo, dropPublisher{}),
	})

	body := `{"email":"family@example.com","full_name":"Aigerim Bekova","password":"correct-horse"}`
	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/parents", strings.NewReader(body))
		srv.httpServer.Handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "request %d", i+1)
	}
}

func TestRegisterParent_ValidationError(t *testing.T) {
	srv := newTestServer(t, Dependencies{
		RegisterParent: command.NewRegisterParentHandler(newFakeParentRepo(), dropPublisher{}),
	})

	body := `{"email":"not-an-email","full_name":"X","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parents", strings.NewReader(body))
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterParent_MalformedBody(t *testing.T) {
	srv := newTestServer(t, Dependencies{
		RegisterParent: command.NewRegisterParentHandler(newFakeParentRepo(), dropPublisher{}),
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parents", strings.NewReader(`{not json`))
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ─────────────────────────────────────────────
// Parent login
// ─────────────────────────────────────────────

func TestParentLogin(t *testing.T) {
	repo := newFakeParentRepo()
	srv := newTestServer(t, Dependencies{
		RegisterParent:     command.NewRegisterParentHandler(repo, dropPublisher{}),
		AuthenticateParent: command.NewAuthenticateParentHandler(repo),
	})

	register := `{"email":"family@example.com","full_name":"Aigerim Bekova","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/parents", strings.NewReader(register)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	login := `{"email":"Family@Example.com","password":"correct-horse"}`
	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/parents/login", strings.NewReader(login)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Aigerim Bekova")
}

func TestParentLogin_WrongPassword(t *testing.T) {
	repo := newFakeParentRepo()
	srv := newTestServer(t, Dependencies{
		RegisterParent:     command.NewRegisterParentHandler(repo, dropPublisher{}),
		AuthenticateParent: command.NewAuthenticateParentHandler(repo),
	})

	register := `{"email":"family@example.com","full_name":"Aigerim Bekova","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/parents", strings.NewReader(register)))
	require.Equal(t, http.StatusCreated, rec.Code)

	login := `{"email":"family@example.com","password":"wrong-horse"}`
	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/parents/login", strings.NewReader(login)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParentLogin_UnknownEmail(t *testing.T) {
	srv := newTestServer(t, Dependencies{
		AuthenticateParent: command.NewAuthenticateParentHandler(newFakeParentRepo()),
	})

	login := `{"email":"ghost@example.com","password":"correct-horse"}`
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/parents/login", strings.NewReader(login)))

	// Same status as a wrong password, no account probing.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ─────────────────────────────────────────────
// Trial eligibility
// ─────────────────────────────────────────────

func TestTrialEligibility(t *testing.T) {
	used, err := trial.NewFreeTrial("trial1", "used@example.com", "parent1", "student1")
	require.NoError(t, err)

	repo := &fakeTrialRepo{trials: map[string]*trial.FreeTrial{"used@example.com": used}}
	srv := newTestServer(t, Dependencies{
		TrialEligibility: query.NewTrialEligibilityHandler(repo),
	})

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trials/eligibility?email=fresh@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"eligible":true`)

	rec = httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trials/eligibility?email=used@example.com", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"eligible":false`)
}

// ─────────────────────────────────────────────
// Billing webhook
// ─────────────────────────────────────────────

func TestBillingWebhook_BadSignature(t *testing.T) {
	srv := newTestServer(t, Dependencies{
		ConfirmPayment:  &command.ConfirmPaymentHandler{},
		WebhookVerifier: stubWebhookVerifier{err: errors.New("invalid webhook signature")},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/billing", strings.NewReader(`{}`))
	req.Header.Set("X-Webhook-Signature", "deadbeef")
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_signature")
}

func TestBillingWebhook_BadDates(t *testing.T) {
	srv := newTestServer(t, Dependencies{
		ConfirmPayment:  &command.ConfirmPaymentHandler{},
		WebhookVerifier: stubWebhookVerifier{},
	})

	payload := `{"reference":"pay_1","student_id":"s1","plan_start":"March 1","plan_end":"2026-04-01","session_limit":8}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/billing", bytes.NewReader([]byte(payload)))
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_date")
}

// ─────────────────────────────────────────────
// Error mapping
// ─────────────────────────────────────────────

func TestWriteDomainError(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", shared.ErrInvalidInput, http.StatusBadRequest},
		{"forbidden", shared.ErrStudentNotOwned, http.StatusForbidden},
		{"not_found", shared.ErrStudentNotFound, http.StatusNotFound},
		{"already_exists", shared.ErrParentAlreadyExists, http.StatusConflict},
		{"trial_used", shared.ErrTrialAlreadyUsed, http.StatusForbidden},
		{"slot_taken", shared.ErrBookingAlreadyBooked, http.StatusConflict},
		{"upstream", shared.ErrBillingUnavailable, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("book_session: %w", shared.ErrPlanNotActive), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			srv.writeDomainError(rec, req, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

// The postgres repositories answer with the entity-package sentinels, so the
// mapper must translate exactly those values, wrapped the way handlers wrap
// them, into the right status codes.
func TestWriteDomainError_RepositorySentinels(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"student_not_found", fmt.Errorf("plan_status: %w", student.ErrStudentNotFound), http.StatusNotFound},
		{"parent_not_found", fmt.Errorf("evaluate_plan: parent link: %w", parent.ErrParentNotFound), http.StatusNotFound},
		{"teacher_not_found", fmt.Errorf("teacher_profile: %w", teacher.ErrTeacherNotFound), http.StatusNotFound},
		{"booking_not_found", fmt.Errorf("record_attendance: %w", booking.ErrBookingNotFound), http.StatusNotFound},
		{"attendance_not_found", fmt.Errorf("record_attendance: %w", booking.ErrAttendanceNotFound), http.StatusNotFound},
		{"trial_used", fmt.Errorf("book_trial: %w", trial.ErrAlreadyUsed), http.StatusForbidden},
		{"attendance_exists", fmt.Errorf("record_attendance: %w", booking.ErrAttendanceExists), http.StatusConflict},
		{"parent_duplicate", fmt.Errorf("register_parent: %w", parent.ErrParentAlreadyExists), http.StatusConflict},
		{"teacher_duplicate", fmt.Errorf("add_teacher: %w", teacher.ErrTeacherAlreadyExists), http.StatusConflict},
		{"session_limit", fmt.Errorf("book_session: %w", student.ErrSessionLimitReached), http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			srv.writeDomainError(rec, req, tc.err)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestWriteDomainError_TransientUpstreamAdvertisesRetry(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	srv.writeDomainError(rec, req, shared.ErrBillingTimeout)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

// ─────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, Dependencies{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/parents", nil)
	req.Header.Set("Origin", "https://app.example.com")
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limit is per client")
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 2
	srv := NewServer(cfg, Dependencies{})

	var last int
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/live", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		srv.httpServer.Handler.ServeHTTP(rec, req)
		last = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}
