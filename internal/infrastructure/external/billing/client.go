// Package billing implements the billing provider API client.
// The provider is the source of truth for payment outcomes: webhook
// notifications are convenient but spoofable, so every payment that activates
// a plan is re-verified against this API first.
package billing

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lingua-hub/lingua-academy-hub/pkg/circuitbreaker"
	"github.com/lingua-hub/lingua-academy-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS & DTOS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrPaymentNotFound is returned when the provider has no record of the
	// payment reference.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidSignature is returned when a webhook signature does not match.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// APIError is a structured error response from the billing provider.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("billing api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// PaymentVerification is the provider's authoritative record of a payment.
type PaymentVerification struct {
	Reference   string    `json:"reference"`
	Status      string    `json:"status"` // "completed", "failed", "pending"
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	PaidAt      time.Time `json:"paid_at"`
	Metadata    struct {
		StudentID    string `json:"student_id"`
		PlanMonths   int    `json:"plan_months"`
		SessionLimit int    `json:"session_limit"`
	} `json:"metadata"`
}

// Completed reports whether the provider confirms the payment went through.
func (v *PaymentVerification) Completed() bool {
	return v.Status == "completed"
}

// Failed reports whether the provider recorded the payment as failed.
func (v *PaymentVerification) Failed() bool {
	return v.Status == "failed"
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the billing client.
type ClientConfig struct {
	// BaseURL of the billing provider API.
	BaseURL string

	// APIKey authenticates outgoing requests.
	APIKey string

	// WebhookSecret signs incoming webhook payloads.
	WebhookSecret string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables request-level debug logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 15 * time.Second,
	}
}

// Client talks to the billing provider with retries and a circuit breaker.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
}

// NewClient creates a new billing client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	logger := config.Logger

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  logger,
		retrier: retry.BillingRetrier(),
		breaker: circuitbreaker.BillingBreaker(func(name string, from, to circuitbreaker.State) {
			logger.Warn("billing circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		}),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Operations
// ─────────────────────────────────────────────────────────────────────────────

// VerifyPayment fetches the authoritative payment record for a reference.
// Returns ErrPaymentNotFound if the provider has never seen the reference.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error) {
	path := fmt.Sprintf("/v1/payments/%s", url.PathEscape(reference))

	var verification PaymentVerification
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &verification); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("verify payment %s: %w", reference, ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("verify payment %s: %w", reference, err)
	}

	return &verification, nil
}

// IsHealthy checks if the billing provider API is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	return c.doSingleRequest(ctx, http.MethodGet, "/v1/health", nil, nil) == nil
}

// BreakerState returns the circuit breaker state for health reporting.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// ─────────────────────────────────────────────────────────────────────────────
// Webhook signatures
// ─────────────────────────────────────────────────────────────────────────────

// VerifyWebhookSignature checks the HMAC-SHA256 signature of a webhook payload
// against the shared secret. The signature header carries a hex digest,
// optionally prefixed with "sha256=".
func (c *Client) VerifyWebhookSignature(payload []byte, signature string) error {
	if c.config.WebhookSecret == "" {
		return errors.New("webhook secret is not configured")
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(c.config.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// HTTP plumbing
// ─────────────────────────────────────────────────────────────────────────────

// doRequest performs an HTTP request through the circuit breaker with retries.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			err := c.doSingleRequest(ctx, method, path, body, result)
			return classify(err)
		})
	})
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, method, path string, body, result interface{}) error {
	fullURL := c.config.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	if c.config.Debug {
		c.logger.Debug("billing api request", "method", method, "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// classify marks provider errors as retryable or permanent for the retrier.
// 5xx and 429 are transient; other 4xx are decisions, not glitches.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests {
			return retry.Retryable(err)
		}
		return retry.Permanent(err)
	}

	// Network-level failures are retryable.
	return retry.Retryable(err)
}
