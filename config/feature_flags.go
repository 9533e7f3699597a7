package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles with gradual rollout.
// Rollout buckets are assigned by a consistent hash of the parent account ID,
// so a parent sees the same behavior across sessions.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	accountOverrides map[string]map[string]bool // parent ID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	AccountID string // parent account ID
	IsAdmin   bool
}

// Predefined feature flag names.
const (
	// === Trial ===
	FeatureTrialGate = "trial.gate" // one free trial per parent email

	// === Billing ===
	FeatureBillingWebhooks     = "billing.webhooks"     // accept provider webhooks
	FeatureBillingVerification = "billing.verification" // verify payments with provider API

	// === Plan lifecycle ===
	FeaturePlanExpirySweep = "plan.expiry_sweep" // nightly batch expiry
	FeaturePlanStatusCache = "plan.status_cache" // Redis read-through cache

	// === Notifications ===
	FeatureNotifyPlanExpired   = "notify.plan_expired"   // email parents on expiry
	FeatureNotifyPaymentFailed = "notify.payment_failed" // email parents on failed payment

	// === Experimental ===
	FeatureExperimentalReports = "experimental.reports" // extended attendance analytics
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		accountOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Core plan lifecycle - always on by default
	ff.features[FeatureTrialGate] = &Feature{
		Name:           FeatureTrialGate,
		Description:    "One free trial per parent email",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeaturePlanExpirySweep] = &Feature{
		Name:           FeaturePlanExpirySweep,
		Description:    "Nightly batch expiry of ended plans",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeaturePlanStatusCache] = &Feature{
		Name:           FeaturePlanStatusCache,
		Description:    "Redis read-through cache for plan status",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Billing
	ff.features[FeatureBillingWebhooks] = &Feature{
		Name:           FeatureBillingWebhooks,
		Description:    "Accept billing provider webhooks",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureBillingVerification] = &Feature{
		Name:           FeatureBillingVerification,
		Description:    "Verify payments against provider API",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Notifications
	ff.features[FeatureNotifyPlanExpired] = &Feature{
		Name:           FeatureNotifyPlanExpired,
		Description:    "Notify parents when a plan expires",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureNotifyPaymentFailed] = &Feature{
		Name:           FeatureNotifyPaymentFailed,
		Description:    "Notify parents when a payment fails",
		Enabled:        true,
		RolloutPercent: 50, // gradual rollout
	}

	// Experimental - disabled by default
	ff.features[FeatureExperimentalReports] = &Feature{
		Name:           FeatureExperimentalReports,
		Description:    "Extended attendance analytics",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_TRIAL_GATE=true
// Example: FEATURE_NOTIFY_PAYMENT_FAILED=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		val := os.Getenv(envKey)
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			feature.Enabled = p > 0
			feature.RolloutPercent = p
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "trial.gate" -> "FEATURE_TRIAL_GATE"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check account overrides first
	if ctx != nil && ctx.AccountID != "" {
		if overrides, ok := ff.accountOverrides[ctx.AccountID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	if feature.RolloutPercent < 100 && ctx != nil && ctx.AccountID != "" {
		return ff.isInRollout(ctx.AccountID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if an account is in the rollout percentage.
// Uses consistent hashing so accounts stay in their bucket.
func (ff *FeatureFlags) isInRollout(accountID, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(accountID))
	bucket := int(h.Sum32() % 100)
	return bucket < percent
}

// SetAccountOverride sets a feature override for a specific account.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetAccountOverride(accountID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.accountOverrides[accountID]; !ok {
		ff.accountOverrides[accountID] = make(map[string]bool)
	}
	ff.accountOverrides[accountID][featureName] = enabled
}

// ClearAccountOverrides removes all overrides for an account.
func (ff *FeatureFlags) ClearAccountOverrides(accountID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.accountOverrides, accountID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
