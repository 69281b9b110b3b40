package billing

import (
	"context"
	"fmt"
)

// CreditCheck is the outcome of a credit availability check
type CreditCheck struct {
	Allowed bool  `json:"allowed"`
	Balance int64 `json:"balance"`
}

// TrackResult is the outcome of a usage reporting call
type TrackResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CheckInput holds parameters for a credit availability check
type CheckInput struct {
	CustomerID string
	FeatureID  FeatureID
}

// TrackInput holds parameters for an incremental usage report
type TrackInput struct {
	CustomerID string
	FeatureID  FeatureID
	Count      int64
}

// SetUsageInput holds parameters for setting an absolute usage value,
// used for gauge-style features where the provider stores the latest value
// rather than a running sum.
type SetUsageInput struct {
	CustomerID string
	FeatureID  FeatureID
	Value      int64
}

// AttachInput holds parameters for attaching a customer to a product
type AttachInput struct {
	CustomerID string
	ProductID  string
	SuccessURL string
}

// AttachResult is the outcome of an attach call. CheckoutURL is empty when the
// provider attached the product without requiring payment.
type AttachResult struct {
	CheckoutURL string `json:"checkoutUrl,omitempty"`
}

// Provider is the external metering API of record for balances and
// entitlements. Implementations must return *ProviderError for failures the
// provider reported, preserving its code and status.
type Provider interface {
	// Check reports whether the customer may consume the feature right now
	Check(ctx context.Context, input CheckInput) (*CreditCheck, error)

	// Track reports consumed usage. Not idempotent at the provider: two
	// identical calls deduct twice.
	Track(ctx context.Context, input TrackInput) (*TrackResult, error)

	// SetUsage sets the absolute usage value for a gauge-style feature
	SetUsage(ctx context.Context, input SetUsageInput) (*TrackResult, error)

	// Attach subscribes the customer to a product, returning a checkout URL
	// when payment is required
	Attach(ctx context.Context, input AttachInput) (*AttachResult, error)
}

// ProviderError is an error reported by the billing provider, carried through
// unchanged so callers can match on the provider's code and HTTP status.
type ProviderError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	return fmt.Sprintf("billing provider: %s (code=%s, status=%d)", e.Message, e.Code, e.StatusCode)
}
