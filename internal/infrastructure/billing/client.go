// Package billing implements the client for the external credit-metering
// provider, the API of record for balances and entitlements.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	domain "github.com/brandlens/backend/internal/domain/billing"
	"go.uber.org/zap"
)

// Client is a raw HTTP client for the metering provider. It implements
// domain/billing.Provider and reports provider failures as *ProviderError so
// callers can match on the provider's code and status.
type Client struct {
	httpClient *http.Client
	config     *Config
	logger     *zap.Logger
}

// NewClient creates a new metering provider client
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logger,
	}, nil
}

type checkRequest struct {
	CustomerID string `json:"customer_id"`
	FeatureID  string `json:"feature_id"`
}

type checkResponse struct {
	Allowed bool  `json:"allowed"`
	Balance int64 `json:"balance"`
}

type trackRequest struct {
	CustomerID string `json:"customer_id"`
	FeatureID  string `json:"feature_id"`
	Count      int64  `json:"count"`
}

type setUsageRequest struct {
	CustomerID string `json:"customer_id"`
	FeatureID  string `json:"feature_id"`
	Value      int64  `json:"value"`
}

type trackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type attachRequest struct {
	CustomerID string `json:"customer_id"`
	ProductID  string `json:"product_id"`
	SuccessURL string `json:"success_url,omitempty"`
}

type attachResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// providerErrorBody matches the provider's error envelope. Some endpoints
// nest the error object, others return it at the top level.
type providerErrorBody struct {
	Error   *providerErrorDetail `json:"error"`
	Message string               `json:"message"`
	Code    string               `json:"code"`
}

type providerErrorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Check reports whether the customer may consume the feature right now
func (c *Client) Check(ctx context.Context, input domain.CheckInput) (*domain.CreditCheck, error) {
	c.logger.Debug("Checking credits with provider",
		zap.String("customer_id", input.CustomerID),
		zap.String("feature_id", input.FeatureID.String()))

	var out checkResponse
	err := c.post(ctx, "/v1/check", checkRequest{
		CustomerID: input.CustomerID,
		FeatureID:  input.FeatureID.String(),
	}, &out)
	if err != nil {
		return nil, err
	}

	return &domain.CreditCheck{Allowed: out.Allowed, Balance: out.Balance}, nil
}

// Track reports consumed usage. Not idempotent: two identical calls deduct twice.
func (c *Client) Track(ctx context.Context, input domain.TrackInput) (*domain.TrackResult, error) {
	c.logger.Debug("Tracking usage with provider",
		zap.String("customer_id", input.CustomerID),
		zap.String("feature_id", input.FeatureID.String()),
		zap.Int64("count", input.Count))

	var out trackResponse
	err := c.post(ctx, "/v1/track", trackRequest{
		CustomerID: input.CustomerID,
		FeatureID:  input.FeatureID.String(),
		Count:      input.Count,
	}, &out)
	if err != nil {
		return nil, err
	}

	return &domain.TrackResult{Success: out.Success, Message: out.Message}, nil
}

// SetUsage sets the absolute usage value for a gauge-style feature
func (c *Client) SetUsage(ctx context.Context, input domain.SetUsageInput) (*domain.TrackResult, error) {
	c.logger.Debug("Setting usage value with provider",
		zap.String("customer_id", input.CustomerID),
		zap.String("feature_id", input.FeatureID.String()),
		zap.Int64("value", input.Value))

	var out trackResponse
	err := c.post(ctx, "/v1/usage", setUsageRequest{
		CustomerID: input.CustomerID,
		FeatureID:  input.FeatureID.String(),
		Value:      input.Value,
	}, &out)
	if err != nil {
		return nil, err
	}

	return &domain.TrackResult{Success: out.Success, Message: out.Message}, nil
}

// Attach subscribes the customer to a product
func (c *Client) Attach(ctx context.Context, input domain.AttachInput) (*domain.AttachResult, error) {
	c.logger.Debug("Attaching product with provider",
		zap.String("customer_id", input.CustomerID),
		zap.String("product_id", input.ProductID))

	var out attachResponse
	err := c.post(ctx, "/v1/attach", attachRequest{
		CustomerID: input.CustomerID,
		ProductID:  input.ProductID,
		SuccessURL: input.SuccessURL,
	}, &out)
	if err != nil {
		return nil, err
	}

	return &domain.AttachResult{CheckoutURL: out.CheckoutURL}, nil
}

// post sends a JSON request and decodes the response into out.
// Non-2xx responses become *domain.ProviderError with the provider's code and
// message carried through unchanged.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("billing: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("billing: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing: request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("billing: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseError(path, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("billing: failed to decode response from %s: %w", path, err)
	}

	return nil
}

// parseError converts a provider error response into *domain.ProviderError
func (c *Client) parseError(path string, status int, data []byte) error {
	perr := &domain.ProviderError{
		Code:       "EXTERNAL_SERVICE_ERROR",
		Message:    fmt.Sprintf("provider returned status %d", status),
		StatusCode: status,
	}

	var body providerErrorBody
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case body.Error != nil && body.Error.Code != "":
			perr.Code = body.Error.Code
			perr.Message = body.Error.Message
		case body.Code != "":
			perr.Code = body.Code
			perr.Message = body.Message
		}
	}

	c.logger.Warn("Provider call failed",
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("code", perr.Code))

	return perr
}

// Ensure Client implements the provider interface
var _ domain.Provider = (*Client)(nil)
