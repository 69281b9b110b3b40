package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the brandlens API
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token sent on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken updates the bearer token, e.g. after login or refresh
func (c *Client) SetToken(token string) {
	c.token = token
}

// do sends a request and normalizes the response into out (or an *APIError)
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return ParseResponse(resp, out)
}

// CreditCheck is the response of a credit availability check
type CreditCheck struct {
	Allowed bool  `json:"allowed"`
	Balance int64 `json:"balance"`
}

// CheckCredits checks whether the authenticated user may consume a feature
func (c *Client) CheckCredits(ctx context.Context, feature string) (*CreditCheck, error) {
	var out CreditCheck
	path := "/api/v1/credits?feature=" + url.QueryEscape(feature)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackRequest reports consumed usage
type TrackRequest struct {
	Feature        string `json:"feature"`
	Count          int64  `json:"count,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// TrackResult is the outcome of a usage report
type TrackResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TrackCredits reports consumed usage for the authenticated user
func (c *Client) TrackCredits(ctx context.Context, req TrackRequest) (*TrackResult, error) {
	var out TrackResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/credits/track", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Subscription is the user's current plan
type Subscription struct {
	Tier   string `json:"tier"`
	HasPro bool   `json:"hasPro"`
}

// GetSubscription returns the authenticated user's subscription status
func (c *Client) GetSubscription(ctx context.Context) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodGet, "/api/v1/subscription", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FeatureUsage is one feature's aggregated usage
type FeatureUsage struct {
	FeatureID string `json:"featureId"`
	Count     int64  `json:"count"`
	Events    int64  `json:"events"`
}

// UsageStats is aggregated usage over a period
type UsageStats struct {
	PeriodStart time.Time      `json:"periodStart"`
	PeriodEnd   time.Time      `json:"periodEnd"`
	Features    []FeatureUsage `json:"features"`
	TotalCount  int64          `json:"totalCount"`
	TotalEvents int64          `json:"totalEvents"`
}

// GetUsageStats returns the authenticated user's current-month usage
func (c *Client) GetUsageStats(ctx context.Context) (*UsageStats, error) {
	var out UsageStats
	if err := c.do(ctx, http.MethodGet, "/api/v1/usage/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analysis is a brand-monitor run as returned by the API
type Analysis struct {
	ID              string  `json:"id"`
	URL             string  `json:"url"`
	Status          string  `json:"status"`
	VisibilityScore float64 `json:"visibilityScore"`
	TotalCost       string  `json:"totalCost"`
}

// RunAnalysis starts a synchronous analysis of the given site
func (c *Client) RunAnalysis(ctx context.Context, siteURL string) (*Analysis, error) {
	var out Analysis
	body := map[string]string{"url": siteURL}
	if err := c.do(ctx, http.MethodPost, "/api/v1/analyses", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAnalysis fetches one analysis by ID
func (c *Client) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	var out Analysis
	if err := c.do(ctx, http.MethodGet, "/api/v1/analyses/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReportExport points at a downloadable report
type ReportExport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ExportReport exports a completed analysis as a downloadable report
func (c *Client) ExportReport(ctx context.Context, analysisID string) (*ReportExport, error) {
	var out ReportExport
	path := "/api/v1/analyses/" + url.PathEscape(analysisID) + "/export"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
