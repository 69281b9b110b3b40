// Package apiclient is the Go client SDK for the brandlens API. It normalizes
// error responses into APIError values that callers can classify without
// string-matching messages.
package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error codes of the API's public taxonomy
const (
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	CodeExternalService     = "EXTERNAL_SERVICE_ERROR"
	CodeDatabase            = "DATABASE_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnknown             = "UNKNOWN_ERROR"
)

// APIError is a normalized API failure. It mirrors the server's error envelope
// and survives even when the body was not valid JSON.
type APIError struct {
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"statusCode"`
	Timestamp  string            `json:"timestamp"`
	Fields     map[string]string `json:"fields,omitempty"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s (code=%s, status=%d)", e.Message, e.Code, e.StatusCode)
}

// IsAuthenticationError reports whether the caller needs to (re)authenticate.
// True for any 401 regardless of code, and for UNAUTHORIZED or SESSION_EXPIRED
// regardless of status.
func (e *APIError) IsAuthenticationError() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.Code == CodeUnauthorized || e.Code == CodeSessionExpired
}

// IsSessionExpired reports whether a token refresh would help
func (e *APIError) IsSessionExpired() bool {
	return e.Code == CodeSessionExpired
}

// IsValidationError reports whether the request itself was invalid
func (e *APIError) IsValidationError() bool {
	return e.Code == CodeValidation
}

// IsRateLimitError reports whether the client should back off
func (e *APIError) IsRateLimitError() bool {
	return e.Code == CodeRateLimited || e.StatusCode == http.StatusTooManyRequests
}

// IsInsufficientCreditsError reports whether the balance blocked the call
func (e *APIError) IsInsufficientCreditsError() bool {
	return e.Code == CodeInsufficientCredits
}

// IsNotFoundError reports whether the resource doesn't exist
func (e *APIError) IsNotFoundError() bool {
	return e.Code == CodeNotFound || e.StatusCode == http.StatusNotFound
}

// IsServerError reports whether the failure was on the server's side
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// errorEnvelope matches the server's error response shape
type errorEnvelope struct {
	Error *APIError `json:"error"`
}

// ParseResponse decodes an HTTP response. 2xx bodies decode into v (v may be
// nil to discard the body); anything else returns an *APIError. A non-JSON
// error body still yields an APIError carrying the HTTP status, never a
// decode failure.
func ParseResponse(resp *http.Response, v any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{
			Message:    "Failed to read response body",
			Code:       CodeUnknown,
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if v == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, v); err != nil {
			return &APIError{
				Message:    "Failed to decode response body",
				Code:       CodeUnknown,
				StatusCode: resp.StatusCode,
			}
		}
		return nil
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Code != "" {
		apiErr := envelope.Error
		if apiErr.StatusCode == 0 {
			apiErr.StatusCode = resp.StatusCode
		}
		return apiErr
	}

	message := http.StatusText(resp.StatusCode)
	if message == "" {
		message = "Request failed"
	}
	return &APIError{
		Message:    message,
		Code:       CodeUnknown,
		StatusCode: resp.StatusCode,
	}
}

// metaInt reads an integer from metadata, tolerating the float64 that
// encoding/json produces for numbers.
func (e *APIError) metaInt(key string, fallback int64) int64 {
	raw, ok := e.Metadata[key]
	if !ok {
		return fallback
	}
	switch n := raw.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		if v, err := n.Int64(); err == nil {
			return v
		}
	}
	return fallback
}

// UserMessage renders the error as a sentence fit for end users, interpolating
// metadata where the code carries structured context. Unknown codes fall back
// to the server's own message.
func (e *APIError) UserMessage() string {
	switch e.Code {
	case CodeUnauthorized:
		return "Please sign in to continue."
	case CodeSessionExpired:
		return "Your session has expired. Please sign in again."
	case CodeValidation:
		return "Some of the information provided is invalid. Please review and try again."
	case CodeInsufficientCredits:
		required := e.metaInt("creditsRequired", 0)
		available := e.metaInt("creditsAvailable", 0)
		if required > 0 {
			return fmt.Sprintf("You need %d credits for this action but only have %d. Please upgrade your plan.",
				required, available)
		}
		return "You don't have enough credits for this action. Please upgrade your plan."
	case CodeRateLimited:
		retryAfter := e.metaInt("retryAfter", 60)
		return fmt.Sprintf("Too many requests. Please try again in %d seconds.", retryAfter)
	case CodeExternalService:
		return "An external service is temporarily unavailable. Please try again shortly."
	case CodeDatabase, CodeUnknown:
		return "Something went wrong on our side. Please try again."
	case CodeNotFound:
		return "The requested resource was not found."
	default:
		if e.Message != "" {
			return e.Message
		}
		return "Something went wrong. Please try again."
	}
}
