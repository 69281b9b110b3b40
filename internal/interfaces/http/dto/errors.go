// Package dto defines the wire types of the HTTP API: the error envelope and
// the error code taxonomy shared with API clients.
package dto

import "net/http"

// Error codes exposed to clients. Client SDKs match on these strings, so they
// are part of the public contract and never change.
const (
	// ErrCodeUnauthorized is used when authentication is missing or invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeSessionExpired is used when a previously valid session timed out
	ErrCodeSessionExpired = "SESSION_EXPIRED"
	// ErrCodeValidation is used for malformed or invalid request input
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeInsufficientCredits is used when the balance can't cover the feature
	ErrCodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	// ErrCodeRateLimited is used when the client exceeds its request budget
	ErrCodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// ErrCodeExternalService is used when an upstream dependency failed
	ErrCodeExternalService = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeDatabase is used when a storage operation failed
	ErrCodeDatabase = "DATABASE_ERROR"
	// ErrCodeNotFound is used when the resource doesn't exist (or isn't yours)
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeUnknown is the fallback for anything unclassified
	ErrCodeUnknown = "UNKNOWN_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeSessionExpired:      http.StatusUnauthorized,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeInsufficientCredits: http.StatusPaymentRequired,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeExternalService:     http.StatusBadGateway,
	ErrCodeDatabase:            http.StatusInternalServerError,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeUnknown:             http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsKnownCode reports whether the code belongs to the public taxonomy
func IsKnownCode(code string) bool {
	_, ok := ErrorCodeHTTPStatus[code]
	return ok
}

// NormalizeErrorCode folds internal domain error codes into the public
// taxonomy. Domain invariants surface fine-grained codes (INVALID_EMAIL,
// EMAIL_TAKEN, ...); clients only ever see the public set.
func NormalizeErrorCode(code string) string {
	if IsKnownCode(code) {
		return code
	}
	return ErrCodeValidation
}
