package dto

import "time"

// ErrorDetail is the body of the error envelope. StatusCode mirrors the HTTP
// status so clients that lose the transport status (proxies, SDK wrappers)
// can still classify the failure.
type ErrorDetail struct {
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"statusCode"`
	Timestamp  string            `json:"timestamp"`
	Fields     map[string]string `json:"fields,omitempty"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
}

// ErrorResponse is the envelope every error response uses:
//
//	{"error": {"message": ..., "code": ..., "statusCode": ..., "timestamp": ...}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// NewErrorResponse builds an error envelope for a code from the public taxonomy
func NewErrorResponse(code, message string) ErrorResponse {
	return NewErrorResponseWithStatus(code, message, GetHTTPStatus(code))
}

// NewErrorResponseWithStatus builds an error envelope with an explicit status,
// used when an upstream service dictates the status code.
func NewErrorResponseWithStatus(code, message string, statusCode int) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Message:    message,
			Code:       code,
			StatusCode: statusCode,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// WithFields attaches per-field validation messages
func (r ErrorResponse) WithFields(fields map[string]string) ErrorResponse {
	r.Error.Fields = fields
	return r
}

// WithMetadata attaches machine-readable context (retryAfter, creditsRequired, ...)
func (r ErrorResponse) WithMetadata(metadata map[string]any) ErrorResponse {
	r.Error.Metadata = metadata
	return r
}

// ListMeta carries pagination info on list responses
type ListMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ListResponse wraps a page of items with its pagination meta
type ListResponse struct {
	Data any      `json:"data"`
	Meta ListMeta `json:"meta"`
}

// NewListResponse builds a paginated list response
func NewListResponse(data any, total int64, limit, offset int) ListResponse {
	return ListResponse{
		Data: data,
		Meta: ListMeta{Total: total, Limit: limit, Offset: offset},
	}
}
