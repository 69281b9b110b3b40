// Package handler implements the HTTP handlers of the public API. Every error
// leaves through BaseHandler so the envelope and code taxonomy stay uniform.
package handler

import (
	"errors"
	"net/http"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/brandlens/backend/internal/interfaces/http/dto"
	"github.com/brandlens/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getUserID extracts the authenticated user's ID from JWT claims
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, shared.ErrUnauthorized
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, shared.ErrUnauthorized
	}
	return userID, nil
}

// Success sends a 200 response with the payload
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Error sends an error envelope for a code from the public taxonomy
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message))
}

// ValidationError sends a 400 envelope with per-field messages
func (h *BaseHandler) ValidationError(c *gin.Context, message string, fields map[string]string) {
	resp := dto.NewErrorResponse(dto.ErrCodeValidation, message)
	if len(fields) > 0 {
		resp = resp.WithFields(fields)
	}
	c.JSON(http.StatusBadRequest, resp)
}

// BadRequest sends a 400 validation envelope without field detail
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeValidation, message)
}

// HandleBindError converts a gin binding failure into a validation envelope,
// extracting per-field messages from validator errors.
func (h *BaseHandler) HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		h.ValidationError(c, "Request validation failed", fields)
		return
	}
	h.BadRequest(c, "Invalid request body")
}

// validationMessage renders a validator failure as a human-readable hint
func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "url":
		return "Must be a valid URL"
	default:
		return "Invalid value"
	}
}

// HandleError maps service errors onto the error envelope. Billing provider
// errors pass through with the provider's own code and status; domain errors
// are folded into the public taxonomy; everything else is UNKNOWN_ERROR.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var perr *billing.ProviderError
	if errors.As(err, &perr) {
		status := perr.StatusCode
		if status < 400 || status > 599 {
			status = dto.GetHTTPStatus(dto.ErrCodeExternalService)
		}
		c.JSON(status, dto.NewErrorResponseWithStatus(perr.Code, perr.Message, status))
		return
	}

	var derr *shared.DomainError
	if errors.As(err, &derr) {
		code := dto.NormalizeErrorCode(derr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, derr.Message))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeUnknown, "An unexpected error occurred"))
}
