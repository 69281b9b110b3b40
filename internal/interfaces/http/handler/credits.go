package handler

import (
	appbilling "github.com/brandlens/backend/internal/application/billing"
	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
)

// CreditsHandler serves credit checks and usage tracking
type CreditsHandler struct {
	BaseHandler
	credits *appbilling.CreditService
}

// NewCreditsHandler creates a new CreditsHandler
func NewCreditsHandler(credits *appbilling.CreditService) *CreditsHandler {
	return &CreditsHandler{credits: credits}
}

// RegisterRoutes registers credit routes
func (h *CreditsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	credits := rg.Group("/credits")
	{
		credits.GET("", h.Check)
		credits.POST("/track", h.Track)
	}
}

type checkCreditsQuery struct {
	Feature string `form:"feature" binding:"required"`
}

type trackCreditsRequest struct {
	Feature        string `json:"feature" binding:"required"`
	Count          int64  `json:"count" binding:"omitempty,min=1"`
	IdempotencyKey string `json:"idempotencyKey" binding:"omitempty,max=255"`
}

// Check handles GET /credits?feature=...
func (h *CreditsHandler) Check(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var query checkCreditsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}

	check, err := h.credits.CheckCredits(c.Request.Context(), appbilling.CheckCreditsInput{
		UserID:    userID,
		FeatureID: billing.FeatureID(query.Feature),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, check)
}

// Track handles POST /credits/track. Clients may pass an idempotency key
// either in the body or the Idempotency-Key header; the header wins.
func (h *CreditsHandler) Track(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req trackCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	idempotencyKey := req.IdempotencyKey
	if headerKey := c.GetHeader("Idempotency-Key"); headerKey != "" {
		idempotencyKey = headerKey
	}

	result, err := h.credits.TrackCredits(c.Request.Context(), appbilling.TrackCreditsInput{
		UserID:         userID,
		FeatureID:      billing.FeatureID(req.Feature),
		Count:          req.Count,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
