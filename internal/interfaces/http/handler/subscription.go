package handler

import (
	appbilling "github.com/brandlens/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// SubscriptionHandler serves plan status and pro upgrades
type SubscriptionHandler struct {
	BaseHandler
	subscriptions *appbilling.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptions *appbilling.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// RegisterRoutes registers subscription routes
func (h *SubscriptionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	subscription := rg.Group("/subscription")
	{
		subscription.GET("", h.Status)
		subscription.POST("/upgrade", h.Upgrade)
		subscription.POST("/upgrade/confirm", h.ConfirmUpgrade)
	}
}

type upgradeRequest struct {
	SuccessURL string `json:"successUrl" binding:"omitempty,url"`
}

// Status handles GET /subscription
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	status, err := h.subscriptions.GetStatus(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}

// Upgrade handles POST /subscription/upgrade
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req upgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	result, err := h.subscriptions.Upgrade(c.Request.Context(), appbilling.UpgradeInput{
		UserID:     userID,
		SuccessURL: req.SuccessURL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ConfirmUpgrade handles POST /subscription/upgrade/confirm, called by the
// client after returning from a completed checkout.
func (h *SubscriptionHandler) ConfirmUpgrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	status, err := h.subscriptions.ConfirmUpgrade(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, status)
}
