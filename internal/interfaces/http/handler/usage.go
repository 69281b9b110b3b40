package handler

import (
	"time"

	appbilling "github.com/brandlens/backend/internal/application/billing"
	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
)

// UsageHandler serves the usage audit log
type UsageHandler struct {
	BaseHandler
	usage *appbilling.UsageService
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(usage *appbilling.UsageService) *UsageHandler {
	return &UsageHandler{usage: usage}
}

// RegisterRoutes registers usage routes
func (h *UsageHandler) RegisterRoutes(rg *gin.RouterGroup) {
	usage := rg.Group("/usage")
	{
		usage.GET("/stats", h.Stats)
		usage.GET("/events", h.Events)
	}
}

type usagePeriodQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

// Stats handles GET /usage/stats. Without from/to it reports the current
// calendar month.
func (h *UsageHandler) Stats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var query usagePeriodQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}

	if query.From.IsZero() || query.To.IsZero() {
		stats, err := h.usage.GetCurrentMonthStats(c.Request.Context(), userID, time.Now())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, stats)
		return
	}

	if !query.To.After(query.From) {
		h.BadRequest(c, "'to' must be after 'from'")
		return
	}

	stats, err := h.usage.GetStats(c.Request.Context(), userID, query.From, query.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// Events handles GET /usage/events
func (h *UsageHandler) Events(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var query usagePeriodQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}

	var events []*billing.UsageEvent
	if query.From.IsZero() || query.To.IsZero() {
		events, err = h.usage.GetCurrentMonthEvents(c.Request.Context(), userID, time.Now())
	} else {
		events, err = h.usage.GetEvents(c.Request.Context(), userID, query.From, query.To)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"events": events})
}
