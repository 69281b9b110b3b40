package handler

import (
	"time"

	appbrand "github.com/brandlens/backend/internal/application/brand"
	"github.com/brandlens/backend/internal/domain/brand"
	"github.com/brandlens/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// AnalysisHandler serves the brand-monitor pipeline
type AnalysisHandler struct {
	BaseHandler
	analyses *appbrand.AnalysisService
	reports  *appbrand.ReportService
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analyses *appbrand.AnalysisService, reports *appbrand.ReportService) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses, reports: reports}
}

// RegisterRoutes registers analysis routes
func (h *AnalysisHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analyses := rg.Group("/analyses")
	{
		analyses.POST("", h.Run)
		analyses.GET("", h.List)
		analyses.GET("/:id", h.Get)
		analyses.POST("/:id/export", h.Export)
	}
}

type runAnalysisRequest struct {
	URL string `json:"url" binding:"required,url"`
}

type listAnalysesQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

type analysisResponse struct {
	ID                 string                    `json:"id"`
	URL                string                    `json:"url"`
	Status             string                    `json:"status"`
	Company            brand.Company             `json:"company"`
	VisibilityScore    float64                   `json:"visibilityScore"`
	ProviderResults    []brand.ProviderResult    `json:"providerResults,omitempty"`
	CompetitorRankings []brand.CompetitorRanking `json:"competitorRankings,omitempty"`
	TotalCost          string                    `json:"totalCost"`
	CreatedAt          time.Time                 `json:"createdAt"`
	CompletedAt        *time.Time                `json:"completedAt,omitempty"`
}

type analysisSummaryResponse struct {
	ID              string     `json:"id"`
	URL             string     `json:"url"`
	Status          string     `json:"status"`
	CompanyName     string     `json:"companyName,omitempty"`
	VisibilityScore float64    `json:"visibilityScore"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

func toAnalysisResponse(a *brand.Analysis) analysisResponse {
	return analysisResponse{
		ID:                 a.ID.String(),
		URL:                a.URL,
		Status:             string(a.Status),
		Company:            a.Company,
		VisibilityScore:    a.VisibilityScore,
		ProviderResults:    a.ProviderResults,
		CompetitorRankings: a.CompetitorRankings,
		TotalCost:          a.TotalCost.String(),
		CreatedAt:          a.CreatedAt,
		CompletedAt:        a.CompletedAt,
	}
}

func toAnalysisSummary(a *brand.Analysis) analysisSummaryResponse {
	return analysisSummaryResponse{
		ID:              a.ID.String(),
		URL:             a.URL,
		Status:          string(a.Status),
		CompanyName:     a.Company.Name,
		VisibilityScore: a.VisibilityScore,
		CreatedAt:       a.CreatedAt,
		CompletedAt:     a.CompletedAt,
	}
}

// Run handles POST /analyses. The pipeline runs synchronously, so this request
// blocks until every AI provider answers or times out.
func (h *AnalysisHandler) Run(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req runAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	analysis, err := h.analyses.RunAnalysis(c.Request.Context(), appbrand.RunAnalysisInput{
		UserID: userID,
		URL:    req.URL,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toAnalysisResponse(analysis))
}

// List handles GET /analyses
func (h *AnalysisHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var query listAnalysesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}
	if query.Limit == 0 {
		query.Limit = defaultListLimit
	}
	if query.Limit > maxListLimit {
		query.Limit = maxListLimit
	}

	analyses, total, err := h.analyses.ListAnalyses(c.Request.Context(), userID, query.Limit, query.Offset)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]analysisSummaryResponse, 0, len(analyses))
	for _, a := range analyses {
		items = append(items, toAnalysisSummary(a))
	}

	h.Success(c, dto.NewListResponse(items, total, query.Limit, query.Offset))
}

// Get handles GET /analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid analysis ID")
		return
	}

	analysis, err := h.analyses.GetAnalysis(c.Request.Context(), userID, analysisID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toAnalysisResponse(analysis))
}

// Export handles POST /analyses/:id/export
func (h *AnalysisHandler) Export(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	analysisID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid analysis ID")
		return
	}

	export, err := h.reports.ExportReport(c.Request.Context(), userID, analysisID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, export)
}
