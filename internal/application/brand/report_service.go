package brand

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appbilling "github.com/brandlens/backend/internal/application/billing"
	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/domain/brand"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/brandlens/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reportURLTTL is how long an exported report's download URL stays valid
const reportURLTTL = time.Hour

// ReportExport points a client at a freshly exported report
type ReportExport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// reportDocument is the exported JSON shape
type reportDocument struct {
	AnalysisID         string                    `json:"analysisId"`
	URL                string                    `json:"url"`
	Company            brand.Company             `json:"company"`
	VisibilityScore    float64                   `json:"visibilityScore"`
	ProviderResults    []brand.ProviderResult    `json:"providerResults"`
	CompetitorRankings []brand.CompetitorRanking `json:"competitorRankings,omitempty"`
	TotalCost          string                    `json:"totalCost"`
	CompletedAt        *time.Time                `json:"completedAt,omitempty"`
	ExportedAt         time.Time                 `json:"exportedAt"`
}

// ReportService exports completed analyses as downloadable JSON reports
type ReportService struct {
	analyses brand.AnalysisRepository
	store    storage.ReportStorage
	credits  *appbilling.CreditService
	logger   *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	analyses brand.AnalysisRepository,
	store storage.ReportStorage,
	credits *appbilling.CreditService,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		analyses: analyses,
		store:    store,
		credits:  credits,
		logger:   logger,
	}
}

// ExportReport renders an analysis into a JSON report, uploads it, and returns
// a download URL. Only completed analyses export. Usage is tracked with the
// analysis ID as the idempotency key, so re-exporting the same analysis within
// the dedup window is free.
func (s *ReportService) ExportReport(ctx context.Context, userID, analysisID uuid.UUID) (*ReportExport, error) {
	analysis, err := s.analyses.FindByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if analysis.UserID != userID {
		return nil, shared.ErrNotFound
	}
	if analysis.Status != brand.AnalysisStatusCompleted {
		return nil, shared.NewDomainError("ANALYSIS_NOT_COMPLETED", "Only completed analyses can be exported")
	}

	check, err := s.credits.CheckCredits(ctx, appbilling.CheckCreditsInput{
		UserID:    userID,
		FeatureID: billing.FeatureReportExport,
	})
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, shared.ErrInsufficientCredits
	}

	doc := reportDocument{
		AnalysisID:         analysis.ID.String(),
		URL:                analysis.URL,
		Company:            analysis.Company,
		VisibilityScore:    analysis.VisibilityScore,
		ProviderResults:    analysis.ProviderResults,
		CompetitorRankings: analysis.CompetitorRankings,
		TotalCost:          analysis.TotalCost.String(),
		CompletedAt:        analysis.CompletedAt,
		ExportedAt:         time.Now(),
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%s.json", userID, analysisID)
	if err := s.store.Put(ctx, key, payload, "application/json"); err != nil {
		s.logger.Error("Report upload failed",
			zap.String("analysis_id", analysisID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("EXTERNAL_SERVICE_ERROR", "Could not store the report")
	}

	url, expiresAt, err := s.store.DownloadURL(ctx, key, reportURLTTL)
	if err != nil {
		return nil, shared.NewDomainError("EXTERNAL_SERVICE_ERROR", "Could not create a download link")
	}

	if _, err := s.credits.TrackCredits(ctx, appbilling.TrackCreditsInput{
		UserID:         userID,
		FeatureID:      billing.FeatureReportExport,
		Count:          1,
		IdempotencyKey: "report-export:" + analysisID.String(),
	}); err != nil {
		s.logger.Warn("Failed to track report export",
			zap.String("analysis_id", analysisID.String()),
			zap.Error(err))
	}

	return &ReportExport{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}
