package brand

import (
	"context"
	"strings"
	"sync"
	"time"

	appbilling "github.com/brandlens/backend/internal/application/billing"
	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/domain/brand"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/brandlens/backend/internal/infrastructure/ai"
	"github.com/brandlens/backend/internal/infrastructure/scrape"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AnalysisServiceConfig configures the analysis pipeline
type AnalysisServiceConfig struct {
	// ProviderTimeout bounds each AI provider's total time across all prompts.
	// Default: 60 seconds.
	ProviderTimeout time.Duration
}

// AnalysisService runs the brand-monitor pipeline: scrape the site, fan the
// prompt set out to every AI provider, score visibility, and persist the run.
type AnalysisService struct {
	analyses  brand.AnalysisRepository
	scraper   scrape.Scraper
	providers []ai.Provider
	credits   *appbilling.CreditService
	logger    *zap.Logger
	config    AnalysisServiceConfig
}

// NewAnalysisService creates a new AnalysisService
func NewAnalysisService(
	analyses brand.AnalysisRepository,
	scraper scrape.Scraper,
	providers []ai.Provider,
	credits *appbilling.CreditService,
	logger *zap.Logger,
	config AnalysisServiceConfig,
) *AnalysisService {
	if config.ProviderTimeout <= 0 {
		config.ProviderTimeout = 60 * time.Second
	}
	return &AnalysisService{
		analyses:  analyses,
		scraper:   scraper,
		providers: providers,
		credits:   credits,
		logger:    logger,
		config:    config,
	}
}

// RunAnalysisInput holds parameters for starting an analysis
type RunAnalysisInput struct {
	UserID uuid.UUID
	URL    string
}

// RunAnalysis executes the full pipeline synchronously. Credits are checked
// up front and tracked once after a successful run, keyed by the analysis ID
// so retried requests can't double-deduct. The run survives individual
// provider failures as long as at least one provider answers.
func (s *AnalysisService) RunAnalysis(ctx context.Context, input RunAnalysisInput) (*brand.Analysis, error) {
	check, err := s.credits.CheckCredits(ctx, appbilling.CheckCreditsInput{
		UserID:    input.UserID,
		FeatureID: billing.FeatureAnalysis,
	})
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, shared.ErrInsufficientCredits
	}

	analysis, err := brand.NewAnalysis(input.UserID, input.URL)
	if err != nil {
		return nil, err
	}
	if err := s.analyses.Save(ctx, analysis); err != nil {
		return nil, err
	}

	company, err := s.scraper.Scrape(ctx, input.URL)
	if err != nil {
		s.logger.Warn("Scrape failed",
			zap.String("analysis_id", analysis.ID.String()),
			zap.String("url", input.URL),
			zap.Error(err))
		s.markFailed(ctx, analysis, nil)
		return nil, shared.NewDomainError("EXTERNAL_SERVICE_ERROR", "Could not read the target website")
	}
	if err := company.Validate(); err != nil {
		s.markFailed(ctx, analysis, nil)
		return nil, err
	}
	analysis.Company = *company

	results := s.fanOut(ctx, company)

	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	if succeeded == 0 {
		s.markFailed(ctx, analysis, results)
		return nil, shared.NewDomainError("EXTERNAL_SERVICE_ERROR", "All AI providers failed")
	}

	analysis.Complete(visibilityScore(results), results, aggregateRankings(results))
	if err := s.analyses.Update(ctx, analysis); err != nil {
		return nil, err
	}

	s.trackUsage(ctx, analysis)

	s.logger.Info("Analysis completed",
		zap.String("analysis_id", analysis.ID.String()),
		zap.String("user_id", input.UserID.String()),
		zap.Float64("visibility_score", analysis.VisibilityScore),
		zap.Int("providers_succeeded", succeeded),
		zap.Int("providers_total", len(results)))

	return analysis, nil
}

// fanOut queries every provider concurrently. Each provider answers the whole
// prompt set within its own timeout; a provider failure becomes a result
// carrying the error instead of sinking the run.
func (s *AnalysisService) fanOut(ctx context.Context, company *brand.Company) []brand.ProviderResult {
	prompts := buildPrompts(company)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]brand.ProviderResult, 0, len(s.providers))
	)

	for _, provider := range s.providers {
		wg.Add(1)
		go func(provider ai.Provider) {
			defer wg.Done()

			providerCtx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
			defer cancel()

			result := s.queryProvider(providerCtx, provider, prompts, company)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(provider)
	}
	wg.Wait()

	return results
}

// queryProvider runs the prompt set against one provider and scores the
// combined answer text.
func (s *AnalysisService) queryProvider(ctx context.Context, provider ai.Provider, prompts []Prompt, company *brand.Company) brand.ProviderResult {
	var combined strings.Builder
	tokensUsed := 0
	cost := decimal.Zero

	for _, prompt := range prompts {
		resp, err := provider.Generate(ctx, prompt.Text)
		if err != nil {
			s.logger.Warn("AI provider failed",
				zap.String("provider", provider.Name()),
				zap.String("prompt_type", string(prompt.Type)),
				zap.Error(err))
			return brand.ProviderResult{Provider: provider.Name(), Error: err.Error()}
		}
		combined.WriteString(resp.Text)
		combined.WriteString("\n")
		tokensUsed += resp.TokensUsed
		cost = cost.Add(resp.Cost)
	}

	result := analyzeResponse(provider.Name(), combined.String(), company, tokensUsed)
	result.Cost = cost
	return result
}

// markFailed persists a failed run; the persistence error, if any, is logged
// because the caller already has a more useful error to return.
func (s *AnalysisService) markFailed(ctx context.Context, analysis *brand.Analysis, results []brand.ProviderResult) {
	analysis.Fail(results)
	if err := s.analyses.Update(ctx, analysis); err != nil {
		s.logger.Error("Failed to persist failed analysis",
			zap.String("analysis_id", analysis.ID.String()),
			zap.Error(err))
	}
}

// trackUsage reports the completed run to the billing provider. Best effort:
// the user already got their analysis, so a tracking failure is logged, not
// returned.
func (s *AnalysisService) trackUsage(ctx context.Context, analysis *brand.Analysis) {
	_, err := s.credits.TrackCredits(ctx, appbilling.TrackCreditsInput{
		UserID:         analysis.UserID,
		FeatureID:      billing.FeatureAnalysis,
		Count:          1,
		IdempotencyKey: "analysis:" + analysis.ID.String(),
	})
	if err != nil {
		s.logger.Warn("Failed to track analysis usage",
			zap.String("analysis_id", analysis.ID.String()),
			zap.Error(err))
	}
}

// GetAnalysis loads one of the user's analyses. Other users' analyses are
// reported as not found rather than forbidden.
func (s *AnalysisService) GetAnalysis(ctx context.Context, userID, analysisID uuid.UUID) (*brand.Analysis, error) {
	analysis, err := s.analyses.FindByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if analysis.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return analysis, nil
}

// ListAnalyses returns a page of the user's analyses, newest first
func (s *AnalysisService) ListAnalyses(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*brand.Analysis, int64, error) {
	return s.analyses.FindByUser(ctx, userID, limit, offset)
}
