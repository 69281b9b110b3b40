package brand

import (
	"context"
	"time"

	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalysisStatus represents the lifecycle state of an analysis
type AnalysisStatus string

const (
	AnalysisStatusRunning   AnalysisStatus = "running"
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

// ProviderResult is one AI provider's contribution to an analysis. A failed
// provider keeps its Error string; the other fields are then zero.
type ProviderResult struct {
	Provider           string           `json:"provider"`
	BrandMentions      int              `json:"brandMentions"`
	BrandRank          int              `json:"brandRank"` // 0 = not ranked
	CompetitorMentions map[string]int   `json:"competitorMentions,omitempty"`
	TokensUsed         int              `json:"tokensUsed"`
	Cost               decimal.Decimal  `json:"cost"`
	Error              string           `json:"error,omitempty"`
}

// Succeeded reports whether the provider returned a usable response
func (r *ProviderResult) Succeeded() bool {
	return r.Error == ""
}

// CompetitorRanking is a competitor's aggregate standing across providers
type CompetitorRanking struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
	Rank     int    `json:"rank"`
}

// Analysis is the aggregate root of a brand-monitor run
type Analysis struct {
	shared.BaseEntity
	UserID             uuid.UUID
	URL                string
	Company            Company
	Status             AnalysisStatus
	VisibilityScore    float64
	ProviderResults    []ProviderResult
	CompetitorRankings []CompetitorRanking
	TotalCost          decimal.Decimal
	CompletedAt        *time.Time
}

// NewAnalysis creates a running analysis for a user and target URL
func NewAnalysis(userID uuid.UUID, url string) (*Analysis, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if url == "" {
		return nil, shared.NewDomainError("INVALID_URL", "URL cannot be empty")
	}

	return &Analysis{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		URL:        url,
		Status:     AnalysisStatusRunning,
		TotalCost:  decimal.Zero,
	}, nil
}

// Complete finalizes the analysis with aggregated results
func (a *Analysis) Complete(score float64, results []ProviderResult, rankings []CompetitorRanking) {
	a.Status = AnalysisStatusCompleted
	a.VisibilityScore = score
	a.ProviderResults = results
	a.CompetitorRankings = rankings

	total := decimal.Zero
	for _, r := range results {
		total = total.Add(r.Cost)
	}
	a.TotalCost = total

	now := time.Now()
	a.CompletedAt = &now
	a.Touch()
}

// Fail marks the analysis as failed, recording whatever partial results exist
func (a *Analysis) Fail(results []ProviderResult) {
	a.Status = AnalysisStatusFailed
	a.ProviderResults = results
	now := time.Now()
	a.CompletedAt = &now
	a.Touch()
}

// AnalysisRepository persists brand-monitor analyses
type AnalysisRepository interface {
	Save(ctx context.Context, analysis *Analysis) error
	Update(ctx context.Context, analysis *Analysis) error
	FindByID(ctx context.Context, id uuid.UUID) (*Analysis, error)
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Analysis, int64, error)
}
