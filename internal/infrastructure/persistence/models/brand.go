package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandlens/backend/internal/domain/brand"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalysisModel is the persistence model for brand-monitor analyses. The
// scraped company profile and per-provider results are stored as JSON
// documents; they are read back whole and never queried field-by-field.
type AnalysisModel struct {
	BaseModel
	UserID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	URL                string          `gorm:"type:varchar(2048);not null"`
	Status             string          `gorm:"type:varchar(20);not null;index"`
	VisibilityScore    float64         `gorm:"not null;default:0"`
	Company            []byte          `gorm:"type:jsonb"`
	ProviderResults    []byte          `gorm:"type:jsonb"`
	CompetitorRankings []byte          `gorm:"type:jsonb"`
	TotalCost          decimal.Decimal `gorm:"type:numeric(12,6);not null;default:0"`
	CompletedAt        *time.Time
}

// TableName returns the table name for GORM
func (AnalysisModel) TableName() string {
	return "analyses"
}

// ToDomain converts the persistence model to a domain Analysis.
func (m *AnalysisModel) ToDomain() (*brand.Analysis, error) {
	analysis := &brand.Analysis{
		BaseEntity:      m.BaseModel.ToDomain(),
		UserID:          m.UserID,
		URL:             m.URL,
		Status:          brand.AnalysisStatus(m.Status),
		VisibilityScore: m.VisibilityScore,
		TotalCost:       m.TotalCost,
		CompletedAt:     m.CompletedAt,
	}

	if len(m.Company) > 0 {
		if err := json.Unmarshal(m.Company, &analysis.Company); err != nil {
			return nil, fmt.Errorf("analysis %s: corrupt company document: %w", m.ID, err)
		}
	}
	if len(m.ProviderResults) > 0 {
		if err := json.Unmarshal(m.ProviderResults, &analysis.ProviderResults); err != nil {
			return nil, fmt.Errorf("analysis %s: corrupt provider results: %w", m.ID, err)
		}
	}
	if len(m.CompetitorRankings) > 0 {
		if err := json.Unmarshal(m.CompetitorRankings, &analysis.CompetitorRankings); err != nil {
			return nil, fmt.Errorf("analysis %s: corrupt competitor rankings: %w", m.ID, err)
		}
	}

	return analysis, nil
}

// AnalysisModelFromDomain builds a persistence model from a domain Analysis.
func AnalysisModelFromDomain(a *brand.Analysis) (*AnalysisModel, error) {
	company, err := json.Marshal(a.Company)
	if err != nil {
		return nil, fmt.Errorf("failed to encode company document: %w", err)
	}
	results, err := json.Marshal(a.ProviderResults)
	if err != nil {
		return nil, fmt.Errorf("failed to encode provider results: %w", err)
	}
	rankings, err := json.Marshal(a.CompetitorRankings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode competitor rankings: %w", err)
	}

	m := &AnalysisModel{
		UserID:             a.UserID,
		URL:                a.URL,
		Status:             string(a.Status),
		VisibilityScore:    a.VisibilityScore,
		Company:            company,
		ProviderResults:    results,
		CompetitorRankings: rankings,
		TotalCost:          a.TotalCost,
		CompletedAt:        a.CompletedAt,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m, nil
}
