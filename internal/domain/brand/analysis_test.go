package brand

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalysis(t *testing.T) {
	userID := uuid.New()

	analysis, err := NewAnalysis(userID, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, AnalysisStatusRunning, analysis.Status)
	assert.Equal(t, userID, analysis.UserID)
	assert.True(t, analysis.TotalCost.IsZero())

	_, err = NewAnalysis(uuid.Nil, "https://example.com")
	assert.Error(t, err)

	_, err = NewAnalysis(userID, "")
	assert.Error(t, err)
}

func TestAnalysis_Complete(t *testing.T) {
	analysis, err := NewAnalysis(uuid.New(), "https://example.com")
	require.NoError(t, err)

	results := []ProviderResult{
		{Provider: "openai", BrandMentions: 3, Cost: decimal.NewFromFloat(0.002)},
		{Provider: "gemini", BrandMentions: 1, Cost: decimal.NewFromFloat(0.001)},
	}
	rankings := []CompetitorRanking{{Name: "Rival Inc", Mentions: 2, Rank: 1}}

	analysis.Complete(72.5, results, rankings)

	assert.Equal(t, AnalysisStatusCompleted, analysis.Status)
	assert.Equal(t, 72.5, analysis.VisibilityScore)
	assert.Len(t, analysis.ProviderResults, 2)
	assert.True(t, analysis.TotalCost.Equal(decimal.NewFromFloat(0.003)))
	require.NotNil(t, analysis.CompletedAt)
}

func TestAnalysis_Fail(t *testing.T) {
	analysis, err := NewAnalysis(uuid.New(), "https://example.com")
	require.NoError(t, err)

	analysis.Fail([]ProviderResult{{Provider: "openai", Error: "timeout"}})

	assert.Equal(t, AnalysisStatusFailed, analysis.Status)
	require.Len(t, analysis.ProviderResults, 1)
	assert.False(t, analysis.ProviderResults[0].Succeeded())
	require.NotNil(t, analysis.CompletedAt)
}
