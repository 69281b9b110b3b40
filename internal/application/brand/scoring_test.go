package brand

import (
	"testing"

	"github.com/brandlens/backend/internal/domain/brand"
	"github.com/stretchr/testify/assert"
)

func TestCountMentions(t *testing.T) {
	text := "Acme is great. Many prefer Acme over AcmeCorp. ACME wins."
	assert.Equal(t, 3, countMentions(text, "Acme"))
	assert.Equal(t, 1, countMentions(text, "AcmeCorp"))
	assert.Equal(t, 0, countMentions(text, "Globex"))
	assert.Equal(t, 0, countMentions(text, ""))
}

func TestExtractRank(t *testing.T) {
	text := `Here are the top companies:
1. Globex - the market leader
2) Acme - strong challenger
3. Initech - niche player

Another list:
1. Acme - best value`

	assert.Equal(t, 1, extractRank(text, "Globex"))
	// Best position across lists wins
	assert.Equal(t, 1, extractRank(text, "Acme"))
	assert.Equal(t, 3, extractRank(text, "Initech"))
	assert.Equal(t, 0, extractRank(text, "Hooli"))
}

func TestAnalyzeResponse(t *testing.T) {
	company := &brand.Company{
		Name:        "Acme",
		URL:         "https://acme.com",
		Competitors: []string{"Globex", "Initech"},
	}
	text := "1. Acme leads.\n2. Globex follows.\nAcme and Globex both beat Initech."

	result := analyzeResponse("openai", text, company, 120)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, 2, result.BrandMentions)
	assert.Equal(t, 1, result.BrandRank)
	assert.Equal(t, 2, result.CompetitorMentions["Globex"])
	assert.Equal(t, 1, result.CompetitorMentions["Initech"])
	assert.Equal(t, 120, result.TokensUsed)
	assert.True(t, result.Succeeded())
}

func TestAggregateRankings(t *testing.T) {
	results := []brand.ProviderResult{
		{Provider: "openai", CompetitorMentions: map[string]int{"Globex": 3, "Initech": 1}},
		{Provider: "gemini", CompetitorMentions: map[string]int{"Globex": 1, "Initech": 1}},
		{Provider: "broken", Error: "timeout", CompetitorMentions: map[string]int{"Globex": 99}},
	}

	rankings := aggregateRankings(results)
	assert.Equal(t, []brand.CompetitorRanking{
		{Name: "Globex", Mentions: 4, Rank: 1},
		{Name: "Initech", Mentions: 2, Rank: 2},
	}, rankings)
}

func TestAggregateRankings_TiesBreakByName(t *testing.T) {
	results := []brand.ProviderResult{
		{Provider: "openai", CompetitorMentions: map[string]int{"Zeta": 2, "Alpha": 2}},
	}

	rankings := aggregateRankings(results)
	assert.Equal(t, "Alpha", rankings[0].Name)
	assert.Equal(t, "Zeta", rankings[1].Name)
}

func TestVisibilityScore(t *testing.T) {
	t.Run("dominant brand", func(t *testing.T) {
		results := []brand.ProviderResult{
			{Provider: "openai", BrandMentions: 10, BrandRank: 1},
		}
		// Full mention share and top rank
		assert.Equal(t, 100.0, visibilityScore(results))
	})

	t.Run("invisible brand", func(t *testing.T) {
		results := []brand.ProviderResult{
			{Provider: "openai", BrandMentions: 0, CompetitorMentions: map[string]int{"Globex": 5}},
		}
		assert.Equal(t, 0.0, visibilityScore(results))
	})

	t.Run("failed providers are excluded", func(t *testing.T) {
		results := []brand.ProviderResult{
			{Provider: "openai", BrandMentions: 10, BrandRank: 1},
			{Provider: "gemini", Error: "timeout"},
		}
		assert.Equal(t, 100.0, visibilityScore(results))
	})

	t.Run("no successful providers", func(t *testing.T) {
		results := []brand.ProviderResult{{Provider: "openai", Error: "timeout"}}
		assert.Equal(t, 0.0, visibilityScore(results))
	})

	t.Run("partial visibility", func(t *testing.T) {
		results := []brand.ProviderResult{
			{
				Provider:           "openai",
				BrandMentions:      2,
				BrandRank:          5,
				CompetitorMentions: map[string]int{"Globex": 2},
			},
		}
		// share=0.5, rankScore=0.6 -> 100*(0.6*0.5 + 0.4*0.6) = 54
		assert.Equal(t, 54.0, visibilityScore(results))
	})
}

func TestBuildPrompts(t *testing.T) {
	company := &brand.Company{
		Name:        "Acme",
		URL:         "https://acme.com",
		Industry:    "CRM software",
		Keywords:    []string{"sales", "pipeline"},
		Competitors: []string{"Globex"},
	}

	prompts := buildPrompts(company)
	assert.Len(t, prompts, 4)

	for _, p := range prompts {
		// Prompts must not name the company; unaided recall is the point
		assert.NotContains(t, p.Text, "Acme")
	}
	assert.Equal(t, PromptRanking, prompts[0].Type)
	assert.Contains(t, prompts[0].Text, "CRM software")
	assert.Contains(t, prompts[3].Text, "Globex")
}

func TestBuildPrompts_NoCompetitors(t *testing.T) {
	company := &brand.Company{Name: "Acme", URL: "https://acme.com"}
	prompts := buildPrompts(company)
	assert.Len(t, prompts, 3)
	assert.Contains(t, prompts[0].Text, "this market")
}
