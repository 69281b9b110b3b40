// Package brand contains the application services for the brand monitor:
// scraping a company profile, fanning a prompt set out to the AI providers,
// scoring visibility, and exporting reports.
package brand

import (
	"fmt"
	"strings"

	"github.com/brandlens/backend/internal/domain/brand"
)

// PromptType classifies what a prompt probes for
type PromptType string

const (
	PromptRanking        PromptType = "ranking"
	PromptComparison     PromptType = "comparison"
	PromptRecommendation PromptType = "recommendation"
	PromptAlternatives   PromptType = "alternatives"
)

// Prompt is one question sent to every AI provider
type Prompt struct {
	Type PromptType
	Text string
}

// buildPrompts derives the prompt set from a scraped company profile. The
// prompts never name the company: the point is to see whether the models bring
// it up on their own when asked about its space.
func buildPrompts(company *brand.Company) []Prompt {
	industry := strings.TrimSpace(company.Industry)
	if industry == "" {
		industry = "this market"
	}

	topic := industry
	if len(company.Keywords) > 0 {
		topic = fmt.Sprintf("%s (%s)", industry, strings.Join(company.Keywords, ", "))
	}

	prompts := []Prompt{
		{
			Type: PromptRanking,
			Text: fmt.Sprintf("List the top 10 companies in %s, ranked from best to worst. Give a numbered list with a one-line reason for each.", topic),
		},
		{
			Type: PromptComparison,
			Text: fmt.Sprintf("Compare the leading providers in %s. Which ones stand out, and what are their strengths and weaknesses?", topic),
		},
		{
			Type: PromptRecommendation,
			Text: fmt.Sprintf("A mid-sized business is choosing a provider in %s. Which companies would you recommend they evaluate first, and why?", topic),
		},
	}

	if len(company.Competitors) > 0 {
		prompts = append(prompts, Prompt{
			Type: PromptAlternatives,
			Text: fmt.Sprintf("What are the best alternatives to %s? List the strongest options.", strings.Join(company.Competitors, " and ")),
		})
	}

	return prompts
}
