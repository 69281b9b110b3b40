package brand

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/brandlens/backend/internal/domain/brand"
)

// mentionWeight and rankWeight split the per-provider score between how often
// the brand comes up and how high it ranks in numbered lists.
const (
	mentionWeight = 0.6
	rankWeight    = 0.4
	maxListRank   = 10
)

// countMentions counts whole-word, case-insensitive occurrences of a name
func countMentions(text, name string) int {
	name = strings.TrimSpace(name)
	if name == "" || text == "" {
		return 0
	}
	re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
	if err != nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}

var listEntryRegex = regexp.MustCompile(`^\s*(\d{1,2})[.)\]:]\s+`)

// extractRank finds the name's position in a numbered list, 0 if absent.
// It takes the best (lowest) position across all lists in the text.
func extractRank(text, name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	lowerName := strings.ToLower(name)

	best := 0
	for _, line := range strings.Split(text, "\n") {
		m := listEntryRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if !strings.Contains(strings.ToLower(line), lowerName) {
			continue
		}
		rank, err := strconv.Atoi(m[1])
		if err != nil || rank == 0 {
			continue
		}
		if best == 0 || rank < best {
			best = rank
		}
	}
	return best
}

// analyzeResponse builds a provider result from the provider's combined answer
// text for all prompts.
func analyzeResponse(providerName, text string, company *brand.Company, tokensUsed int) brand.ProviderResult {
	result := brand.ProviderResult{
		Provider:      providerName,
		BrandMentions: countMentions(text, company.Name),
		BrandRank:     extractRank(text, company.Name),
		TokensUsed:    tokensUsed,
	}

	if len(company.Competitors) > 0 {
		result.CompetitorMentions = make(map[string]int, len(company.Competitors))
		for _, competitor := range company.Competitors {
			result.CompetitorMentions[competitor] = countMentions(text, competitor)
		}
	}

	return result
}

// aggregateRankings merges competitor mentions across providers into a
// stable-ordered leaderboard.
func aggregateRankings(results []brand.ProviderResult) []brand.CompetitorRanking {
	totals := map[string]int{}
	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		for name, mentions := range r.CompetitorMentions {
			totals[name] += mentions
		}
	}
	if len(totals) == 0 {
		return nil
	}

	rankings := make([]brand.CompetitorRanking, 0, len(totals))
	for name, mentions := range totals {
		rankings = append(rankings, brand.CompetitorRanking{Name: name, Mentions: mentions})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Mentions != rankings[j].Mentions {
			return rankings[i].Mentions > rankings[j].Mentions
		}
		return rankings[i].Name < rankings[j].Name
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings
}

// visibilityScore averages per-provider scores over the providers that
// answered. Each provider contributes a 0-100 score from the brand's share of
// mentions and its list rank.
func visibilityScore(results []brand.ProviderResult) float64 {
	var total float64
	var succeeded int

	for _, r := range results {
		if !r.Succeeded() {
			continue
		}
		succeeded++

		competitorMentions := 0
		for _, m := range r.CompetitorMentions {
			competitorMentions += m
		}

		var share float64
		if r.BrandMentions+competitorMentions > 0 {
			share = float64(r.BrandMentions) / float64(r.BrandMentions+competitorMentions)
		}

		var rankScore float64
		if r.BrandRank > 0 && r.BrandRank <= maxListRank {
			rankScore = float64(maxListRank-r.BrandRank+1) / float64(maxListRank)
		}

		total += 100 * (mentionWeight*share + rankWeight*rankScore)
	}

	if succeeded == 0 {
		return 0
	}
	return math.Round(total/float64(succeeded)*10) / 10
}
