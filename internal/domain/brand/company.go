// Package brand provides domain models for the brand-monitor bounded context:
// scraped company profiles, AI provider results, and aggregated visibility
// analyses.
package brand

import (
	"strings"

	"github.com/brandlens/backend/internal/domain/shared"
)

// Company is a company profile extracted from its website
type Company struct {
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Industry    string   `json:"industry"`
	Keywords    []string `json:"keywords"`
	Competitors []string `json:"competitors"`
}

// Validate checks the minimal fields an analysis needs
func (c *Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return shared.NewDomainError("INVALID_COMPANY", "Company name cannot be empty")
	}
	if strings.TrimSpace(c.URL) == "" {
		return shared.NewDomainError("INVALID_COMPANY", "Company URL cannot be empty")
	}
	return nil
}
