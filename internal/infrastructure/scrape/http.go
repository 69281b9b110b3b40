package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brandlens/backend/internal/domain/brand"
	"go.uber.org/zap"
)

// HTTPScraper fetches pages with a plain HTTP GET. It cannot execute
// JavaScript, so SPA-only sites come back with thin profiles; use
// ChromeScraper for those.
type HTTPScraper struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPScraper creates a new plain-HTTP scraper
func NewHTTPScraper(timeout time.Duration, logger *zap.Logger) *HTTPScraper {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPScraper{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Scrape implements Scraper
func (s *HTTPScraper) Scrape(ctx context.Context, rawURL string) (*brand.Company, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("scrape: invalid URL %q: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; BrandLensBot/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape: fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape: %s returned status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("scrape: failed to read body: %w", err)
	}

	company := parsePage(rawURL, string(data))
	if err := company.Validate(); err != nil {
		return nil, err
	}

	s.logger.Debug("Scraped company page",
		zap.String("url", rawURL),
		zap.String("name", company.Name))

	return company, nil
}

// Ensure HTTPScraper implements Scraper
var _ Scraper = (*HTTPScraper)(nil)
