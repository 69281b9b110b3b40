package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/brandlens/backend/internal/domain/brand"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// ChromeConfig contains configuration for the headless-Chrome scraper
type ChromeConfig struct {
	// Timeout for a single scrape
	Timeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional)
	// If empty, chromedp will launch a new browser instance
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
}

// ChromeScraper renders pages in headless Chrome before extraction, so sites
// that build their content with JavaScript still yield a usable profile.
type ChromeScraper struct {
	config      *ChromeConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeScraper creates a new headless-Chrome scraper
func NewChromeScraper(config *ChromeConfig, logger *zap.Logger) (*ChromeScraper, error) {
	if config == nil {
		config = &ChromeConfig{}
	}
	if config.Timeout == 0 {
		config.Timeout = defaultChromeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	scraper := &ChromeScraper{
		config: config,
		logger: logger,
	}
	scraper.initAllocator()

	return scraper, nil
}

// initAllocator initializes the Chrome allocator
func (s *ChromeScraper) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
	)

	if s.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	if s.config.RemoteURL != "" {
		s.allocCtx, s.allocCancel = chromedp.NewRemoteAllocator(context.Background(), s.config.RemoteURL)
	} else {
		s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
}

// Scrape implements Scraper
func (s *ChromeScraper) Scrape(ctx context.Context, rawURL string) (*brand.Company, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(s.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			s.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	var htmlSrc string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en"}),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &htmlSrc),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("scrape: rendering %s timed out after %v", rawURL, s.config.Timeout)
		}
		return nil, fmt.Errorf("scrape: rendering %s failed: %w", rawURL, err)
	}

	company := parsePage(rawURL, htmlSrc)
	if err := company.Validate(); err != nil {
		return nil, err
	}

	s.logger.Debug("Scraped company page via Chrome",
		zap.String("url", rawURL),
		zap.String("name", company.Name))

	return company, nil
}

// Close releases the Chrome allocator
func (s *ChromeScraper) Close() error {
	if s.allocCancel != nil {
		s.allocCancel()
	}
	return nil
}

// Ensure ChromeScraper implements Scraper
var _ Scraper = (*ChromeScraper)(nil)
