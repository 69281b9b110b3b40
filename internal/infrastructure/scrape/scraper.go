// Package scrape extracts company profiles from websites. Two engines are
// provided: a headless-Chrome scraper for JS-heavy sites and a plain HTTP
// scraper for environments without a browser.
package scrape

import (
	"context"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/brandlens/backend/internal/domain/brand"
)

// Scraper extracts a company profile from a website
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (*brand.Company, error)
}

var (
	titleRegex   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaRegex    = regexp.MustCompile(`(?is)<meta\s+[^>]*>`)
	nameAttrRe   = regexp.MustCompile(`(?i)name\s*=\s*["']([^"']+)["']`)
	contentRe    = regexp.MustCompile(`(?i)content\s*=\s*["']([^"']*)["']`)
	tagStripRe   = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceSquash  = regexp.MustCompile(`\s+`)
	titleSplitRe = regexp.MustCompile(`\s+[-|–—:]\s+`)
)

// parsePage extracts a company profile from raw HTML
func parsePage(rawURL, htmlSrc string) *brand.Company {
	title := extractTitle(htmlSrc)
	description := extractMeta(htmlSrc, "description")
	keywords := splitKeywords(extractMeta(htmlSrc, "keywords"))

	name := deriveName(title)
	if name == "" {
		name = hostBaseName(rawURL)
	}

	return &brand.Company{
		Name:        name,
		URL:         rawURL,
		Description: description,
		Keywords:    keywords,
	}
}

// extractTitle returns the page title, unescaped and squashed
func extractTitle(htmlSrc string) string {
	m := titleRegex.FindStringSubmatch(htmlSrc)
	if m == nil {
		return ""
	}
	return cleanText(m[1])
}

// extractMeta returns the content of a named meta tag
func extractMeta(htmlSrc, name string) string {
	for _, tag := range metaRegex.FindAllString(htmlSrc, -1) {
		nm := nameAttrRe.FindStringSubmatch(tag)
		if nm == nil || !strings.EqualFold(nm[1], name) {
			continue
		}
		cm := contentRe.FindStringSubmatch(tag)
		if cm == nil {
			continue
		}
		return cleanText(cm[1])
	}
	return ""
}

// deriveName takes the leading segment of a page title, which is usually the
// brand ("Acme - CRM for teams" -> "Acme").
func deriveName(title string) string {
	if title == "" {
		return ""
	}
	parts := titleSplitRe.Split(title, 2)
	return strings.TrimSpace(parts[0])
}

// hostBaseName falls back to the domain label ("www.acme.com" -> "acme")
func hostBaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if i := strings.Index(host, "."); i > 0 {
		host = host[:i]
	}
	return host
}

func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if kw := strings.TrimSpace(p); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return nil
	}
	return keywords
}

func cleanText(s string) string {
	s = tagStripRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceSquash.ReplaceAllString(s, " "))
}
