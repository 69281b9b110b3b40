package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
	<title>Acme &amp; Co - CRM for small teams</title>
	<meta name="description" content="Acme builds CRM software for small teams.">
	<meta name="keywords" content="crm, sales, pipeline ">
</head>
<body><h1>Welcome</h1></body>
</html>`

func TestParsePage(t *testing.T) {
	company := parsePage("https://www.acme.com", samplePage)

	assert.Equal(t, "Acme & Co", company.Name)
	assert.Equal(t, "https://www.acme.com", company.URL)
	assert.Equal(t, "Acme builds CRM software for small teams.", company.Description)
	assert.Equal(t, []string{"crm", "sales", "pipeline"}, company.Keywords)
}

func TestParsePage_NoTitleFallsBackToHost(t *testing.T) {
	company := parsePage("https://www.acme.com/about", "<html><body>hi</body></html>")
	assert.Equal(t, "acme", company.Name)
	assert.Empty(t, company.Keywords)
}

func TestDeriveName(t *testing.T) {
	assert.Equal(t, "Acme", deriveName("Acme | Home"))
	assert.Equal(t, "Acme", deriveName("Acme - CRM"))
	assert.Equal(t, "Acme", deriveName("Acme"))
	assert.Equal(t, "", deriveName(""))
}

func TestHTTPScraper_Scrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "BrandLensBot")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	scraper := NewHTTPScraper(5*time.Second, zap.NewNop())

	company, err := scraper.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Acme & Co", company.Name)
}

func TestHTTPScraper_Scrape_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	scraper := NewHTTPScraper(5*time.Second, zap.NewNop())

	_, err := scraper.Scrape(context.Background(), server.URL)
	assert.Error(t, err)
}
