package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPage = `<!DOCTYPE html>
<html>
<head>
	<title>  Acme Robotics | Warehouse Automation  </title>
	<meta name="description" content="Autonomous robots for warehouses">
	<style>body { color: red; }</style>
	<script>var tracking = "ignore me";</script>
</head>
<body>
	<h1> Robots that work </h1>
	<h1>Built for scale</h1>
	<h1>Trusted worldwide</h1>
	<h2>  How it works  </h2>
	<h2>Pricing</h2>
	<p>Acme builds   autonomous
	warehouse robots.</p>
	<a href="/about">About us</a>
	<a href="https://twitter.com/acme">Twitter</a>
	<a href="https://github.com/acme">GitHub</a>
	<a href="https://twitter.com/acme">Twitter again</a>
	<script>console.log("also ignore");</script>
</body>
</html>`

func newTestScraper() *Scraper {
	return New(WithLogger(zap.NewNop()), WithRateLimit(1000, 1000))
}

func TestScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(testPage))
	}))
	defer srv.Close()

	page, err := newTestScraper().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, page.URL)
	assert.Equal(t, "Acme Robotics | Warehouse Automation", page.Title)
	assert.Equal(t, "Autonomous robots for warehouses", page.MetaDescription)
	assert.Equal(t, []string{"Robots that work", "Built for scale", "Trusted worldwide"}, page.H1Tags)
	assert.Equal(t, []string{"How it works", "Pricing"}, page.H2Tags)
	assert.False(t, page.ScrapedAt.IsZero())

	// Same-host link excluded, external links deduplicated.
	assert.Len(t, page.OutboundLinks, 2)
	assert.ElementsMatch(t, []string{"https://twitter.com/acme", "https://github.com/acme"}, page.OutboundLinks)

	// Script/style content excluded, whitespace collapsed.
	assert.Contains(t, page.Content, "Acme builds autonomous warehouse robots.")
	assert.NotContains(t, page.Content, "ignore me")
	assert.NotContains(t, page.Content, "color: red")
}

func TestScrape_MissingTitleAndMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>bare page</p></body></html>`))
	}))
	defer srv.Close()

	page, err := newTestScraper().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, page.Title)
	assert.Empty(t, page.MetaDescription)
	assert.Empty(t, page.H1Tags)
}

func TestScrape_LinkCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		sb.WriteString(`<a href="https://external.example/page/` + strings.Repeat("x", i+1) + `">link</a>`)
	}
	sb.WriteString("</body></html>")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sb.String()))
	}))
	defer srv.Close()

	page, err := newTestScraper().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.OutboundLinks, 20)
}

func TestScrape_ContentCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("a", 6000) + "</p></body></html>"))
	}))
	defer srv.Close()

	page, err := newTestScraper().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.Content, 5000)
}

func TestScrape_ContentCapRuneBoundary(t *testing.T) {
	// 3-byte runes that do not divide 5000 evenly, so a blind byte slice
	// would cut mid-rune.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("世", 1700) + "</p></body></html>"))
	}))
	defer srv.Close()

	page, err := newTestScraper().Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(page.Content))
	assert.Equal(t, 4998, len(page.Content))
}

func TestScrape_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestScraper().Scrape(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, srv.URL, fetchErr.URL)
}

func TestScrape_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestScraper().Scrape(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Error(t, fetchErr.Unwrap())
}
