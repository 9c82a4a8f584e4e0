// Package scraper fetches a company homepage and extracts its structural
// metadata: title, meta description, headings, outbound links, visible text.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/profiler-cli/internal/model"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxOutboundLinks = 20
	maxContentLen    = 5000
	maxBodyBytes     = 2 * 1024 * 1024
)

// FetchError reports a failed page fetch: a transport error or a non-success
// HTTP status. The pipeline treats it as fatal.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scraper: fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("scraper: fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Scraper fetches and parses HTML pages.
type Scraper struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       *zap.Logger
}

// Option configures the scraper.
type Option func(*Scraper)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.client.Timeout = d
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		s.userAgent = ua
	}
}

// WithLogger sets the scraper's logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scraper) {
		s.log = log
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Scraper) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a Scraper with sensible defaults.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		client: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(2), 4),
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = zap.L()
	}
	return s
}

// Scrape fetches targetURL and extracts page metadata. Transport errors and
// non-success statuses return a *FetchError; there is no retry.
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (*model.ScrapedPage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "scraper: rate limit wait")
	}

	s.log.Info("scraping website", zap.String("url", targetURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &FetchError{URL: targetURL, Err: err}
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: targetURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, &FetchError{URL: targetURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "scraper: parse %s", targetURL)
	}

	base := resp.Request.URL

	page := &model.ScrapedPage{
		URL:             targetURL,
		Title:           strings.TrimSpace(doc.Find("title").First().Text()),
		MetaDescription: doc.Find(`meta[name="description"]`).First().AttrOr("content", ""),
		H1Tags:          headingTexts(doc, "h1"),
		H2Tags:          headingTexts(doc, "h2"),
		OutboundLinks:   outboundLinks(doc, base),
		Content:         visibleText(doc),
		ScrapedAt:       time.Now().UTC(),
	}

	s.log.Info("scrape complete",
		zap.String("url", targetURL),
		zap.Int("h1_count", len(page.H1Tags)),
		zap.Int("outbound_links", len(page.OutboundLinks)),
		zap.Int("content_len", len(page.Content)),
	)

	return page, nil
}

func headingTexts(doc *goquery.Document, tag string) []string {
	var texts []string
	doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(sel.Text()))
	})
	return texts
}

// outboundLinks resolves anchor hrefs against the page URL and keeps only
// those pointing at a different host, deduplicated and capped.
func outboundLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Host == "" || abs.Host == base.Host {
			return
		}
		if _, dup := seen[abs.String()]; dup {
			return
		}
		seen[abs.String()] = struct{}{}
		links = append(links, abs.String())
	})

	if len(links) > maxOutboundLinks {
		links = links[:maxOutboundLinks]
	}
	return links
}

// visibleText flattens the document body to whitespace-normalized plaintext
// with script and style content removed, capped at maxContentLen.
func visibleText(doc *goquery.Document) string {
	clone := doc.Selection.Clone()
	clone.Find("script, style, noscript").Remove()

	return truncate(strings.Join(strings.Fields(clone.Text()), " "), maxContentLen)
}

// truncate caps s at n bytes, backing off to a rune boundary so the result
// stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
