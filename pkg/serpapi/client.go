// Package serpapi provides a client for the SerpAPI Google Search API.
package serpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://serpapi.com"

// Client performs searches against SerpAPI.
type Client interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// SearchRequest describes a single search.
type SearchRequest struct {
	Query string
	// News restricts the search to the news vertical (tbm=nws).
	News bool
	// Num is the requested result count; 0 uses the provider default.
	Num int
	// Locale parameters; default en/us.
	Language string
	Country  string
}

// SearchResponse is the subset of the SerpAPI response the pipeline consumes.
type SearchResponse struct {
	NewsResults    []NewsResult    `json:"news_results"`
	OrganicResults []OrganicResult `json:"organic_results"`
}

// NewsResult is a single news-vertical result.
type NewsResult struct {
	Title   string     `json:"title"`
	Link    string     `json:"link"`
	Snippet string     `json:"snippet"`
	Date    string     `json:"date"`
	Source  NewsSource `json:"source"`
}

// NewsSource is the publisher of a news result. SerpAPI returns it either as
// a bare string or as an object with a name field, so it unmarshals both.
type NewsSource struct {
	Name string `json:"name"`
}

func (s *NewsSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Name = str
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return eris.Wrap(err, "serpapi: unmarshal news source")
	}
	s.Name = obj.Name
	return nil
}

// OrganicResult is a single general web result.
type OrganicResult struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	Snippet       string `json:"snippet"`
	Date          string `json:"date"`
	DisplayedLink string `json:"displayed_link"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a SerpAPI client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("engine", "google")
	q.Set("q", req.Query)
	q.Set("api_key", c.apiKey)

	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	country := req.Country
	if country == "" {
		country = "us"
	}
	q.Set("hl", lang)
	q.Set("gl", country)

	if req.News {
		q.Set("tbm", "nws")
	}
	if req.Num > 0 {
		q.Set("num", strconv.Itoa(req.Num))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: create request")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "serpapi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("serpapi: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "serpapi: unmarshal response")
	}

	return &result, nil
}
