package news

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/profiler-cli/pkg/serpapi"
)

// fakeSearchClient returns a canned response or error.
type fakeSearchClient struct {
	resp    *serpapi.SearchResponse
	err     error
	lastReq serpapi.SearchRequest
}

func (f *fakeSearchClient) Search(_ context.Context, req serpapi.SearchRequest) (*serpapi.SearchResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestFetch_NewsResults(t *testing.T) {
	client := &fakeSearchClient{
		resp: &serpapi.SearchResponse{
			NewsResults: []serpapi.NewsResult{
				{Title: "Acme raises $50M", Link: "https://news.example/1", Snippet: "Series B", Date: "2 days ago", Source: serpapi.NewsSource{Name: "TechNews"}},
				{Title: "Acme ships robots", Link: "https://news.example/2", Date: "1 week ago", Source: serpapi.NewsSource{Name: "Wire"}},
			},
		},
	}
	f := NewFetcher(client, zap.NewNop())

	articles, degraded := f.Fetch(context.Background(), "Acme", 5)
	assert.False(t, degraded)
	require.Len(t, articles, 2)
	assert.Equal(t, "Acme raises $50M", articles[0].Title)
	assert.Equal(t, "https://news.example/1", articles[0].SourceURL)
	assert.Equal(t, "TechNews", articles[0].SourceName)
	assert.Equal(t, "Series B", articles[0].Snippet)

	assert.Equal(t, "Acme latest news", client.lastReq.Query)
	assert.True(t, client.lastReq.News)
}

func TestFetch_OrganicFallback(t *testing.T) {
	client := &fakeSearchClient{
		resp: &serpapi.SearchResponse{
			OrganicResults: []serpapi.OrganicResult{
				{Title: "Acme - Home", Link: "https://acme.com", Snippet: "Robots", DisplayedLink: "acme.com"},
			},
		},
	}
	f := NewFetcher(client, zap.NewNop())

	articles, degraded := f.Fetch(context.Background(), "Acme", 5)
	assert.False(t, degraded)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://acme.com", articles[0].SourceURL)
	assert.Equal(t, "acme.com", articles[0].SourceName)
}

func TestFetch_Truncation(t *testing.T) {
	var results []serpapi.NewsResult
	for i := 0; i < 10; i++ {
		results = append(results, serpapi.NewsResult{Title: "article"})
	}
	f := NewFetcher(&fakeSearchClient{resp: &serpapi.SearchResponse{NewsResults: results}}, zap.NewNop())

	articles, degraded := f.Fetch(context.Background(), "Acme", 3)
	assert.False(t, degraded)
	assert.Len(t, articles, 3)
}

func TestFetch_DefaultLimit(t *testing.T) {
	client := &fakeSearchClient{resp: &serpapi.SearchResponse{}}
	f := NewFetcher(client, zap.NewNop())

	_, degraded := f.Fetch(context.Background(), "Acme", 0)
	assert.False(t, degraded)
	assert.Equal(t, DefaultLimit, client.lastReq.Num)
}

func TestFetch_ProviderErrorDegrades(t *testing.T) {
	f := NewFetcher(&fakeSearchClient{err: eris.New("provider down")}, zap.NewNop())

	articles, degraded := f.Fetch(context.Background(), "Acme", 5)
	assert.True(t, degraded)
	assert.Empty(t, articles)
}

func TestFetch_NoResults(t *testing.T) {
	f := NewFetcher(&fakeSearchClient{resp: &serpapi.SearchResponse{}}, zap.NewNop())

	articles, degraded := f.Fetch(context.Background(), "Acme", 5)
	assert.False(t, degraded)
	assert.Empty(t, articles)
}
