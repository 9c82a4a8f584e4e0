// Package news retrieves recent news articles about a company via a search
// provider. News is supplementary: provider failures degrade to an empty
// list instead of failing the pipeline.
package news

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/profiler-cli/internal/model"
	"github.com/sells-group/profiler-cli/pkg/serpapi"
)

// DefaultLimit is the article count requested when the caller passes 0.
const DefaultLimit = 5

// Fetcher queries the search provider and maps results into NewsArticles.
type Fetcher struct {
	client serpapi.Client
	log    *zap.Logger
}

// NewFetcher creates a Fetcher. A nil logger defaults to the global logger.
func NewFetcher(client serpapi.Client, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.L()
	}
	return &Fetcher{client: client, log: log}
}

// Fetch returns up to limit recent articles about companyName, in provider
// relevance order. When the news vertical is empty it falls back to general
// web results. Provider errors never fail the caller: the returned bool is
// true when the result was degraded to an empty list by a provider error.
func (f *Fetcher) Fetch(ctx context.Context, companyName string, limit int) ([]model.NewsArticle, bool) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	f.log.Info("fetching news", zap.String("company", companyName), zap.Int("limit", limit))

	resp, err := f.client.Search(ctx, serpapi.SearchRequest{
		Query: fmt.Sprintf("%s latest news", companyName),
		News:  true,
		Num:   limit,
	})
	if err != nil {
		f.log.Warn("news fetch failed, continuing without news",
			zap.String("company", companyName),
			zap.Error(err),
		)
		return nil, true
	}

	articles := mapResults(resp, limit)
	f.log.Info("news fetched", zap.String("company", companyName), zap.Int("count", len(articles)))
	return articles, false
}

// mapResults prefers news-vertical results and falls back to organic results
// with best-effort field substitution.
func mapResults(resp *serpapi.SearchResponse, limit int) []model.NewsArticle {
	if len(resp.NewsResults) > 0 {
		articles := make([]model.NewsArticle, 0, limit)
		for _, r := range resp.NewsResults {
			if len(articles) == limit {
				break
			}
			articles = append(articles, model.NewsArticle{
				Title:      r.Title,
				Snippet:    r.Snippet,
				SourceURL:  r.Link,
				SourceName: r.Source.Name,
				Date:       r.Date,
			})
		}
		return articles
	}

	articles := make([]model.NewsArticle, 0, limit)
	for _, r := range resp.OrganicResults {
		if len(articles) == limit {
			break
		}
		articles = append(articles, model.NewsArticle{
			Title:      r.Title,
			Snippet:    r.Snippet,
			SourceURL:  r.Link,
			SourceName: r.DisplayedLink,
			Date:       r.Date,
		})
	}
	return articles
}
