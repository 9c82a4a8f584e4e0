// Package profiler composes the scrape, news-fetch, analysis, and persistence
// steps into a single end-to-end company profiling operation.
package profiler

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/profiler-cli/internal/model"
	"github.com/sells-group/profiler-cli/internal/store"
)

// Scraper extracts structural metadata from a web page.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*model.ScrapedPage, error)
}

// NewsFetcher retrieves recent articles about a company. The bool reports
// whether the result was degraded to empty by a provider error.
type NewsFetcher interface {
	Fetch(ctx context.Context, companyName string, limit int) ([]model.NewsArticle, bool)
}

// Analyzer produces a structured insight from scraped and news data. The
// bool reports whether a placeholder was substituted for unparseable output.
type Analyzer interface {
	Analyze(ctx context.Context, page *model.ScrapedPage, articles []model.NewsArticle) (*model.Insight, bool, error)
}

// Profiler orchestrates one profiling run per call. It holds no state across
// calls beyond what the store persists.
type Profiler struct {
	scraper   Scraper
	news      NewsFetcher
	analyzer  Analyzer
	store     store.Store
	newsLimit int
	log       *zap.Logger
}

// New creates a Profiler. A nil logger defaults to the global logger;
// newsLimit <= 0 uses the fetcher's default.
func New(scraper Scraper, news NewsFetcher, analyzer Analyzer, st store.Store, newsLimit int, log *zap.Logger) *Profiler {
	if log == nil {
		log = zap.L()
	}
	return &Profiler{
		scraper:   scraper,
		news:      news,
		analyzer:  analyzer,
		store:     st,
		newsLimit: newsLimit,
		log:       log,
	}
}

// Profile runs the end-to-end pipeline for rawURL and reports a tri-state
// outcome: success, exists (already profiled, returns the stored record), or
// error. The only mutating step is the final save, so no rollback is needed.
func (p *Profiler) Profile(ctx context.Context, rawURL string) model.ProfileResult {
	p.log.Info("starting profiling", zap.String("url", rawURL))

	companyName := deriveCompanyName(rawURL)

	exists, err := p.store.Exists(ctx, rawURL)
	if err != nil {
		// Treat "can't tell" as "doesn't exist": re-scraping beats blocking.
		p.log.Warn("existence check failed, proceeding as new", zap.String("url", rawURL), zap.Error(err))
		exists = false
	}
	if exists {
		p.log.Info("profile already exists", zap.String("url", rawURL))
		data, err := p.store.Get(ctx, rawURL)
		if err != nil {
			p.log.Warn("stored profile retrieval failed", zap.String("url", rawURL), zap.Error(err))
			data = nil
		}
		return model.ProfileResult{
			Status:  model.ProfileStatusExists,
			Message: "company profile already exists",
			Data:    data,
		}
	}

	// Scrape and news-fetch are independent; run them together. Analysis
	// needs both, and a scrape failure aborts the run.
	var page *model.ScrapedPage
	var articles []model.NewsArticle
	var newsDegraded bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = p.scraper.Scrape(gctx, rawURL)
		return err
	})
	if companyName != "" {
		g.Go(func() error {
			articles, newsDegraded = p.news.Fetch(gctx, companyName, p.newsLimit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.log.Error("profiling failed", zap.String("url", rawURL), zap.Error(err))
		return errorResult(err)
	}

	if companyName == "" {
		companyName = page.Title
		articles, newsDegraded = p.news.Fetch(ctx, companyName, p.newsLimit)
	}
	if newsDegraded {
		p.log.Warn("continuing with empty news list", zap.String("url", rawURL))
	}

	ins, insDegraded, err := p.analyzer.Analyze(ctx, page, articles)
	if err != nil {
		p.log.Error("profiling failed", zap.String("url", rawURL), zap.Error(err))
		return errorResult(err)
	}
	if insDegraded {
		p.log.Warn("analysis degraded to placeholder insight", zap.String("url", rawURL))
	}

	profile := assembleProfile(rawURL, companyName, page, articles, ins)

	saved, err := p.store.Save(ctx, profile)
	if err != nil {
		p.log.Error("profiling failed", zap.String("url", rawURL), zap.Error(err))
		return errorResult(err)
	}

	p.log.Info("profile created",
		zap.String("url", saved.WebsiteURL),
		zap.String("company", saved.CompanyName),
		zap.String("industry", saved.IndustryCategory),
	)
	return model.ProfileResult{
		Status:  model.ProfileStatusSuccess,
		Message: "company profile created successfully",
		Data:    saved,
	}
}

func errorResult(err error) model.ProfileResult {
	return model.ProfileResult{
		Status:  model.ProfileStatusError,
		Message: err.Error(),
	}
}

// assembleProfile merges scrape, news, and insight data into the record to
// persist. The store normalizes WebsiteURL on save.
func assembleProfile(rawURL, companyName string, page *model.ScrapedPage, articles []model.NewsArticle, ins *model.Insight) *model.CompanyProfile {
	return &model.CompanyProfile{
		WebsiteURL:           rawURL,
		CompanyName:          companyName,
		PageTitle:            page.Title,
		MetaDescription:      page.MetaDescription,
		CompanySummary:       ins.CompanySummary,
		IndustryCategory:     ins.IndustryCategory,
		TargetAudience:       ins.TargetAudience,
		KeyProblemsSolved:    ins.KeyProblemsSolved,
		PotentialCompetitors: ins.PotentialCompetitors,
		NewsSummary:          ins.NewsSummary,
		H1Tags:               page.H1Tags,
		H2Tags:               page.H2Tags,
		OutboundLinks:        page.OutboundLinks,
		LatestNews:           articles,
		ScrapedContent:       page.Content,
	}
}

var titleCaser = cases.Title(language.English)

// deriveCompanyName heuristically extracts a company name from the URL host:
// strip "www.", take the first dot label, capitalize.
func deriveCompanyName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Host, "www.")
	if host == "" {
		return ""
	}
	label, _, _ := strings.Cut(host, ".")
	return titleCaser.String(label)
}
