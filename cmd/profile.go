package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/profiler-cli/internal/insight"
	"github.com/sells-group/profiler-cli/internal/news"
	"github.com/sells-group/profiler-cli/internal/profiler"
	"github.com/sells-group/profiler-cli/internal/scraper"
	"github.com/sells-group/profiler-cli/internal/store"
	"github.com/sells-group/profiler-cli/internal/urlnorm"
	"github.com/sells-group/profiler-cli/pkg/anthropic"
	"github.com/sells-group/profiler-cli/pkg/serpapi"
)

var (
	profileURL       string
	profileNewsLimit int
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Profile a single company from its website URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		p := newProfiler(st, profileNewsLimit)

		result := p.Profile(ctx, urlnorm.EnsureScheme(profileURL))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// newProfiler wires the pipeline components from config.
func newProfiler(st store.Store, newsLimit int) *profiler.Profiler {
	log := zap.L()

	scrapeOpts := []scraper.Option{
		scraper.WithTimeout(time.Duration(cfg.Scrape.TimeoutSecs) * time.Second),
		scraper.WithRateLimit(cfg.Scrape.RatePerSec, 4),
		scraper.WithLogger(log),
	}
	if cfg.Scrape.UserAgent != "" {
		scrapeOpts = append(scrapeOpts, scraper.WithUserAgent(cfg.Scrape.UserAgent))
	}
	sc := scraper.New(scrapeOpts...)

	nf := news.NewFetcher(serpapi.NewClient(cfg.SerpAPI.Key, serpapi.WithBaseURL(cfg.SerpAPI.BaseURL)), log)
	gen := insight.NewGenerator(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, log)

	if newsLimit <= 0 {
		newsLimit = cfg.News.Limit
	}
	return profiler.New(sc, nf, gen, st, newsLimit, log)
}

func init() {
	profileCmd.Flags().StringVar(&profileURL, "url", "", "company website URL (required)")
	profileCmd.Flags().IntVar(&profileNewsLimit, "news-limit", 0, "number of news articles to fetch (default from config)")
	_ = profileCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(profileCmd)
}
