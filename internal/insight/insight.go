// Package insight turns scraped page data and recent news into a structured
// six-field company analysis via the language-model backend.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/profiler-cli/internal/model"
	"github.com/sells-group/profiler-cli/pkg/anthropic"
)

const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.3

	maxH1Lines    = 5
	maxH2Lines    = 10
	maxContentLen = 2000
	maxNewsLines  = 5
)

const analysisPrompt = `Analyze the following company information and provide structured insights.

Website URL: %s
Page Title: %s
Meta Description: %s

Key Headlines (H1):
%s

Subheadings (H2):
%s

Website Content (excerpt):
%s

Recent News:
%s

Based on this information, provide the following analysis in JSON format:

{
    "company_summary": "A 100-word summary of what the company does",
    "industry_category": "The primary industry category",
    "target_audience": "Description of the target audience",
    "key_problems_solved": ["Problem 1", "Problem 2", "Problem 3"],
    "potential_competitors": ["Competitor 1", "Competitor 2", "Competitor 3"],
    "news_summary": "A short paragraph summarizing the latest news and developments"
}

Ensure your response is valid JSON format only.`

// Generator builds analysis prompts and parses model output into Insights.
type Generator struct {
	client    anthropic.Client
	modelName string
	log       *zap.Logger
}

// NewGenerator creates a Generator. A nil logger defaults to the global logger.
func NewGenerator(client anthropic.Client, modelName string, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.L()
	}
	return &Generator{client: client, modelName: modelName, log: log}
}

// Placeholder is the fixed Insight substituted when model output cannot be
// parsed. The values are load-bearing: stored profiles and tests depend on
// them exactly.
func Placeholder() *model.Insight {
	return &model.Insight{
		CompanySummary:       "Unable to generate summary",
		IndustryCategory:     "Unknown",
		TargetAudience:       "Unknown",
		KeyProblemsSolved:    []string{},
		PotentialCompetitors: []string{},
		NewsSummary:          "Unable to summarize news",
	}
}

// Analyze invokes the backend once and parses the response against the fixed
// schema. An unparseable response degrades to Placeholder (degraded=true);
// a failed backend call is returned as an error.
func (g *Generator) Analyze(ctx context.Context, page *model.ScrapedPage, articles []model.NewsArticle) (*model.Insight, bool, error) {
	g.log.Info("analyzing company data", zap.String("url", page.URL))

	temp := defaultTemperature
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.modelName,
		MaxTokens:   defaultMaxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: g.buildPrompt(page, articles)},
		},
	})
	if err != nil {
		return nil, false, eris.Wrap(err, "insight: analyze")
	}

	ins, ok := parseInsight(resp.Text())
	if !ok {
		g.log.Warn("unparseable model response, substituting placeholder insight",
			zap.String("url", page.URL),
		)
		return Placeholder(), true, nil
	}
	return ins, false, nil
}

// buildPrompt embeds the scraped metadata and a short news digest into the
// analysis prompt.
func (g *Generator) buildPrompt(page *model.ScrapedPage, articles []model.NewsArticle) string {
	newsLines := make([]string, 0, maxNewsLines)
	for _, a := range articles {
		if len(newsLines) == maxNewsLines {
			break
		}
		newsLines = append(newsLines, fmt.Sprintf("- %s (%s)", a.Title, a.SourceName))
	}

	content := truncate(page.Content, maxContentLen)

	return fmt.Sprintf(analysisPrompt,
		page.URL,
		page.Title,
		page.MetaDescription,
		strings.Join(capLines(page.H1Tags, maxH1Lines), "\n"),
		strings.Join(capLines(page.H2Tags, maxH2Lines), "\n"),
		content,
		strings.Join(newsLines, "\n"),
	)
}

func capLines(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

// truncate caps s at n bytes, backing off to a rune boundary so the excerpt
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

// parseInsight extracts the JSON object from model output. It tries the
// substring between the first { and the last }, then the whole text.
func parseInsight(text string) (*model.Insight, bool) {
	text = stripFences(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if ins, ok := unmarshalInsight(text[start : end+1]); ok {
			return ins, true
		}
	}
	return unmarshalInsight(text)
}

func unmarshalInsight(s string) (*model.Insight, bool) {
	var ins model.Insight
	if err := json.Unmarshal([]byte(s), &ins); err != nil {
		return nil, false
	}
	if ins.KeyProblemsSolved == nil {
		ins.KeyProblemsSolved = []string{}
	}
	if ins.PotentialCompetitors == nil {
		ins.PotentialCompetitors = []string{}
	}
	return &ins, true
}

// stripFences removes markdown code fences that models sometimes wrap
// around JSON output.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
