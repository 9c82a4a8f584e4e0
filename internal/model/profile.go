package model

import "time"

// ProfileStatus is the tri-state outcome of a profiling run.
type ProfileStatus string

const (
	ProfileStatusSuccess ProfileStatus = "success"
	ProfileStatusExists  ProfileStatus = "exists"
	ProfileStatusError   ProfileStatus = "error"
)

// ScrapedPage holds the structural metadata extracted from a company homepage.
// Immutable once returned by the scraper.
type ScrapedPage struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	H1Tags          []string  `json:"h1_tags"`
	H2Tags          []string  `json:"h2_tags"`
	OutboundLinks   []string  `json:"outbound_links"`
	Content         string    `json:"content"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// NewsArticle is a single search-provider result mapped into a uniform shape.
type NewsArticle struct {
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
	SourceURL  string `json:"source_url"`
	SourceName string `json:"source_name"`
	Date       string `json:"date"`
}

// Insight is the fixed six-field analysis produced by the language model.
type Insight struct {
	CompanySummary       string   `json:"company_summary"`
	IndustryCategory     string   `json:"industry_category"`
	TargetAudience       string   `json:"target_audience"`
	KeyProblemsSolved    []string `json:"key_problems_solved"`
	PotentialCompetitors []string `json:"potential_competitors"`
	NewsSummary          string   `json:"news_summary"`
}

// CompanyProfile is the persisted record describing one company, keyed by
// normalized website URL.
type CompanyProfile struct {
	ID                   string        `json:"id,omitempty"`
	WebsiteURL           string        `json:"website_url"`
	CompanyName          string        `json:"company_name"`
	PageTitle            string        `json:"page_title"`
	MetaDescription      string        `json:"meta_description"`
	CompanySummary       string        `json:"company_summary"`
	IndustryCategory     string        `json:"industry_category"`
	TargetAudience       string        `json:"target_audience"`
	KeyProblemsSolved    []string      `json:"key_problems_solved"`
	PotentialCompetitors []string      `json:"potential_competitors"`
	NewsSummary          string        `json:"news_summary"`
	H1Tags               []string      `json:"h1_tags"`
	H2Tags               []string      `json:"h2_tags"`
	OutboundLinks        []string      `json:"outbound_links"`
	LatestNews           []NewsArticle `json:"latest_news"`
	ScrapedContent       string        `json:"scraped_content"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// ProfileResult is the uniform outcome returned to callers of the profiler.
type ProfileResult struct {
	Status  ProfileStatus   `json:"status"`
	Message string          `json:"message"`
	Data    *CompanyProfile `json:"data,omitempty"`
}
