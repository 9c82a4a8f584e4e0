package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/profiler-cli/internal/model"
	"github.com/sells-group/profiler-cli/internal/urlnorm"
)

// SQLiteStore implements Store using modernc.org/sqlite. List columns are
// stored as JSON text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS company_profiles (
	id                    TEXT PRIMARY KEY,
	website_url           TEXT UNIQUE NOT NULL,
	company_name          TEXT NOT NULL DEFAULT '',
	page_title            TEXT NOT NULL DEFAULT '',
	meta_description      TEXT NOT NULL DEFAULT '',
	company_summary       TEXT NOT NULL DEFAULT '',
	industry_category     TEXT NOT NULL DEFAULT '',
	target_audience       TEXT NOT NULL DEFAULT '',
	key_problems_solved   TEXT NOT NULL DEFAULT '[]',
	potential_competitors TEXT NOT NULL DEFAULT '[]',
	news_summary          TEXT NOT NULL DEFAULT '',
	h1_tags               TEXT NOT NULL DEFAULT '[]',
	h2_tags               TEXT NOT NULL DEFAULT '[]',
	outbound_links        TEXT NOT NULL DEFAULT '[]',
	latest_news           TEXT NOT NULL DEFAULT '[]',
	scraped_content       TEXT NOT NULL DEFAULT '',
	created_at            DATETIME NOT NULL,
	updated_at            DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_company_profiles_website_url ON company_profiles(website_url);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return eris.Wrap(s.db.Close(), "sqlite: close")
}

func (s *SQLiteStore) Exists(ctx context.Context, rawURL string) (bool, error) {
	key := urlnorm.Normalize(rawURL)

	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM company_profiles WHERE website_url = ?`, key,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: exists %s", key)
	}
	return true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, profile *model.CompanyProfile) (*model.CompanyProfile, error) {
	stored := *profile
	stored.ID = uuid.New().String()
	stored.WebsiteURL = urlnorm.Normalize(profile.WebsiteURL)

	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	cols, err := marshalLists(&stored)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO company_profiles (
			id, website_url, company_name, page_title, meta_description,
			company_summary, industry_category, target_audience,
			key_problems_solved, potential_competitors, news_summary,
			h1_tags, h2_tags, outbound_links, latest_news, scraped_content,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.WebsiteURL, stored.CompanyName, stored.PageTitle, stored.MetaDescription,
		stored.CompanySummary, stored.IndustryCategory, stored.TargetAudience,
		cols.problems, cols.competitors, stored.NewsSummary,
		cols.h1, cols.h2, cols.links, cols.news, stored.ScrapedContent,
		stored.CreatedAt, stored.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, eris.Wrapf(ErrDuplicate, "sqlite: save %s", stored.WebsiteURL)
		}
		return nil, eris.Wrapf(err, "sqlite: save %s", stored.WebsiteURL)
	}

	return &stored, nil
}

func (s *SQLiteStore) Get(ctx context.Context, rawURL string) (*model.CompanyProfile, error) {
	key := urlnorm.Normalize(rawURL)

	var p model.CompanyProfile
	var problems, competitors, h1, h2, links, news []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, website_url, company_name, page_title, meta_description,
			company_summary, industry_category, target_audience,
			key_problems_solved, potential_competitors, news_summary,
			h1_tags, h2_tags, outbound_links, latest_news, scraped_content,
			created_at, updated_at
		FROM company_profiles WHERE website_url = ?`,
		key,
	).Scan(
		&p.ID, &p.WebsiteURL, &p.CompanyName, &p.PageTitle, &p.MetaDescription,
		&p.CompanySummary, &p.IndustryCategory, &p.TargetAudience,
		&problems, &competitors, &p.NewsSummary,
		&h1, &h2, &links, &news, &p.ScrapedContent,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get %s", key)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get %s", key)
	}

	for _, col := range []struct {
		data []byte
		dst  any
	}{
		{problems, &p.KeyProblemsSolved},
		{competitors, &p.PotentialCompetitors},
		{h1, &p.H1Tags},
		{h2, &p.H2Tags},
		{links, &p.OutboundLinks},
		{news, &p.LatestNews},
	} {
		if len(col.data) == 0 {
			continue
		}
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal profile %s", key)
		}
	}
	return &p, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM company_profiles`).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: count profiles")
	}
	return n, nil
}

type listColumns struct {
	problems, competitors, h1, h2, links, news []byte
}

func marshalLists(p *model.CompanyProfile) (*listColumns, error) {
	var cols listColumns
	var err error

	for _, col := range []struct {
		dst *[]byte
		src any
	}{
		{&cols.problems, stringsOrEmpty(p.KeyProblemsSolved)},
		{&cols.competitors, stringsOrEmpty(p.PotentialCompetitors)},
		{&cols.h1, stringsOrEmpty(p.H1Tags)},
		{&cols.h2, stringsOrEmpty(p.H2Tags)},
		{&cols.links, stringsOrEmpty(p.OutboundLinks)},
		{&cols.news, newsOrEmpty(p.LatestNews)},
	} {
		*col.dst, err = json.Marshal(col.src)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: marshal profile lists")
		}
	}
	return &cols, nil
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
