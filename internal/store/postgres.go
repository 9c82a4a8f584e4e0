package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/profiler-cli/internal/model"
	"github.com/sells-group/profiler-cli/internal/urlnorm"
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// Pool is the subset of pgxpool.Pool the store uses, satisfied by pgxmock
// for unit testing.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS company_profiles (
	id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	website_url           TEXT UNIQUE NOT NULL,
	company_name          TEXT NOT NULL DEFAULT '',
	page_title            TEXT NOT NULL DEFAULT '',
	meta_description      TEXT NOT NULL DEFAULT '',
	company_summary       TEXT NOT NULL DEFAULT '',
	industry_category     TEXT NOT NULL DEFAULT '',
	target_audience       TEXT NOT NULL DEFAULT '',
	key_problems_solved   TEXT[] NOT NULL DEFAULT '{}',
	potential_competitors TEXT[] NOT NULL DEFAULT '{}',
	news_summary          TEXT NOT NULL DEFAULT '',
	h1_tags               TEXT[] NOT NULL DEFAULT '{}',
	h2_tags               TEXT[] NOT NULL DEFAULT '{}',
	outbound_links        TEXT[] NOT NULL DEFAULT '{}',
	latest_news           JSONB NOT NULL DEFAULT '[]',
	scraped_content       TEXT NOT NULL DEFAULT '',
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_company_profiles_website_url ON company_profiles(website_url);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, rawURL string) (bool, error) {
	key := urlnorm.Normalize(rawURL)

	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM company_profiles WHERE website_url = $1)`,
		key,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrapf(err, "postgres: exists %s", key)
	}
	return exists, nil
}

func (s *PostgresStore) Save(ctx context.Context, profile *model.CompanyProfile) (*model.CompanyProfile, error) {
	stored := *profile
	stored.ID = uuid.New().String()
	stored.WebsiteURL = urlnorm.Normalize(profile.WebsiteURL)

	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	newsJSON, err := json.Marshal(newsOrEmpty(stored.LatestNews))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal latest news")
	}

	// pgx encodes a nil slice as SQL NULL, which the NOT NULL array columns
	// reject, so list fields are normalized to empty slices.

	_, err = s.pool.Exec(ctx,
		`INSERT INTO company_profiles (
			id, website_url, company_name, page_title, meta_description,
			company_summary, industry_category, target_audience,
			key_problems_solved, potential_competitors, news_summary,
			h1_tags, h2_tags, outbound_links, latest_news, scraped_content,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		stored.ID, stored.WebsiteURL, stored.CompanyName, stored.PageTitle, stored.MetaDescription,
		stored.CompanySummary, stored.IndustryCategory, stored.TargetAudience,
		stringsOrEmpty(stored.KeyProblemsSolved), stringsOrEmpty(stored.PotentialCompetitors), stored.NewsSummary,
		stringsOrEmpty(stored.H1Tags), stringsOrEmpty(stored.H2Tags), stringsOrEmpty(stored.OutboundLinks), newsJSON, stored.ScrapedContent,
		stored.CreatedAt, stored.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, eris.Wrapf(ErrDuplicate, "postgres: save %s", stored.WebsiteURL)
		}
		return nil, eris.Wrapf(err, "postgres: save %s", stored.WebsiteURL)
	}

	return &stored, nil
}

func (s *PostgresStore) Get(ctx context.Context, rawURL string) (*model.CompanyProfile, error) {
	key := urlnorm.Normalize(rawURL)

	var p model.CompanyProfile
	var newsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, website_url, company_name, page_title, meta_description,
			company_summary, industry_category, target_audience,
			key_problems_solved, potential_competitors, news_summary,
			h1_tags, h2_tags, outbound_links, latest_news, scraped_content,
			created_at, updated_at
		FROM company_profiles WHERE website_url = $1`,
		key,
	).Scan(
		&p.ID, &p.WebsiteURL, &p.CompanyName, &p.PageTitle, &p.MetaDescription,
		&p.CompanySummary, &p.IndustryCategory, &p.TargetAudience,
		&p.KeyProblemsSolved, &p.PotentialCompetitors, &p.NewsSummary,
		&p.H1Tags, &p.H2Tags, &p.OutboundLinks, &newsJSON, &p.ScrapedContent,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get %s", key)
		}
		return nil, eris.Wrapf(err, "postgres: get %s", key)
	}

	if len(newsJSON) > 0 {
		if err := json.Unmarshal(newsJSON, &p.LatestNews); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal latest news")
		}
	}
	return &p, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM company_profiles`).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: count profiles")
	}
	return n, nil
}

func newsOrEmpty(articles []model.NewsArticle) []model.NewsArticle {
	if articles == nil {
		return []model.NewsArticle{}
	}
	return articles
}
