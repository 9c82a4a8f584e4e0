// Package store persists company profiles keyed by normalized website URL.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/profiler-cli/internal/model"
)

// ErrNotFound is returned by Get when no profile exists for the URL.
var ErrNotFound = eris.New("store: profile not found")

// ErrDuplicate is returned by Save when a profile already exists for the
// normalized URL. Save is insert-only; callers check Exists first, and a
// concurrent-writer race surfaces as this error rather than an upsert.
var ErrDuplicate = eris.New("store: profile already exists")

// Store defines the persistence interface for company profiles. All
// operations key by the normalized form of the URL regardless of how the
// caller supplied it.
type Store interface {
	// Exists reports whether a profile is stored for the URL.
	Exists(ctx context.Context, rawURL string) (bool, error)
	// Save inserts a new profile and returns the stored record with its
	// identity fields populated. Fails with ErrDuplicate on key collision.
	Save(ctx context.Context, profile *model.CompanyProfile) (*model.CompanyProfile, error)
	// Get retrieves a profile by URL, or ErrNotFound.
	Get(ctx context.Context, rawURL string) (*model.CompanyProfile, error)
	// Count returns the number of stored profiles.
	Count(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
