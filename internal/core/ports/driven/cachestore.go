package driven

import (
	"context"

	"github.com/campusware/advisor/internal/core/domain"
)

// CacheStore is the persisted tier of the response cache: a durable key-value
// store keyed by query fingerprint. The in-memory tier is authoritative for
// lookups; this tier is authoritative for durability across restarts. All
// failures here are best-effort territory - callers log and carry on.
type CacheStore interface {
	// Keys enumerates all stored fingerprints, used for startup hydration.
	Keys(ctx context.Context) ([]string, error)

	// Get retrieves an entry by fingerprint.
	// Returns domain.ErrNotFound if the fingerprint is absent.
	Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, error)

	// Set stores or replaces an entry under its fingerprint.
	Set(ctx context.Context, entry *domain.CacheEntry) error

	// Delete removes an entry. Deleting an absent fingerprint is not an error.
	Delete(ctx context.Context, fingerprint string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
