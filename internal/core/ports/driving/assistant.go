package driving

import (
	"context"

	"github.com/campusware/advisor/internal/core/domain"
)

// Assistant answers natural-language questions about the programme corpus,
// serving cached answers for repeated or near-identical questions.
type Assistant interface {
	// Ask answers one query in the given language. It never fails on
	// generation errors; it returns a fallback answer instead.
	Ask(ctx context.Context, query, language string) (*domain.Answer, error)

	// History returns the current conversation transcript, oldest first.
	History() []domain.Turn

	// ResetConversation clears the conversation context for a new thread.
	ResetConversation()
}

// CacheAdmin exposes response-cache housekeeping to entry points.
type CacheAdmin interface {
	// Stats returns a read-only snapshot of cache counters.
	Stats() domain.CacheStats

	// Invalidate removes entries whose query text contains pattern
	// (case-insensitive); an empty pattern clears everything. Returns the
	// number of entries removed.
	Invalidate(ctx context.Context, pattern string) int

	// PurgeExpired removes entries older than maxAge seconds regardless of
	// their per-entry TTL. Returns the number of entries removed.
	PurgeExpired(ctx context.Context, maxAge int) int
}
