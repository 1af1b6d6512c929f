// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/campusware/advisor/internal/core/domain"
)

// RetrievalResult pairs a programme with its similarity score for one query.
type RetrievalResult struct {
	// Program is the matched record.
	Program domain.Program

	// Score is the cosine similarity against the query, in [0,1] for text
	// embeddings. In degraded mode it is a binary containment score.
	Score float64
}

// ProgramSearch finds programmes relevant to a natural-language query.
type ProgramSearch interface {
	// FindRelevant returns up to maxResults programmes in relevance order,
	// filtered by the service's configured minimum score.
	FindRelevant(ctx context.Context, query string, maxResults int) ([]domain.Program, error)

	// Search is the lower-level entry point with explicit topK and minScore.
	Search(ctx context.Context, query string, topK int, minScore float64) ([]RetrievalResult, error)

	// SearchWithin restricts the search to the given programme codes.
	// Returns domain.ErrUnknownProgram if a code is not indexed.
	SearchWithin(ctx context.Context, query string, codes []string, topK int) ([]RetrievalResult, error)

	// Degraded reports whether the index fell back to substring matching
	// because the embedding service was unavailable at build time.
	Degraded() bool
}
