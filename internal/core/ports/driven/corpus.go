package driven

import (
	"context"

	"github.com/campusware/advisor/internal/core/domain"
)

// CorpusLoader produces the validated programme corpus the index is built
// from. Schema validation happens inside the loader; the core only ever sees
// well-formed records.
type CorpusLoader interface {
	// Load reads and validates all programme records.
	// Individually malformed records are skipped, not fatal.
	Load(ctx context.Context) ([]domain.Program, error)
}
