package driving

import "github.com/campusware/advisor/internal/core/domain"

// ProgramCatalog exposes read access to the loaded programme corpus.
type ProgramCatalog interface {
	// Programs returns all indexed programmes in corpus order.
	Programs() []domain.Program

	// ByCode returns the programme with the given code, or
	// domain.ErrNotFound.
	ByCode(code string) (*domain.Program, error)

	// ByLevel returns programmes at the given degree level.
	ByLevel(level string) []domain.Program

	// ByLanguage returns programmes taught in the given language.
	ByLanguage(language string) []domain.Program

	// SearchTitle returns programmes whose title contains query,
	// case-insensitively.
	SearchTitle(query string) []domain.Program

	// Count returns the number of indexed programmes.
	Count() int
}
