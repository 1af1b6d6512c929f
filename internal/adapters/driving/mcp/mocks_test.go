package mcp

import (
	"context"
	"fmt"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driving"
)

// mockAssistant is a mock implementation of driving.Assistant.
type mockAssistant struct {
	answer *domain.Answer
	err    error
}

func (m *mockAssistant) Ask(_ context.Context, _, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAssistant) History() []domain.Turn {
	return nil
}

func (m *mockAssistant) ResetConversation() {}

// mockSearch is a mock implementation of driving.ProgramSearch.
type mockSearch struct {
	results []driving.RetrievalResult
	err     error
}

func (m *mockSearch) FindRelevant(_ context.Context, _ string, _ int) ([]domain.Program, error) {
	if m.err != nil {
		return nil, m.err
	}
	programs := make([]domain.Program, len(m.results))
	for i := range m.results {
		programs[i] = m.results[i].Program
	}
	return programs, nil
}

func (m *mockSearch) Search(_ context.Context, _ string, _ int, _ float64) ([]driving.RetrievalResult, error) {
	return m.results, m.err
}

func (m *mockSearch) SearchWithin(_ context.Context, _ string, _ []string, _ int) ([]driving.RetrievalResult, error) {
	return m.results, m.err
}

func (m *mockSearch) Degraded() bool {
	return false
}

// mockCatalog is a mock implementation of driving.ProgramCatalog.
type mockCatalog struct {
	programs []domain.Program
}

func (m *mockCatalog) Programs() []domain.Program {
	return m.programs
}

func (m *mockCatalog) ByCode(code string) (*domain.Program, error) {
	for i := range m.programs {
		if m.programs[i].Code == code {
			return &m.programs[i], nil
		}
	}
	return nil, fmt.Errorf("program %q: %w", code, domain.ErrNotFound)
}

func (m *mockCatalog) ByLevel(level string) []domain.Program {
	var out []domain.Program
	for _, p := range m.programs {
		if p.DegreeLevel == level {
			out = append(out, p)
		}
	}
	return out
}

func (m *mockCatalog) ByLanguage(language string) []domain.Program {
	var out []domain.Program
	for _, p := range m.programs {
		if p.LanguageOfInstruction == language {
			out = append(out, p)
		}
	}
	return out
}

func (m *mockCatalog) SearchTitle(_ string) []domain.Program {
	return m.programs
}

func (m *mockCatalog) Count() int {
	return len(m.programs)
}

// mockCacheAdmin is a mock implementation of driving.CacheAdmin.
type mockCacheAdmin struct {
	stats       domain.CacheStats
	invalidated int
	purged      int
}

func (m *mockCacheAdmin) Stats() domain.CacheStats {
	return m.stats
}

func (m *mockCacheAdmin) Invalidate(_ context.Context, _ string) int {
	return m.invalidated
}

func (m *mockCacheAdmin) PurgeExpired(_ context.Context, _ int) int {
	return m.purged
}
