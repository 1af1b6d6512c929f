package services

import (
	"context"
	"fmt"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driving"
	"github.com/campusware/advisor/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.ProgramSearch = (*RetrievalService)(nil)

// DefaultMinScore is the similarity floor for relevance retrieval. Scores
// below it are noise for the multilingual embedding models this runs with.
const DefaultMinScore = 0.1

// RetrievalService is a thin policy wrapper over the programme index: it
// fixes the default minimum score and exposes relevance retrieval for the
// orchestration layer. It has no state of its own.
type RetrievalService struct {
	index    *ProgramIndex
	minScore float64
}

// NewRetrievalService creates a retrieval service over the given index.
// minScore <= 0 selects DefaultMinScore.
func NewRetrievalService(index *ProgramIndex, minScore float64) *RetrievalService {
	if minScore <= 0 {
		minScore = DefaultMinScore
	}
	return &RetrievalService{index: index, minScore: minScore}
}

// FindRelevant returns up to maxResults programmes relevant to the query, in
// relevance order.
func (s *RetrievalService) FindRelevant(ctx context.Context, query string, maxResults int) ([]domain.Program, error) {
	logger.Section("Retrieval")
	logger.Debug("query=%q maxResults=%d minScore=%.2f", query, maxResults, s.minScore)

	results, err := s.index.Search(ctx, query, maxResults, s.minScore)
	if err != nil {
		return nil, fmt.Errorf("find relevant programs: %w", err)
	}

	programs := make([]domain.Program, len(results))
	for i, r := range results {
		programs[i] = r.Program
		logger.Debug("match: %s (score %.3f)", r.Program.Title, r.Score)
	}
	return programs, nil
}

// Search ranks the whole corpus with explicit topK and minScore.
func (s *RetrievalService) Search(ctx context.Context, query string, topK int, minScore float64) ([]driving.RetrievalResult, error) {
	return s.index.Search(ctx, query, topK, minScore)
}

// SearchWithin ranks only the given programme codes.
func (s *RetrievalService) SearchWithin(ctx context.Context, query string, codes []string, topK int) ([]driving.RetrievalResult, error) {
	return s.index.SearchWithin(ctx, query, codes, topK)
}

// Degraded reports whether retrieval runs on substring matching.
func (s *RetrievalService) Degraded() bool {
	return s.index.Degraded()
}
