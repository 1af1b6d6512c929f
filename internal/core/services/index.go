package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driven"
	"github.com/campusware/advisor/internal/core/ports/driving"
	"github.com/campusware/advisor/internal/logger"
)

// indexSnapshot holds one immutable generation of the corpus and its vectors.
// Searches operate on a snapshot, so a concurrent rebuild is invisible to
// in-flight calls: they see the old corpus or the new one, never a mix.
type indexSnapshot struct {
	programs []domain.Program
	texts    []string
	vectors  [][]float32 // nil when built in degraded mode
	byCode   map[string]int
	degraded bool
}

var _ driving.ProgramCatalog = (*ProgramIndex)(nil)

// ProgramIndex maps each programme to an embedding vector and answers
// nearest-neighbour queries by cosine similarity. When the embedding service
// is unavailable it degrades to case-insensitive substring matching on the
// text projections instead of failing.
type ProgramIndex struct {
	embedder driven.EmbeddingService // may be nil
	snap     atomic.Pointer[indexSnapshot]
}

// NewProgramIndex creates an empty index. Pass a nil embedder to force
// degraded substring matching.
func NewProgramIndex(embedder driven.EmbeddingService) *ProgramIndex {
	ix := &ProgramIndex{embedder: embedder}
	ix.snap.Store(&indexSnapshot{byCode: map[string]int{}, degraded: embedder == nil})
	return ix
}

// Build replaces the indexed corpus wholesale. Vectors are derived from each
// programme's deterministic text projection, one per record in input order.
// An embedding failure switches the new generation to degraded mode rather
// than leaving the index empty.
func (ix *ProgramIndex) Build(ctx context.Context, programs []domain.Program) error {
	byCode := make(map[string]int, len(programs))
	texts := make([]string, len(programs))
	for i := range programs {
		code := programs[i].Code
		if code == "" {
			return fmt.Errorf("program %d has no code: %w", i, domain.ErrInvalidInput)
		}
		if _, dup := byCode[code]; dup {
			return fmt.Errorf("duplicate program code %q: %w", code, domain.ErrInvalidInput)
		}
		byCode[code] = i
		texts[i] = programs[i].EmbeddingText()
	}

	next := &indexSnapshot{
		programs: programs,
		texts:    texts,
		byCode:   byCode,
		degraded: true,
	}

	if ix.embedder != nil && len(programs) > 0 {
		vectors, err := ix.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("embedding corpus failed, falling back to substring matching: %v", err)
		} else {
			next.vectors = vectors
			next.degraded = false
		}
	}

	ix.snap.Store(next)
	logger.Info("program index built: %d programs, degraded=%t", len(programs), next.degraded)
	return nil
}

// Degraded reports whether the current generation runs on substring matching.
func (ix *ProgramIndex) Degraded() bool {
	return ix.snap.Load().degraded
}

// Count returns the number of indexed programmes.
func (ix *ProgramIndex) Count() int {
	return len(ix.snap.Load().programs)
}

// Programs returns the current corpus in load order.
func (ix *ProgramIndex) Programs() []domain.Program {
	return ix.snap.Load().programs
}

// ByCode returns the programme with the given code.
func (ix *ProgramIndex) ByCode(code string) (*domain.Program, error) {
	snap := ix.snap.Load()
	i, ok := snap.byCode[code]
	if !ok {
		return nil, fmt.Errorf("program %q: %w", code, domain.ErrNotFound)
	}
	p := snap.programs[i]
	return &p, nil
}

// ByLevel returns all programmes of a degree level, in corpus order.
func (ix *ProgramIndex) ByLevel(level string) []domain.Program {
	var out []domain.Program
	for _, p := range ix.snap.Load().programs {
		if p.DegreeLevel == level {
			out = append(out, p)
		}
	}
	return out
}

// ByLanguage returns all programmes taught in the given language.
func (ix *ProgramIndex) ByLanguage(language string) []domain.Program {
	var out []domain.Program
	for _, p := range ix.snap.Load().programs {
		if p.LanguageOfInstruction == language {
			out = append(out, p)
		}
	}
	return out
}

// SearchTitle returns programmes whose title contains the query,
// case-insensitively.
func (ix *ProgramIndex) SearchTitle(query string) []domain.Program {
	q := strings.ToLower(query)
	var out []domain.Program
	for _, p := range ix.snap.Load().programs {
		if strings.Contains(strings.ToLower(p.Title), q) {
			out = append(out, p)
		}
	}
	return out
}

// Search returns up to topK programmes with similarity >= minScore, ordered
// by descending similarity; ties keep corpus order. An empty index or
// topK == 0 yields an empty result.
func (ix *ProgramIndex) Search(ctx context.Context, query string, topK int, minScore float64) ([]driving.RetrievalResult, error) {
	snap := ix.snap.Load()
	if len(snap.programs) == 0 || topK <= 0 {
		return []driving.RetrievalResult{}, nil
	}
	return ix.searchSnapshot(ctx, snap, query, allIndices(len(snap.programs)), topK, minScore)
}

// SearchWithin restricts the search to the given programme codes. Existing
// vectors are reused by position; only the query is encoded. An unknown code
// fails with domain.ErrUnknownProgram.
func (ix *ProgramIndex) SearchWithin(ctx context.Context, query string, codes []string, topK int) ([]driving.RetrievalResult, error) {
	snap := ix.snap.Load()
	if topK <= 0 || len(codes) == 0 {
		return []driving.RetrievalResult{}, nil
	}

	indices := make([]int, 0, len(codes))
	for _, code := range codes {
		i, ok := snap.byCode[code]
		if !ok {
			return nil, fmt.Errorf("candidate %q not indexed: %w", code, domain.ErrUnknownProgram)
		}
		indices = append(indices, i)
	}

	return ix.searchSnapshot(ctx, snap, query, indices, topK, 0)
}

// searchSnapshot ranks the candidate positions of one snapshot against the
// query. Candidates arrive in corpus order (or caller-supplied order for
// subset searches), which the stable sort preserves across equal scores.
func (ix *ProgramIndex) searchSnapshot(
	ctx context.Context, snap *indexSnapshot, query string, candidates []int, topK int, minScore float64,
) ([]driving.RetrievalResult, error) {
	if snap.degraded || snap.vectors == nil {
		return substringRank(snap, query, candidates, topK), nil
	}

	queryVec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("query embedding failed, falling back to substring matching: %v", err)
		return substringRank(snap, query, candidates, topK), nil
	}

	results := make([]driving.RetrievalResult, 0, len(candidates))
	for _, i := range candidates {
		score := CosineSimilarity(queryVec, snap.vectors[i])
		if score >= minScore {
			results = append(results, driving.RetrievalResult{Program: snap.programs[i], Score: score})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// substringRank is the degraded-mode ranking: containment of the query in the
// text projection scores 1, otherwise the programme is dropped. Corpus order
// is kept.
func substringRank(snap *indexSnapshot, query string, candidates []int, topK int) []driving.RetrievalResult {
	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]driving.RetrievalResult, 0, topK)
	for _, i := range candidates {
		if q == "" || strings.Contains(strings.ToLower(snap.texts[i]), q) {
			results = append(results, driving.RetrievalResult{Program: snap.programs[i], Score: 1})
			if len(results) == topK {
				break
			}
		}
	}
	return results
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched dimensions or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
