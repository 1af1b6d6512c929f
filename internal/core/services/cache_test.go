package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusware/advisor/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResponseCache_ExactHit(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{})
	ctx := context.Background()

	cache.Store(ctx, "What are the tuition fees?", "en", "€82 per semester", 0, nil)

	answer, source, ok := cache.Lookup(ctx, "What are the tuition fees?", "en")
	require.True(t, ok)
	assert.Equal(t, "€82 per semester", answer)
	assert.Equal(t, domain.SourceCacheExact, source)

	// Normalisation folds case and surrounding whitespace into the same key.
	answer, _, ok = cache.Lookup(ctx, "  what are the tuition fees?  ", "en")
	require.True(t, ok)
	assert.Equal(t, "€82 per semester", answer)

	stats := cache.Stats()
	assert.Equal(t, 2, stats.TotalQueries)
	assert.Equal(t, 2, stats.Hits)
	assert.Equal(t, 0, stats.Misses)
}

func TestResponseCache_LanguagePartitionsKeys(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{})
	ctx := context.Background()

	cache.Store(ctx, "Wie hoch sind die Gebühren?", "de", "82 Euro pro Semester", 0, nil)

	_, _, ok := cache.Lookup(ctx, "Wie hoch sind die Gebühren?", "en")
	assert.False(t, ok)

	answer, _, ok := cache.Lookup(ctx, "Wie hoch sind die Gebühren?", "de")
	require.True(t, ok)
	assert.Equal(t, "82 Euro pro Semester", answer)
}

func TestResponseCache_Expiry(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{})
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = fixedClock(t0)
	cache.Store(ctx, "application deadline?", "en", "June 15", 1, nil)

	// Exactly at the TTL boundary the entry is still live.
	cache.now = fixedClock(t0.Add(1 * time.Second))
	_, _, ok := cache.Lookup(ctx, "application deadline?", "en")
	assert.True(t, ok)

	// Past the boundary it expires and is removed on lookup.
	cache.now = fixedClock(t0.Add(2 * time.Second))
	_, _, ok = cache.Lookup(ctx, "application deadline?", "en")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())
}

func TestResponseCache_EvictsLowestHitCount(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{MaxSize: 2})
	ctx := context.Background()

	cache.Store(ctx, "query one", "en", "answer one", 0, nil)
	cache.Store(ctx, "query two", "en", "answer two", 0, nil)

	// query one earns a hit; query two stays at zero.
	_, _, ok := cache.Lookup(ctx, "query one", "en")
	require.True(t, ok)

	cache.Store(ctx, "query three", "en", "answer three", 0, nil)

	assert.Equal(t, 2, cache.Size())
	_, _, ok = cache.Lookup(ctx, "query two", "en")
	assert.False(t, ok)
	_, _, ok = cache.Lookup(ctx, "query one", "en")
	assert.True(t, ok)
	_, _, ok = cache.Lookup(ctx, "query three", "en")
	assert.True(t, ok)
}

func TestResponseCache_EvictionTieBreaksOldest(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{MaxSize: 2})
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = fixedClock(t0)
	cache.Store(ctx, "query one", "en", "answer one", 0, nil)
	cache.now = fixedClock(t0.Add(time.Minute))
	cache.Store(ctx, "query two", "en", "answer two", 0, nil)
	cache.now = fixedClock(t0.Add(2 * time.Minute))
	cache.Store(ctx, "query three", "en", "answer three", 0, nil)

	// Both candidates had zero hits; the older entry loses.
	assert.Equal(t, 2, cache.Size())
	_, _, ok := cache.Lookup(ctx, "query one", "en")
	assert.False(t, ok)
	_, _, ok = cache.Lookup(ctx, "query two", "en")
	assert.True(t, ok)
}

func TestResponseCache_RestoreDoesNotEvict(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{MaxSize: 2})
	ctx := context.Background()

	cache.Store(ctx, "query one", "en", "answer one", 0, nil)
	cache.Store(ctx, "query two", "en", "answer two", 0, nil)

	// Overwriting an existing fingerprint at capacity must not evict.
	cache.Store(ctx, "query two", "en", "fresher answer", 0, nil)

	assert.Equal(t, 2, cache.Size())
	answer, _, ok := cache.Lookup(ctx, "query one", "en")
	require.True(t, ok)
	assert.Equal(t, "answer one", answer)
	answer, _, ok = cache.Lookup(ctx, "query two", "en")
	require.True(t, ok)
	assert.Equal(t, "fresher answer", answer)
}

func TestResponseCache_SemanticHitByEmbedding(t *testing.T) {
	embedder := &mockEmbeddingService{
		vectors: map[string][]float32{
			"cyber security": {0, 1, 0},
		},
	}
	cache := NewResponseCache(nil, embedder, CacheConfig{SemanticMatching: true})
	ctx := context.Background()

	cache.Store(ctx, "Tell me about cyber security programs", "en", "We offer an M.Eng.", 0, nil)

	// Different wording, same topic vector, different fingerprint.
	answer, source, ok := cache.Lookup(ctx, "cyber security master details please", "en")
	require.True(t, ok)
	assert.Equal(t, "We offer an M.Eng.", answer)
	assert.Equal(t, domain.SourceCacheSemantic, source)
}

func TestResponseCache_SemanticThresholdInclusive(t *testing.T) {
	// cos({4,3,0}, {1,0,0}) is exactly 0.8.
	embedder := &mockEmbeddingService{
		vectors: map[string][]float32{
			"alpha": {4, 3, 0},
			"beta":  {1, 0, 0},
		},
	}
	cache := NewResponseCache(nil, embedder, CacheConfig{
		SemanticMatching:    true,
		SimilarityThreshold: 0.8,
	})
	ctx := context.Background()

	cache.Store(ctx, "topic alpha", "en", "alpha answer", 0, nil)

	_, source, ok := cache.Lookup(ctx, "topic beta", "en")
	require.True(t, ok)
	assert.Equal(t, domain.SourceCacheSemantic, source)
}

func TestResponseCache_SemanticBelowThresholdMisses(t *testing.T) {
	// cos({3,4,0}, {1,0,0}) is exactly 0.6, below the 0.8 threshold.
	embedder := &mockEmbeddingService{
		vectors: map[string][]float32{
			"alpha": {3, 4, 0},
			"beta":  {1, 0, 0},
		},
	}
	cache := NewResponseCache(nil, embedder, CacheConfig{
		SemanticMatching:    true,
		SimilarityThreshold: 0.8,
	})
	ctx := context.Background()

	cache.Store(ctx, "topic alpha", "en", "alpha answer", 0, nil)

	_, _, ok := cache.Lookup(ctx, "topic beta", "en")
	assert.False(t, ok)
}

func TestResponseCache_SemanticNeverCrossesLanguages(t *testing.T) {
	embedder := &mockEmbeddingService{
		vectors: map[string][]float32{"fees": {0, 1, 0}},
	}
	cache := NewResponseCache(nil, embedder, CacheConfig{SemanticMatching: true})
	ctx := context.Background()

	cache.Store(ctx, "what about the fees", "en", "€82 per semester", 0, nil)

	_, _, ok := cache.Lookup(ctx, "how high are the fees", "de")
	assert.False(t, ok)
}

func TestResponseCache_SemanticTokenOverlapWithoutEmbedder(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{SemanticMatching: true})
	ctx := context.Background()

	cache.Store(ctx, "what are the tuition fees", "en", "€82 per semester", 0, nil)

	// Reordered words share the full token set but a different fingerprint.
	answer, source, ok := cache.Lookup(ctx, "the tuition fees what are", "en")
	require.True(t, ok)
	assert.Equal(t, "€82 per semester", answer)
	assert.Equal(t, domain.SourceCacheSemantic, source)

	// Low-overlap queries miss.
	_, _, ok = cache.Lookup(ctx, "when does the winter intake start", "en")
	assert.False(t, ok)
}

func TestResponseCache_SemanticTieKeepsFirstInserted(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{SemanticMatching: true})
	ctx := context.Background()

	// Both entries have the identical token set as the probe query.
	cache.Store(ctx, "fees tuition cost", "en", "first answer", 0, nil)
	cache.Store(ctx, "cost fees tuition", "en", "second answer", 0, nil)

	answer, _, ok := cache.Lookup(ctx, "tuition cost fees", "en")
	require.True(t, ok)
	assert.Equal(t, "first answer", answer)
}

func TestResponseCache_WriteThroughAndHitRefresh(t *testing.T) {
	store := newMockCacheStore()
	cache := NewResponseCache(store, nil, CacheConfig{})
	ctx := context.Background()

	cache.Store(ctx, "query one", "en", "answer one", 0, nil)
	assert.Equal(t, 1, store.setCalls)

	// An exact hit refreshes the persisted copy with the new hit count.
	_, _, ok := cache.Lookup(ctx, "query one", "en")
	require.True(t, ok)
	assert.Equal(t, 2, store.setCalls)

	persisted, err := store.Get(ctx, domain.QueryFingerprint("query one", "en"))
	require.NoError(t, err)
	assert.Equal(t, 1, persisted.HitCount)
}

func TestResponseCache_StoreFailureIsBestEffort(t *testing.T) {
	store := newMockCacheStore()
	store.setErr = assert.AnError
	cache := NewResponseCache(store, nil, CacheConfig{})
	ctx := context.Background()

	cache.Store(ctx, "query one", "en", "answer one", 0, nil)

	// The in-memory tier still serves the answer.
	answer, _, ok := cache.Lookup(ctx, "query one", "en")
	require.True(t, ok)
	assert.Equal(t, "answer one", answer)
}

func TestResponseCache_Hydrate(t *testing.T) {
	ctx := context.Background()
	store := newMockCacheStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	live := &domain.CacheEntry{
		Query:       "live query",
		Fingerprint: domain.QueryFingerprint("live query", "en"),
		Language:    "en",
		Answer:      "live answer",
		CreatedAt:   now.Add(-time.Minute),
		TTL:         3600,
	}
	expired := &domain.CacheEntry{
		Query:       "stale query",
		Fingerprint: domain.QueryFingerprint("stale query", "en"),
		Language:    "en",
		Answer:      "stale answer",
		CreatedAt:   now.Add(-2 * time.Hour),
		TTL:         3600,
	}
	require.NoError(t, store.Set(ctx, live))
	require.NoError(t, store.Set(ctx, expired))

	cache := NewResponseCache(store, nil, CacheConfig{})
	cache.now = fixedClock(now)
	require.NoError(t, cache.Hydrate(ctx))

	assert.Equal(t, 1, cache.Size())
	answer, _, ok := cache.Lookup(ctx, "live query", "en")
	require.True(t, ok)
	assert.Equal(t, "live answer", answer)
	_, _, ok = cache.Lookup(ctx, "stale query", "en")
	assert.False(t, ok)
}

func TestResponseCache_InvalidateByPattern(t *testing.T) {
	store := newMockCacheStore()
	cache := NewResponseCache(store, nil, CacheConfig{})
	ctx := context.Background()

	cache.Store(ctx, "tuition fees for masters", "en", "a", 0, nil)
	cache.Store(ctx, "TUITION deadline", "en", "b", 0, nil)
	cache.Store(ctx, "visa requirements", "en", "c", 0, nil)

	removed := cache.Invalidate(ctx, "tuition")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Size())
	assert.Equal(t, 2, store.deleteCalls)

	_, _, ok := cache.Lookup(ctx, "visa requirements", "en")
	assert.True(t, ok)
}

func TestResponseCache_InvalidateAll(t *testing.T) {
	store := newMockCacheStore()
	cache := NewResponseCache(store, nil, CacheConfig{})
	ctx := context.Background()

	cache.Store(ctx, "query one", "en", "a", 0, nil)
	cache.Store(ctx, "query two", "de", "b", 0, nil)

	removed := cache.Invalidate(ctx, "")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, cache.Size())

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestResponseCache_PurgeExpired(t *testing.T) {
	cache := NewResponseCache(nil, nil, CacheConfig{})
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = fixedClock(t0)
	cache.Store(ctx, "old query", "en", "a", 0, nil)
	cache.now = fixedClock(t0.Add(90 * time.Minute))
	cache.Store(ctx, "recent query", "en", "b", 0, nil)

	removed := cache.PurgeExpired(ctx, 3600)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, cache.Size())

	_, _, ok := cache.Lookup(ctx, "recent query", "en")
	assert.True(t, ok)
}

func TestResponseCache_StatsReporting(t *testing.T) {
	embedder := testIndexEmbedder()
	cache := NewResponseCache(nil, embedder, CacheConfig{
		MaxSize:          10,
		SemanticMatching: true,
	})
	ctx := context.Background()

	_, _, ok := cache.Lookup(ctx, "anything", "en")
	assert.False(t, ok)
	cache.Store(ctx, "anything", "en", "answer", 0, nil)
	_, _, ok = cache.Lookup(ctx, "anything", "en")
	assert.True(t, ok)

	stats := cache.Stats()
	assert.Equal(t, 2, stats.TotalQueries)
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 10, stats.MaxSize)
	assert.True(t, stats.SemanticMatching)
	assert.InDelta(t, 0.5, stats.HitRate(), 1e-9)
}

func TestTokenOverlap(t *testing.T) {
	assert.Equal(t, 1.0, TokenOverlap("fees tuition cost", "cost fees tuition"))
	assert.Equal(t, 0.5, TokenOverlap("fees tuition", "fees"))
	assert.Equal(t, 0.0, TokenOverlap("fees", "visa"))
	assert.Equal(t, 0.0, TokenOverlap("", "fees"))
	assert.Equal(t, 1.0, TokenOverlap("Fees", "fees"))
}
