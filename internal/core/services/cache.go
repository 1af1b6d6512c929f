package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driven"
	"github.com/campusware/advisor/internal/logger"
)

// Cache defaults.
const (
	DefaultCacheSize           = 1000
	DefaultCacheTTL            = 3600 // seconds
	DefaultSimilarityThreshold = 0.85
)

// CacheConfig holds tunables for the response cache.
type CacheConfig struct {
	// MaxSize caps the number of in-memory entries (default 1000).
	MaxSize int

	// DefaultTTL is the entry lifetime in seconds when Store is called
	// without one (default 3600).
	DefaultTTL int

	// SimilarityThreshold is the minimum score for a semantic hit, boundary
	// inclusive (default 0.85).
	SimilarityThreshold float64

	// SemanticMatching enables the nearest-match scan on exact misses.
	SemanticMatching bool
}

func (c CacheConfig) withDefaults() CacheConfig {
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultCacheSize
	}
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = DefaultCacheTTL
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return c
}

// ResponseCache maps (query, language) pairs to previously generated answers.
// Lookups try the exact fingerprint first, then a semantic nearest-match scan
// over live same-language entries. The in-memory tier is authoritative for
// reads; every write and hit refresh goes through to the persisted tier on a
// best-effort basis.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*domain.CacheEntry
	order   []string // fingerprints in insertion order; fixes semantic tie-breaks

	store    driven.CacheStore       // may be nil: memory-only operation
	embedder driven.EmbeddingService // may be nil: token-overlap similarity

	cfg CacheConfig
	now func() time.Time

	totalQueries int
	hits         int
	misses       int
}

// NewResponseCache creates a response cache. Both store and embedder are
// optional; without a store the cache is memory-only, without an embedder
// semantic matching degrades to token overlap.
func NewResponseCache(store driven.CacheStore, embedder driven.EmbeddingService, cfg CacheConfig) *ResponseCache {
	return &ResponseCache{
		entries:  make(map[string]*domain.CacheEntry),
		store:    store,
		embedder: embedder,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
	}
}

// Hydrate loads persisted entries into memory, skipping expired and malformed
// ones. A bad entry never aborts the rest of the load.
func (c *ResponseCache) Hydrate(ctx context.Context) error {
	if c.store == nil {
		return nil
	}

	keys, err := c.store.Keys(ctx)
	if err != nil {
		logger.Error("cache hydration: listing keys: %v", err)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	loaded := 0
	now := c.now()
	for _, key := range keys {
		entry, err := c.store.Get(ctx, key)
		if err != nil {
			logger.Error("cache hydration: loading entry %s: %v", key, err)
			continue
		}
		if entry.Expired(now) {
			continue
		}
		if _, exists := c.entries[entry.Fingerprint]; !exists {
			c.order = append(c.order, entry.Fingerprint)
		}
		c.entries[entry.Fingerprint] = entry
		loaded++
	}

	logger.Info("cache hydrated: %d live entries from persisted tier", loaded)
	return nil
}

// Lookup returns the cached answer for a query, its hit kind, and whether a
// hit occurred. A miss is a sentinel absence, not an error.
func (c *ResponseCache) Lookup(ctx context.Context, query, language string) (string, domain.AnswerSource, bool) {
	fingerprint := domain.QueryFingerprint(query, language)

	c.mu.Lock()
	c.totalQueries++
	if entry, ok := c.entries[fingerprint]; ok {
		if entry.Expired(c.now()) {
			logger.Debug("cache entry expired: %s", truncate(entry.Query, 50))
			c.removeLocked(ctx, fingerprint)
		} else {
			c.recordHit(ctx, entry)
			answer, hits := entry.Answer, entry.HitCount
			c.mu.Unlock()
			logger.Info("cache HIT (exact): %s (hit_count=%d)", truncate(query, 50), hits)
			return answer, domain.SourceCacheExact, true
		}
	}
	semantic := c.cfg.SemanticMatching
	c.mu.Unlock()

	if semantic {
		// The query embedding is computed outside the lock so concurrent
		// lookups are not serialised behind the embedding call.
		var queryVec []float32
		if c.embedder != nil {
			vec, err := c.embedder.Embed(ctx, query)
			if err != nil {
				logger.Warn("query embedding for cache scan failed, using token overlap: %v", err)
			} else {
				queryVec = vec
			}
		}

		c.mu.Lock()
		if entry, score, ok := c.bestSemanticMatch(queryVec, query, language, c.now()); ok {
			c.recordHit(ctx, entry)
			answer := entry.Answer
			c.mu.Unlock()
			logger.Info("cache HIT (semantic, %.2f): %s", score, truncate(query, 50))
			return answer, domain.SourceCacheSemantic, true
		}
		c.misses++
		c.mu.Unlock()
	} else {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
	}

	logger.Debug("cache MISS: %s", truncate(query, 50))
	return "", "", false
}

// bestSemanticMatch scans live same-language entries in insertion order and
// returns the first entry reaching the maximum score, if that score clears
// the threshold (boundary inclusive). Caller holds the lock.
func (c *ResponseCache) bestSemanticMatch(
	queryVec []float32, query, language string, now time.Time,
) (*domain.CacheEntry, float64, bool) {
	var best *domain.CacheEntry
	bestScore := -1.0

	for _, fingerprint := range c.order {
		entry, ok := c.entries[fingerprint]
		if !ok || entry.Language != language || entry.Expired(now) {
			continue
		}

		var score float64
		if queryVec != nil && len(entry.QueryVector) > 0 {
			score = CosineSimilarity(queryVec, entry.QueryVector)
		} else {
			score = TokenOverlap(query, entry.Query)
		}

		if score > bestScore {
			bestScore = score
			best = entry
		}
	}

	if best == nil || bestScore < c.cfg.SimilarityThreshold {
		return nil, 0, false
	}
	return best, bestScore, true
}

// recordHit bumps counters and refreshes the persisted copy. Caller holds the
// lock.
func (c *ResponseCache) recordHit(ctx context.Context, entry *domain.CacheEntry) {
	entry.HitCount++
	c.hits++
	c.persist(ctx, entry)
}

// Store caches a freshly generated answer. It always creates a new entry;
// near-duplicates with a different fingerprint are not merged. At capacity,
// the entry with the lowest hit count (ties: oldest) is evicted first.
func (c *ResponseCache) Store(ctx context.Context, query, language, answer string, ttl int, referenced []string) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}

	var queryVec []float32
	if c.cfg.SemanticMatching && c.embedder != nil {
		vec, err := c.embedder.Embed(ctx, query)
		if err != nil {
			logger.Warn("embedding cached query failed, entry will match by token overlap: %v", err)
		} else {
			queryVec = vec
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fingerprint := domain.QueryFingerprint(query, language)
	if _, exists := c.entries[fingerprint]; !exists && len(c.entries) >= c.cfg.MaxSize {
		c.evictLocked(ctx)
	}

	entry := &domain.CacheEntry{
		Query:              query,
		Fingerprint:        fingerprint,
		Language:           language,
		Answer:             answer,
		CreatedAt:          c.now(),
		TTL:                ttl,
		ReferencedPrograms: referenced,
		QueryVector:        queryVec,
	}

	if _, exists := c.entries[fingerprint]; !exists {
		c.order = append(c.order, fingerprint)
	}
	c.entries[fingerprint] = entry
	c.persist(ctx, entry)

	logger.Debug("cached response: %s", truncate(query, 50))
}

// evictLocked removes the entry with the lowest hit count, ties broken by
// oldest creation time. Insertion order scanning keeps the choice
// deterministic. Caller holds the lock.
func (c *ResponseCache) evictLocked(ctx context.Context) {
	if len(c.entries) == 0 {
		return
	}

	victim := ""
	for _, fingerprint := range c.order {
		entry, ok := c.entries[fingerprint]
		if !ok {
			continue
		}
		if victim == "" {
			victim = fingerprint
			continue
		}
		cur := c.entries[victim]
		if entry.HitCount < cur.HitCount ||
			(entry.HitCount == cur.HitCount && entry.CreatedAt.Before(cur.CreatedAt)) {
			victim = fingerprint
		}
	}

	if victim != "" {
		logger.Debug("evicting cache entry: %s", truncate(c.entries[victim].Query, 50))
		c.removeLocked(ctx, victim)
	}
}

// removeLocked deletes an entry from both tiers. Caller holds the lock.
func (c *ResponseCache) removeLocked(ctx context.Context, fingerprint string) {
	delete(c.entries, fingerprint)
	for i, fp := range c.order {
		if fp == fingerprint {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.store != nil {
		if err := c.store.Delete(ctx, fingerprint); err != nil {
			logger.Warn("persisted tier delete failed for %s: %v", fingerprint, err)
		}
	}
}

// persist writes an entry through to the persisted tier. Failures are logged,
// never surfaced: durability is best-effort. Caller holds the lock.
func (c *ResponseCache) persist(ctx context.Context, entry *domain.CacheEntry) {
	if c.store == nil {
		return
	}
	if err := c.store.Set(ctx, entry); err != nil {
		logger.Warn("persisted tier write failed for %s: %v", entry.Fingerprint, err)
	}
}

// Invalidate removes entries whose query text contains pattern
// (case-insensitive). An empty pattern clears everything. Returns the number
// of entries removed.
func (c *ResponseCache) Invalidate(ctx context.Context, pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pattern == "" {
		count := len(c.entries)
		c.entries = make(map[string]*domain.CacheEntry)
		c.order = nil
		if c.store != nil {
			if err := c.store.Clear(ctx); err != nil {
				logger.Warn("persisted tier clear failed: %v", err)
			}
		}
		logger.Info("cleared all cache (%d entries)", count)
		return count
	}

	needle := strings.ToLower(pattern)
	var victims []string
	for fingerprint, entry := range c.entries {
		if strings.Contains(strings.ToLower(entry.Query), needle) {
			victims = append(victims, fingerprint)
		}
	}
	for _, fingerprint := range victims {
		c.removeLocked(ctx, fingerprint)
	}

	logger.Info("invalidated %d cache entries matching %q", len(victims), pattern)
	return len(victims)
}

// PurgeExpired removes entries older than maxAge seconds regardless of their
// per-entry TTL. Housekeeping, not correctness: expired entries are dropped
// on lookup anyway.
func (c *ResponseCache) PurgeExpired(ctx context.Context, maxAge int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-time.Duration(maxAge) * time.Second)
	var victims []string
	for fingerprint, entry := range c.entries {
		if entry.CreatedAt.Before(cutoff) {
			victims = append(victims, fingerprint)
		}
	}
	for _, fingerprint := range victims {
		c.removeLocked(ctx, fingerprint)
	}

	logger.Info("purged %d old cache entries", len(victims))
	return len(victims)
}

// Stats returns a read-only snapshot of the cache counters.
func (c *ResponseCache) Stats() domain.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return domain.CacheStats{
		TotalQueries:     c.totalQueries,
		Hits:             c.hits,
		Misses:           c.misses,
		Size:             len(c.entries),
		MaxSize:          c.cfg.MaxSize,
		SemanticMatching: c.cfg.SemanticMatching && c.embedder != nil,
	}
}

// Size returns the current number of in-memory entries.
func (c *ResponseCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TokenOverlap scores two texts by word-set overlap:
// |A ∩ B| / max(|A|, |B|). It is the degraded-mode stand-in for cosine
// similarity, trading recall for independence from the embedding service.
func TokenOverlap(a, b string) float64 {
	wordsA := tokenSet(a)
	wordsB := tokenSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	overlap := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			overlap++
		}
	}

	denom := len(wordsA)
	if len(wordsB) > denom {
		denom = len(wordsB)
	}
	return float64(overlap) / float64(denom)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(strings.TrimSpace(s))) {
		set[w] = struct{}{}
	}
	return set
}

// truncate shortens s for log lines.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
