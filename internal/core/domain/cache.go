package domain

import (
	"crypto/md5" //nolint:gosec // Fingerprint is a lookup key, not a security boundary.
	"encoding/hex"
	"strings"
	"time"
)

// CacheEntry is one stored answer keyed by its query fingerprint.
type CacheEntry struct {
	// Query is the original query text as received.
	Query string `json:"query"`

	// Fingerprint is the exact-match lookup key, derived from the normalised
	// query text and language via QueryFingerprint.
	Fingerprint string `json:"query_hash"`

	// Language is the language tag the answer was generated in.
	Language string `json:"language"`

	// Answer is the cached generated text.
	Answer string `json:"response"`

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time `json:"timestamp"`

	// TTL is the entry lifetime in seconds. The entry is live while
	// now - CreatedAt <= TTL.
	TTL int `json:"ttl"`

	// HitCount increases on every exact or semantic hit. It drives eviction:
	// the entry with the lowest hit count goes first, ties broken by age.
	HitCount int `json:"hit_count"`

	// ReferencedPrograms are the programme codes the answer drew on.
	ReferencedPrograms []string `json:"programs_referenced,omitempty"`

	// QueryVector is the embedding of Query, computed once when the entry is
	// stored. Empty in degraded mode.
	QueryVector []float32 `json:"-"`
}

// Expired reports whether the entry has outlived its TTL at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > time.Duration(e.TTL)*time.Second
}

// QueryFingerprint computes the exact-match cache key for a query/language
// pair. The query is lower-cased and trimmed first so trivially different
// spellings of the same question share a key.
func QueryFingerprint(query, language string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := md5.Sum([]byte(normalized + ":" + language)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// CacheStats is a read-only snapshot of cache counters.
type CacheStats struct {
	TotalQueries int `json:"total_queries"`
	Hits         int `json:"cache_hits"`
	Misses       int `json:"cache_misses"`
	Size         int `json:"cache_size"`
	MaxSize      int `json:"max_cache_size"`

	// SemanticMatching reports whether similarity scoring uses embeddings
	// (false means token-overlap degraded mode).
	SemanticMatching bool `json:"semantic_matching_enabled"`
}

// HitRate returns hits / total queries, or 0 before any query.
func (s CacheStats) HitRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.TotalQueries)
}
