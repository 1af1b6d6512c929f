// Package memory provides in-memory implementations of driven port
// interfaces, used for testing and for cache-persistence-free operation.
package memory

import (
	"context"
	"sync"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is an in-memory implementation of driven.CacheStore. Entries do
// not survive restarts.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.CacheEntry
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		entries: make(map[string]*domain.CacheEntry),
	}
}

// Keys enumerates all stored fingerprints.
func (s *CacheStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

// Get retrieves an entry by fingerprint. Returns domain.ErrNotFound if the
// fingerprint is absent.
func (s *CacheStore) Get(_ context.Context, fingerprint string) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[fingerprint]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

// Set stores or replaces an entry under its fingerprint.
func (s *CacheStore) Set(_ context.Context, entry *domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	s.entries[entry.Fingerprint] = &copied
	return nil
}

// Delete removes an entry. Deleting an absent fingerprint is not an error.
func (s *CacheStore) Delete(_ context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, fingerprint)
	return nil
}

// Clear removes every entry.
func (s *CacheStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*domain.CacheEntry)
	return nil
}

// Close releases resources. A no-op for the in-memory store.
func (s *CacheStore) Close() error {
	return nil
}
