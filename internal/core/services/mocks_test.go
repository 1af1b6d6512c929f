package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/campusware/advisor/internal/core/domain"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts are matched against keyword-keyed vectors so fixtures get stable,
// distinct embeddings without reproducing the full text projection.
type mockEmbeddingService struct {
	vectors  map[string][]float32 // keyword -> vector, first match wins
	fallback []float32
	embedErr error
	pingErr  error

	mu         sync.Mutex
	embedCalls int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()

	lower := strings.ToLower(text)
	keys := make([]string, 0, len(m.vectors))
	for k := range m.vectors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(lower, k) {
			return m.vectors[k], nil
		}
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return []float32{0, 0, 1}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = vec
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	answer      string
	generateErr error

	lastQuery         string
	lastLanguage      string
	lastRecordContext string
	lastHistory       string
	generateCalls     int
}

func (m *mockLLMService) Generate(_ context.Context, query, language, recordContext, history string) (string, error) {
	m.generateCalls++
	m.lastQuery = query
	m.lastLanguage = language
	m.lastRecordContext = recordContext
	m.lastHistory = history
	if m.generateErr != nil {
		return "", m.generateErr
	}
	if m.answer != "" {
		return m.answer, nil
	}
	return "generated answer for: " + query, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockCacheStore implements driven.CacheStore for testing.
type mockCacheStore struct {
	mu      sync.Mutex
	entries map[string]*domain.CacheEntry

	getErr error
	setErr error

	setCalls    int
	deleteCalls int
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{entries: make(map[string]*domain.CacheEntry)}
}

func (m *mockCacheStore) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *mockCacheStore) Get(_ context.Context, fingerprint string) (*domain.CacheEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[fingerprint]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (m *mockCacheStore) Set(_ context.Context, entry *domain.CacheEntry) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	copied := *entry
	m.entries[entry.Fingerprint] = &copied
	return nil
}

func (m *mockCacheStore) Delete(_ context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	delete(m.entries, fingerprint)
	return nil
}

func (m *mockCacheStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]*domain.CacheEntry)
	return nil
}

func (m *mockCacheStore) Close() error {
	return nil
}

// --- Test fixtures ---

func testPrograms() []domain.Program {
	return []domain.Program{
		{
			Code:                  "bsc_ai",
			Title:                 "Artificial Intelligence (B.Sc.)",
			DegreeLevel:           domain.LevelBachelor,
			Faculty:               "Applied Computer Science",
			LanguageOfInstruction: "en",
			DurationSemesters:     7,
			ECTSTotal:             210,
		},
		{
			Code:                  "msc_cyber",
			Title:                 "Cyber Security (M.Eng.)",
			DegreeLevel:           domain.LevelMaster,
			Faculty:               "Applied Computer Science",
			LanguageOfInstruction: "en",
			DurationSemesters:     3,
			ECTSTotal:             90,
		},
		{
			Code:                  "ba_bwl",
			Title:                 "Betriebswirtschaft (B.A.)",
			DegreeLevel:           domain.LevelBachelor,
			Faculty:               "Business Administration",
			LanguageOfInstruction: "de",
			DurationSemesters:     7,
			ECTSTotal:             210,
		},
	}
}

// testIndexEmbedder gives each fixture programme a distinct axis-aligned
// vector. Queries containing a programme keyword map onto that axis.
func testIndexEmbedder() *mockEmbeddingService {
	return &mockEmbeddingService{
		vectors: map[string][]float32{
			"artificial intelligence": {1, 0, 0},
			"cyber security":          {0, 1, 0},
			"betriebswirtschaft":      {0, 0, 1},
		},
		fallback: []float32{1, 1, 1},
	}
}
