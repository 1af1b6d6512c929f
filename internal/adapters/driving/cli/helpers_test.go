package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	configfile "github.com/campusware/advisor/internal/adapters/driven/config/file"
	yamlcorpus "github.com/campusware/advisor/internal/adapters/driven/corpus/yaml"
	"github.com/campusware/advisor/internal/adapters/driven/session"
	"github.com/campusware/advisor/internal/adapters/driven/storage/memory"
	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/services"
)

// stubLLM is a canned generation collaborator for command tests.
type stubLLM struct {
	answer string
	err    error
	calls  int
}

func (s *stubLLM) Generate(_ context.Context, query, _, _, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.answer != "" {
		return s.answer, nil
	}
	return "stub answer for: " + query, nil
}

func (s *stubLLM) ModelName() string { return "stub" }

func (s *stubLLM) Ping(_ context.Context) error { return nil }

func (s *stubLLM) Close() error { return nil }

// setupTestServices wires the package-level services against an in-memory
// stack: a degraded substring index over three programmes, a memory-backed
// response cache and a canned LLM. Returns a cleanup that unwires everything.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	programs := []domain.Program{
		{Code: "bsc_ai", Title: "Artificial Intelligence (B.Sc.)", DegreeLevel: "bachelor", LanguageOfInstruction: "en", DurationSemesters: 6},
		{Code: "msc_cyber", Title: "Cyber Security (M.Eng.)", DegreeLevel: "master", LanguageOfInstruction: "en", DurationSemesters: 4},
		{Code: "ba_bwl", Title: "Betriebswirtschaft (B.A.)", DegreeLevel: "bachelor", LanguageOfInstruction: "de", DurationSemesters: 7},
	}

	index := services.NewProgramIndex(nil)
	require.NoError(t, index.Build(context.Background(), programs))

	retrieval := services.NewRetrievalService(index, 0.1)
	cache := services.NewResponseCache(memory.NewCacheStore(), nil, services.CacheConfig{})
	cc := services.NewConversationContext(5)
	llm := &stubLLM{}
	assistant := services.NewAssistantService(retrieval, cache, llm, cc, 3)

	store, err := session.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg = &configfile.Config{Language: "en"}
	cfg.Retrieval.MinScore = 0.1
	cfg.Retrieval.MaxResults = 3

	programIndex = index
	programCatalog = index
	searchService = retrieval
	assistantService = assistant
	cacheAdmin = assistant
	retrievalService = retrieval
	responseCache = cache
	convContext = cc
	llmService = llm
	corpusLoader = yamlcorpus.NewLoader(t.TempDir())
	sessionStore = store

	return func() {
		cfg = nil
		programIndex = nil
		programCatalog = nil
		searchService = nil
		assistantService = nil
		cacheAdmin = nil
		retrievalService = nil
		responseCache = nil
		convContext = nil
		llmService = nil
		corpusLoader = nil
		sessionStore = nil

		askLang = ""
		askNoCache = false
		askJSON = false
		askSession = ""
		searchLimit = 5
		searchJSON = false
		cacheStatsAsJSON = false
		cachePurgeMaxAge = 3600
		programsLevel = ""
		programsLanguage = ""
		programsJSON = false
	}
}

// executeCommand runs the root command with args and captures its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
