// Package cli implements the advisor command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/campusware/advisor/internal/adapters/driven/config/file"
	yamlcorpus "github.com/campusware/advisor/internal/adapters/driven/corpus/yaml"
	ollamaembed "github.com/campusware/advisor/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/campusware/advisor/internal/adapters/driven/embedding/openai"
	geminillm "github.com/campusware/advisor/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/campusware/advisor/internal/adapters/driven/llm/ollama"
	"github.com/campusware/advisor/internal/adapters/driven/session"
	"github.com/campusware/advisor/internal/adapters/driven/storage/memory"
	"github.com/campusware/advisor/internal/adapters/driven/storage/sqlite"
	"github.com/campusware/advisor/internal/core/ports/driven"
	"github.com/campusware/advisor/internal/core/ports/driving"
	"github.com/campusware/advisor/internal/core/services"
	"github.com/campusware/advisor/internal/logger"
)

var (
	verboseFlag bool
	cfgPathFlag string
)

// Services wired once in initServices and shared by all commands. Tests
// inject fakes here directly.
var (
	cfg *configfile.Config

	programIndex     *services.ProgramIndex
	programCatalog   driving.ProgramCatalog
	searchService    driving.ProgramSearch
	assistantService driving.Assistant
	cacheAdmin       driving.CacheAdmin

	retrievalService *services.RetrievalService
	responseCache    *services.ResponseCache
	convContext      *services.ConversationContext
	llmService       driven.LLMService
	corpusLoader     *yamlcorpus.Loader
	sessionStore     driven.SessionStore
)

var rootCmd = &cobra.Command{
	Use:   "advisor",
	Short: "University programme advisor",
	Long: `Advisor answers questions about a university's degree programmes.

Programme records are loaded from a YAML corpus, matched to questions by
embedding similarity and handed to an LLM for answer generation. Repeated
and near-identical questions are served from a response cache.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfgPathFlag, "config", "", "path to config file (default ~/.advisor/config.toml)")
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	logger.Close() //nolint:errcheck
	if err != nil {
		os.Exit(1)
	}
}

// initServices loads configuration and wires the service graph. Tests that
// preassign the services (and cfg) skip the wiring entirely.
func initServices(cmd *cobra.Command, _ []string) error {
	if assistantService != nil || cfg != nil {
		return nil
	}
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	cfgPath := cfgPathFlag
	if cfgPath == "" {
		var err error
		cfgPath, err = configfile.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
	}

	var err error
	cfg, err = configfile.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := logger.Setup(verboseFlag, cfg.LogFile); err != nil {
		// Keep going with stderr-only logging.
		logger.Warn("logger setup: %v", err)
	}

	for _, dir := range []string{cfg.DataDir, cfg.SessionsDir, cfg.CacheDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	embedder := buildEmbedder()
	llmService = buildLLM()

	corpusLoader = yamlcorpus.NewLoader(cfg.DataDir)
	programs, err := corpusLoader.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	programIndex = services.NewProgramIndex(embedder)
	if err := programIndex.Build(cmd.Context(), programs); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	if programIndex.Degraded() {
		logger.Warn("embedding service unavailable, retrieval degraded to substring matching")
	}
	programCatalog = programIndex

	retrievalService = services.NewRetrievalService(programIndex, cfg.Retrieval.MinScore)
	searchService = retrievalService

	if cfg.Cache.Enabled {
		var store driven.CacheStore
		if cfg.Cache.Persist {
			sqlStore, err := sqlite.NewCacheStore(cfg.CacheDir)
			if err != nil {
				return fmt.Errorf("opening cache store: %w", err)
			}
			store = sqlStore
		} else {
			store = memory.NewCacheStore()
		}

		responseCache = services.NewResponseCache(store, embedder, services.CacheConfig{
			MaxSize:             cfg.Cache.MaxSize,
			DefaultTTL:          cfg.Cache.TTLSeconds,
			SimilarityThreshold: cfg.Cache.SimilarityThreshold,
			SemanticMatching:    cfg.Cache.SemanticMatching,
		})
		if err := responseCache.Hydrate(cmd.Context()); err != nil {
			logger.Warn("cache hydration: %v", err)
		}
	}

	sessionStore, err = session.NewFileStore(cfg.SessionsDir)
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}

	convContext = services.NewConversationContext(cfg.Conversation.MaxExchanges)
	assistant := services.NewAssistantService(
		retrievalService,
		responseCache,
		llmService,
		convContext,
		cfg.Retrieval.MaxResults,
	)
	assistantService = assistant
	cacheAdmin = assistant

	return nil
}

// buildEmbedder returns the configured embedding service, or nil when the
// provider is "none" or unknown. A nil embedder puts retrieval and semantic
// cache matching into degraded mode instead of failing.
func buildEmbedder() driven.EmbeddingService {
	switch cfg.Embedding.Provider {
	case "ollama":
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
	case "openai":
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
		if err != nil {
			logger.Warn("openai embedding unavailable: %v", err)
			return nil
		}
		return svc
	case "none":
		return nil
	default:
		logger.Warn("unknown embedding provider %q, running degraded", cfg.Embedding.Provider)
		return nil
	}
}

// buildLLM returns the configured generation service, or nil when no provider
// is usable. A nil service makes every uncached answer a fallback apology.
func buildLLM() driven.LLMService {
	switch cfg.LLM.Provider {
	case "gemini":
		svc, err := geminillm.NewLLMService(geminillm.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Institution: cfg.LLM.Institution,
		})
		if err != nil {
			logger.Warn("gemini unavailable: %v", err)
			return nil
		}
		return svc
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Institution: cfg.LLM.Institution,
		})
	default:
		logger.Warn("unknown llm provider %q, answers will fall back", cfg.LLM.Provider)
		return nil
	}
}
