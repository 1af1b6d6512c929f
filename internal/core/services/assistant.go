package services

import (
	"context"
	"fmt"
	"time"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driven"
	"github.com/campusware/advisor/internal/core/ports/driving"
	"github.com/campusware/advisor/internal/logger"
)

// Ensure AssistantService implements the interfaces.
var (
	_ driving.Assistant  = (*AssistantService)(nil)
	_ driving.CacheAdmin = (*AssistantService)(nil)
)

// DefaultMaxRetrieved is how many programmes a generation prompt includes.
const DefaultMaxRetrieved = 3

// Apology texts returned when generation fails. The failed query is never
// cached.
var fallbackAnswers = map[string]string{
	"en": "I apologize, but I'm having trouble generating a response right now. Please try again.",
	"de": "Es tut mir leid, aber ich kann gerade keine Antwort erstellen. Bitte versuchen Sie es erneut.",
}

// AssistantService sequences cache lookup, retrieval, generation, cache write
// and context update for each incoming query. It owns no algorithm of its
// own; it proves the contracts of the services it glues together.
type AssistantService struct {
	retrieval    driving.ProgramSearch
	cache        *ResponseCache // may be nil: caching disabled
	llm          driven.LLMService
	context      *ConversationContext
	maxRetrieved int
}

// NewAssistantService wires the orchestration layer. cache may be nil to
// disable caching; llm may be nil, in which case every miss yields the
// fallback answer.
func NewAssistantService(
	retrieval driving.ProgramSearch,
	cache *ResponseCache,
	llm driven.LLMService,
	convContext *ConversationContext,
	maxRetrieved int,
) *AssistantService {
	if maxRetrieved <= 0 {
		maxRetrieved = DefaultMaxRetrieved
	}
	return &AssistantService{
		retrieval:    retrieval,
		cache:        cache,
		llm:          llm,
		context:      convContext,
		maxRetrieved: maxRetrieved,
	}
}

// Ask answers one query: cached answer if available, otherwise retrieval plus
// generation. Generation failure returns the per-language apology and leaves
// the cache untouched.
func (s *AssistantService) Ask(ctx context.Context, query, language string) (*domain.Answer, error) {
	start := time.Now()
	logger.Section("Query")
	logger.Debug("query=%q language=%s", query, language)

	if s.cache != nil {
		if answer, source, ok := s.cache.Lookup(ctx, query, language); ok {
			s.appendExchange(query, answer, language)
			elapsed := time.Since(start)
			logger.Info("answered from cache in %s", elapsed)
			return &domain.Answer{Text: answer, Source: source, Elapsed: elapsed}, nil
		}
	}

	programs, err := s.retrieval.FindRelevant(ctx, query, s.maxRetrieved)
	if err != nil {
		logger.Warn("retrieval failed, generating without program context: %v", err)
		programs = nil
	}

	text, genErr := s.generate(ctx, query, language, programs)
	if genErr != nil {
		logger.Error("generation failed: %v", genErr)
		return &domain.Answer{
			Text:     fallbackAnswer(language),
			Source:   domain.SourceFallback,
			Programs: programs,
			Elapsed:  time.Since(start),
		}, nil
	}

	if s.cache != nil {
		s.cache.Store(ctx, query, language, text, 0, programCodes(programs))
	}
	s.appendExchange(query, text, language)

	elapsed := time.Since(start)
	logger.Info("generated new response in %s", elapsed)
	return &domain.Answer{
		Text:     text,
		Source:   domain.SourceGenerated,
		Programs: programs,
		Elapsed:  elapsed,
	}, nil
}

// generate invokes the collaborator with the formatted record context and the
// rendered recent conversation.
func (s *AssistantService) generate(ctx context.Context, query, language string, programs []domain.Program) (string, error) {
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	recordContext := domain.FormatProgramContext(programs)
	history := s.context.PromptContext(s.context.maxExchanges)

	text, err := s.llm.Generate(ctx, query, language, recordContext, history)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return text, nil
}

// appendExchange records the user query and the answer as one exchange.
func (s *AssistantService) appendExchange(query, answer, language string) {
	s.context.Append(domain.RoleUser, query, language)
	s.context.Append(domain.RoleAssistant, answer, language)
}

// History returns the conversation transcript, oldest first.
func (s *AssistantService) History() []domain.Turn {
	return s.context.Turns()
}

// ResetConversation clears the conversation context for a new thread.
func (s *AssistantService) ResetConversation() {
	s.context.Reset()
}

// Stats returns the response cache counters. Zero value when caching is
// disabled.
func (s *AssistantService) Stats() domain.CacheStats {
	if s.cache == nil {
		return domain.CacheStats{}
	}
	return s.cache.Stats()
}

// Invalidate removes matching cache entries, see ResponseCache.Invalidate.
func (s *AssistantService) Invalidate(ctx context.Context, pattern string) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Invalidate(ctx, pattern)
}

// PurgeExpired removes cache entries older than maxAge seconds.
func (s *AssistantService) PurgeExpired(ctx context.Context, maxAge int) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.PurgeExpired(ctx, maxAge)
}

func fallbackAnswer(language string) string {
	if text, ok := fallbackAnswers[language]; ok {
		return text
	}
	return fallbackAnswers["en"]
}

func programCodes(programs []domain.Program) []string {
	if len(programs) == 0 {
		return nil
	}
	codes := make([]string, len(programs))
	for i := range programs {
		codes[i] = programs[i].Code
	}
	return codes
}
