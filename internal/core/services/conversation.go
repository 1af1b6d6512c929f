package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/logger"
)

// DefaultMaxExchanges bounds the conversation context to the most recent
// exchanges (one exchange = one user turn + one assistant turn).
const DefaultMaxExchanges = 5

// ConversationContext is a bounded, ordered transcript of turns for one
// conversation thread. A single caller per thread is assumed; the mutex only
// guards against transcript reads racing an append from the orchestration.
type ConversationContext struct {
	mu              sync.Mutex
	turns           []domain.Turn
	currentLanguage string
	maxExchanges    int
}

// NewConversationContext creates an empty context holding at most
// 2*maxExchanges turns. maxExchanges <= 0 selects DefaultMaxExchanges.
func NewConversationContext(maxExchanges int) *ConversationContext {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &ConversationContext{maxExchanges: maxExchanges, currentLanguage: "en"}
}

// Append adds a turn and updates the current language, then prunes to the
// configured bound.
func (c *ConversationContext) Append(role, content, language string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, domain.Turn{
		Role:      role,
		Content:   content,
		Language:  language,
		Timestamp: time.Now(),
	})
	c.currentLanguage = language
	c.pruneLocked(c.maxExchanges)
}

// Prune drops the oldest turns until at most 2*maxExchanges remain. The
// surviving turns keep their original relative order.
func (c *ConversationContext) Prune(maxExchanges int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked(maxExchanges)
}

func (c *ConversationContext) pruneLocked(maxExchanges int) {
	limit := maxExchanges * 2
	if limit <= 0 || len(c.turns) <= limit {
		return
	}
	c.turns = c.turns[len(c.turns)-limit:]
	logger.Debug("pruned conversation context to %d turns", len(c.turns))
}

// PromptContext renders the most recent nExchanges exchanges as alternating
// "Role: content" lines, oldest first, for the generation prompt.
func (c *ConversationContext) PromptContext(nExchanges int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	limit := nExchanges * 2
	turns := c.turns
	if limit >= 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", capitalize(t.Role), t.Content)
	}
	return b.String()
}

// Turns returns a copy of the transcript, oldest first, for external
// persistence.
func (c *ConversationContext) Turns() []domain.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns currently held.
func (c *ConversationContext) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// CurrentLanguage returns the language of the most recent turn.
func (c *ConversationContext) CurrentLanguage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLanguage
}

// Reset clears all turns for a new conversation thread.
func (c *ConversationContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
	logger.Info("conversation context reset")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
