package domain

import "time"

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single utterance in a conversation. The core exposes turns as
// plain records; transcript persistence is an external concern.
type Turn struct {
	// Role is RoleUser or RoleAssistant.
	Role string `json:"role"`

	// Content is the utterance text.
	Content string `json:"content"`

	// Language is the language tag of the utterance.
	Language string `json:"language"`

	// Timestamp is when the turn was appended.
	Timestamp time.Time `json:"timestamp"`
}

// AnswerSource says how an answer was produced.
type AnswerSource string

// Answer sources, in the order the orchestration tries them.
const (
	// SourceCacheExact means the answer came from an exact fingerprint hit.
	SourceCacheExact AnswerSource = "cache_exact"

	// SourceCacheSemantic means the answer came from a semantic near-match.
	SourceCacheSemantic AnswerSource = "cache_semantic"

	// SourceGenerated means the generation collaborator produced the answer.
	SourceGenerated AnswerSource = "generated"

	// SourceFallback means generation failed and a canned apology was used.
	SourceFallback AnswerSource = "fallback"
)

// Answer is the orchestration result for one query.
type Answer struct {
	// Text is the answer handed back to the caller.
	Text string `json:"text"`

	// Source says whether the text was cached, freshly generated, or fallback.
	Source AnswerSource `json:"source"`

	// Programs are the records retrieval selected (empty on cache hits).
	Programs []Program `json:"programs,omitempty"`

	// Elapsed is the wall-clock time spent answering.
	Elapsed time.Duration `json:"elapsed"`
}
