package driven

import "context"

// LLMService is the generation collaborator. It is invoked only on a cache
// miss; the core supplies the retrieved programme context and the rendered
// conversation history and caches whatever comes back.
//
// Implementations may include:
//   - Google Gemini (API)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces an answer for the query in the given language.
	// recordContext is the formatted relevant-programme block; history is the
	// rendered recent conversation ("Role: content" lines), possibly empty.
	Generate(ctx context.Context, query, language, recordContext, history string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
