package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownProgram indicates a caller passed a programme code that is not
	// in the index. This is a caller bug, not a retryable condition.
	ErrUnknownProgram = errors.New("unknown program")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the generation collaborator is not
	// configured. Cache hits still work; misses cannot be answered.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrGenerationFailed indicates the generation collaborator returned an
	// error. Nothing is cached for the failed query.
	ErrGenerationFailed = errors.New("generation failed")
)
