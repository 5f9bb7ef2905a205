package llm

import (
	"context"
	"errors"
)

// ErrNoAPIKey is returned by providers that were configured without credentials.
var ErrNoAPIKey = errors.New("api key not configured")

// LLM represents a generic interface for one-shot text generation.
type LLM interface {
	// Name identifies the upstream service in error replies ("OpenAI", "Gemini").
	Name() string

	// Query sends text with the given system persona and returns the reply.
	Query(ctx context.Context, persona, text string) (string, error)
}
