// Package llm provides the language model clients used to interpret user
// requests. Two backends exist: a direct REST client for the Gemini
// generateContent endpoint and one built on the official genai SDK. Both
// satisfy Client, and the rest of the program never knows which is in use.
package llm

import (
	"context"
	"errors"
	"fmt"

	"quartermaster/internal/config"
)

// Client is the completion interface the session layer depends on.
type Client interface {
	// Complete sends a prompt and returns the completion.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a prompt with a system instruction.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrNoAPIKey reports a missing credential at client construction.
var ErrNoAPIKey = errors.New("API key not configured")

// New constructs the client selected by cfg.Provider.
func New(cfg config.LLMConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set %s or llm.api_key", ErrNoAPIKey, config.EnvAPIKey)
	}

	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiClient(cfg), nil
	case "genai":
		return NewGenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
