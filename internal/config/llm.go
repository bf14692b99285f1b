package config

import "time"

// LLMConfig configures the language model client.
type LLMConfig struct {
	// Provider selects the backend: "gemini" (REST, default) or "genai"
	// (official SDK).
	Provider string `yaml:"provider"`

	// APIKey authenticates against the Gemini API. Usually supplied via
	// the GEMINI_API_KEY environment variable rather than the file.
	APIKey string `yaml:"api_key"`

	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultLLMConfig returns sensible Gemini defaults.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		BaseURL:  "https://generativelanguage.googleapis.com/v1beta",
		Timeout:  2 * time.Minute,
	}
}
