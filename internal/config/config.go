// Package config loads and watches the Quartermaster configuration.
// Configuration lives in .quartermaster/config.yaml under the workspace;
// the GEMINI_API_KEY environment variable always overrides the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvAPIKey is the environment variable holding the model API key.
// This is the one required credential (the file key is optional).
const EnvAPIKey = "GEMINI_API_KEY"

// Config is the root configuration.
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Execution ExecutionConfig `yaml:"execution"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Workspace is the directory holding .quartermaster/. Not serialized;
	// set by Load.
	Workspace string `yaml:"-"`
}

// ExecutionConfig controls shell command dispatch.
type ExecutionConfig struct {
	// AllowRawCommands opts in to the confirm-gated execution of model
	// replies that match no directive marker. Off by default: unrecognized
	// replies are rejected, not merely gated behind a click.
	AllowRawCommands bool `yaml:"allow_raw_commands"`

	// CommandTimeout bounds a single shell invocation. A hung external
	// command is killed and reported as a timeout error.
	CommandTimeout time.Duration `yaml:"command_timeout"`
}

// LoggingConfig controls the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// Default returns the configuration used when no file exists.
func Default(workspace string) Config {
	return Config{
		LLM:       DefaultLLMConfig(),
		Execution: ExecutionConfig{CommandTimeout: 2 * time.Minute},
		Logging:   LoggingConfig{Level: "info"},
		Workspace: workspace,
	}
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, ".quartermaster", "config.yaml")
}

// Load reads .quartermaster/config.yaml from the workspace, falling back to
// defaults when the file is absent. The API key env var wins over the file.
func Load(workspace string) (Config, error) {
	cfg := Default(workspace)

	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Workspace = workspace

	if cfg.Execution.CommandTimeout <= 0 {
		cfg.Execution.CommandTimeout = 2 * time.Minute
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultLLMConfig().Model
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = DefaultLLMConfig().BaseURL
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = DefaultLLMConfig().Timeout
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.LLM.APIKey = key
	}
}
