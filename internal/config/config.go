// Package config loads pipeline configuration from an optional YAML file
// and the environment. Credentials travel inside the returned Config
// value; nothing here is kept as package-level state.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GeminiConfig configures the model boundary.
type GeminiConfig struct {
	APIKey          string  `yaml:"api_key"`
	Model           string  `yaml:"model"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"`
}

// Config is the full pipeline configuration.
type Config struct {
	Gemini GeminiConfig `yaml:"gemini"`
	Output OutputConfig `yaml:"output"`
}

// Load reads the YAML file at configPath (optional, "" skips it), loads a
// .env file if present, and resolves GEMINI_API_KEY from the environment
// when the file did not set one. Missing keys are not an error here; the
// caller decides whether a model call is actually needed.
func Load(configPath string) (*Config, error) {
	// Missing .env is fine; explicit config and real env still apply.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	applyDefaults(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:           "gemini-1.5-flash",
			Temperature:     0.1,
			MaxOutputTokens: 8192,
		},
		Output: OutputConfig{
			Dir:     "analysis_results",
			Formats: []string{"markdown", "json"},
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-1.5-flash"
	}
	if cfg.Gemini.MaxOutputTokens <= 0 {
		cfg.Gemini.MaxOutputTokens = 8192
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "analysis_results"
	}
	if len(cfg.Output.Formats) == 0 {
		cfg.Output.Formats = []string{"markdown", "json"}
	}
}
