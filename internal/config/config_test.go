package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, int32(8192), cfg.Gemini.MaxOutputTokens)
	assert.Equal(t, "analysis_results", cfg.Output.Dir)
	assert.Equal(t, []string{"markdown", "json"}, cfg.Output.Formats)
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
gemini:
  api_key: file-key
  model: gemini-1.5-pro
  temperature: 0.3
output:
  dir: reports
  formats: [markdown, html]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.Gemini.Model)
	assert.InDelta(t, 0.3, cfg.Gemini.Temperature, 0.001)
	assert.Equal(t, "reports", cfg.Output.Dir)
	assert.Equal(t, []string{"markdown", "html"}, cfg.Output.Formats)
	// Unset fields still get defaults.
	assert.Equal(t, int32(8192), cfg.Gemini.MaxOutputTokens)
}

func TestLoadEnvFallbackForAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
}

func TestLoadFileKeyWinsOverEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gemini:\n  api_key: file-key\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("gemini: [unclosed"), 0o644))
		_, err := Load(path)
		require.Error(t, err)
	})
}
