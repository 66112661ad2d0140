package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "intake.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(4096), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "smart", cfg.Resolver.LLMScope)
	assert.Equal(t, 4, cfg.Resolver.LLMConcurrency)
	assert.True(t, cfg.Autofill.Headless)
	assert.Equal(t, 30, cfg.Autofill.NavTimeoutSecs)
	assert.Equal(t, 5, cfg.Autofill.FieldTimeoutSecs)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	doc := `store:
  driver: postgres
  database_url: postgres://localhost/intake
resolver:
  llm_scope: issues
autofill:
  form_url: https://forms.example.test/intake
  headless: false
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(doc), 0o644))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/intake", cfg.Store.DatabaseURL)
	assert.Equal(t, "issues", cfg.Resolver.LLMScope)
	assert.Equal(t, "https://forms.example.test/intake", cfg.Autofill.FormURL)
	assert.False(t, cfg.Autofill.Headless)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INTAKE_STORE_DRIVER", "postgres")
	t.Setenv("INTAKE_ANTHROPIC_KEY", "sk-test")
	t.Setenv("INTAKE_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [broken"), 0o644))
	t.Chdir(dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	t.Run("valid console config", func(t *testing.T) {
		assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	})

	t.Run("bad level", func(t *testing.T) {
		err := InitLogger(LogConfig{Level: "shouty", Format: "json"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log level")
	})
}
