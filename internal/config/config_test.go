package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "local", cfg.Planner.Mode)
	assert.Equal(t, 80, cfg.Planner.DeepAnalysisThreshold)
	assert.False(t, cfg.Planner.Dedupe)
	assert.Equal(t, "@hourly", cfg.Notion.SyncSchedule)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: badger
addr: ":9000"
planner:
  mode: remote
  deep_analysis_threshold: 50
  dedupe: true
llm:
  provider: anthropic
  model: claude-test
`), 0644))

	t.Setenv("THOUGHTS_ADDR", ":9100")
	t.Setenv("PLANNER_THINKING_DELAY", "1500ms")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "badger", cfg.Backend)
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, "remote", cfg.Planner.Mode)
	assert.Equal(t, 50, cfg.Planner.DeepAnalysisThreshold)
	assert.True(t, cfg.Planner.Dedupe)
	assert.Equal(t, 1500*time.Millisecond, cfg.Planner.ThinkingDelay)
	assert.Equal(t, "claude-test", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.Key())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Backend = "postgres" }},
		{"mode", func(c *Config) { c.Planner.Mode = "magic" }},
		{"provider", func(c *Config) { c.LLM.Provider = "mistral" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"threshold", func(c *Config) { c.Planner.DeepAnalysisThreshold = -1 }},
		{"rate limit", func(c *Config) { c.RateLimit.Burst = -1 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CFG_INT", "nope")
	t.Setenv("CFG_BOOL", "true")

	assert.Equal(t, 7, getEnvAsInt("CFG_INT", 7))
	assert.True(t, getEnvAsBool("CFG_BOOL", false))
	assert.Equal(t, "x", getEnv("CFG_UNSET", "x"))
}
