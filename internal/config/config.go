package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir  string `yaml:"data_dir"`
	Backend  string `yaml:"backend"`
	Addr     string `yaml:"addr"`
	LogLevel string `yaml:"log_level"`

	Planner   PlannerConfig   `yaml:"planner"`
	LLM       LLMConfig       `yaml:"llm"`
	Notion    NotionConfig    `yaml:"notion"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

type PlannerConfig struct {
	// Mode is "local" (keyword classifier) or "remote" (LLM)
	Mode                  string        `yaml:"mode"`
	DeepAnalysisThreshold int           `yaml:"deep_analysis_threshold"`
	Dedupe                bool          `yaml:"dedupe"`
	ThinkingDelay         time.Duration `yaml:"thinking_delay"`
	CacheSize             int           `yaml:"cache_size"`
}

type LLMConfig struct {
	Provider string  `yaml:"provider"`
	Model    string  `yaml:"model"`
	RPS      float64 `yaml:"rps"`
	// API keys are read from the environment only
	OpenAIKey    string `yaml:"-"`
	AnthropicKey string `yaml:"-"`
	GeminiKey    string `yaml:"-"`
}

// Key returns the environment API key for the configured provider
func (c LLMConfig) Key() string {
	switch c.Provider {
	case "anthropic":
		return c.AnthropicKey
	case "gemini":
		return c.GeminiKey
	}
	return c.OpenAIKey
}

type NotionConfig struct {
	SyncSchedule string `yaml:"sync_schedule"`
}

type RateLimitConfig struct {
	RPS   int `yaml:"rps"`
	Burst int `yaml:"burst"`
}

// DefaultPath is ~/.thoughts/config.yaml
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".thoughts", "config.yaml")
}

// Default returns the built-in configuration
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:  filepath.Join(home, ".thoughts"),
		Backend:  "sqlite",
		Addr:     ":8080",
		LogLevel: "info",
		Planner: PlannerConfig{
			Mode:                  "local",
			DeepAnalysisThreshold: 80,
			CacheSize:             128,
		},
		LLM: LLMConfig{
			Provider: "openai",
		},
		Notion: NotionConfig{
			SyncSchedule: "@hourly",
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
	}
}

// Load reads configuration from the YAML file at path, then the environment.
// A missing file is not an error; an empty path means DefaultPath.
func Load(path string) (*Config, error) {
	// Load .env file if exists
	godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("THOUGHTS_DATA_DIR", c.DataDir)
	c.Backend = getEnv("THOUGHTS_BACKEND", c.Backend)
	c.Addr = getEnv("THOUGHTS_ADDR", c.Addr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Planner.Mode = getEnv("PLANNER_MODE", c.Planner.Mode)
	c.Planner.DeepAnalysisThreshold = getEnvAsInt("PLANNER_DEEP_ANALYSIS_THRESHOLD", c.Planner.DeepAnalysisThreshold)
	c.Planner.Dedupe = getEnvAsBool("PLANNER_DEDUPE", c.Planner.Dedupe)
	c.Planner.ThinkingDelay = getEnvAsDuration("PLANNER_THINKING_DELAY", c.Planner.ThinkingDelay)

	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.RPS = getEnvAsFloat("LLM_RPS", c.LLM.RPS)
	c.LLM.OpenAIKey = getEnv("OPENAI_API_KEY", c.LLM.OpenAIKey)
	c.LLM.AnthropicKey = getEnv("ANTHROPIC_API_KEY", c.LLM.AnthropicKey)
	c.LLM.GeminiKey = getEnv("GEMINI_API_KEY", c.LLM.GeminiKey)

	c.Notion.SyncSchedule = getEnv("NOTION_SYNC_SCHEDULE", c.Notion.SyncSchedule)

	c.RateLimit.RPS = getEnvAsInt("RATE_LIMIT_REQUESTS_PER_SECOND", c.RateLimit.RPS)
	c.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", c.RateLimit.Burst)
}

// Validate rejects unknown enum values and negative limits
func (c *Config) Validate() error {
	switch c.Backend {
	case "sqlite", "badger", "memory":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	switch c.Planner.Mode {
	case "local", "remote":
	default:
		return fmt.Errorf("unknown planner mode %q", c.Planner.Mode)
	}

	switch c.LLM.Provider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.Planner.DeepAnalysisThreshold < 0 {
		return fmt.Errorf("planner.deep_analysis_threshold must not be negative")
	}
	if c.Planner.ThinkingDelay < 0 {
		return fmt.Errorf("planner.thinking_delay must not be negative")
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("ratelimit values must not be negative")
	}
	if c.LLM.RPS < 0 {
		return fmt.Errorf("llm.rps must not be negative")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
