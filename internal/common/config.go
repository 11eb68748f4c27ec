package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/ternarybob/moneypulse/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Logging     LoggingConfig  `toml:"logging"`
	Badger      BadgerConfig   `toml:"badger"`
	LLM         LLMConfig      `toml:"llm"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Scoring     ScoringConfig  `toml:"scoring"`
	Progress    ProgressConfig `toml:"progress"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default "15:04:05"
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
	SyncWrites     bool   `toml:"sync_writes"`      // fsync every commit; progress deposits survive a crash
}

// LLMProvider represents the text generation provider
type LLMProvider string

const (
	// LLMProviderNone disables outbound calls; every result is computed locally
	LLMProviderNone LLMProvider = "none"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig selects the provider used for advice text
type LLMConfig struct {
	Provider LLMProvider `toml:"provider"` // "none", "gemini" or "claude" (default: "none")
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`       // default: "gemini-2.5-flash"
	Thinking    string  `toml:"thinking"`    // MINIMAL, LOW, MEDIUM, HIGH or empty
	RateLimit   string  `toml:"rate_limit"`  // Minimum gap between calls (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"` // default: 0.4
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`       // default: "claude-3-5-haiku-latest"
	MaxTokens   int     `toml:"max_tokens"`  // default: 1024
	RateLimit   string  `toml:"rate_limit"`  // Minimum gap between calls (default: "1s")
	Temperature float32 `toml:"temperature"` // default: 0.4
}

// AnalysisConfig controls the response orchestrator
type AnalysisConfig struct {
	TimeoutMs         int    `toml:"timeout_ms"`          // Outbound call budget in milliseconds (default: 15000)
	RequestTimeout    string `toml:"request_timeout"`     // Whole-request deadline for the HTTP surface (default: "20s")
	MaxLineLength     int    `toml:"max_line_length"`     // Headline/advice cap in characters (default: 140)
	HistoryLimit      int    `toml:"history_limit"`       // Stored analyses kept, newest first (default: 100)
	PreferLocalScores bool   `toml:"prefer_local_scores"` // Ignore remote state/health and keep local values
}

// ScoringConfig selects the parameter set used by the classifier and scorer
type ScoringConfig struct {
	ParameterVersion string `toml:"parameter_version"` // Registry version (default: "v1")
	ParamsFile       string `toml:"params_file"`       // Optional TOML/YAML parameter set, overrides the version
}

// ProgressConfig controls the deposit tracker
type ProgressConfig struct {
	DailyGoal        float64 `toml:"daily_goal"`        // default: 10
	RolloverEnabled  bool    `toml:"rollover_enabled"`  // Run the scheduled day rollover (default: true)
	RolloverSchedule string  `toml:"rollover_schedule"` // Cron expression (default: "5 0 * * *")
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Badger: BadgerConfig{
			Path: "./data",
		},
		LLM: LLMConfig{
			Provider: LLMProviderNone,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			RateLimit:   "4s",
			Temperature: 0.4,
		},
		Claude: ClaudeConfig{
			Model:       "claude-3-5-haiku-latest",
			MaxTokens:   1024,
			RateLimit:   "1s",
			Temperature: 0.4,
		},
		Analysis: AnalysisConfig{
			TimeoutMs:      15000,
			RequestTimeout: "20s",
			MaxLineLength:  140,
			HistoryLimit:   100,
		},
		Scoring: ScoringConfig{
			ParameterVersion: "v1",
		},
		Progress: ProgressConfig{
			DailyGoal:        10,
			RolloverEnabled:  true,
			RolloverSchedule: "5 0 * * *",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. CLI flags are applied afterwards by the caller.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Existing variables win and missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// applyEnvOverrides applies MONEYPULSE_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MONEYPULSE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server
	if port := os.Getenv("MONEYPULSE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("MONEYPULSE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging
	if level := os.Getenv("MONEYPULSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("MONEYPULSE_LOG_OUTPUT"); output != "" {
		var outputs []string
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Badger
	if path := os.Getenv("MONEYPULSE_BADGER_PATH"); path != "" {
		config.Badger.Path = path
	}
	if reset := os.Getenv("MONEYPULSE_BADGER_RESET_ON_STARTUP"); reset != "" {
		if r, err := strconv.ParseBool(reset); err == nil {
			config.Badger.ResetOnStartup = r
		}
	}
	if sync := os.Getenv("MONEYPULSE_BADGER_SYNC_WRITES"); sync != "" {
		if v, err := strconv.ParseBool(sync); err == nil {
			config.Badger.SyncWrites = v
		}
	}

	// Provider
	if provider := os.Getenv("MONEYPULSE_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(strings.ToLower(strings.TrimSpace(provider)))
	}

	// Gemini
	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("MONEYPULSE_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey // MONEYPULSE_ prefix takes priority
	}
	if model := os.Getenv("MONEYPULSE_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if thinking := os.Getenv("MONEYPULSE_GEMINI_THINKING"); thinking != "" {
		config.Gemini.Thinking = thinking
	}
	if rateLimit := os.Getenv("MONEYPULSE_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}
	if temperature := os.Getenv("MONEYPULSE_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("MONEYPULSE_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("MONEYPULSE_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("MONEYPULSE_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if rateLimit := os.Getenv("MONEYPULSE_CLAUDE_RATE_LIMIT"); rateLimit != "" {
		config.Claude.RateLimit = rateLimit
	}
	if temperature := os.Getenv("MONEYPULSE_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// Analysis
	if timeout := os.Getenv("MONEYPULSE_ANALYSIS_TIMEOUT_MS"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Analysis.TimeoutMs = t
		}
	}
	if timeout := os.Getenv("MONEYPULSE_ANALYSIS_REQUEST_TIMEOUT"); timeout != "" {
		config.Analysis.RequestTimeout = timeout
	}
	if limit := os.Getenv("MONEYPULSE_ANALYSIS_HISTORY_LIMIT"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			config.Analysis.HistoryLimit = l
		}
	}
	if prefer := os.Getenv("MONEYPULSE_ANALYSIS_PREFER_LOCAL_SCORES"); prefer != "" {
		if p, err := strconv.ParseBool(prefer); err == nil {
			config.Analysis.PreferLocalScores = p
		}
	}

	// Scoring
	if version := os.Getenv("MONEYPULSE_SCORING_PARAMETER_VERSION"); version != "" {
		config.Scoring.ParameterVersion = version
	}
	if file := os.Getenv("MONEYPULSE_SCORING_PARAMS_FILE"); file != "" {
		config.Scoring.ParamsFile = file
	}

	// Progress
	if goal := os.Getenv("MONEYPULSE_PROGRESS_DAILY_GOAL"); goal != "" {
		if g, err := strconv.ParseFloat(goal, 64); err == nil {
			config.Progress.DailyGoal = g
		}
	}
	if enabled := os.Getenv("MONEYPULSE_PROGRESS_ROLLOVER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Progress.RolloverEnabled = e
		}
	}
	if schedule := os.Getenv("MONEYPULSE_PROGRESS_ROLLOVER_SCHEDULE"); schedule != "" {
		config.Progress.RolloverSchedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case LLMProviderNone, LLMProviderGemini, LLMProviderClaude:
	case "":
		c.LLM.Provider = LLMProviderNone
	default:
		return fmt.Errorf("unknown llm provider %q (expected none, gemini or claude)", c.LLM.Provider)
	}

	if c.Analysis.TimeoutMs <= 0 {
		return fmt.Errorf("analysis.timeout_ms must be positive, got %d", c.Analysis.TimeoutMs)
	}
	if c.Analysis.MaxLineLength < 20 {
		return fmt.Errorf("analysis.max_line_length must be at least 20, got %d", c.Analysis.MaxLineLength)
	}
	if c.Progress.DailyGoal < 0 {
		return fmt.Errorf("progress.daily_goal cannot be negative")
	}
	if c.Progress.RolloverEnabled {
		if err := ValidateSchedule(c.Progress.RolloverSchedule); err != nil {
			return fmt.Errorf("progress.rollover_schedule: %w", err)
		}
	}

	return nil
}

// AnalysisTimeout returns the outbound call budget
func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.Analysis.TimeoutMs) * time.Millisecond
}

// RequestTimeout returns the whole-request deadline used by the HTTP surface.
// It is never shorter than the outbound budget.
func (c *Config) RequestTimeout() time.Duration {
	d := ParseDuration(c.Analysis.RequestTimeout, 20*time.Second)
	if floor := c.AnalysisTimeout(); d < floor {
		d = floor + 5*time.Second
	}
	return d
}

// ParseDuration parses a duration string, returning fallback when empty or invalid
func ParseDuration(s string, fallback time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// ResolveAPIKey resolves an API key by name.
// Resolution order: environment variables → KV store → config fallback → error
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"MONEYPULSE_GEMINI_API_KEY", "GOOGLE_API_KEY"},
		"anthropic_api_key": {"MONEYPULSE_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// ValidateSchedule validates a 5-field cron expression and ensures a minimum 5-minute interval
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}
	if strings.HasPrefix(minuteField, "*/") {
		interval, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/"))
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
