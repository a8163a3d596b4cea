package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for one analyzer process.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"52428800"` // 50MB in bytes

	// A web analysis runs the whole pipeline inside one request.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30m"`

	// Output
	OutputDir string `env:"OUTPUT_DIR" envDefault:"output"`

	// LLM
	LLMProvider   string        `env:"LLM_PROVIDER" envDefault:"openai"` // "openai", "openrouter" or "gemini"
	LLMModel      string        `env:"LLM_MODEL" envDefault:"gpt-4o"`
	LLMBaseURL    string        `env:"LLM_BASE_URL"`
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenRouterKey string        `env:"OPENROUTER_API_KEY"`
	GoogleKey     string        `env:"GOOGLE_API_KEY"`
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"5m"` // 0 disables the per-request deadline

	// Expansion falls back to the main provider/model when unset.
	ExpansionProvider string `env:"EXPANSION_PROVIDER"`
	ExpansionModel    string `env:"EXPANSION_MODEL"`

	// Figures
	FigureWorkers int  `env:"FIGURE_WORKERS" envDefault:"0"` // 0 picks the default pool size
	ExpandFigures bool `env:"EXPAND_FIGURES" envDefault:"true"`

	// Events
	NATSURL string `env:"NATS_URL"` // empty logs progress instead of publishing

	// Web sessions
	SessionProvider string        `env:"SESSION_PROVIDER" envDefault:"memory"` // "memory" or "redis"
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// APIKey returns the key configured for the named provider.
func (c Config) APIKey(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIKey
	case "openrouter":
		return c.OpenRouterKey
	case "gemini":
		return c.GoogleKey
	default:
		return ""
	}
}
