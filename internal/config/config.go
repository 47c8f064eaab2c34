package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Warehouse WarehouseConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port               string        `envconfig:"SERVER_PORT" default:"8000"`
	Host               string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout        time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout       time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// LLMConfig selects the hosted model. Provider is one of "openai", "azure" or
// "gemini"; gemini goes through Google's OpenAI-compatible endpoint.
type LLMConfig struct {
	Provider    string  `envconfig:"LLM_PROVIDER" default:"gemini"`
	APIKey      string  `envconfig:"LLM_API_KEY" default:"API_KEY"`
	Endpoint    string  `envconfig:"LLM_ENDPOINT"`
	Model       string  `envconfig:"LLM_MODEL"`
	APIVersion  string  `envconfig:"LLM_API_VERSION" default:"2024-06-01"`
	MaxTokens   int64   `envconfig:"LLM_MAX_TOKENS" default:"2048"`
	Temperature float64 `envconfig:"LLM_TEMPERATURE" default:"0.2"`
}

// WarehouseConfig holds the gold layer connection parameters. The defaults are
// placeholders and will not connect anywhere; DB_DRIVER=fixtures serves canned
// tables instead.
type WarehouseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlserver"`
	Server   string `envconfig:"DB_SERVER" default:"SERVER"`
	Database string `envconfig:"DB_NAME" default:"DATABASE"`
	Username string `envconfig:"DB_USER" default:"USERID"`
	Password string `envconfig:"DB_PASSWORD" default:"PASSWORD"`
	DSN      string `envconfig:"DB_DSN"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	// Provider specific key variables win over the placeholder default.
	if os.Getenv("LLM_API_KEY") == "" {
		for _, name := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "AZURE_OPENAI_API_KEY"} {
			if v := os.Getenv(name); v != "" {
				cfg.LLM.APIKey = v
				break
			}
		}
	}

	slog.Info("configuration loaded successfully", "llm_provider", cfg.LLM.Provider, "db_driver", cfg.Warehouse.Driver)
	return &cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c LogConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
