package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"card_assistant/internal/logger"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. CARDBOT_STORE_BACKEND
const EnvPrefix = "CARDBOT"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the structure of config.yaml
type Config struct {
	Log      logger.Config  `yaml:"log" envconfig:"LOG"`
	Dialogue DialogueConfig `yaml:"dialogue" envconfig:"DIALOGUE"`
	Store    StoreConfig    `yaml:"store" envconfig:"STORE"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
}

// DialogueConfig tunes the orchestrator
type DialogueConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold" envconfig:"CONFIDENCE_THRESHOLD"`
	ContextTTLSeconds   int     `yaml:"context_ttl_seconds" envconfig:"CONTEXT_TTL_SECONDS"`
	DemoUserID          string  `yaml:"demo_user_id" envconfig:"DEMO_USER_ID"`
	AccountsFile        string  `yaml:"accounts_file" envconfig:"ACCOUNTS_FILE"` // optional YAML account fixtures
}

// ContextTTL is how long a pending follow-up survives without a reply
func (d DialogueConfig) ContextTTL() time.Duration {
	return time.Duration(d.ContextTTLSeconds) * time.Second
}

// StoreConfig selects the context store backend
type StoreConfig struct {
	Backend   string `yaml:"backend" envconfig:"BACKEND"` // memory | redis
	RedisURL  string `yaml:"redis_url" envconfig:"REDIS_URL"`
	KeyPrefix string `yaml:"key_prefix" envconfig:"KEY_PREFIX"`
}

// MetricsConfig holds the optional Prometheus listener address
type MetricsConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

// Default returns the built-in configuration used when no file is present
func Default() *Config {
	return &Config{
		Log: logger.Config{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			FilePath:   "logs/card_assistant.log",
			TimeFormat: "rfc3339",
		},
		Dialogue: DialogueConfig{
			ConfidenceThreshold: 0.4,
			ContextTTLSeconds:   300,
			DemoUserID:          "user_001",
		},
		Store: StoreConfig{
			Backend:   "memory",
			KeyPrefix: "context:",
		},
	}
}

// LoadConfig reads the YAML file (if any) on top of the defaults, then applies
// .env and CARDBOT_* environment overrides
func LoadConfig(filepath string) (*Config, error) {
	config := Default()

	if filepath != "" {
		data, err := os.ReadFile(filepath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("error parsing YAML: %w", err)
			}
		case os.IsNotExist(err):
			logger.Warn().Str("path", filepath).Msg("config file not found, using defaults")
		default:
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("failed to load .env file")
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges and backend requirements
func (c *Config) Validate() error {
	if c.Dialogue.ConfidenceThreshold < 0 || c.Dialogue.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence_threshold must be within [0,1], got %v", ErrInvalidConfig, c.Dialogue.ConfidenceThreshold)
	}
	if c.Dialogue.ContextTTLSeconds <= 0 {
		return fmt.Errorf("%w: context_ttl_seconds must be positive", ErrInvalidConfig)
	}
	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: redis backend requires redis_url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}
