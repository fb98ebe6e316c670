// Package config loads and validates the Decisio YAML configuration.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full Decisio configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Advisor   AdvisorConfig   `yaml:"advisor"`
	Rules     RulesConfig     `yaml:"rules"`
	Limits    LimitsConfig    `yaml:"limits"`
	Accounts  []AccountConfig `yaml:"accounts"`
	Audit     AuditConfig     `yaml:"audit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ServerConfig struct {
	Addr                 string   `yaml:"addr"` // HTTP listen address, e.g. ":8080"
	ReadHeaderTimeoutSec int      `yaml:"read_header_timeout_seconds"`
	ReadTimeoutSec       int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSec      int      `yaml:"write_timeout_seconds"`
	IdleTimeoutSec       int      `yaml:"idle_timeout_seconds"`
	MaxRequestBodyBytes  int64    `yaml:"max_request_body_bytes"`
	AllowedOrigins       []string `yaml:"allowed_origins"` // CORS; "*" allows any
}

type AdvisorConfig struct {
	Type             string `yaml:"type"`     // openai | fake
	BaseURL          string `yaml:"base_url"` // e.g. "https://api.openai.com/v1"
	APIKeyEnv        string `yaml:"api_key_env"`
	Model            string `yaml:"model"`
	TimeoutSec       int    `yaml:"timeout_seconds"`
	MaxResponseBytes int64  `yaml:"max_response_bytes"`
}

// RulesConfig extends the built-in keyword sets. Entries are matched
// case-insensitively as substrings, same as the defaults.
type RulesConfig struct {
	ExtraLegalKeywords  []string `yaml:"extra_legal_keywords"`
	ExtraThreatKeywords []string `yaml:"extra_threat_keywords"`
	ExtraSpamKeywords   []string `yaml:"extra_spam_keywords"`
}

type LimitsConfig struct {
	Backend string                   `yaml:"backend"` // memory | redis
	Redis   RedisConfig              `yaml:"redis"`
	Tiers   map[string]TierLimitConf `yaml:"tiers"` // optional per-tier overrides
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TierLimitConf struct {
	PerMinute int `yaml:"per_minute"`
	PerDay    int `yaml:"per_day"`
}

// AccountConfig binds API keys to a customer account and its tier. Keys may
// be raw or pre-hashed with a "sha256:" prefix.
type AccountConfig struct {
	ID      string   `yaml:"id"`
	Tier    string   `yaml:"tier"`
	APIKeys []string `yaml:"api_keys"`
}

type AuditConfig struct {
	Enabled    bool   `yaml:"enabled"`
	FilePath   string `yaml:"file_path"`   // JSONL audit trail, empty disables the file sink
	WebhookURL string `yaml:"webhook_url"` // empty disables the webhook sink
	QueueSize  int    `yaml:"queue_size"`
	Workers    int    `yaml:"workers"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
	JSON  bool   `yaml:"json"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadHeaderTimeoutSec <= 0 {
		cfg.Server.ReadHeaderTimeoutSec = 5
	}
	if cfg.Server.ReadTimeoutSec <= 0 {
		cfg.Server.ReadTimeoutSec = 30
	}
	if cfg.Server.WriteTimeoutSec <= 0 {
		cfg.Server.WriteTimeoutSec = 30
	}
	if cfg.Server.IdleTimeoutSec <= 0 {
		cfg.Server.IdleTimeoutSec = 60
	}
	if cfg.Server.MaxRequestBodyBytes <= 0 {
		cfg.Server.MaxRequestBodyBytes = 64 * 1024
	}

	if cfg.Advisor.Type == "" {
		cfg.Advisor.Type = "openai"
	}
	if cfg.Advisor.APIKeyEnv == "" {
		cfg.Advisor.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Advisor.TimeoutSec <= 0 {
		cfg.Advisor.TimeoutSec = 10
	}

	if cfg.Limits.Backend == "" {
		cfg.Limits.Backend = "memory"
	}

	if cfg.Audit.QueueSize <= 0 {
		cfg.Audit.QueueSize = 1000
	}
	if cfg.Audit.Workers <= 0 {
		cfg.Audit.Workers = 1
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// AdvisorTimeout returns the advisory call timeout as a duration.
func (c *Config) AdvisorTimeout() time.Duration {
	return time.Duration(c.Advisor.TimeoutSec) * time.Second
}
