package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}

	if err := validateAdvisorConfig(cfg.Advisor); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Limits.Backend)) {
	case "memory":
	case "redis":
		if strings.TrimSpace(cfg.Limits.Redis.Addr) == "" {
			return errors.New("limits.backend is redis but limits.redis.addr is empty")
		}
	default:
		return fmt.Errorf("limits.backend must be memory or redis, got %q", cfg.Limits.Backend)
	}

	for name, t := range cfg.Limits.Tiers {
		switch strings.ToLower(name) {
		case "free", "pro", "enterprise":
		default:
			return fmt.Errorf("limits.tiers has unknown tier %q", name)
		}
		if t.PerMinute < 0 || t.PerDay < 0 {
			return fmt.Errorf("limits.tiers.%s must not be negative", name)
		}
	}

	for _, a := range cfg.Accounts {
		if strings.TrimSpace(a.ID) == "" {
			return errors.New("account id must be set")
		}
		switch strings.ToLower(strings.TrimSpace(a.Tier)) {
		case "", "free", "pro", "enterprise":
		default:
			return fmt.Errorf("account %q has unknown tier %q", a.ID, a.Tier)
		}
	}

	if err := validateAuditConfig(cfg.Audit); err != nil {
		return err
	}

	if err := validateTelemetryConfig(cfg.Telemetry); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}

	return nil
}

func validateAdvisorConfig(a AdvisorConfig) error {
	switch strings.ToLower(strings.TrimSpace(a.Type)) {
	case "openai":
		if strings.TrimSpace(a.APIKeyEnv) == "" {
			return errors.New("advisor.api_key_env must be set for the openai advisor")
		}
	case "fake":
	default:
		return fmt.Errorf("advisor.type must be openai or fake, got %q", a.Type)
	}

	if a.BaseURL != "" {
		u, err := url.Parse(a.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("advisor.base_url is not a valid URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("advisor.base_url must be http or https")
		}
	}
	return nil
}

func validateAuditConfig(a AuditConfig) error {
	if !a.Enabled {
		return nil
	}
	if strings.TrimSpace(a.FilePath) == "" && strings.TrimSpace(a.WebhookURL) == "" {
		return errors.New("audit enabled but no file_path or webhook_url configured")
	}
	if a.WebhookURL != "" {
		u, err := url.Parse(a.WebhookURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("audit.webhook_url is not a valid URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("audit.webhook_url must be http or https")
		}
	}
	return nil
}

func validateTelemetryConfig(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	if t.Protocol != "" {
		switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
		case "grpc", "http":
		default:
			return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
		}
	}
	return nil
}
