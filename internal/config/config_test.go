package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "decisio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int64(64*1024), cfg.Server.MaxRequestBodyBytes)
	assert.Equal(t, "openai", cfg.Advisor.Type)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Advisor.APIKeyEnv)
	assert.Equal(t, "memory", cfg.Limits.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, Validate(cfg))
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
advisor:
  type: fake
accounts:
  - id: acme
    tier: enterprise
    api_keys:
      - "sha256:0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
rules:
  extra_legal_keywords: ["small claims"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "fake", cfg.Advisor.Type)
	assert.Equal(t, 10, cfg.Advisor.TimeoutSec, "unset fields fall back to defaults")
	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "acme", cfg.Accounts[0].ID)
	assert.Equal(t, []string{"small claims"}, cfg.Rules.ExtraLegalKeywords)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"empty addr", func(cfg *Config) { cfg.Server.Addr = "  " }},
		{"unknown advisor type", func(cfg *Config) { cfg.Advisor.Type = "oracle" }},
		{"openai without key env", func(cfg *Config) { cfg.Advisor.APIKeyEnv = "" }},
		{"bad advisor url", func(cfg *Config) { cfg.Advisor.BaseURL = "not a url" }},
		{"non-http advisor url", func(cfg *Config) { cfg.Advisor.BaseURL = "ftp://example.com" }},
		{"unknown limits backend", func(cfg *Config) { cfg.Limits.Backend = "etcd" }},
		{"redis without addr", func(cfg *Config) { cfg.Limits.Backend = "redis" }},
		{"unknown limit tier", func(cfg *Config) {
			cfg.Limits.Tiers = map[string]TierLimitConf{"platinum": {PerMinute: 1}}
		}},
		{"negative limit", func(cfg *Config) {
			cfg.Limits.Tiers = map[string]TierLimitConf{"free": {PerMinute: -1}}
		}},
		{"account without id", func(cfg *Config) {
			cfg.Accounts = []AccountConfig{{Tier: "free"}}
		}},
		{"account with unknown tier", func(cfg *Config) {
			cfg.Accounts = []AccountConfig{{ID: "a", Tier: "platinum"}}
		}},
		{"audit enabled without sink", func(cfg *Config) { cfg.Audit.Enabled = true }},
		{"audit bad webhook", func(cfg *Config) {
			cfg.Audit.Enabled = true
			cfg.Audit.WebhookURL = "://nope"
		}},
		{"telemetry enabled without endpoint", func(cfg *Config) { cfg.Telemetry.Enabled = true }},
		{"telemetry bad protocol", func(cfg *Config) {
			cfg.Telemetry.Enabled = true
			cfg.Telemetry.Endpoint = "localhost:4317"
			cfg.Telemetry.Protocol = "udp"
		}},
		{"unknown log level", func(cfg *Config) { cfg.Logging.Level = "verbose" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestAdvisorTimeout(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "10s", cfg.AdvisorTimeout().String())
}
