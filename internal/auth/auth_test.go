package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisio-ai/decisio/internal/config"
	"github.com/decisio-ai/decisio/internal/triage"
)

func TestGenerateKey(t *testing.T) {
	live := GenerateKey(false)
	test := GenerateKey(true)

	assert.True(t, strings.HasPrefix(live, "dk_live_"))
	assert.True(t, strings.HasPrefix(test, "dk_test_"))
	assert.True(t, ValidKeyFormat(live))
	assert.True(t, ValidKeyFormat(test))
	assert.NotEqual(t, GenerateKey(false), GenerateKey(false))
}

func TestValidKeyFormat(t *testing.T) {
	assert.False(t, ValidKeyFormat(""))
	assert.False(t, ValidKeyFormat("sk-abcdef"))
	assert.False(t, ValidKeyFormat("dk_live_short"))
	assert.True(t, ValidKeyFormat("dk_live_"+strings.Repeat("a", 32)))
}

func TestHashKeyStable(t *testing.T) {
	key := "dk_live_" + strings.Repeat("a", 32)
	assert.Equal(t, HashKey(key), HashKey(key))
	assert.Len(t, HashKey(key), 64)
}

func TestNewFromConfigAndLookup(t *testing.T) {
	rawKey := GenerateKey(false)
	hashedKey := GenerateKey(false)

	cfg := &config.Config{
		Accounts: []config.AccountConfig{
			{ID: "acme", Tier: "enterprise", APIKeys: []string{rawKey}},
			{ID: "solo", Tier: "free", APIKeys: []string{"sha256:" + HashKey(hashedKey)}},
		},
	}

	a, err := NewFromConfig(cfg)
	require.NoError(t, err)

	acct, ok := a.Lookup(rawKey)
	require.True(t, ok)
	assert.Equal(t, "acme", acct.ID)
	assert.Equal(t, triage.TierEnterprise, acct.Tier)

	// Digest entries in the config resolve against the raw key presented.
	acct, ok = a.Lookup(hashedKey)
	require.True(t, ok)
	assert.Equal(t, "solo", acct.ID)
	assert.Equal(t, triage.TierFree, acct.Tier)

	_, ok = a.Lookup(GenerateKey(false))
	assert.False(t, ok, "unknown key must not resolve")

	_, ok = a.Lookup("not-a-key")
	assert.False(t, ok, "malformed token is rejected before lookup")
}

func TestNewFromConfigEmptyTierDefaultsToFree(t *testing.T) {
	key := GenerateKey(true)
	a, err := NewFromConfig(&config.Config{
		Accounts: []config.AccountConfig{{ID: "trial", APIKeys: []string{key}}},
	})
	require.NoError(t, err)

	acct, ok := a.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, triage.TierFree, acct.Tier)
}

func TestNewFromConfigRejections(t *testing.T) {
	key := GenerateKey(false)

	tests := []struct {
		name     string
		accounts []config.AccountConfig
	}{
		{"empty id", []config.AccountConfig{{Tier: "free", APIKeys: []string{key}}}},
		{"unknown tier", []config.AccountConfig{{ID: "a", Tier: "platinum", APIKeys: []string{key}}}},
		{"malformed key entry", []config.AccountConfig{{ID: "a", Tier: "free", APIKeys: []string{"hello"}}}},
		{"short digest", []config.AccountConfig{{ID: "a", Tier: "free", APIKeys: []string{"sha256:abcd"}}}},
		{"duplicate key across accounts", []config.AccountConfig{
			{ID: "a", Tier: "free", APIKeys: []string{key}},
			{ID: "b", Tier: "pro", APIKeys: []string{key}},
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFromConfig(&config.Config{Accounts: tc.accounts})
			assert.Error(t, err)
		})
	}
}

func TestNilAuthLookup(t *testing.T) {
	var a *Auth
	_, ok := a.Lookup(GenerateKey(false))
	assert.False(t, ok)
}
