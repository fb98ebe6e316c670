// Package auth maps API keys to customer accounts and their tiers. Keys are
// compared by SHA-256 digest so config files can hold digests instead of
// raw keys.
package auth

import (
	"fmt"
	"strings"

	"github.com/decisio-ai/decisio/internal/config"
	"github.com/decisio-ai/decisio/internal/triage"
)

// Account is the runtime representation of a customer account.
type Account struct {
	ID   string
	Tier triage.Tier
}

// Auth holds the key digest to account mapping. Read-only after
// construction.
type Auth struct {
	keyHashToAccount map[string]Account
}

// NewFromConfig builds an Auth instance from the loaded config. Config
// entries may be raw keys or "sha256:<hex>" digests.
func NewFromConfig(cfg *config.Config) (*Auth, error) {
	m := make(map[string]Account)

	for _, a := range cfg.Accounts {
		if a.ID == "" {
			return nil, fmt.Errorf("account with empty id in config")
		}
		tier, err := triage.ParseTier(a.Tier)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", a.ID, err)
		}
		acct := Account{
			ID:   a.ID,
			Tier: tier,
		}
		for _, key := range a.APIKeys {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			hash, err := configKeyDigest(key)
			if err != nil {
				return nil, fmt.Errorf("account %q: %w", a.ID, err)
			}
			if _, exists := m[hash]; exists {
				return nil, fmt.Errorf("api key for account %q is assigned to multiple accounts", a.ID)
			}
			m[hash] = acct
		}
	}

	return &Auth{
		keyHashToAccount: m,
	}, nil
}

// configKeyDigest normalizes a config key entry to its SHA-256 hex digest.
func configKeyDigest(entry string) (string, error) {
	if digest, ok := strings.CutPrefix(entry, "sha256:"); ok {
		digest = strings.ToLower(strings.TrimSpace(digest))
		if len(digest) != 64 {
			return "", fmt.Errorf("sha256 key digest must be 64 hex characters")
		}
		return digest, nil
	}
	if !ValidKeyFormat(entry) {
		return "", fmt.Errorf("api key %q is not a valid key or sha256 digest", entry[:min(len(entry), 8)]+"...")
	}
	return HashKey(entry), nil
}

// Lookup returns the account for a presented API key, if any. The key's
// format is checked before hashing so malformed tokens never hit the map.
func (a *Auth) Lookup(apiKey string) (Account, bool) {
	if a == nil || !ValidKeyFormat(apiKey) {
		return Account{}, false
	}
	acct, ok := a.keyHashToAccount[HashKey(apiKey)]
	return acct, ok
}
