package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

const (
	livePrefix = "dk_live_"
	testPrefix = "dk_test_"

	// randomPartMinLen is the minimum length of the random segment; shorter
	// tokens are rejected before lookup.
	randomPartMinLen = 32
)

// GenerateKey returns a new API key. Test keys get the dk_test_ prefix so
// sandbox traffic is distinguishable at a glance.
func GenerateKey(test bool) string {
	buf := make([]byte, 32)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	random := base64.RawURLEncoding.EncodeToString(buf)
	if test {
		return testPrefix + random
	}
	return livePrefix + random
}

// HashKey returns the SHA-256 hex digest of a raw key. Only digests are
// stored; raw keys are visible exactly once, at generation.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ValidKeyFormat reports whether the token looks like a Decisio API key.
func ValidKeyFormat(key string) bool {
	var random string
	switch {
	case strings.HasPrefix(key, livePrefix):
		random = key[len(livePrefix):]
	case strings.HasPrefix(key, testPrefix):
		random = key[len(testPrefix):]
	default:
		return false
	}
	return len(random) >= randomPartMinLen
}
