package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes of entropy, before encoding.
const (
	// TokenSize128 encodes to 22 base64url characters.
	TokenSize128 = 16
	// TokenSize256 encodes to 43 base64url characters.
	TokenSize256 = 32
)

// GenerateToken returns size random bytes from crypto/rand encoded as
// unpadded base64url, so the result is safe to drop into a URL as-is.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// WellFormedToken reports whether token could have been produced by
// GenerateToken(size). Lets callers reject junk before touching the store.
func WellFormedToken(token string, size int) bool {
	if len(token) != base64.RawURLEncoding.EncodedLen(size) {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(token)
	return err == nil
}

// FingerprintToken returns the base64url SHA-256 of token. Only fingerprints
// are persisted; the raw token is handed to the caller once and never stored.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
