package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	TokenSize128 = 16
	TokenSize256 = 32
)

// GenerateToken returns size random bytes encoded as unpadded base64url.
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

// FingerprintToken returns the base64url SHA-256 of a token. Registries key on
// the fingerprint so raw session ids never reach shared storage.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
