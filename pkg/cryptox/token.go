package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	TokenSize128 = 16 // 22 chars base64url
	TokenSize256 = 32 // 43 chars base64url
)

// GenerateToken returns size random bytes as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// PrefixedToken returns "<prefix>_<token>", the shape used for publishable
// keys and invite tokens.
func PrefixedToken(prefix string, size int) (string, error) {
	tok, err := GenerateToken(size)
	if err != nil {
		return "", err
	}
	return prefix + "_" + tok, nil
}

// FingerprintToken returns the base64url SHA-256 of token. Invite tokens
// are stored by fingerprint only.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
