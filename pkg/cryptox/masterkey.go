package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
)

// ErrNoMasterKey is returned when no key material is configured and an
// ephemeral key is not allowed.
var ErrNoMasterKey = errors.New("cryptox: no master key configured")

// MasterKeySource describes where the platform master key comes from.
type MasterKeySource struct {
	// Path to a file holding key material. Takes precedence over Value.
	Path string

	// Value is raw key material, usually from an environment variable.
	Value string

	// AllowEphemeral generates a throwaway key when nothing is configured.
	// Anything encrypted under it is unreadable after a restart.
	AllowEphemeral bool
}

// LoadMasterKey loads key material and derives a 32-byte AES-256 key from it
// using SHA-256.
func LoadMasterKey(src MasterKeySource) ([]byte, error) {
	var keyMaterial []byte

	switch {
	case src.Path != "":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("cryptox: failed to read master key file: %w", err)
		}
		keyMaterial = data
	case src.Value != "":
		keyMaterial = []byte(src.Value)
	case src.AllowEphemeral:
		keyMaterial = make([]byte, AES256KeySize)
		if _, err := rand.Read(keyMaterial); err != nil {
			return nil, fmt.Errorf("cryptox: failed to generate ephemeral master key: %w", err)
		}
	default:
		return nil, ErrNoMasterKey
	}

	if len(keyMaterial) == 0 {
		return nil, ErrNoMasterKey
	}

	hash := sha256.Sum256(keyMaterial)
	return hash[:], nil
}
