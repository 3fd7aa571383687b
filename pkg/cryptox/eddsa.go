package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// GenerateEd25519Key generates a new Ed25519 private key encoded as a PKCS8
// PEM block.
func GenerateEd25519Key() ([]byte, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to marshal PKCS8 key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// ParseEd25519Key decodes a PKCS8 PEM block produced by GenerateEd25519Key.
func ParseEd25519Key(pemBytes []byte) (ed25519.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("cryptox: no PKCS8 PEM block found")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to parse PKCS8 key: %w", err)
	}

	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("cryptox: expected Ed25519 key, got %T", parsed)
	}
	return key, nil
}

// LoadOrCreateEd25519Key reads the signing key at path, creating it on first
// start.
func LoadOrCreateEd25519Key(path string) (ed25519.PrivateKey, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return ParseEd25519Key(data)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("cryptox: failed to read signing key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	pemBytes, err := GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, pemBytes, 0600); err != nil {
		return nil, fmt.Errorf("cryptox: failed to persist signing key: %w", err)
	}
	return ParseEd25519Key(pemBytes)
}
