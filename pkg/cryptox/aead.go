package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// AES256KeySize is the size of keys accepted by Encrypt and Decrypt.
const AES256KeySize = 32

var (
	ErrInvalidKeySize     = errors.New("cryptox: key must be 32 bytes")
	ErrCiphertextTooShort = errors.New("cryptox: ciphertext too short")
	ErrDecrypt            = errors.New("cryptox: decryption failed")
)

// GenerateAES256Key returns 32 random bytes suitable for Encrypt.
func GenerateAES256Key() ([]byte, error) {
	key := make([]byte, AES256KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext with AES-256-GCM under key.
// The output format is: [12-byte nonce][encrypted data][16-byte auth tag]
func Encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate nonce: %w", err)
	}

	// gcm.Seal appends the ciphertext and auth tag to nonce
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens data produced by Encrypt. A wrong key or any tampering
// yields ErrDecrypt.
func Decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize+gcm.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	nonce, sealed := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AES256KeySize {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to create GCM: %w", err)
	}
	return gcm, nil
}
