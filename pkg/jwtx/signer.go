package jwtx

import (
	"crypto/ed25519"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs claims with an Ed25519 key.
type Signer struct {
	kid string
	key ed25519.PrivateKey
}

// NewSigner returns a Signer that stamps tokens with kid.
func NewSigner(kid string, key ed25519.PrivateKey) (*Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 private key size")
	}
	return &Signer{kid: kid, key: key}, nil
}

func (s *Signer) KID() string { return s.kid }

// Public returns the verification key matching the signer.
func (s *Signer) Public() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// Sign encodes claims as a compact JWS.
func (s *Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}
