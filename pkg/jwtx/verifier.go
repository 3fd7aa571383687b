package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates EdDSA tokens against a set of public keys by kid.
type Verifier struct {
	keys   map[string]ed25519.PublicKey
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewVerifier returns a Verifier trusting the signer's key.
func NewVerifier(s *Signer, issuer string) *Verifier {
	return &Verifier{
		keys:   map[string]ed25519.PublicKey{s.KID(): s.Public()},
		issuer: issuer,
		leeway: 30 * time.Second,
		now:    time.Now,
	}
}

// Verify parses token, checks its signature then its issuer and lifetime.
func (v *Verifier) Verify(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("jwtx: missing kid")
		}
		pub, ok := v.keys[kid]
		if !ok {
			return nil, fmt.Errorf("jwtx: unknown kid %q", kid)
		}
		return pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(v.now().UTC(), v.leeway); err != nil {
		return nil, err
	}
	return claims, nil
}
