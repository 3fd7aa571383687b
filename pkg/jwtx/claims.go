package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of a signed-in user's token.
const DefaultAccessTokenTTL = time.Hour

var (
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrInvalid     = errors.New("jwtx: invalid token")
)

// Claims identify a user acting inside one tenant.
type Claims struct {
	jwt.RegisteredClaims

	OrgID      string `json:"org_id"`
	MerchantID string `json:"merchant_id"`
	ProfileID  string `json:"profile_id,omitempty"`
	RoleID     string `json:"role_id"`

	// Authentication methods: "pwd", "otp", "recovery_code".
	AMR []string `json:"amr,omitempty"`
}

// Tenant is the scope a token is issued for.
type Tenant struct {
	UserID     string
	OrgID      string
	MerchantID string
	ProfileID  string
	RoleID     string
}

// NewClaims builds claims for tenant valid from now for ttl.
func NewClaims(tenant Tenant, amr []string, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   tenant.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		OrgID:      tenant.OrgID,
		MerchantID: tenant.MerchantID,
		ProfileID:  tenant.ProfileID,
		RoleID:     tenant.RoleID,
		AMR:        amr,
	}
}

func newJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Tenant returns the tenant the claims were issued for.
func (c *Claims) Tenant() Tenant {
	return Tenant{
		UserID:     c.Subject,
		OrgID:      c.OrgID,
		MerchantID: c.MerchantID,
		ProfileID:  c.ProfileID,
		RoleID:     c.RoleID,
	}
}

// ValidateIssuer checks the iss claim. An empty expectation is not enforced.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry checks exp and nbf against now, allowing leeway for skew.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
