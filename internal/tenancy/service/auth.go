package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

type AuthService struct {
	Store    store.Store
	Hasher   domain.PasswordHasher
	Tokens   TokenSigner
	Issuer   string
	TokenTTL time.Duration

	// AllowedUnverifiedDays is the grace period before email verification
	// becomes mandatory.
	AllowedUnverifiedDays int

	// PasswordValidityDays is how long a password stays valid before a
	// rotation is requested.
	PasswordValidityDays int

	Now func() time.Time
}

type SignInResult struct {
	Token                  string
	User                   domain.User
	Role                   domain.UserRole
	VerificationDaysLeft   *int
	PasswordRotateRequired bool
}

// SignIn checks the password, the verification grace period and resolves the
// role the session acts under.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	log := slogx.FromContext(ctx)
	now := nowOr(s.Now)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SignInResult{}, domain.ErrInvalidCredentials
		}
		return SignInResult{}, domain.Internal("fetch user by email", err)
	}

	if err := u.ComparePassword(s.Hasher, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			log.Warn("sign in with invalid credentials", slog.String("user_id", u.ID))
		}
		return SignInResult{}, err
	}

	daysLeft, err := u.VerificationDaysLeft(now, s.AllowedUnverifiedDays)
	if err != nil {
		return SignInResult{}, err
	}

	roles, err := s.Store.UserRoles().ListByUser(ctx, u.ID, domain.RoleVersionV1)
	if err != nil {
		return SignInResult{}, domain.Internal("list user roles", err)
	}
	role, err := u.PreferredOrActiveRole(roles)
	if err != nil {
		return SignInResult{}, err
	}

	token, err := s.Issue(u, role)
	if err != nil {
		return SignInResult{}, err
	}

	log.Info("user signed in", slog.String("user_id", u.ID), slog.String("org_id", role.OrgID))
	return SignInResult{
		Token:                  token,
		User:                   u,
		Role:                   role,
		VerificationDaysLeft:   daysLeft,
		PasswordRotateRequired: u.IsPasswordRotateRequired(now, s.PasswordValidityDays),
	}, nil
}

// Issue signs a session token for u acting under role.
func (s *AuthService) Issue(u domain.User, role domain.UserRole) (string, error) {
	tenant := jwtx.Tenant{UserID: u.ID, OrgID: role.OrgID, RoleID: role.RoleID}
	if role.MerchantID != nil {
		tenant.MerchantID = *role.MerchantID
	}
	if role.ProfileID != nil {
		tenant.ProfileID = *role.ProfileID
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}
	token, err := s.Tokens.Sign(jwtx.NewClaims(tenant, []string{"pwd"}, s.Issuer, ttl, nowOr(s.Now)))
	if err != nil {
		return "", domain.Internal("sign token", err)
	}
	return token, nil
}
