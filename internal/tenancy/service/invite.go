package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/userrole"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

const DefaultInviteTTL = 7 * 24 * time.Hour

type InviteService struct {
	Store   store.Store
	Builder *domain.Builder
	Hasher  domain.PasswordHasher
	Roles   *RoleService
	TTL     time.Duration
	Now     func() time.Time
}

type InviteResult struct {
	Invite domain.Invite
	User   domain.User
	Role   domain.UserRole

	// Token is the opaque invite token. Only its fingerprint is stored.
	Token string

	// TemporaryPassword is set for new users when invite email is disabled.
	TemporaryPassword *string
}

// InviteUser attaches a role in the inviter's scope to a new or existing user
// and mints a single-use invite token. The role is only active once the
// invite is accepted, unless email delivery is disabled.
func (s *InviteService) InviteUser(ctx context.Context, inviter domain.Actor, req domain.InviteUserRequest) (InviteResult, error) {
	log := slogx.FromContext(ctx)
	now := nowOr(s.Now)

	role, err := s.Roles.GetRole(ctx, inviter.OrgID, req.RoleID)
	if err != nil {
		return InviteResult{}, err
	}
	if role.IsInternal {
		return InviteResult{}, fmt.Errorf("%w: internal roles cannot be invited", domain.ErrUnknownRole)
	}

	nu, err := s.Builder.InviteUser(req, inviter)
	if err != nil {
		return InviteResult{}, err
	}

	status := domain.UserStatusInvitationSent
	if !s.Builder.EmailEnabled {
		status = domain.UserStatusActive
	}

	token, err := cryptox.PrefixedToken("inv", cryptox.TokenSize256)
	if err != nil {
		return InviteResult{}, domain.Internal("generate invite token", err)
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}

	var res InviteResult
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, created, err := s.findOrCreateUser(ctx, tx, nu, now)
		if err != nil {
			return err
		}
		if created && nu.Password != nil {
			pw := nu.Password.Secret()
			res.TemporaryPassword = &pw
		}

		ur, err := userrole.ForEntity(ctx, tx.UserRoles(),
			userrole.New(user.ID, role.ID, status, now).CreatedBy(inviter.UserID),
			role.Scope,
			userrole.Scope{OrgID: inviter.OrgID, MerchantID: inviter.MerchantID, ProfileID: inviter.ProfileID},
		)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return fmt.Errorf("%w: user already holds a role here", domain.ErrUserExists)
			}
			if errors.Is(err, domain.ErrUnknownRole) || errors.Is(err, domain.ErrInternal) {
				return err
			}
			return domain.Internal("insert user role", err)
		}

		inv := domain.Invite{
			ID:         idx.Prefixed("inv"),
			TokenHash:  cryptox.FingerprintToken(token),
			UserID:     user.ID,
			OrgID:      inviter.OrgID,
			MerchantID: inviter.MerchantID,
			RoleID:     role.ID,
			CreatedBy:  inviter.UserID,
			ExpiresAt:  now.Add(ttl),
			CreatedAt:  now,
		}
		if err := tx.Invites().InsertInvite(ctx, inv); err != nil {
			return domain.Internal("insert invite", err)
		}

		res.Invite, res.User, res.Role, res.Token = inv, user, ur, token
		return nil
	})
	if err != nil {
		return InviteResult{}, err
	}

	log.Info("user invited",
		slog.String("invite_id", res.Invite.ID),
		slog.String("user_id", res.User.ID),
		slog.String("role_id", role.ID),
		slog.String("created_by", inviter.UserID),
	)
	return res, nil
}

func (s *InviteService) findOrCreateUser(ctx context.Context, tx store.Tx, nu domain.NewUser, now time.Time) (domain.User, bool, error) {
	existing, err := tx.Users().GetUserByEmail(ctx, nu.Email.String())
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, false, domain.Internal("fetch user by email", err)
	}

	user, err := nu.Record(s.Hasher, now)
	if err != nil {
		return domain.User{}, false, err
	}
	if err := tx.Users().InsertUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, false, domain.ErrUserExists
		}
		return domain.User{}, false, domain.Internal("insert user", err)
	}
	return user, true, nil
}

// AcceptInvite consumes token. Users without a password must supply one;
// the password is ignored for users that already have one. Accepting proves
// the email address, so the user is marked verified.
func (s *InviteService) AcceptInvite(ctx context.Context, token, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)
	now := nowOr(s.Now)

	inv, err := s.Store.Invites().GetInviteByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.ErrInviteInvalid
		}
		return domain.User{}, domain.Internal("fetch invite", err)
	}
	if inv.Used || !now.Before(inv.ExpiresAt) {
		return domain.User{}, domain.ErrInviteInvalid
	}

	user, err := s.Store.Users().GetUserByID(ctx, inv.UserID)
	if err != nil {
		return domain.User{}, domain.Internal("fetch invited user", err)
	}

	var newHash *string
	if user.PasswordHash == nil {
		pw, err := domain.NewPassword(password)
		if err != nil {
			return domain.User{}, err
		}
		h, err := s.Hasher.Hash(pw.Secret())
		if err != nil {
			return domain.User{}, domain.Internal("hash password", err)
		}
		newHash = &h
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invites().MarkInviteUsed(ctx, inv.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrInviteInvalid
			}
			return domain.Internal("mark invite used", err)
		}
		if newHash != nil {
			if err := tx.Users().UpdatePassword(ctx, user.ID, *newHash, now); err != nil {
				return domain.Internal("set password", err)
			}
		}
		if err := tx.Users().MarkVerified(ctx, user.ID, now); err != nil {
			return domain.Internal("mark verified", err)
		}
		if _, err := tx.UserRoles().ActivateForUser(ctx, user.ID, inv.OrgID, user.ID, now); err != nil {
			return domain.Internal("activate roles", err)
		}
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("invite accepted", slog.String("invite_id", inv.ID), slog.String("user_id", user.ID))
	return s.Store.Users().GetUserByID(ctx, user.ID)
}
