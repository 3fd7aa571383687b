package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpPeriod = 30

// MFAService manages TOTP and recovery codes. TOTP secrets are stored
// encrypted under the user's data key; recovery codes only as hashes.
type MFAService struct {
	Store  store.Store
	Keys   *KeyStoreManager
	Hasher domain.PasswordHasher
	Issuer string // Issuer name shown by authenticator apps
	Now    func() time.Time
}

type TOTPEnrollment struct {
	Secret string
	URL    string
}

// BeginTOTP generates a secret and leaves the user in_progress until
// VerifyTOTP succeeds. Calling it again replaces an unverified secret.
func (s *MFAService) BeginTOTP(ctx context.Context, userID string) (TOTPEnrollment, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return TOTPEnrollment{}, err
	}
	if u.TOTPStatus == domain.TOTPSet {
		return TOTPEnrollment{}, domain.ErrTOTPAlreadySet
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return TOTPEnrollment{}, domain.Internal("generate totp key", err)
	}

	sealed, err := s.Keys.EncryptForUser(ctx, u.ID, []byte(key.Secret()))
	if err != nil {
		return TOTPEnrollment{}, err
	}
	if err := s.Store.Users().UpdateTOTP(ctx, u.ID, domain.TOTPInProgress, sealed, nowOr(s.Now)); err != nil {
		return TOTPEnrollment{}, domain.Internal("store totp secret", err)
	}

	return TOTPEnrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// VerifyTOTP checks code against the stored secret. The first successful
// check completes enrolment.
func (s *MFAService) VerifyTOTP(ctx context.Context, userID, code string) error {
	u, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if u.TOTPStatus == domain.TOTPNotSet {
		return domain.ErrTOTPNotInProgress
	}

	secret, err := s.Keys.DecryptTOTPSecret(ctx, u)
	if err != nil {
		return err
	}
	if secret == nil {
		return domain.ErrTOTPNotInProgress
	}

	ok, err := totp.ValidateCustom(code, *secret, nowOr(s.Now), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !ok {
		return domain.ErrInvalidTOTP
	}

	if u.TOTPStatus == domain.TOTPInProgress {
		if err := s.Store.Users().UpdateTOTP(ctx, u.ID, domain.TOTPSet, u.TOTPSecret, nowOr(s.Now)); err != nil {
			return domain.Internal("complete totp enrolment", err)
		}
		slogx.FromContext(ctx).Info("totp enrolled", slog.String("user_id", u.ID))
	}
	return nil
}

// GenerateRecoveryCodes replaces every stored recovery code. The plaintext
// codes are returned once and never stored.
func (s *MFAService) GenerateRecoveryCodes(ctx context.Context, userID string) ([]string, error) {
	u, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.TOTPStatus != domain.TOTPSet {
		return nil, domain.ErrTOTPNotSet
	}

	codes, err := domain.GenerateRecoveryCodes()
	if err != nil {
		return nil, domain.Internal("generate recovery codes", err)
	}
	hashes, err := codes.Hashed(s.Hasher)
	if err != nil {
		return nil, err
	}

	if err := s.Store.RecoveryCodes().ReplaceRecoveryCodes(ctx, u.ID, hashes, nowOr(s.Now)); err != nil {
		return nil, domain.Internal("store recovery codes", err)
	}
	return codes.Strings(), nil
}

// VerifyRecoveryCode hashes code against each stored hash and consumes the
// match.
func (s *MFAService) VerifyRecoveryCode(ctx context.Context, userID, code string) error {
	stored, err := s.Store.RecoveryCodes().ListRecoveryCodes(ctx, userID)
	if err != nil {
		return domain.Internal("list recovery codes", err)
	}

	for _, rc := range stored {
		ok, err := s.Hasher.Verify(code, rc.CodeHash)
		if err != nil {
			return domain.Internal("verify recovery code", err)
		}
		if !ok {
			continue
		}

		if err := s.Store.RecoveryCodes().DeleteRecoveryCode(ctx, rc.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// consumed by a concurrent request
				return domain.ErrInvalidRecoveryCode
			}
			return domain.Internal("consume recovery code", err)
		}
		slogx.FromContext(ctx).Info("recovery code used", slog.String("user_id", userID))
		return nil
	}
	return domain.ErrInvalidRecoveryCode
}

// ResetTOTP clears the TOTP secret and every recovery code.
func (s *MFAService) ResetTOTP(ctx context.Context, userID string) error {
	now := nowOr(s.Now)
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdateTOTP(ctx, userID, domain.TOTPNotSet, nil, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.ErrInvalidCredentials
			}
			return domain.Internal("clear totp", err)
		}
		if err := tx.RecoveryCodes().ReplaceRecoveryCodes(ctx, userID, nil, now); err != nil {
			return domain.Internal("clear recovery codes", err)
		}
		return nil
	})
}

func (s *MFAService) user(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, domain.Internal("fetch user", err)
	}
	return u, nil
}
