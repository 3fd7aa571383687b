package domain

import (
	"fmt"
	"time"
)

// PasswordHasher is the one-way hash used for passwords and recovery codes.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) (bool, error)
}

// ComparePassword never succeeds for users without a password, such as
// invitees who have not accepted yet.
func (u *User) ComparePassword(h PasswordHasher, candidate string) error {
	if u.PasswordHash == nil {
		return ErrInvalidCredentials
	}
	ok, err := h.Verify(candidate, *u.PasswordHash)
	if err != nil {
		return Internal("compare password", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// VerificationDaysLeft returns nil for verified users and the whole days
// remaining in the grace period otherwise.
func (u *User) VerificationDaysLeft(now time.Time, allowedDays int) (*int, error) {
	if u.IsVerified {
		return nil, nil
	}

	deadline := day(u.CreatedAt).AddDate(0, 0, allowedDays)
	today := day(now)
	if !today.Before(deadline) {
		return nil, ErrUnverifiedUser
	}

	left := daysBetween(today, deadline)
	return &left, nil
}

// IsPasswordRotateRequired is true when the password was never set or is
// older than validityDays.
func (u *User) IsPasswordRotateRequired(now time.Time, validityDays int) bool {
	if u.LastPasswordModifiedAt == nil {
		return true
	}
	deadline := day(*u.LastPasswordModifiedAt).AddDate(0, 0, validityDays)
	return daysBetween(day(now), deadline) < 0
}

// PreferredOrActiveRole picks the V1 role for the preferred merchant, or the
// first active one.
func (u *User) PreferredOrActiveRole(v1Roles []UserRole) (UserRole, error) {
	if u.PreferredMerchantID != nil {
		for _, r := range v1Roles {
			if r.MerchantID != nil && *r.MerchantID == *u.PreferredMerchantID {
				return r, nil
			}
		}
		return UserRole{}, fmt.Errorf("%w: preferred merchant %s", ErrNoActiveRole, *u.PreferredMerchantID)
	}
	for _, r := range v1Roles {
		if r.Status == UserStatusActive {
			return r, nil
		}
	}
	return UserRole{}, ErrNoActiveRole
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
