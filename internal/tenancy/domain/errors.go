package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation                      = errors.New("validation failed")
	ErrUserExists                      = errors.New("user already exists")
	ErrDuplicateOrganizationOrMerchant = errors.New("organization or merchant already exists")
	ErrInvalidCredentials              = errors.New("invalid credentials")
	ErrUnverifiedUser                  = errors.New("user email not verified within the grace period")
	ErrNoActiveRole                    = errors.New("user has no active role")
	ErrRoleNameExists                  = errors.New("role name already exists in organization")
	ErrUnknownRole                     = errors.New("unknown role")
	ErrInviteInvalid                   = errors.New("invite is invalid, expired or already used")
	ErrTOTPNotInProgress               = errors.New("totp enrolment not started")
	ErrTOTPAlreadySet                  = errors.New("totp already set up")
	ErrTOTPNotSet                      = errors.New("totp not set up")
	ErrInvalidTOTP                     = errors.New("invalid totp code")
	ErrInvalidRecoveryCode             = errors.New("invalid recovery code")
	ErrInternal                        = errors.New("internal error")
)

// ValidationError reports a malformed identity field. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Internal wraps err with context as an ErrInternal.
func Internal(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", msg, ErrInternal)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrInternal, err)
}
