package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

type errorMapping struct {
	err    error
	status int
	code   string
	desc   string
}

// Checked in order; ErrInternal must stay first.
var errorMappings = []errorMapping{
	{domain.ErrInternal, http.StatusInternalServerError, "server_error", "internal error"},
	{domain.ErrValidation, http.StatusBadRequest, "invalid_request", ""},
	{domain.ErrUserExists, http.StatusConflict, "user_exists", "user already exists"},
	{domain.ErrDuplicateOrganizationOrMerchant, http.StatusConflict, "duplicate_merchant", "organization or merchant already exists"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "incorrect email or password"},
	{domain.ErrUnverifiedUser, http.StatusForbidden, "unverified_user", "email not verified"},
	{domain.ErrNoActiveRole, http.StatusForbidden, "no_active_role", "user has no active role"},
	{domain.ErrRoleNameExists, http.StatusConflict, "role_name_exists", "role name already exists"},
	{domain.ErrUnknownRole, http.StatusBadRequest, "unknown_role", "role does not exist or cannot be used here"},
	{domain.ErrInviteInvalid, http.StatusBadRequest, "invalid_invite", "invite is invalid, expired or already used"},
	{domain.ErrTOTPNotInProgress, http.StatusBadRequest, "totp_not_in_progress", "totp enrolment has not been started"},
	{domain.ErrTOTPAlreadySet, http.StatusConflict, "totp_already_set", "totp is already set up"},
	{domain.ErrTOTPNotSet, http.StatusBadRequest, "totp_not_set", "totp is not set up"},
	{domain.ErrInvalidTOTP, http.StatusBadRequest, "invalid_totp", "invalid totp code"},
	{domain.ErrInvalidRecoveryCode, http.StatusBadRequest, "invalid_recovery_code", "invalid recovery code"},
}

// writeServiceError maps a service error onto a status and error code.
// Unmapped errors are logged and reported as server errors.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		if m.status >= http.StatusInternalServerError {
			break
		}

		desc := m.desc
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			desc = verr.Error()
		}
		httpx.WriteError(w, m.status, m.code, desc)
		return
	}

	slogx.FromContext(r.Context()).Error(op+" failed", slog.Any("error", err))
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}

func actorFrom(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	t, ok := httpx.TenantFromContext(r.Context())
	if !ok || t.UserID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing bearer token")
		return domain.Actor{}, false
	}
	return domain.Actor{
		UserID:     t.UserID,
		OrgID:      t.OrgID,
		MerchantID: t.MerchantID,
		ProfileID:  t.ProfileID,
		RoleID:     t.RoleID,
	}, true
}
