package http

import "time"

type userResponse struct {
	Token      string `json:"token,omitempty"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	OrgID      string `json:"org_id"`
	MerchantID string `json:"merchant_id,omitempty"`
	RoleID     string `json:"role_id"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	userResponse
	VerificationDaysLeft   *int `json:"verification_days_left,omitempty"`
	PasswordRotateRequired bool `json:"password_rotate_required"`
}

type merchantResponse struct {
	MerchantID     string  `json:"merchant_id"`
	OrgID          string  `json:"org_id"`
	MerchantName   *string `json:"merchant_name,omitempty"`
	PublishableKey string  `json:"publishable_key"`
	RoleID         string  `json:"role_id"`
}

type inviteResponse struct {
	InviteID          string    `json:"invite_id"`
	UserID            string    `json:"user_id"`
	Email             string    `json:"email"`
	RoleID            string    `json:"role_id"`
	Status            string    `json:"status"`
	ExpiresAt         time.Time `json:"expires_at"`
	Token             string    `json:"token"`
	TemporaryPassword *string   `json:"temporary_password,omitempty"`
}

type acceptInviteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password,omitempty"`
}

type acceptInviteResponse struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

type createRoleRequest struct {
	RoleName  string   `json:"role_name"`
	RoleScope string   `json:"role_scope"`
	Groups    []string `json:"groups"`
}

type roleResponse struct {
	RoleID    string   `json:"role_id"`
	RoleName  string   `json:"role_name"`
	RoleScope string   `json:"role_scope"`
	Groups    []string `json:"groups"`
	OrgID     string   `json:"org_id,omitempty"`
}

type listRolesResponse struct {
	Roles []roleResponse `json:"roles"`
}

type totpBeginResponse struct {
	Secret  string `json:"secret"`
	TOTPURL string `json:"totp_url"`
}

type totpVerifyRequest struct {
	TOTP string `json:"totp"`
}

type recoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}

type recoveryCodeVerifyRequest struct {
	RecoveryCode string `json:"recovery_code"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
