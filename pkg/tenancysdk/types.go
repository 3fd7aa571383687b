package tenancysdk

import "time"

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ============================================================================
// Sign up and sign in
// ============================================================================

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpWithMerchantIDRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
}

type ConnectAccountRequest struct {
	Email string `json:"email"`
}

type InternalSignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleID   string `json:"role_id"`
}

// UserResponse describes a provisioned user. Token is empty for flows that
// do not start a session.
type UserResponse struct {
	Token      string `json:"token,omitempty"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	OrgID      string `json:"org_id"`
	MerchantID string `json:"merchant_id,omitempty"`
	RoleID     string `json:"role_id"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	UserResponse

	// VerificationDaysLeft is set while an unverified user is inside the
	// grace period.
	VerificationDaysLeft   *int `json:"verification_days_left,omitempty"`
	PasswordRotateRequired bool `json:"password_rotate_required"`
}

// ============================================================================
// Merchants
// ============================================================================

type CreateMerchantRequest struct {
	CompanyName string `json:"company_name"`
}

type MerchantResponse struct {
	MerchantID     string  `json:"merchant_id"`
	OrgID          string  `json:"org_id"`
	MerchantName   *string `json:"merchant_name,omitempty"`
	PublishableKey string  `json:"publishable_key"`
	RoleID         string  `json:"role_id"`
}

// ============================================================================
// Invites
// ============================================================================

type InviteRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	RoleID string `json:"role_id"`
}

type InviteResponse struct {
	InviteID          string    `json:"invite_id"`
	UserID            string    `json:"user_id"`
	Email             string    `json:"email"`
	RoleID            string    `json:"role_id"`
	Status            string    `json:"status"`
	ExpiresAt         time.Time `json:"expires_at"`
	Token             string    `json:"token"`
	TemporaryPassword *string   `json:"temporary_password,omitempty"`
}

type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password,omitempty"`
}

type AcceptInviteResponse struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

// ============================================================================
// Roles
// ============================================================================

type CreateRoleRequest struct {
	RoleName  string   `json:"role_name"`
	RoleScope string   `json:"role_scope"`
	Groups    []string `json:"groups"`
}

type RoleResponse struct {
	RoleID    string   `json:"role_id"`
	RoleName  string   `json:"role_name"`
	RoleScope string   `json:"role_scope"`
	Groups    []string `json:"groups"`
	OrgID     string   `json:"org_id,omitempty"`
}

type ListRolesResponse struct {
	Roles []RoleResponse `json:"roles"`
}

// ============================================================================
// Two factor authentication
// ============================================================================

type TOTPBeginResponse struct {
	Secret  string `json:"secret"`
	TOTPURL string `json:"totp_url"`
}

type TOTPVerifyRequest struct {
	TOTP string `json:"totp"`
}

type RecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}

type RecoveryCodeVerifyRequest struct {
	RecoveryCode string `json:"recovery_code"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}
