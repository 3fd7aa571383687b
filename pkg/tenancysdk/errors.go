package tenancysdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Error codes returned by the tenancy service.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeServerError         = "server_error"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeInsufficientRole    = "insufficient_role"
	ErrorCodeRateLimitExceeded   = "rate_limit_exceeded"
	ErrorCodeUserExists          = "user_exists"
	ErrorCodeDuplicateMerchant   = "duplicate_merchant"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeUnverifiedUser      = "unverified_user"
	ErrorCodeNoActiveRole        = "no_active_role"
	ErrorCodeRoleNameExists      = "role_name_exists"
	ErrorCodeUnknownRole         = "unknown_role"
	ErrorCodeInvalidInvite       = "invalid_invite"
	ErrorCodeTOTPNotInProgress   = "totp_not_in_progress"
	ErrorCodeTOTPAlreadySet      = "totp_already_set"
	ErrorCodeTOTPNotSet          = "totp_not_set"
	ErrorCodeInvalidTOTP         = "invalid_totp"
	ErrorCodeInvalidRecoveryCode = "invalid_recovery_code"
)

// APIError is an error response from the tenancy service.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Code is the machine readable error code, e.g. "user_exists"
	Code string

	// Description is a human-readable description of the error
	Description string

	// RetryAfter is set on rate limited responses
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Description, e.StatusCode)
}

// IsCode reports whether err is an *APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// parseErrorResponse turns a non-success response into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Error
		apiErr.Description = errResp.ErrorDescription
		return apiErr
	}

	// Fallback: create generic error from status code
	apiErr.Code = ErrorCodeServerError
	apiErr.Description = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	return apiErr
}
