package tenancysdk

import "context"

// BeginTOTP starts (or restarts) TOTP enrolment and returns the secret to
// load into an authenticator app.
func (s *Session) BeginTOTP(ctx context.Context) (*TOTPBeginResponse, error) {
	var out TOTPBeginResponse
	if err := s.post(ctx, "/v1/user/2fa/totp/begin", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTOTP checks a code. During enrolment a valid code completes it.
func (s *Session) VerifyTOTP(ctx context.Context, code string) error {
	var out StatusResponse
	return s.post(ctx, "/v1/user/2fa/totp/verify", TOTPVerifyRequest{TOTP: code}, &out)
}

// GenerateRecoveryCodes replaces the user's recovery codes. The plaintext
// codes are only ever returned here.
func (s *Session) GenerateRecoveryCodes(ctx context.Context) ([]string, error) {
	var out RecoveryCodesResponse
	if err := s.post(ctx, "/v1/user/2fa/recovery_code/generate", nil, &out); err != nil {
		return nil, err
	}
	return out.RecoveryCodes, nil
}

// VerifyRecoveryCode consumes a recovery code.
func (s *Session) VerifyRecoveryCode(ctx context.Context, code string) error {
	var out StatusResponse
	return s.post(ctx, "/v1/user/2fa/recovery_code/verify", RecoveryCodeVerifyRequest{RecoveryCode: code}, &out)
}

// ResetTOTP removes the user's TOTP secret and recovery codes.
func (s *Session) ResetTOTP(ctx context.Context) error {
	var out StatusResponse
	return s.post(ctx, "/v1/user/2fa/reset", nil, &out)
}
