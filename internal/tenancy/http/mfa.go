package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

// MFAHandler handles all MFA-related endpoints.
type MFAHandler struct {
	MFA *service.MFAService
}

// HandleBeginTOTP handles POST /v1/user/2fa/totp/begin
func (h *MFAHandler) HandleBeginTOTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	enrolment, err := h.MFA.BeginTOTP(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, r, "begin totp", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, totpBeginResponse{Secret: enrolment.Secret, TOTPURL: enrolment.URL})
}

// HandleVerifyTOTP handles POST /v1/user/2fa/totp/verify
func (h *MFAHandler) HandleVerifyTOTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req totpVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.MFA.VerifyTOTP(r.Context(), actor.UserID, req.TOTP); err != nil {
		writeServiceError(w, r, "verify totp", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// HandleGenerateRecoveryCodes handles POST /v1/user/2fa/recovery_code/generate
func (h *MFAHandler) HandleGenerateRecoveryCodes(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	codes, err := h.MFA.GenerateRecoveryCodes(r.Context(), actor.UserID)
	if err != nil {
		writeServiceError(w, r, "generate recovery codes", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, recoveryCodesResponse{RecoveryCodes: codes})
}

// HandleVerifyRecoveryCode handles POST /v1/user/2fa/recovery_code/verify
func (h *MFAHandler) HandleVerifyRecoveryCode(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req recoveryCodeVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.MFA.VerifyRecoveryCode(r.Context(), actor.UserID, req.RecoveryCode); err != nil {
		writeServiceError(w, r, "verify recovery code", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// HandleReset handles POST /v1/user/2fa/reset
func (h *MFAHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := h.MFA.ResetTOTP(r.Context(), actor.UserID); err != nil {
		writeServiceError(w, r, "reset totp", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
