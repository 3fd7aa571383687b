package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

type SignInHandler struct {
	Auth *service.AuthService
}

// ServeHTTP handles POST /v1/user/signin
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.Auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "sign in", err)
		return
	}

	out := signInResponse{
		userResponse: userResponse{
			Token:  res.Token,
			UserID: res.User.ID,
			Name:   res.User.Name,
			Email:  res.User.Email,
			OrgID:  res.Role.OrgID,
			RoleID: res.Role.RoleID,
		},
		VerificationDaysLeft:   res.VerificationDaysLeft,
		PasswordRotateRequired: res.PasswordRotateRequired,
	}
	if res.Role.MerchantID != nil {
		out.MerchantID = *res.Role.MerchantID
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
