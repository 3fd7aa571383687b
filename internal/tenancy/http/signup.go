package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

// SignUpHandler serves the account provisioning endpoints.
type SignUpHandler struct {
	Provisioning *service.ProvisioningService
	Auth         *service.AuthService
}

// HandleSignUp handles POST /v1/user/signup
func (h *SignUpHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Provisioning.SignUp(r.Context(), req)
	h.respondWithToken(w, r, "sign up", res, err)
}

// HandleSignUpWithMerchantID handles POST /v1/user/signup_with_merchant_id
func (h *SignUpHandler) HandleSignUpWithMerchantID(w http.ResponseWriter, r *http.Request) {
	var req domain.SignUpWithMerchantIDRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Provisioning.SignUpWithMerchantID(r.Context(), req)
	h.respondWithToken(w, r, "sign up with merchant id", res, err)
}

// HandleConnectAccount handles POST /v1/user/connect_account
func (h *SignUpHandler) HandleConnectAccount(w http.ResponseWriter, r *http.Request) {
	var req domain.ConnectAccountRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Provisioning.ConnectAccount(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "connect account", err)
		return
	}
	// passwordless users get no session until they set a password
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(res, ""))
}

// HandleInternalSignUp handles POST /v1/user/internal_signup
func (h *SignUpHandler) HandleInternalSignUp(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInternalUserRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Provisioning.CreateInternalUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "internal sign up", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(res, ""))
}

// HandleCreateMerchant handles POST /v1/user/create_merchant
func (h *SignUpHandler) HandleCreateMerchant(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req domain.UserMerchantCreateRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.Provisioning.CreateUserMerchant(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, "create merchant", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, merchantResponse{
		MerchantID:     res.Merchant.ID,
		OrgID:          res.Merchant.OrgID,
		MerchantName:   res.Merchant.Name,
		PublishableKey: res.Merchant.PublishableKey,
		RoleID:         res.Role.RoleID,
	})
}

func (h *SignUpHandler) respondWithToken(w http.ResponseWriter, r *http.Request, op string, res service.Provisioned, err error) {
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	token, err := h.Auth.Issue(res.User, res.Role)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(res, token))
}

func toUserResponse(res service.Provisioned, token string) userResponse {
	out := userResponse{
		Token:  token,
		UserID: res.User.ID,
		Name:   res.User.Name,
		Email:  res.User.Email,
		OrgID:  res.Role.OrgID,
		RoleID: res.Role.RoleID,
	}
	if res.Role.MerchantID != nil {
		out.MerchantID = *res.Role.MerchantID
	}
	return out
}
