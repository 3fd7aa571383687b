package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

type InviteHandler struct {
	Invites *service.InviteService
}

// HandleInvite handles POST /v1/user/invite. The invite token is returned
// to the inviter so it can be delivered out of band.
func (h *InviteHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req domain.InviteUserRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.Invites.InviteUser(r.Context(), actor, req)
	if err != nil {
		writeServiceError(w, r, "invite user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, inviteResponse{
		InviteID:          res.Invite.ID,
		UserID:            res.User.ID,
		Email:             res.User.Email,
		RoleID:            res.Role.RoleID,
		Status:            string(res.Role.Status),
		ExpiresAt:         res.Invite.ExpiresAt,
		Token:             res.Token,
		TemporaryPassword: res.TemporaryPassword,
	})
}

// HandleAccept handles POST /v1/user/invite/accept
func (h *InviteHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req acceptInviteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	u, err := h.Invites.AcceptInvite(r.Context(), req.Token, req.Password)
	if err != nil {
		writeServiceError(w, r, "accept invite", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, acceptInviteResponse{UserID: u.ID, Email: u.Email, IsVerified: u.IsVerified})
}
