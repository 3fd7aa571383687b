package http

import (
	"net/http"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
)

type RolesHandler struct {
	Roles *service.RoleService
}

// HandleCreate handles POST /v1/user/role
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req createRoleRequest
	if !decode(w, r, &req) {
		return
	}
	scope, ok := domain.ParseEntityType(req.RoleScope)
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown role_scope "+req.RoleScope)
		return
	}

	role, err := h.Roles.CreateRole(r.Context(), actor, req.RoleName, scope, req.Groups)
	if err != nil {
		writeServiceError(w, r, "create role", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleResponse(role))
}

// HandleList handles GET /v1/user/role/list
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	roles, err := h.Roles.ListRoles(r.Context(), actor.OrgID)
	if err != nil {
		writeServiceError(w, r, "list roles", err)
		return
	}

	out := listRolesResponse{Roles: make([]roleResponse, 0, len(roles))}
	for _, role := range roles {
		if role.IsInternal {
			continue
		}
		out.Roles = append(out.Roles, toRoleResponse(role))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func toRoleResponse(r domain.Role) roleResponse {
	return roleResponse{
		RoleID:    r.ID,
		RoleName:  r.Name,
		RoleScope: string(r.Scope),
		Groups:    r.Groups,
		OrgID:     r.OrgID,
	}
}
