package tenancysdk

import (
	"context"
	"net/http"
)

// CreateRole creates a custom role in the caller's organization.
// Requires: org_admin or merchant_admin
func (s *Session) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	var out RoleResponse
	if err := s.post(ctx, "/v1/user/role", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRoles lists the predefined and custom roles visible to the caller.
func (s *Session) ListRoles(ctx context.Context) (*ListRolesResponse, error) {
	var out ListRolesResponse
	if err := s.client.doJSON(ctx, http.MethodGet, "/v1/user/role/list", s.token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
