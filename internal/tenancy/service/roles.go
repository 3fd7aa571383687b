package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
)

// RoleService serves the predefined role catalogue and the custom roles of
// each organization.
type RoleService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *RoleService) PredefinedRoles() []domain.Role {
	return domain.PredefinedRoles()
}

// CreateRole adds a custom role to the actor's organization. Names are
// unique per organization and may not shadow a predefined role name.
func (s *RoleService) CreateRole(ctx context.Context, actor domain.Actor, name string, scope domain.EntityType, groups []string) (domain.Role, error) {
	roleName, err := domain.NewRoleName(name)
	if err != nil {
		return domain.Role{}, err
	}
	for _, r := range domain.PredefinedRoles() {
		if r.Name == roleName.String() || r.ID == roleName.String() {
			return domain.Role{}, domain.ErrRoleNameExists
		}
	}

	switch scope {
	case domain.EntityOrganization, domain.EntityMerchant, domain.EntityProfile:
	default:
		return domain.Role{}, &domain.ValidationError{Field: "role_scope", Reason: fmt.Sprintf("%q cannot hold custom roles", scope)}
	}
	if len(groups) == 0 {
		return domain.Role{}, &domain.ValidationError{Field: "groups", Reason: "must not be empty"}
	}

	role := domain.Role{
		ID:        idx.Prefixed("role"),
		Name:      roleName.String(),
		OrgID:     actor.OrgID,
		Scope:     scope,
		Groups:    groups,
		CreatedBy: actor.UserID,
		CreatedAt: nowOr(s.Now),
	}
	if err := s.Store.Roles().InsertRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Role{}, domain.ErrRoleNameExists
		}
		return domain.Role{}, domain.Internal("insert role", err)
	}
	return role, nil
}

// GetRole resolves a predefined role or a custom role owned by orgID.
func (s *RoleService) GetRole(ctx context.Context, orgID, roleID string) (domain.Role, error) {
	if r, ok := domain.PredefinedRole(roleID); ok {
		return r, nil
	}

	r, err := s.Store.Roles().GetRole(ctx, roleID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Role{}, domain.ErrUnknownRole
	case err != nil:
		return domain.Role{}, domain.Internal("fetch role", err)
	case r.OrgID != orgID:
		return domain.Role{}, domain.ErrUnknownRole
	}
	return r, nil
}

func (s *RoleService) ListRoles(ctx context.Context, orgID string) ([]domain.Role, error) {
	custom, err := s.Store.Roles().ListRolesByOrg(ctx, orgID)
	if err != nil {
		return nil, domain.Internal("list roles", err)
	}
	return append(domain.PredefinedRoles(), custom...), nil
}
