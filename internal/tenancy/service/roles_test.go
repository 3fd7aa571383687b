package service_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/storetest"
	"github.com/stretchr/testify/require"
)

func TestCreateRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	org := storetest.Org(t, s)
	roles := &service.RoleService{Store: s, Now: clock}
	actor := domain.Actor{UserID: "user_1", OrgID: org.ID}

	role, err := roles.CreateRole(ctx, actor, "Auditor", domain.EntityMerchant, []string{"operations_view", "users_view"})
	require.NoError(t, err)
	require.Equal(t, "auditor", role.Name)
	require.Equal(t, org.ID, role.OrgID)
	require.Equal(t, "user_1", role.CreatedBy)

	got, err := roles.GetRole(ctx, org.ID, role.ID)
	require.NoError(t, err)
	require.Equal(t, role.Groups, got.Groups)
	require.Equal(t, domain.EntityMerchant, got.Scope)

	all, err := roles.ListRoles(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, all, len(domain.PredefinedRoles())+1)

	tests := []struct {
		name    string
		role    string
		scope   domain.EntityType
		groups  []string
		wantErr error
	}{
		{"duplicate name", "AUDITOR", domain.EntityMerchant, []string{"users_view"}, domain.ErrRoleNameExists},
		{"predefined id", "org_admin", domain.EntityOrganization, []string{"users_view"}, domain.ErrRoleNameExists},
		{"predefined name", "admin", domain.EntityMerchant, []string{"users_view"}, domain.ErrRoleNameExists},
		{"internal scope", "staff", domain.EntityInternal, []string{"users_view"}, domain.ErrValidation},
		{"no groups", "empty", domain.EntityMerchant, nil, domain.ErrValidation},
		{"blank name", "  ", domain.EntityMerchant, []string{"users_view"}, domain.ErrValidation},
		{"name with space", "two words", domain.EntityMerchant, []string{"users_view"}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := roles.CreateRole(ctx, actor, tt.role, tt.scope, tt.groups)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newStore(t)
	roles := &service.RoleService{Store: s, Now: clock}

	org := storetest.Org(t, s)
	other := storetest.Org(t, s)
	custom, err := roles.CreateRole(ctx, domain.Actor{UserID: "user_1", OrgID: org.ID}, "auditor", domain.EntityOrganization, []string{"users_view"})
	require.NoError(t, err)

	predefined, err := roles.GetRole(ctx, other.ID, domain.RoleMerchantAdmin)
	require.NoError(t, err)
	require.Equal(t, "admin", predefined.Name)

	_, err = roles.GetRole(ctx, other.ID, custom.ID)
	require.ErrorIs(t, err, domain.ErrUnknownRole)

	_, err = roles.GetRole(ctx, org.ID, "role_missing")
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}
