package domain

import "time"

// Predefined role ids.
const (
	RoleOrgAdmin         = "org_admin"
	RoleMerchantAdmin    = "merchant_admin"
	RoleMerchantViewOnly = "merchant_view_only"
	RoleProfileAdmin     = "profile_admin"
	RoleInternalAdmin    = "internal_admin"
	RoleInternalViewOnly = "internal_view_only"
)

// Role is either a predefined role or a custom role created inside an
// organization.
type Role struct {
	ID         string
	Name       string
	OrgID      string // empty for predefined roles
	Scope      EntityType
	Groups     []string
	IsInternal bool
	CreatedBy  string
	CreatedAt  time.Time
}

var predefinedRoles = map[string]Role{
	RoleOrgAdmin: {
		ID: RoleOrgAdmin, Name: "organization_admin", Scope: EntityOrganization,
		Groups: []string{"operations_manage", "users_manage", "merchant_details_manage", "organization_manage"},
	},
	RoleMerchantAdmin: {
		ID: RoleMerchantAdmin, Name: "admin", Scope: EntityMerchant,
		Groups: []string{"operations_manage", "users_manage", "merchant_details_manage"},
	},
	RoleMerchantViewOnly: {
		ID: RoleMerchantViewOnly, Name: "view_only", Scope: EntityMerchant,
		Groups: []string{"operations_view", "users_view", "merchant_details_view"},
	},
	RoleProfileAdmin: {
		ID: RoleProfileAdmin, Name: "profile_admin", Scope: EntityProfile,
		Groups: []string{"operations_manage", "users_view"},
	},
	RoleInternalAdmin: {
		ID: RoleInternalAdmin, Name: "internal_admin", Scope: EntityInternal, IsInternal: true,
		Groups: []string{"operations_manage", "users_manage", "merchant_details_manage", "internal_manage"},
	},
	RoleInternalViewOnly: {
		ID: RoleInternalViewOnly, Name: "internal_view_only", Scope: EntityInternal, IsInternal: true,
		Groups: []string{"operations_view", "users_view", "merchant_details_view"},
	},
}

// PredefinedRole looks up one of the built-in roles.
func PredefinedRole(id string) (Role, bool) {
	r, ok := predefinedRoles[id]
	return r, ok
}

// PredefinedRoles lists every built-in role.
func PredefinedRoles() []Role {
	ids := []string{RoleOrgAdmin, RoleMerchantAdmin, RoleMerchantViewOnly, RoleProfileAdmin, RoleInternalAdmin, RoleInternalViewOnly}
	out := make([]Role, 0, len(ids))
	for _, id := range ids {
		out = append(out, predefinedRoles[id])
	}
	return out
}
