// Package userrole attaches roles to users. A role starts without a scope and
// must be bound to exactly one of organization, merchant, profile or
// internal scope before it can be written. Each scoped type only carries the
// insert operations its scope supports.
package userrole

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
)

// NoLevelRole is a role that has not been bound to a scope yet.
type NoLevelRole struct {
	userID         string
	roleID         string
	status         domain.UserStatus
	createdBy      string
	lastModifiedBy string
	now            time.Time
}

// New starts a role for userID. The user is recorded as its own creator
// unless CreatedBy says otherwise.
func New(userID, roleID string, status domain.UserStatus, now time.Time) NoLevelRole {
	return NoLevelRole{
		userID:         userID,
		roleID:         roleID,
		status:         status,
		createdBy:      userID,
		lastModifiedBy: userID,
		now:            now,
	}
}

// CreatedBy records actorID as creator and last modifier.
func (r NoLevelRole) CreatedBy(actorID string) NoLevelRole {
	r.createdBy = actorID
	r.lastModifiedBy = actorID
	return r
}

func (r NoLevelRole) AtOrganization(orgID, merchantID string) OrgRole {
	return OrgRole{base: r, orgID: orgID, merchantID: merchantID}
}

func (r NoLevelRole) AtMerchant(orgID, merchantID string) MerchantRole {
	return MerchantRole{base: r, orgID: orgID, merchantID: merchantID}
}

func (r NoLevelRole) AtProfile(orgID, merchantID, profileID string) ProfileRole {
	return ProfileRole{base: r, orgID: orgID, merchantID: merchantID, profileID: profileID}
}

// AtInternal binds the role to the internal merchant sentinel of orgID.
func (r NoLevelRole) AtInternal(orgID string) InternalRole {
	return InternalRole{base: r, orgID: orgID}
}

func (r NoLevelRole) row(orgID string) domain.UserRole {
	return domain.UserRole{
		UserID:         r.userID,
		RoleID:         r.roleID,
		OrgID:          orgID,
		Status:         r.status,
		CreatedBy:      r.createdBy,
		LastModifiedBy: r.lastModifiedBy,
		CreatedAt:      r.now,
		LastModified:   r.now,
	}
}

func (r NoLevelRole) v1(orgID, merchantID string) domain.UserRole {
	row := r.row(orgID)
	row.MerchantID = &merchantID
	row.Version = domain.RoleVersionV1
	return row
}

func (r NoLevelRole) v2(orgID string, merchantID, profileID *string, entityID string, entity domain.EntityType) domain.UserRole {
	row := r.row(orgID)
	row.MerchantID = merchantID
	row.ProfileID = profileID
	row.EntityID = &entityID
	row.EntityType = &entity
	row.Version = domain.RoleVersionV2
	return row
}

type OrgRole struct {
	base       NoLevelRole
	orgID      string
	merchantID string
}

func (r OrgRole) InsertV1(ctx context.Context, repo store.UserRoles) (domain.UserRole, error) {
	return insertOne(ctx, repo, store.OnlyV1(r.base.v1(r.orgID, r.merchantID)))
}

func (r OrgRole) InsertV2(ctx context.Context, repo store.UserRoles) (domain.UserRole, error) {
	return insertOne(ctx, repo, store.OnlyV2(r.v2()))
}

// InsertV1AndV2 writes both rows atomically and returns the V1 row.
func (r OrgRole) InsertV1AndV2(ctx context.Context, repo store.UserRoles) (domain.UserRole, error) {
	return insertBoth(ctx, repo, r.base.v1(r.orgID, r.merchantID), r.v2())
}

func (r OrgRole) v2() domain.UserRole {
	return r.base.v2(r.orgID, nil, nil, r.orgID, domain.EntityOrganization)
}

type MerchantRole struct {
	base       NoLevelRole
	orgID      string
	merchantID string
}

// InsertV1AndV2 writes both rows atomically and returns the V1 row.
func (r MerchantRole) InsertV1AndV2(ctx context.Context, repo store.UserRoles) (domain.UserRole, error) {
	merchantID := r.merchantID
	v2 := r.base.v2(r.orgID, &merchantID, nil, r.merchantID, domain.EntityMerchant)
	return insertBoth(ctx, repo, r.base.v1(r.orgID, r.merchantID), v2)
}

type ProfileRole struct {
	base       NoLevelRole
	orgID      string
	merchantID string
	profileID  string
}

// InsertV2 is the only write for profile roles; profiles have no V1 form.
func (r ProfileRole) InsertV2(ctx context.Context, repo store.UserRoles) (domain.UserRole, error) {
	merchantID, profileID := r.merchantID, r.profileID
	v2 := r.base.v2(r.orgID, &merchantID, &profileID, r.profileID, domain.EntityProfile)
	return insertOne(ctx, repo, store.OnlyV2(v2))
}

type InternalRole struct {
	base  NoLevelRole
	orgID string
}

// InsertV1AndV2 writes both rows atomically and returns the V1 row.
func (r InternalRole) InsertV1AndV2(ctx context.Context, repo store.UserRoles) (domain.UserRole, error) {
	sentinel := domain.InternalMerchantID
	v2 := r.base.v2(r.orgID, &sentinel, nil, domain.InternalMerchantID, domain.EntityInternal)
	return insertBoth(ctx, repo, r.base.v1(r.orgID, domain.InternalMerchantID), v2)
}

// Scope carries the ids a role may be bound to.
type Scope struct {
	OrgID      string
	MerchantID string
	ProfileID  string
}

// ForEntity binds r to entity and writes it. Profile roles are V2 only;
// every other scope is dual written. The returned row is the V1 row when one
// was written.
func ForEntity(ctx context.Context, repo store.UserRoles, r NoLevelRole, entity domain.EntityType, ids Scope) (domain.UserRole, error) {
	switch entity {
	case domain.EntityOrganization:
		return r.AtOrganization(ids.OrgID, ids.MerchantID).InsertV1AndV2(ctx, repo)
	case domain.EntityMerchant:
		return r.AtMerchant(ids.OrgID, ids.MerchantID).InsertV1AndV2(ctx, repo)
	case domain.EntityProfile:
		if ids.ProfileID == "" {
			return domain.UserRole{}, fmt.Errorf("profile role %s: %w", r.roleID, domain.ErrUnknownRole)
		}
		return r.AtProfile(ids.OrgID, ids.MerchantID, ids.ProfileID).InsertV2(ctx, repo)
	case domain.EntityInternal:
		return r.AtInternal(ids.OrgID).InsertV1AndV2(ctx, repo)
	}
	return domain.UserRole{}, domain.Internal(fmt.Sprintf("unhandled entity type %q", entity), nil)
}

func insertOne(ctx context.Context, repo store.UserRoles, p store.InsertUserRolePayload) (domain.UserRole, error) {
	rows, err := repo.Insert(ctx, p)
	if err != nil {
		return domain.UserRole{}, err
	}
	if len(rows) != 1 {
		return domain.UserRole{}, domain.Internal(fmt.Sprintf("store echoed %d rows for %s insert", len(rows), p.Kind()), nil)
	}
	return rows[0], nil
}

func insertBoth(ctx context.Context, repo store.UserRoles, v1, v2 domain.UserRole) (domain.UserRole, error) {
	rows, err := repo.Insert(ctx, store.V1AndV2(v1, v2))
	if err != nil {
		return domain.UserRole{}, err
	}
	for _, row := range rows {
		if row.Version == domain.RoleVersionV1 {
			return row, nil
		}
	}
	return domain.UserRole{}, domain.Internal("v1 role missing from dual write result", nil)
}
