// Package storetest is a conformance suite every store driver runs from its
// own tests.
package storetest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/enums"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/userrole"
	"github.com/aussiebroadwan/tenancy/pkg/idx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Run exercises s. Every case creates its own ids, so a single database can
// be shared between cases.
func Run(t *testing.T, s store.Store) {
	t.Helper()

	t.Run("organizations", func(t *testing.T) { testOrganizations(t, s) })
	t.Run("merchants", func(t *testing.T) { testMerchants(t, s) })
	t.Run("users", func(t *testing.T) { testUsers(t, s) })
	t.Run("user roles", func(t *testing.T) { testUserRoles(t, s) })
	t.Run("user roles dual write is atomic", func(t *testing.T) { testUserRolesAtomic(t, s) })
	t.Run("user roles inside caller tx", func(t *testing.T) { testUserRolesInTx(t, s) })
	t.Run("roles", func(t *testing.T) { testRoles(t, s) })
	t.Run("key stores", func(t *testing.T) { testKeyStores(t, s) })
	t.Run("invites", func(t *testing.T) { testInvites(t, s) })
	t.Run("recovery codes", func(t *testing.T) { testRecoveryCodes(t, s) })
	t.Run("with tx rolls back", func(t *testing.T) { testWithTxRollback(t, s) })
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// Org inserts a fresh organization.
func Org(t *testing.T, s store.Store) domain.Organization {
	t.Helper()
	name := "Acme"
	o := domain.Organization{ID: idx.Prefixed("org"), Name: &name, CreatedAt: now()}
	require.NoError(t, s.Organizations().InsertOrganization(context.Background(), o))
	return o
}

// User inserts a fresh user with a password hash.
func User(t *testing.T, s store.Store) domain.User {
	t.Helper()
	hash := "h$secret"
	ts := now()
	id := uuid.NewString()
	u := domain.User{
		ID:                     id,
		Name:                   "jane",
		Email:                  "jane+" + id[:8] + "@example.com",
		PasswordHash:           &hash,
		TOTPStatus:             domain.TOTPNotSet,
		CreatedAt:              ts,
		LastModifiedAt:         ts,
		LastPasswordModifiedAt: &ts,
	}
	require.NoError(t, s.Users().InsertUser(context.Background(), u))
	return u
}

func merchant(orgID string) domain.MerchantAccount {
	name := "Acme Payments"
	algo := enums.RoutingRoundRobin
	return domain.MerchantAccount{
		ID:               idx.Prefixed("merchant"),
		OrgID:            orgID,
		Name:             &name,
		RoutingAlgorithm: &algo,
		PublishableKey:   idx.Prefixed("pk"),
		CreatedAt:        now(),
	}
}

func testOrganizations(t *testing.T, s store.Store) {
	ctx := context.Background()
	o := Org(t, s)

	got, err := s.Organizations().GetOrganization(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, o.ID, got.ID)
	require.Equal(t, "Acme", *got.Name)
	require.WithinDuration(t, o.CreatedAt, got.CreatedAt, time.Millisecond)

	err = s.Organizations().InsertOrganization(ctx, o)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Organizations().GetOrganization(ctx, "org_missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testMerchants(t *testing.T, s store.Store) {
	ctx := context.Background()
	o := Org(t, s)
	m := merchant(o.ID)

	require.NoError(t, s.Merchants().InsertMerchant(ctx, m))
	require.ErrorIs(t, s.Merchants().InsertMerchant(ctx, m), store.ErrAlreadyExists)

	got, err := s.Merchants().GetMerchant(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, m.OrgID, got.OrgID)
	require.Equal(t, enums.RoutingRoundRobin, *got.RoutingAlgorithm)
	require.Nil(t, got.WebhookURL)

	second := merchant(o.ID)
	second.Name = nil
	second.RoutingAlgorithm = nil
	require.NoError(t, s.Merchants().InsertMerchant(ctx, second))

	list, err := s.Merchants().ListMerchantsByOrg(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, s.Merchants().DeleteMerchant(ctx, m.ID))
	require.ErrorIs(t, s.Merchants().DeleteMerchant(ctx, m.ID), store.ErrNotFound)
	_, err = s.Merchants().GetMerchant(ctx, m.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User(t, s)

	got, err := s.Users().GetUserByEmail(ctx, strings.ToUpper(u.Email))
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, "h$secret", *got.PasswordHash)
	require.False(t, got.IsVerified)
	require.Equal(t, domain.TOTPNotSet, got.TOTPStatus)
	require.Nil(t, got.PreferredMerchantID)

	dup := u
	dup.ID = uuid.NewString()
	require.ErrorIs(t, s.Users().InsertUser(ctx, dup), store.ErrAlreadyExists)

	_, err = s.Users().GetUserByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, store.ErrNotFound)

	later := now().Add(time.Hour)
	require.NoError(t, s.Users().UpdatePassword(ctx, u.ID, "h$new", later))
	require.NoError(t, s.Users().UpdateTOTP(ctx, u.ID, domain.TOTPInProgress, []byte{1, 2, 3}, later))
	require.NoError(t, s.Users().MarkVerified(ctx, u.ID, later))
	require.NoError(t, s.Users().SetPreferredMerchant(ctx, u.ID, "acme", later))

	got, err = s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "h$new", *got.PasswordHash)
	require.WithinDuration(t, later, *got.LastPasswordModifiedAt, time.Millisecond)
	require.Equal(t, domain.TOTPInProgress, got.TOTPStatus)
	require.Equal(t, []byte{1, 2, 3}, got.TOTPSecret)
	require.True(t, got.IsVerified)
	require.Equal(t, "acme", *got.PreferredMerchantID)

	require.ErrorIs(t, s.Users().MarkVerified(ctx, uuid.NewString(), later), store.ErrNotFound)
}

func testUserRoles(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User(t, s)

	v1, err := userrole.New(u.ID, domain.RoleMerchantAdmin, domain.UserStatusInvitationSent, now()).
		CreatedBy("inviter").
		AtMerchant("org_1", "acme").
		InsertV1AndV2(ctx, s.UserRoles())
	require.NoError(t, err)
	require.NotEmpty(t, v1.ID)
	require.Equal(t, domain.RoleVersionV1, v1.Version)

	v1Rows, err := s.UserRoles().ListByUser(ctx, u.ID, domain.RoleVersionV1)
	require.NoError(t, err)
	require.Len(t, v1Rows, 1)
	require.Equal(t, v1.ID, v1Rows[0].ID)
	require.Equal(t, "acme", *v1Rows[0].MerchantID)
	require.Nil(t, v1Rows[0].EntityType)

	v2Rows, err := s.UserRoles().ListByUser(ctx, u.ID, domain.RoleVersionV2)
	require.NoError(t, err)
	require.Len(t, v2Rows, 1)
	require.Equal(t, domain.RoleMerchantAdmin, v2Rows[0].RoleID)
	require.Equal(t, "acme", *v2Rows[0].EntityID)
	require.Equal(t, domain.EntityMerchant, *v2Rows[0].EntityType)

	n, err := s.UserRoles().ActivateForUser(ctx, u.ID, "org_1", u.ID, now())
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	v1Rows, err = s.UserRoles().ListByUser(ctx, u.ID, domain.RoleVersionV1)
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, v1Rows[0].Status)
	require.Equal(t, u.ID, v1Rows[0].LastModifiedBy)

	_, err = userrole.New(u.ID, domain.RoleProfileAdmin, domain.UserStatusActive, now()).
		AtProfile("org_1", "acme", "pro_1").
		InsertV2(ctx, s.UserRoles())
	require.NoError(t, err)

	v2Rows, err = s.UserRoles().ListByUser(ctx, u.ID, domain.RoleVersionV2)
	require.NoError(t, err)
	require.Len(t, v2Rows, 2)
}

// A V2 conflict must not leave the V1 half behind.
func testUserRolesAtomic(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User(t, s)

	_, err := userrole.New(u.ID, domain.RoleOrgAdmin, domain.UserStatusActive, now()).
		AtOrganization("org_1", "first").
		InsertV2(ctx, s.UserRoles())
	require.NoError(t, err)

	_, err = userrole.New(u.ID, domain.RoleOrgAdmin, domain.UserStatusActive, now()).
		AtOrganization("org_1", "second").
		InsertV1AndV2(ctx, s.UserRoles())
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	v1Rows, err := s.UserRoles().ListByUser(ctx, u.ID, domain.RoleVersionV1)
	require.NoError(t, err)
	require.Empty(t, v1Rows)
}

func testUserRolesInTx(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User(t, s)
	errAbort := errors.New("abort")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := userrole.New(u.ID, domain.RoleInternalAdmin, domain.UserStatusActive, now()).
			AtInternal("org_1").
			InsertV1AndV2(ctx, tx.UserRoles())
		require.NoError(t, err)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	rows, err := s.UserRoles().ListByUser(ctx, u.ID, domain.RoleVersionV2)
	require.NoError(t, err)
	require.Empty(t, rows)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		_, err := userrole.New(u.ID, domain.RoleInternalAdmin, domain.UserStatusActive, now()).
			AtInternal("org_1").
			InsertV1AndV2(ctx, tx.UserRoles())
		return err
	})
	require.NoError(t, err)

	rows, err = s.UserRoles().ListByUser(ctx, u.ID, domain.RoleVersionV1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, domain.InternalMerchantID, *rows[0].MerchantID)
}

func testRoles(t *testing.T, s store.Store) {
	ctx := context.Background()
	o := Org(t, s)

	role := domain.Role{
		ID:        idx.Prefixed("role"),
		Name:      "support",
		OrgID:     o.ID,
		Scope:     domain.EntityMerchant,
		Groups:    []string{"operations_view", "users_view"},
		CreatedBy: "user-1",
		CreatedAt: now(),
	}
	require.NoError(t, s.Roles().InsertRole(ctx, role))

	got, err := s.Roles().GetRole(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, role.Groups, got.Groups)
	require.Equal(t, domain.EntityMerchant, got.Scope)
	require.False(t, got.IsInternal)

	clash := role
	clash.ID = idx.Prefixed("role")
	require.ErrorIs(t, s.Roles().InsertRole(ctx, clash), store.ErrAlreadyExists)

	other := clash
	other.Name = "auditor"
	require.NoError(t, s.Roles().InsertRole(ctx, other))

	list, err := s.Roles().ListRolesByOrg(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "auditor", list[0].Name)
}

func testKeyStores(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User(t, s)

	_, err := s.UserKeyStores().GetByUserID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	ks := domain.UserKeyStore{UserID: u.ID, EncryptedKey: []byte("ciphertext"), CreatedAt: now()}
	require.NoError(t, s.UserKeyStores().Insert(ctx, ks))
	require.ErrorIs(t, s.UserKeyStores().Insert(ctx, ks), store.ErrAlreadyExists)

	got, err := s.UserKeyStores().GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, ks.EncryptedKey, got.EncryptedKey)
}

func testInvites(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User(t, s)
	ts := now()

	inv := domain.Invite{
		ID:         idx.Prefixed("inv"),
		TokenHash:  idx.Prefixed("hash"),
		UserID:     u.ID,
		OrgID:      "org_1",
		MerchantID: "acme",
		RoleID:     domain.RoleMerchantViewOnly,
		CreatedBy:  "inviter",
		ExpiresAt:  ts.Add(time.Hour),
		CreatedAt:  ts,
	}
	require.NoError(t, s.Invites().InsertInvite(ctx, inv))

	expired := inv
	expired.ID = idx.Prefixed("inv")
	expired.TokenHash = idx.Prefixed("hash")
	expired.ExpiresAt = ts.Add(-time.Hour)
	require.NoError(t, s.Invites().InsertInvite(ctx, expired))

	got, err := s.Invites().GetInviteByTokenHash(ctx, inv.TokenHash)
	require.NoError(t, err)
	require.Equal(t, inv.ID, got.ID)
	require.False(t, got.Used)
	require.Nil(t, got.UsedAt)

	require.NoError(t, s.Invites().MarkInviteUsed(ctx, inv.ID, ts))
	require.ErrorIs(t, s.Invites().MarkInviteUsed(ctx, inv.ID, ts), store.ErrNotFound)

	got, err = s.Invites().GetInviteByTokenHash(ctx, inv.TokenHash)
	require.NoError(t, err)
	require.True(t, got.Used)
	require.NotNil(t, got.UsedAt)

	n, err := s.Invites().DeleteExpiredInvites(ctx, ts)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, int64(1))

	_, err = s.Invites().GetInviteByTokenHash(ctx, expired.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Invites().GetInviteByTokenHash(ctx, inv.TokenHash)
	require.NoError(t, err)
}

func testRecoveryCodes(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := User(t, s)

	require.NoError(t, s.RecoveryCodes().ReplaceRecoveryCodes(ctx, u.ID, []string{"a", "b", "c"}, now()))
	require.NoError(t, s.RecoveryCodes().ReplaceRecoveryCodes(ctx, u.ID, []string{"d", "e"}, now()))

	codes, err := s.RecoveryCodes().ListRecoveryCodes(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, codes, 2)

	hashes := []string{codes[0].CodeHash, codes[1].CodeHash}
	require.ElementsMatch(t, []string{"d", "e"}, hashes)

	require.NoError(t, s.RecoveryCodes().DeleteRecoveryCode(ctx, codes[0].ID))
	require.ErrorIs(t, s.RecoveryCodes().DeleteRecoveryCode(ctx, codes[0].ID), store.ErrNotFound)
}

func testWithTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	errAbort := errors.New("abort")
	id := idx.Prefixed("org")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Organizations().InsertOrganization(ctx, domain.Organization{ID: id, CreatedAt: now()}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, err = s.Organizations().GetOrganization(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
}
