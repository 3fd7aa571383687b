package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newBuilder(production, emailEnabled bool) *domain.Builder {
	return &domain.Builder{
		Emails:       domain.NewEmailParser(domain.DefaultDomainBlocklist()),
		Production:   production,
		EmailEnabled: emailEnabled,
		Now:          func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestBuilder_SignUp(t *testing.T) {
	t.Parallel()

	b := newBuilder(true, true)
	nu, err := b.SignUp(domain.SignUpRequest{Email: "Jane@Example.com", Password: "Abcd1234!"})
	require.NoError(t, err)

	_, err = uuid.Parse(nu.UserID)
	require.NoError(t, err)
	require.Equal(t, "jane", nu.Name.String())
	require.Equal(t, "jane@example.com", nu.Email.String())
	require.NotNil(t, nu.Password)
	require.True(t, strings.HasPrefix(nu.Merchant.MerchantID, "merchant_"))
	require.Nil(t, nu.Merchant.CompanyName)
	require.True(t, strings.HasPrefix(nu.Merchant.Org.ID, "org_"))
	require.Nil(t, nu.Merchant.Org.Name)

	_, err = domain.ToCanonicalMerchantID(nu.Merchant.MerchantID)
	require.NoError(t, err)
}

func TestBuilder_SignUpRejectsBeforePersistence(t *testing.T) {
	t.Parallel()

	b := newBuilder(false, true)

	tests := []struct {
		name  string
		req   domain.SignUpRequest
		field string
	}{
		{"blocked email", domain.SignUpRequest{Email: "a@mailinator.com", Password: "Abcd1234!"}, "email"},
		{"weak password", domain.SignUpRequest{Email: "a@example.com", Password: "abcdefgh"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := b.SignUp(tt.req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestBuilder_SignUpWithMerchantID(t *testing.T) {
	t.Parallel()

	b := newBuilder(false, true)
	req := domain.SignUpWithMerchantIDRequest{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Password:    "Abcd1234!",
		CompanyName: " Acme Payments ",
	}

	nu, err := b.SignUpWithMerchantID(req)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", nu.Name.String())
	require.Equal(t, "acme_payments", nu.Merchant.MerchantID)
	require.Equal(t, "Acme Payments", nu.Merchant.CompanyName.String())
	require.Equal(t, "Acme Payments", *nu.Merchant.Org.Name)

	req.CompanyName = "Acme, Inc."
	_, err = b.SignUpWithMerchantID(req)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestBuilder_ConnectAccountHasNoPassword(t *testing.T) {
	t.Parallel()

	nu, err := newBuilder(false, true).ConnectAccount(domain.ConnectAccountRequest{Email: "sso@example.com"})
	require.NoError(t, err)
	require.Nil(t, nu.Password)

	u, err := nu.Record(reverseHasher{}, time.Now())
	require.NoError(t, err)
	require.Nil(t, u.PasswordHash)
	require.Nil(t, u.LastPasswordModifiedAt)
	require.ErrorIs(t, u.ComparePassword(reverseHasher{}, ""), domain.ErrInvalidCredentials)
}

func TestBuilder_CreateInternalUser(t *testing.T) {
	t.Parallel()

	nu, err := newBuilder(true, true).CreateInternalUser(domain.CreateInternalUserRequest{
		Name:     "Ops",
		Email:    "ops@example.com",
		Password: "Abcd1234!",
	}, "org_internal")
	require.NoError(t, err)
	require.Equal(t, domain.InternalMerchantID, nu.Merchant.MerchantID)
	require.Equal(t, "org_internal", nu.Merchant.Org.ID)
}

func TestBuilder_InviteUser(t *testing.T) {
	t.Parallel()

	inviter := domain.Actor{UserID: "u1", OrgID: "org_1", MerchantID: "acme"}
	req := domain.InviteUserRequest{Email: "new@example.com", Name: "New Person", RoleID: domain.RoleMerchantViewOnly}

	withEmail, err := newBuilder(false, true).InviteUser(req, inviter)
	require.NoError(t, err)
	require.Nil(t, withEmail.Password, "email delivery available, invitee sets their own password")
	require.Equal(t, "acme", withEmail.Merchant.MerchantID)
	require.Equal(t, "org_1", withEmail.Merchant.Org.ID)

	noEmail, err := newBuilder(false, false).InviteUser(req, inviter)
	require.NoError(t, err)
	require.NotNil(t, noEmail.Password)
	_, err = domain.NewPassword(noEmail.Password.Secret())
	require.NoError(t, err, "temporary password satisfies policy")
}

func TestBuilder_UserMerchantCreate(t *testing.T) {
	t.Parallel()

	existing := domain.User{ID: "user-1", Name: "Jane", Email: "jane@example.com", PasswordHash: ptr("h$x")}
	caller := domain.Actor{UserID: "user-1", OrgID: "org_1"}
	req := domain.UserMerchantCreateRequest{CompanyName: "Second Shop"}

	prod, err := newBuilder(true, true).UserMerchantCreate(existing, req, caller)
	require.NoError(t, err)
	require.Equal(t, "second_shop", prod.Merchant.MerchantID)
	require.Equal(t, "org_1", prod.Merchant.Org.ID)
	require.Equal(t, "user-1", prod.UserID)

	staging, err := newBuilder(false, true).UserMerchantCreate(existing, req, caller)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(staging.Merchant.MerchantID, "merchant_"))

	again, err := newBuilder(false, true).UserMerchantCreate(existing, req, caller)
	require.NoError(t, err)
	require.NotEqual(t, staging.Merchant.MerchantID, again.Merchant.MerchantID)
}

func TestNewUser_Record(t *testing.T) {
	t.Parallel()

	nu, err := newBuilder(false, true).SignUp(domain.SignUpRequest{Email: "jane@example.com", Password: "Abcd1234!"})
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	u, err := nu.Record(reverseHasher{}, now)
	require.NoError(t, err)

	require.Equal(t, nu.UserID, u.ID)
	require.False(t, u.IsVerified)
	require.Equal(t, domain.TOTPNotSet, u.TOTPStatus)
	require.NotNil(t, u.PasswordHash)
	require.NotEqual(t, "Abcd1234!", *u.PasswordHash)
	require.Equal(t, now, *u.LastPasswordModifiedAt)
	require.NoError(t, u.ComparePassword(reverseHasher{}, "Abcd1234!"))
}

func TestAccountCreateRequest(t *testing.T) {
	t.Parallel()

	company, err := domain.NewCompanyName("Acme")
	require.NoError(t, err)

	m := domain.NewUserMerchant{MerchantID: "acme", CompanyName: &company, Org: domain.NewOrganization{ID: "org_1"}}

	v1 := m.AccountCreateRequest(domain.PlatformV1)
	require.Equal(t, domain.PlatformV1, v1.Version)
	require.Equal(t, "acme", v1.MerchantID)
	require.Equal(t, "org_1", v1.OrganizationID)
	require.Equal(t, "Acme", *v1.MerchantName)
	require.Nil(t, v1.RoutingAlgorithm)
	require.Nil(t, v1.WebhookURL)
	require.Nil(t, v1.ReturnURL)

	v2 := m.AccountCreateRequest(domain.PlatformV2)
	require.Empty(t, v2.MerchantID)
	require.Equal(t, "org_1", v2.OrganizationID)
	require.Equal(t, "Acme", *v2.MerchantName)

	unnamed := domain.NewUserMerchant{MerchantID: "m", Org: domain.NewOrganization{ID: "org_2"}}
	require.Nil(t, unnamed.AccountCreateRequest(domain.PlatformV1).MerchantName)
	require.Equal(t, domain.DefaultMerchantName, *unnamed.AccountCreateRequest(domain.PlatformV2).MerchantName)
}

func TestParsePlatformVersion(t *testing.T) {
	t.Parallel()

	v, err := domain.ParsePlatformVersion("v2")
	require.NoError(t, err)
	require.Equal(t, domain.PlatformV2, v)

	_, err = domain.ParsePlatformVersion("v3")
	require.Error(t, err)
}
