package tenancysdk_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/app"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/pkg/tenancysdk"
	"github.com/stretchr/testify/require"
)

const ownerPassword = "Abcd1234!"

// newTestClient serves a fully wired tenancy application with default rate
// limits and returns a client for it.
func newTestClient(t *testing.T) *tenancysdk.SDKClient {
	t.Helper()
	dir := t.TempDir()

	application, err := app.New(app.Config{
		Issuer:                "tenancy-sdk-test",
		PlatformVersion:       domain.PlatformV1,
		InternalOrgID:         "org_internal",
		DBDriver:              "sqlite",
		DatabaseFile:          filepath.Join(dir, "tenancy.db"),
		MasterKey:             "sdk-test-master-key",
		PepperFile:            filepath.Join(dir, "pepper"),
		SigningKeyPath:        filepath.Join(dir, "signing.pem"),
		EmailEnabled:          true,
		AllowedUnverifiedDays: 1,
		PasswordValidityDays:  90,
		TokenTTL:              time.Hour,
		InviteTTL:             time.Hour,
		Env:                   "production",
		LogLevel:              "error",
		LogFormat:             "text",
		ShutdownGracePeriod:   time.Second,
		HousekeepingInterval:  time.Hour,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Shutdown()
	})

	return tenancysdk.NewSDKClient(srv.URL + "/")
}

// signUpOwner provisions an organization owner and returns their session.
func signUpOwner(t *testing.T, client *tenancysdk.SDKClient, email, company string) (*tenancysdk.Session, *tenancysdk.UserResponse) {
	t.Helper()

	user, err := client.SignUpWithMerchantID(context.Background(), tenancysdk.SignUpWithMerchantIDRequest{
		Name:        "Owner",
		Email:       email,
		Password:    ownerPassword,
		CompanyName: company,
	})
	require.NoError(t, err)
	require.NotEmpty(t, user.Token)

	return client.NewSession(user.Token), user
}
