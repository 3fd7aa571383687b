package http_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	tenancyhttp "github.com/aussiebroadwan/tenancy/internal/tenancy/http"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store/drivers/sqlite"
	"github.com/aussiebroadwan/tenancy/pkg/cryptox"
	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const issuer = "https://tenancy.test"

type testServer struct {
	url          string
	store        store.Store
	provisioning *service.ProvisioningService
}

func generousLimits() tenancyhttp.RateLimits {
	l := httpxLimit(1000)
	return tenancyhttp.RateLimits{Strict: l, Moderate: l, Lenient: l}
}

func newServer(t *testing.T, limits tenancyhttp.RateLimits) testServer {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	signer, err := jwtx.NewSigner("test", priv)
	require.NoError(t, err)
	master, err := cryptox.GenerateAES256Key()
	require.NoError(t, err)

	hasher := cryptox.Argon2Hasher{Pepper: "pepper"}
	builder := &domain.Builder{
		Emails:       domain.NewEmailParser(domain.DefaultDomainBlocklist()),
		Production:   true,
		EmailEnabled: true,
	}
	roles := &service.RoleService{Store: s}

	r := tenancyhttp.NewRouter(jwtx.NewVerifier(signer, issuer), "test", s, slogx.Discard())
	r.Limits = limits
	r.Provisioning = &service.ProvisioningService{
		Store:         s,
		Merchants:     &service.MerchantService{Store: s},
		Builder:       builder,
		Hasher:        hasher,
		Version:       domain.PlatformV1,
		InternalOrgID: "org_internal",
	}
	r.Auth = &service.AuthService{
		Store:                 s,
		Hasher:                hasher,
		Tokens:                signer,
		Issuer:                issuer,
		AllowedUnverifiedDays: 1,
		PasswordValidityDays:  90,
	}
	r.Invites = &service.InviteService{Store: s, Builder: builder, Hasher: hasher, Roles: roles}
	r.Roles = roles
	r.MFA = &service.MFAService{
		Store:  s,
		Keys:   &service.KeyStoreManager{Store: s, MasterKey: master},
		Hasher: hasher,
		Issuer: "tenancy",
	}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	t.Cleanup(r.Provisioning.Wait)

	return testServer{url: srv.URL, store: s, provisioning: r.Provisioning}
}

func (ts testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.url+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (ts testServer) signUp(t *testing.T, email, company string) map[string]any {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/v1/user/signup_with_merchant_id", "", map[string]string{
		"name": "Owner", "email": email, "password": "Abcd1234!", "company_name": company,
	})
	require.Equal(t, http.StatusOK, status, body)
	return body
}

func TestSignUpAndSignIn(t *testing.T) {
	t.Parallel()
	ts := newServer(t, generousLimits())

	created := ts.signUp(t, "owner@example.com", "Acme Payments")
	require.Equal(t, "acme_payments", created["merchant_id"])
	require.Equal(t, domain.RoleOrgAdmin, created["role_id"])
	require.NotEmpty(t, created["token"])

	status, body := ts.do(t, http.MethodPost, "/v1/user/signin", "", map[string]string{
		"email": "OWNER@example.com", "password": "Abcd1234!",
	})
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, created["user_id"], body["user_id"])
	require.EqualValues(t, 1, body["verification_days_left"])
	require.Equal(t, false, body["password_rotate_required"])

	status, body = ts.do(t, http.MethodPost, "/v1/user/signin", "", map[string]string{
		"email": "owner@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "invalid_credentials", body["error"])
}

func TestSignUp_Errors(t *testing.T) {
	t.Parallel()
	ts := newServer(t, generousLimits())
	ts.signUp(t, "owner@example.com", "Acme")

	tests := []struct {
		name       string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"weak password", "/v1/user/signup", map[string]string{"email": "a@example.com", "password": "abcdefgh"}, http.StatusBadRequest, "invalid_request"},
		{"blocked domain", "/v1/user/signup", map[string]string{"email": "a@mailinator.com", "password": "Abcd1234!"}, http.StatusBadRequest, "invalid_request"},
		{"existing email", "/v1/user/signup", map[string]string{"email": "owner@example.com", "password": "Abcd1234!"}, http.StatusConflict, "user_exists"},
		{"taken merchant", "/v1/user/signup_with_merchant_id", map[string]string{
			"name": "B", "email": "b@example.com", "password": "Abcd1234!", "company_name": "acme",
		}, http.StatusConflict, "duplicate_merchant"},
		{"unknown field", "/v1/user/signup", map[string]string{"email": "c@example.com", "password": "Abcd1234!", "extra": "x"}, http.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ts.do(t, http.MethodPost, tt.path, "", tt.body)
			require.Equal(t, tt.wantStatus, status, body)
			require.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestCreateMerchant(t *testing.T) {
	t.Parallel()
	ts := newServer(t, generousLimits())
	owner := ts.signUp(t, "owner@example.com", "Acme")
	token := owner["token"].(string)

	status, _ := ts.do(t, http.MethodPost, "/v1/user/create_merchant", "", map[string]string{"company_name": "Second"})
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := ts.do(t, http.MethodPost, "/v1/user/create_merchant", token, map[string]string{"company_name": "Second Shop"})
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, "second_shop", body["merchant_id"])
	require.Equal(t, owner["org_id"], body["org_id"])
	require.Contains(t, body["publishable_key"], "pk_")
}

func TestInternalSignUp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ts := newServer(t, generousLimits())
	owner := ts.signUp(t, "owner@example.com", "Acme")

	req := map[string]string{"name": "Ops", "email": "ops2@example.com", "password": "Abcd1234!", "role_id": domain.RoleInternalViewOnly}

	status, body := ts.do(t, http.MethodPost, "/v1/user/internal_signup", owner["token"].(string), req)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "insufficient_role", body["error"])

	_, err := ts.provisioning.CreateInternalUser(ctx, domain.CreateInternalUserRequest{
		Name: "Ops", Email: "ops@example.com", Password: "Abcd1234!", RoleID: domain.RoleInternalAdmin,
	})
	require.NoError(t, err)
	status, session := ts.do(t, http.MethodPost, "/v1/user/signin", "", map[string]string{"email": "ops@example.com", "password": "Abcd1234!"})
	require.Equal(t, http.StatusOK, status, session)
	require.Equal(t, domain.InternalMerchantID, session["merchant_id"])

	status, body = ts.do(t, http.MethodPost, "/v1/user/internal_signup", session["token"].(string), req)
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, domain.RoleInternalViewOnly, body["role_id"])
	require.Nil(t, body["token"])
}

func TestInviteFlow(t *testing.T) {
	t.Parallel()
	ts := newServer(t, generousLimits())
	owner := ts.signUp(t, "owner@example.com", "Acme")
	token := owner["token"].(string)

	status, invite := ts.do(t, http.MethodPost, "/v1/user/invite", token, map[string]string{
		"email": "hire@example.com", "name": "Hire", "role_id": domain.RoleMerchantViewOnly,
	})
	require.Equal(t, http.StatusOK, status, invite)
	require.Equal(t, string(domain.UserStatusInvitationSent), invite["status"])

	// invitees cannot sign in before accepting
	status, _ = ts.do(t, http.MethodPost, "/v1/user/signin", "", map[string]string{"email": "hire@example.com", "password": "Abcd1234!"})
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := ts.do(t, http.MethodPost, "/v1/user/invite/accept", "", map[string]string{"token": invite["token"].(string), "password": "Abcd1234!"})
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, true, body["is_verified"])

	status, body = ts.do(t, http.MethodPost, "/v1/user/invite/accept", "", map[string]string{"token": invite["token"].(string), "password": "Abcd1234!"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_invite", body["error"])

	status, body = ts.do(t, http.MethodPost, "/v1/user/signin", "", map[string]string{"email": "hire@example.com", "password": "Abcd1234!"})
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, domain.RoleMerchantViewOnly, body["role_id"])

	// view-only users may not invite
	status, _ = ts.do(t, http.MethodPost, "/v1/user/invite", body["token"].(string), map[string]string{
		"email": "x@example.com", "name": "X", "role_id": domain.RoleMerchantViewOnly,
	})
	require.Equal(t, http.StatusForbidden, status)
}

func TestRoles(t *testing.T) {
	t.Parallel()
	ts := newServer(t, generousLimits())
	token := ts.signUp(t, "owner@example.com", "Acme")["token"].(string)

	req := map[string]any{"role_name": "Auditor", "role_scope": "merchant", "groups": []string{"operations_view"}}
	status, body := ts.do(t, http.MethodPost, "/v1/user/role", token, req)
	require.Equal(t, http.StatusOK, status, body)
	require.Equal(t, "auditor", body["role_name"])

	status, body = ts.do(t, http.MethodPost, "/v1/user/role", token, req)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "role_name_exists", body["error"])

	status, body = ts.do(t, http.MethodPost, "/v1/user/role", token, map[string]any{"role_name": "x", "role_scope": "galaxy", "groups": []string{"a"}})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_request", body["error"])

	status, body = ts.do(t, http.MethodGet, "/v1/user/role/list", token, nil)
	require.Equal(t, http.StatusOK, status)
	names := []string{}
	for _, r := range body["roles"].([]any) {
		names = append(names, r.(map[string]any)["role_name"].(string))
	}
	require.Contains(t, names, "auditor")
	require.NotContains(t, names, "internal_admin")
}

func TestTwoFactor(t *testing.T) {
	t.Parallel()
	ts := newServer(t, generousLimits())
	token := ts.signUp(t, "owner@example.com", "Acme")["token"].(string)

	status, body := ts.do(t, http.MethodPost, "/v1/user/2fa/recovery_code/generate", token, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "totp_not_set", body["error"])

	status, begin := ts.do(t, http.MethodPost, "/v1/user/2fa/totp/begin", token, nil)
	require.Equal(t, http.StatusOK, status, begin)

	status, body = ts.do(t, http.MethodPost, "/v1/user/2fa/totp/verify", token, map[string]string{"totp": "12345"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_totp", body["error"])

	code, err := totp.GenerateCode(begin["secret"].(string), time.Now())
	require.NoError(t, err)
	status, body = ts.do(t, http.MethodPost, "/v1/user/2fa/totp/verify", token, map[string]string{"totp": code})
	require.Equal(t, http.StatusOK, status, body)

	status, body = ts.do(t, http.MethodPost, "/v1/user/2fa/recovery_code/generate", token, nil)
	require.Equal(t, http.StatusOK, status, body)
	codes := body["recovery_codes"].([]any)
	require.Len(t, codes, domain.RecoveryCodesCount)

	verify := map[string]string{"recovery_code": codes[0].(string)}
	status, _ = ts.do(t, http.MethodPost, "/v1/user/2fa/recovery_code/verify", token, verify)
	require.Equal(t, http.StatusOK, status)
	status, body = ts.do(t, http.MethodPost, "/v1/user/2fa/recovery_code/verify", token, verify)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalid_recovery_code", body["error"])

	status, _ = ts.do(t, http.MethodPost, "/v1/user/2fa/reset", token, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = ts.do(t, http.MethodPost, "/v1/user/2fa/totp/begin", token, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	ts := newServer(t, generousLimits())

	status, body := ts.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "test", body["version"])

	status, body = ts.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	require.NoError(t, ts.store.Close())
	status, body = ts.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "degraded", body["status"])
}

func TestSignInRateLimited(t *testing.T) {
	t.Parallel()
	limits := generousLimits()
	limits.Strict = httpxLimit(1)
	ts := newServer(t, limits)

	creds := map[string]string{"email": "nobody@example.com", "password": "Abcd1234!"}
	status, _ := ts.do(t, http.MethodPost, "/v1/user/signin", "", creds)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := ts.do(t, http.MethodPost, "/v1/user/signin", "", creds)
	require.Equal(t, http.StatusTooManyRequests, status)
	require.Equal(t, "rate_limit_exceeded", body["error"])
}
