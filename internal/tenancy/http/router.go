package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/domain"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/service"
	"github.com/aussiebroadwan/tenancy/internal/tenancy/store"
	"github.com/aussiebroadwan/tenancy/pkg/httpx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// RateLimits groups the limits applied per route class.
type RateLimits struct {
	Strict   httpx.RateLimit // credential checks and account creation
	Moderate httpx.RateLimit // authenticated writes
	Lenient  httpx.RateLimit // probes and reads
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.RateLimit{Requests: 10, Window: time.Minute, Burst: 5},
		Moderate: httpx.RateLimit{Requests: 60, Window: time.Minute, Burst: 20},
		Lenient:  httpx.RateLimit{Requests: 300, Window: time.Minute, Burst: 50},
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	Limits      RateLimits
	middlewares []httpx.Middleware

	verifier     httpx.TokenVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Provisioning *service.ProvisioningService
	Auth         *service.AuthService
	Invites      *service.InviteService
	Roles        *service.RoleService
	MFA          *service.MFAService
}

func NewRouter(verifier httpx.TokenVerifier, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		Limits:       DefaultRateLimits(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every route. Services must be set before calling it.
func (r *Router) ApplyRoutes() {
	r.registerSignUp()
	r.registerSession()
	r.registerInvites()
	r.registerRoles()
	r.registerMFA()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured chains authn, an optional role check and a per-user limit.
func (r *Router) secured(h http.HandlerFunc, limit httpx.RateLimit, roles ...string) http.Handler {
	mws := []httpx.Middleware{httpx.Authn(r.verifier)}
	if len(roles) > 0 {
		mws = append(mws, httpx.RequireAnyRole(roles...))
	}
	mws = append(mws, httpx.RateLimiter(limit, httpx.UserKey))
	return httpx.Chain(h, mws...)
}

func (r *Router) public(h http.HandlerFunc, limit httpx.RateLimit) http.Handler {
	return httpx.Chain(h, httpx.RateLimiter(limit, httpx.IPKey))
}

func (r *Router) registerSignUp() {
	h := &SignUpHandler{Provisioning: r.Provisioning, Auth: r.Auth}

	r.Mux.Handle("POST /v1/user/signup", r.public(h.HandleSignUp, r.Limits.Strict))
	r.Mux.Handle("POST /v1/user/signup_with_merchant_id", r.public(h.HandleSignUpWithMerchantID, r.Limits.Strict))
	r.Mux.Handle("POST /v1/user/connect_account", r.public(h.HandleConnectAccount, r.Limits.Strict))

	r.Mux.Handle("POST /v1/user/internal_signup",
		r.secured(h.HandleInternalSignUp, r.Limits.Moderate, domain.RoleInternalAdmin))
	r.Mux.Handle("POST /v1/user/create_merchant",
		r.secured(h.HandleCreateMerchant, r.Limits.Moderate, domain.RoleOrgAdmin))
}

func (r *Router) registerSession() {
	h := &SignInHandler{Auth: r.Auth}

	// Strict per IP to slow down password guessing
	r.Mux.Handle("POST /v1/user/signin", r.public(h.ServeHTTP, r.Limits.Strict))
}

func (r *Router) registerInvites() {
	h := &InviteHandler{Invites: r.Invites}

	r.Mux.Handle("POST /v1/user/invite",
		r.secured(h.HandleInvite, r.Limits.Moderate,
			domain.RoleOrgAdmin, domain.RoleMerchantAdmin, domain.RoleProfileAdmin))
	r.Mux.Handle("POST /v1/user/invite/accept", r.public(h.HandleAccept, r.Limits.Strict))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{Roles: r.Roles}

	r.Mux.Handle("POST /v1/user/role",
		r.secured(h.HandleCreate, r.Limits.Moderate, domain.RoleOrgAdmin, domain.RoleMerchantAdmin))
	r.Mux.Handle("GET /v1/user/role/list", r.secured(h.HandleList, r.Limits.Lenient))
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFA: r.MFA}

	r.Mux.Handle("POST /v1/user/2fa/totp/begin", r.secured(h.HandleBeginTOTP, r.Limits.Moderate))
	// Strict so six digit codes cannot be brute forced
	r.Mux.Handle("POST /v1/user/2fa/totp/verify", r.secured(h.HandleVerifyTOTP, r.Limits.Strict))
	r.Mux.Handle("POST /v1/user/2fa/recovery_code/generate", r.secured(h.HandleGenerateRecoveryCodes, r.Limits.Moderate))
	r.Mux.Handle("POST /v1/user/2fa/recovery_code/verify", r.secured(h.HandleVerifyRecoveryCode, r.Limits.Strict))
	r.Mux.Handle("POST /v1/user/2fa/reset", r.secured(h.HandleReset, r.Limits.Moderate))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", r.public(LivezHandler(r.startTime, r.buildVersion), r.Limits.Lenient))
	r.Mux.Handle("GET /readyz", r.public(ReadyzHandler(r.startTime, r.buildVersion, r.store), r.Limits.Lenient))
}
