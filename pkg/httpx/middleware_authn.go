package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
	"github.com/aussiebroadwan/tenancy/pkg/slogx"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwtx.Claims, error)
}

// Authn rejects requests without a valid bearer token and attaches the
// token's claims and tenant to the request context.
func Authn(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				slogx.FromContext(ctx).Warn("jwt verify failed", "error", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = ContextWithClaims(ctx, claims)
			ctx = slogx.WithTenant(ctx, claims.Subject, claims.OrgID, claims.MerchantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750 error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
