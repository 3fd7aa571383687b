package httpx

import (
	"net/http"
	"slices"
)

// RequireAnyRole lets the request through when the caller's role is one of
// roles. It must run after Authn.
func RequireAnyRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}
			if !slices.Contains(roles, claims.RoleID) {
				WriteError(w, http.StatusForbidden, "insufficient_role", "role "+claims.RoleID+" may not perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
