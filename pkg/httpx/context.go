package httpx

import (
	"context"

	"github.com/aussiebroadwan/tenancy/pkg/jwtx"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

// ContextWithClaims stores verified claims for downstream handlers.
func ContextWithClaims(ctx context.Context, c *jwtx.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

// ClaimsFromContext returns the claims set by Authn, if any.
func ClaimsFromContext(ctx context.Context) (*jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(*jwtx.Claims)
	return c, ok && c != nil
}

// TenantFromContext is shorthand for the tenant on the request's claims.
func TenantFromContext(ctx context.Context) (jwtx.Tenant, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return jwtx.Tenant{}, false
	}
	return c.Tenant(), true
}
