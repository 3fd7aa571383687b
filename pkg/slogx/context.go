package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

func WithRequestID(ctx context.Context, reqID string) context.Context {
	l := FromContext(ctx)
	return WithContext(ctx, l.With("req_id", reqID))
}

// WithTenant attaches the caller's tenancy coordinates to the contextual
// logger. Empty values are skipped.
func WithTenant(ctx context.Context, userID, orgID, merchantID string) context.Context {
	attrs := make([]any, 0, 6)
	if userID != "" {
		attrs = append(attrs, "user_id", userID)
	}
	if orgID != "" {
		attrs = append(attrs, "org_id", orgID)
	}
	if merchantID != "" {
		attrs = append(attrs, "merchant_id", merchantID)
	}
	if len(attrs) == 0 {
		return ctx
	}
	return WithContext(ctx, FromContext(ctx).With(attrs...))
}
