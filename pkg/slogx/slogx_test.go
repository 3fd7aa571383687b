package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/tenancy/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	require.Same(t, slog.Default(), slogx.FromContext(context.Background()))
}

func TestWithTenantAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := slogx.WithContext(context.Background(), logger)
	ctx = slogx.WithTenant(ctx, "user-1", "org_1", "")
	slogx.FromContext(ctx).Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "user-1", line["user_id"])
	require.Equal(t, "org_1", line["org_id"])
	require.NotContains(t, line, "merchant_id")
}

func TestHTTPMiddlewareSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen *slog.Logger
	h := slogx.HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = slogx.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.NotNil(t, seen)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http_request", line["msg"])
	require.EqualValues(t, http.StatusTeapot, line["status"])
	require.Equal(t, rec.Header().Get("X-Request-ID"), line["req_id"])
}
