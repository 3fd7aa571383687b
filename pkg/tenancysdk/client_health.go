package tenancysdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Livez reports whether the service process is up.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// Readyz reports whether the service can reach its database. A degraded
// service answers 503, which is returned as a response rather than an error.
func (c *SDKClient) Readyz(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return nil, fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &health, nil
}
