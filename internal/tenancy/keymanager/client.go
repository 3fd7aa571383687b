// Package keymanager talks to the external key-management service that
// keeps a copy of every user data key.
package keymanager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single transfer when the caller supplies no client.
const DefaultTimeout = 10 * time.Second

// ErrTransferRejected is returned for any non-2xx response.
var ErrTransferRejected = errors.New("keymanager: transfer rejected")

// Client calls the key manager's HTTP API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for baseURL. A nil *Client means the key manager is
// disabled, so callers should only construct one when a URL is configured.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type transferRequest struct {
	Identifier string `json:"identifier"`
	Key        string `json:"key"`
}

// TransferKey stores base64Key under identifier in the key manager.
func (c *Client) TransferKey(ctx context.Context, identifier, base64Key string) error {
	body, err := json.Marshal(transferRequest{Identifier: identifier, Key: base64Key})
	if err != nil {
		return fmt.Errorf("keymanager: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/key/transfer", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("keymanager: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("keymanager: transfer key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// the body is only for the error message
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrTransferRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: DefaultTimeout}
}
