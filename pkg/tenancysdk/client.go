package tenancysdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the tenancy service. It serves the
// unauthenticated endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new tenancy service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps an existing session token, for example one returned by a
// sign up call.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Authenticate signs in and returns a Session for the user's active role.
func (c *SDKClient) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.NewSession(resp.Token), nil
}

// SignUp creates a user with a new organization and merchant and returns a
// session token for them.
func (c *SDKClient) SignUp(ctx context.Context, req SignUpRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/user/signup", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUpWithMerchantID is SignUp with a name and company name; the merchant
// id is derived from the company name.
func (c *SDKClient) SignUpWithMerchantID(ctx context.Context, req SignUpWithMerchantIDRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/user/signup_with_merchant_id", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectAccount creates a passwordless user. No token is returned.
func (c *SDKClient) ConnectAccount(ctx context.Context, email string) (*UserResponse, error) {
	var out UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/user/connect_account", "", ConnectAccountRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn exchanges email and password for a session token.
func (c *SDKClient) SignIn(ctx context.Context, email, password string) (*SignInResponse, error) {
	var out SignInResponse
	req := SignInRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/user/signin", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvite redeems an invite token. Password is required when the
// invitee has none yet.
func (c *SDKClient) AcceptInvite(ctx context.Context, token, password string) (*AcceptInviteResponse, error) {
	var out AcceptInviteResponse
	req := AcceptInviteRequest{Token: token, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/user/invite/accept", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
