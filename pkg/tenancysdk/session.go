package tenancysdk

import (
	"context"
	"net/http"
)

// Session is an authenticated caller. Session tokens are not refreshable;
// sign in again once one expires.
type Session struct {
	client *SDKClient
	token  string
}

// Token returns the session token.
func (s *Session) Token() string {
	return s.token
}

func (s *Session) post(ctx context.Context, path string, in, out any) error {
	return s.client.doJSON(ctx, http.MethodPost, path, s.token, in, out)
}

// InternalSignUp creates a user in the internal organization.
// Requires: internal_admin
func (s *Session) InternalSignUp(ctx context.Context, req InternalSignUpRequest) (*UserResponse, error) {
	var out UserResponse
	if err := s.post(ctx, "/v1/user/internal_signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMerchant adds a merchant to the caller's organization.
// Requires: org_admin
func (s *Session) CreateMerchant(ctx context.Context, companyName string) (*MerchantResponse, error) {
	var out MerchantResponse
	if err := s.post(ctx, "/v1/user/create_merchant", CreateMerchantRequest{CompanyName: companyName}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invite grants a role to a new or existing user at the caller's entity.
// Requires: org_admin, merchant_admin or profile_admin
func (s *Session) Invite(ctx context.Context, req InviteRequest) (*InviteResponse, error) {
	var out InviteResponse
	if err := s.post(ctx, "/v1/user/invite", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
