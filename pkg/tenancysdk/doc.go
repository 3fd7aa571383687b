// Package tenancysdk is a Go client for the tenancy service HTTP API.
//
// Unauthenticated operations (sign up, sign in, accepting invites and the
// health probes) live on SDKClient. Everything that needs a session token
// lives on Session:
//
//	client := tenancysdk.NewSDKClient("http://localhost:8080")
//
//	session, err := client.Authenticate(ctx, "owner@example.com", "Abcd1234!")
//	if err != nil {
//		return err
//	}
//
//	invite, err := session.Invite(ctx, tenancysdk.InviteRequest{
//		Email:  "staff@example.com",
//		Name:   "Staff",
//		RoleID: "merchant_view_only",
//	})
//
// Errors returned by the service are *APIError values; use IsCode to
// branch on the error code:
//
//	if tenancysdk.IsCode(err, tenancysdk.ErrorCodeUserExists) {
//		// ...
//	}
package tenancysdk
