package authsdk

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

// GetUserInfo returns the profile of the user owning an opaque access token.
func (c *SDKClient) GetUserInfo(ctx context.Context, accessToken string) (jwtx.Claims, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/user", nil, nil, accessToken)
	if err != nil {
		return nil, err
	}

	var claims jwtx.Claims
	if err := decodeJSON(resp, &claims, http.StatusOK); err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout invalidates every code and token of the access token's owner.
func (c *SDKClient) Logout(ctx context.Context, accessToken string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/logout", nil, nil, accessToken)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// QueryUsers looks up user records. bearerToken must be an ES512 token of
// a registered (non-guest) user.
func (c *SDKClient) QueryUsers(ctx context.Context, bearerToken string, userIDs ...int64) ([]UserRecord, error) {
	resp, err := c.postJSON(ctx, "/v1/users/query", QueryUsersRequest{UserIDs: userIDs}, nil, bearerToken)
	if err != nil {
		return nil, err
	}

	var out QueryUsersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// CreateUser registers an account on behalf of a client. When req.Password
// is empty the provider generates one and returns it in the "password"
// claim.
func (c *SDKClient) CreateUser(ctx context.Context, creds ClientCredentials, req CreateUserRequest) (jwtx.Claims, error) {
	resp, err := c.postJSON(ctx, "/v1/users", req, &creds, "")
	if err != nil {
		return nil, err
	}

	var claims jwtx.Claims
	if err := decodeJSON(resp, &claims, http.StatusCreated); err != nil {
		return nil, err
	}
	return claims, nil
}

// ResetPassword assigns a generated password to userID and signs the user
// out everywhere. The new password is in the "password" claim.
func (c *SDKClient) ResetPassword(ctx context.Context, creds ClientCredentials, userID string) (jwtx.Claims, error) {
	resp, err := c.postJSON(ctx, "/v1/users/"+url.PathEscape(userID)+"/password-reset", struct{}{}, &creds, "")
	if err != nil {
		return nil, err
	}

	var claims jwtx.Claims
	if err := decodeJSON(resp, &claims, http.StatusOK); err != nil {
		return nil, err
	}
	return claims, nil
}

// ModifyUser replaces the profile of userID and returns it as stored.
func (c *SDKClient) ModifyUser(ctx context.Context, creds ClientCredentials, userID string, req ModifyUserRequest) (jwtx.Claims, error) {
	resp, err := c.sendJSON(ctx, http.MethodPut, "/v1/users/"+url.PathEscape(userID), req, &creds, "")
	if err != nil {
		return nil, err
	}

	var claims jwtx.Claims
	if err := decodeJSON(resp, &claims, http.StatusOK); err != nil {
		return nil, err
	}
	return claims, nil
}

// SetPassword overwrites the password of the user who logs in as login and
// signs them out everywhere. With an empty password the provider generates
// one and returns it in the "password" claim.
func (c *SDKClient) SetPassword(ctx context.Context, creds ClientCredentials, login, password string) (jwtx.Claims, error) {
	resp, err := c.postJSON(ctx, "/v1/users/password", SetPasswordRequest{Login: login, Password: password}, &creds, "")
	if err != nil {
		return nil, err
	}

	var claims jwtx.Claims
	if err := decodeJSON(resp, &claims, http.StatusOK); err != nil {
		return nil, err
	}
	return claims, nil
}
