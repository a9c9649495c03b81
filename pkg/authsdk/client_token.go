package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ExchangeAuthorizationCode redeems code for an opaque access token and an
// HS512 ID token. redirectURI may be empty.
func (c *SDKClient) ExchangeAuthorizationCode(
	ctx context.Context,
	creds ClientCredentials,
	code, redirectURI string,
) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/oauth2/token", codeGrant(creds, code, redirectURI))
}

// BearerToken redeems code for an ES512 access token that resource servers
// verify against the JWKS.
func (c *SDKClient) BearerToken(
	ctx context.Context,
	creds ClientCredentials,
	code, redirectURI string,
) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/oauth2/bearer-token", codeGrant(creds, code, redirectURI))
}

// GuestToken mints an ES512 token for a new guest user.
func (c *SDKClient) GuestToken(ctx context.Context, creds ClientCredentials) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/oauth2/guest-token", url.Values{
		"client_id":     {creds.ID},
		"client_secret": {creds.Secret},
	})
}

func codeGrant(creds ClientCredentials, code, redirectURI string) url.Values {
	data := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {creds.ID},
		"client_secret": {creds.Secret},
	}
	if redirectURI != "" {
		data.Set("redirect_uri", redirectURI)
	}
	return data
}

func (c *SDKClient) requestToken(ctx context.Context, path string, data url.Values) (*TokenResponse, error) {
	resp, err := c.postForm(ctx, path, data)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}
