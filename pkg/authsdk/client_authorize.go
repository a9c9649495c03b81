package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// AuthorizeRequest is a password login on behalf of a client.
type AuthorizeRequest struct {
	ClientID    string
	RedirectURI string
	State       string
	Nonce       string
	Username    string // email or username
	Password    string
}

// Authorize posts the user's credentials to the authorize endpoint and
// returns the code and state from the redirect without following it.
func (c *SDKClient) Authorize(ctx context.Context, req AuthorizeRequest) (code, state string, err error) {
	data := url.Values{
		"response_type": {"code"},
		"client_id":     {req.ClientID},
		"redirect_uri":  {req.RedirectURI},
		"username":      {req.Username},
		"password":      {req.Password},
	}
	if req.State != "" {
		data.Set("state", req.State)
	}
	if req.Nonce != "" {
		data.Set("nonce", req.Nonce)
	}

	noRedirectClient := &http.Client{
		Transport: c.HTTPClient.Transport,
		Timeout:   c.HTTPClient.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url("/v1/oauth2/authorize"),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := noRedirectClient.Do(httpReq)
	if err != nil {
		return "", "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusFound {
		return "", "", parseErrorResponse(resp, body)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", "", fmt.Errorf("redirect response missing Location header")
	}
	return ParseAuthorizationCallback(location)
}

// AuthorizeAndExchange runs the login and redeems the code at the token
// endpoint in one call.
func (c *SDKClient) AuthorizeAndExchange(
	ctx context.Context,
	req AuthorizeRequest,
	clientSecret string,
) (*TokenResponse, error) {
	code, _, err := c.Authorize(ctx, req)
	if err != nil {
		return nil, err
	}
	creds := ClientCredentials{ID: req.ClientID, Secret: clientSecret}
	return c.ExchangeAuthorizationCode(ctx, creds, code, req.RedirectURI)
}

// ParseAuthorizationCallback extracts code and state from the URL the
// provider redirected to.
//
// Example:
//
//	code, state, err := authsdk.ParseAuthorizationCallback("https://localhost/callback?code=xyz&state=abc")
func ParseAuthorizationCallback(callbackURL string) (code, state string, err error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse callback URL: %w", err)
	}

	query := u.Query()

	if errorCode := query.Get("error"); errorCode != "" {
		return "", "", &OAuth2Error{
			StatusCode:  http.StatusFound,
			Code:        errorCode,
			Description: query.Get("error_description"),
		}
	}

	code = query.Get("code")
	if code == "" {
		return "", "", fmt.Errorf("callback missing authorization code")
	}

	return code, query.Get("state"), nil
}
