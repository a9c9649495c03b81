package authsdk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

// GetJWKS retrieves the published key set.
func (c *SDKClient) GetJWKS(ctx context.Context) (*jwtx.JWKS, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", nil, nil, "")
	if err != nil {
		return nil, err
	}

	var jwks jwtx.JWKS
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}

// NewVerifier fetches the provider's key set and returns a verifier for the
// ES512 tokens it issues (bearer and guest tokens).
func (c *SDKClient) NewVerifier(ctx context.Context, opts jwtx.VerifyOptions) (*jwtx.Verifier, error) {
	jwks, err := c.GetJWKS(ctx)
	if err != nil {
		return nil, err
	}

	keys := jwtx.NewKeySet()
	if err := keys.ResetFromJWKS(*jwks); err != nil {
		return nil, fmt.Errorf("load jwks: %w", err)
	}
	return jwtx.NewVerifier(keys, opts), nil
}

// VerifyIDToken checks an HS512 ID token with the secret of the client it
// was issued to.
func VerifyIDToken(idToken string, creds ClientCredentials, issuer string) (jwtx.Claims, error) {
	return jwtx.VerifyHS512(idToken, creds.Secret, jwtx.VerifyOptions{
		Issuer:   issuer,
		Audience: creds.ID,
	})
}
