/*
Package authsdk is a Go client for the bartab-oidc provider.

# Signing in

A client logs a user in with a password, then redeems the code:

	sdk := authsdk.NewSDKClient("https://auth.example.com")
	creds := authsdk.ClientCredentials{ID: "web", Secret: secret}

	code, state, err := sdk.Authorize(ctx, authsdk.AuthorizeRequest{
		ClientID:    creds.ID,
		RedirectURI: "https://app.example.com/callback",
		State:       state,
		Nonce:       nonce,
		Username:    "ada@example.org",
		Password:    password,
	})

	tok, err := sdk.ExchangeAuthorizationCode(ctx, creds, code, "https://app.example.com/callback")

The access token in tok is opaque and is accepted by GetUserInfo and
Logout. The ID token is HS512-signed with the client secret:

	claims, err := authsdk.VerifyIDToken(tok.IDToken, creds, issuer)

# Bearer and guest tokens

BearerToken redeems a code for an ES512 token instead, and GuestToken mints
one for a fresh guest user. Resource servers verify these against the
published key set:

	verifier, err := sdk.NewVerifier(ctx, jwtx.VerifyOptions{Issuer: issuer})
	claims, err := verifier.Verify(tok.AccessToken)

# Errors

Every failed call returns an *OAuth2Error carrying the HTTP status and the
RFC 6749 error code. Compare with errors.Is against the predefined values,
which match on code:

	if errors.Is(err, authsdk.ErrInvalidGrant) {
		// code expired or belongs to another client
	}
*/
package authsdk
