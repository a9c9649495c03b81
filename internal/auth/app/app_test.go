package app_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/app"
	"github.com/aussiebroadwan/bartab-oidc/pkg/authsdk"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

const (
	issuer      = "https://auth.test"
	redirectURI = "https://app.example.com/cb"
)

var (
	webSecret = strings.Repeat("web-secret-", 7)
	svcSecret = strings.Repeat("svc-secret-", 7)
)

func clientsYAML() string {
	return `clients:
  - id: web
    name: Web frontend
    secrets: ["` + webSecret + `"]
    redirect_uris: ["` + redirectURI + `"]
    allow_guests: true
  - id: svc
    secrets: ["` + svcSecret + `"]
    redirect_uris: ["https://svc.example.com/cb"]
`
}

func testConfig(t *testing.T) app.Config {
	t.Helper()
	dir := t.TempDir()

	clients := filepath.Join(dir, "clients.yaml")
	require.NoError(t, os.WriteFile(clients, []byte(clientsYAML()), 0o600))

	return app.Config{
		Issuer:              issuer,
		KeySeed:             "app-test-seed-0123456789",
		ClientsFile:         clients,
		TokenExpiration:     time.Hour,
		DatabaseFile:        filepath.Join(dir, "auth.db"),
		PepperFile:          filepath.Join(dir, "pepper"),
		Env:                 "test",
		LogLevel:            "error",
		ShutdownGracePeriod: time.Second,
	}
}

func startApp(t *testing.T) (*authsdk.SDKClient, string) {
	t.Helper()

	application, err := app.New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(srv.Close)
	return authsdk.NewSDKClient(srv.URL), srv.URL
}

func TestLoginFlow(t *testing.T) {
	sdk, baseURL := startApp(t)
	ctx := context.Background()
	web := authsdk.ClientCredentials{ID: "web", Secret: webSecret}

	created, err := sdk.CreateUser(ctx, web, authsdk.CreateUserRequest{
		Email:        " Ada@Example.org ",
		Username:     "ada",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Organization: "Analytical Engines",
	})
	require.NoError(t, err)
	userID := created.String("sub")
	password := created.String("password")
	require.NotEmpty(t, userID)
	require.Len(t, password, 12)
	require.Equal(t, "ada@example.org", created.String("email"))

	code, state, err := sdk.Authorize(ctx, authsdk.AuthorizeRequest{
		ClientID:    "web",
		RedirectURI: redirectURI,
		State:       "st-1",
		Nonce:       "n-1",
		Username:    "ada",
		Password:    password,
	})
	require.NoError(t, err)
	require.Equal(t, "st-1", state)

	tok, err := sdk.ExchangeAuthorizationCode(ctx, web, code, redirectURI)
	require.NoError(t, err)
	require.Equal(t, "bearer", tok.TokenType)
	require.EqualValues(t, 3600, tok.ExpiresIn)

	idClaims, err := authsdk.VerifyIDToken(tok.IDToken, web, issuer)
	require.NoError(t, err)
	require.Equal(t, userID, idClaims.String("sub"))
	require.Equal(t, "n-1", idClaims.String("nonce"))
	require.Equal(t, "ada@example.org", idClaims.String("email"))

	profile, err := sdk.GetUserInfo(ctx, tok.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, profile.String("sub"))
	require.Equal(t, "Ada Lovelace", profile.String("name"))
	require.Empty(t, profile.String("password"))

	// Codes stay redeemable until they expire.
	bearer, err := sdk.BearerToken(ctx, web, code, "")
	require.NoError(t, err)

	verifier, err := sdk.NewVerifier(ctx, jwtx.VerifyOptions{Issuer: issuer, Audience: "web"})
	require.NoError(t, err)
	bearerClaims, err := verifier.Verify(bearer.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, bearerClaims.String("sub"))
	require.NotContains(t, bearerClaims, "email")

	id, err := strconv.ParseInt(userID, 10, 64)
	require.NoError(t, err)
	records, err := sdk.QueryUsers(ctx, bearer.AccessToken, id, 9999)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.True(t, records[0].Found)
	require.Equal(t, "Ada Lovelace", records[0].Name)
	require.False(t, records[1].Found)

	require.NoError(t, sdk.Logout(ctx, tok.AccessToken))

	_, err = sdk.GetUserInfo(ctx, tok.AccessToken)
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	_, err = sdk.ExchangeAuthorizationCode(ctx, web, code, redirectURI)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)

	resp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "bartab_oidc_tokenstore_access_tokens 0")
	require.Contains(t, string(body), "bartab_oidc_tokenstore_auth_codes 0")
}

func TestUserAdministration(t *testing.T) {
	sdk, _ := startApp(t)
	ctx := context.Background()
	web := authsdk.ClientCredentials{ID: "web", Secret: webSecret}

	created, err := sdk.CreateUser(ctx, web, authsdk.CreateUserRequest{
		Email: "grace@navy.mil", FirstName: "Grace", LastName: "Hopper", Organization: "US Navy",
	})
	require.NoError(t, err)
	userID := created.String("sub")

	modified, err := sdk.ModifyUser(ctx, web, userID, authsdk.ModifyUserRequest{
		Email: "grace@yale.edu", Username: "amazing-grace",
		FirstName: "Grace", LastName: "Hopper", Organization: "Yale",
	})
	require.NoError(t, err)
	require.Equal(t, userID, modified.String("sub"))
	require.Equal(t, "grace@yale.edu", modified.String("email"))
	require.Equal(t, "Yale", modified.String("organization"))

	_, err = sdk.ModifyUser(ctx, web, "9999", authsdk.ModifyUserRequest{
		Email: "x@y.org", FirstName: "X", LastName: "Y", Organization: "Z",
	})
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)

	reset, err := sdk.SetPassword(ctx, web, "amazing-grace", "")
	require.NoError(t, err)
	password := reset.String("password")
	require.Len(t, password, 12)

	_, _, err = sdk.Authorize(ctx, authsdk.AuthorizeRequest{
		ClientID: "web", RedirectURI: redirectURI, Username: "grace@yale.edu", Password: password,
	})
	require.NoError(t, err)

	_, err = sdk.SetPassword(ctx, authsdk.ClientCredentials{ID: "web", Secret: "nope"}, "amazing-grace", "x")
	require.ErrorIs(t, err, authsdk.ErrInvalidClient)
}

func TestLoginRejections(t *testing.T) {
	sdk, _ := startApp(t)
	ctx := context.Background()
	web := authsdk.ClientCredentials{ID: "web", Secret: webSecret}

	_, err := sdk.CreateUser(ctx, web, authsdk.CreateUserRequest{
		Email: "grace@example.org", FirstName: "Grace", LastName: "Hopper", Organization: "Navy", Password: "correct horse",
	})
	require.NoError(t, err)

	t.Run("wrong password redirects with access_denied", func(t *testing.T) {
		_, _, err := sdk.Authorize(ctx, authsdk.AuthorizeRequest{
			ClientID: "web", RedirectURI: redirectURI, Username: "grace@example.org", Password: "nope",
		})
		require.ErrorIs(t, err, authsdk.ErrAccessDenied)
	})

	t.Run("unregistered redirect is not followed", func(t *testing.T) {
		_, _, err := sdk.Authorize(ctx, authsdk.AuthorizeRequest{
			ClientID: "web", RedirectURI: "https://evil.example.com/", Username: "grace@example.org", Password: "correct horse",
		})
		require.ErrorIs(t, err, authsdk.ErrInvalidRequest)
	})

	t.Run("code is bound to its client", func(t *testing.T) {
		code, _, err := sdk.Authorize(ctx, authsdk.AuthorizeRequest{
			ClientID: "web", RedirectURI: redirectURI, Username: "grace@example.org", Password: "correct horse",
		})
		require.NoError(t, err)

		_, err = sdk.ExchangeAuthorizationCode(ctx, authsdk.ClientCredentials{ID: "svc", Secret: svcSecret}, code, "")
		require.ErrorIs(t, err, authsdk.ErrInvalidGrant)

		_, err = sdk.ExchangeAuthorizationCode(ctx, authsdk.ClientCredentials{ID: "web", Secret: svcSecret}, code, "")
		require.ErrorIs(t, err, authsdk.ErrInvalidClient)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := sdk.CreateUser(ctx, web, authsdk.CreateUserRequest{
			Email: "GRACE@example.org", FirstName: "G", LastName: "H", Organization: "O",
		})
		var oerr *authsdk.OAuth2Error
		require.ErrorAs(t, err, &oerr)
		require.Equal(t, authsdk.ErrorCodeInvalidRequest, oerr.Code)
		require.Equal(t, "email already registered", oerr.Description)
	})
}

func TestGuestTokens(t *testing.T) {
	sdk, _ := startApp(t)
	ctx := context.Background()

	guest, err := sdk.GuestToken(ctx, authsdk.ClientCredentials{ID: "web", Secret: webSecret})
	require.NoError(t, err)

	verifier, err := sdk.NewVerifier(ctx, jwtx.VerifyOptions{Issuer: issuer})
	require.NoError(t, err)
	claims, err := verifier.Verify(guest.AccessToken)
	require.NoError(t, err)
	isGuest, ok := claims.Bool("is_guest")
	require.True(t, ok)
	require.True(t, isGuest)
	require.NotContains(t, claims, "nonce")

	_, err = sdk.QueryUsers(ctx, guest.AccessToken, 1)
	var oerr *authsdk.OAuth2Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, http.StatusForbidden, oerr.StatusCode)

	_, err = sdk.GuestToken(ctx, authsdk.ClientCredentials{ID: "svc", Secret: svcSecret})
	require.ErrorIs(t, err, authsdk.ErrUnauthorizedClient)
}

func TestHealthAndJWKS(t *testing.T) {
	sdk, _ := startApp(t)
	ctx := context.Background()

	live, err := sdk.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, app.BuildVersion, live.Version)

	ready, err := sdk.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok (version 1)", ready.Checks.Schema)

	jwks, err := sdk.GetJWKS(ctx)
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 2)
	require.Equal(t, "oct", jwks.Keys[0].Kty)
	require.Equal(t, jwtx.SecretKeyPlaceholder, jwks.Keys[0].K)
	require.Equal(t, "P-521", jwks.Keys[1].Crv)
}

func TestNewFailures(t *testing.T) {
	t.Run("missing clients file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ClientsFile = filepath.Join(t.TempDir(), "absent.yaml")
		_, err := app.New(cfg)
		require.ErrorContains(t, err, "read clients file")
	})

	t.Run("short key seed", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.KeySeed = "short"
		_, err := app.New(cfg)
		require.ErrorIs(t, err, jwtx.ErrCrypto)
	})

	t.Run("weak client secret", func(t *testing.T) {
		cfg := testConfig(t)
		weak := strings.Replace(clientsYAML(), svcSecret, "too-short", 1)
		require.NoError(t, os.WriteFile(cfg.ClientsFile, []byte(weak), 0o600))
		_, err := app.New(cfg)
		require.ErrorIs(t, err, jwtx.ErrCrypto)
	})
}
