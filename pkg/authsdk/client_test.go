package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/bartab-oidc/pkg/authsdk"
	"github.com/aussiebroadwan/bartab-oidc/pkg/httpx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

const secret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

var creds = authsdk.ClientCredentials{ID: "web", Secret: secret}

func fakeProvider(t *testing.T) *authsdk.SDKClient {
	t.Helper()

	keys, err := jwtx.NewStaticKeyStore("sdk-test-seed-0123", map[string][]string{"web": {secret}})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/oauth2/authorize", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("password") != "pw" {
			authsdk.ErrAccessDenied.WriteError(w)
			return
		}
		u, _ := url.Parse(r.PostForm.Get("redirect_uri"))
		u.RawQuery = url.Values{"code": {"the-code"}, "state": {r.PostForm.Get("state")}}.Encode()
		http.Redirect(w, r, u.String(), http.StatusFound)
	})
	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "the-code" {
			authsdk.ErrInvalidGrant.WriteError(w)
			return
		}
		idToken, err := jwtx.Sign(jwtx.Claims{"sub": "42", "aud": "web", "iss": "https://issuer", "exp": time.Now().Add(time.Minute).Unix()}, keys,
			jwtx.SecretKeyStrategy{ClientID: "web", ClientSecret: r.PostForm.Get("client_secret")})
		require.NoError(t, err)
		httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
			AccessToken: "opaque", TokenType: "bearer", ExpiresIn: 60, IDToken: idToken,
		})
	})
	mux.HandleFunc("POST /v1/oauth2/guest-token", func(w http.ResponseWriter, r *http.Request) {
		tok, err := jwtx.Sign(jwtx.Claims{"sub": "1000", "is_guest": true, "exp": time.Now().Add(time.Minute).Unix()}, keys, jwtx.AsymmetricKeyStrategy{})
		require.NoError(t, err)
		httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: tok, TokenType: "bearer", ExpiresIn: 60})
	})
	mux.HandleFunc("GET /.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		jwks, err := jwtx.JWKSContent(keys)
		require.NoError(t, err)
		httpx.WriteJSON(w, http.StatusOK, jwks)
	})
	mux.HandleFunc("GET /v1/user", func(w http.ResponseWriter, r *http.Request) {
		if tok, _ := httpx.BearerToken(r); tok != "opaque" {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"sub": "42", "email": "a@x.org"})
	})
	mux.HandleFunc("POST /v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /v1/users", func(w http.ResponseWriter, r *http.Request) {
		id, sec, ok := r.BasicAuth()
		if !ok || id != creds.ID || sec != creds.Secret {
			authsdk.ErrInvalidClient.WriteError(w)
			return
		}
		var req authsdk.CreateUserRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		httpx.WriteJSON(w, http.StatusCreated, map[string]any{"sub": "7", "email": req.Email, "password": "generated"})
	})
	mux.HandleFunc("POST /v1/users/query", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.QueryUsersRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := authsdk.QueryUsersResponse{}
		for _, id := range req.UserIDs {
			out.Users = append(out.Users, authsdk.UserRecord{UserID: id, Found: id == 7})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, authsdk.HealthResponse{Status: "unavailable"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return authsdk.NewSDKClient(srv.URL + "/")
}

func TestAuthorizeAndExchange(t *testing.T) {
	sdk := fakeProvider(t)
	ctx := context.Background()

	req := authsdk.AuthorizeRequest{
		ClientID:    "web",
		RedirectURI: "https://app.example.com/cb",
		State:       "xyz",
		Username:    "ada",
		Password:    "pw",
	}

	code, state, err := sdk.Authorize(ctx, req)
	require.NoError(t, err)
	require.Equal(t, "the-code", code)
	require.Equal(t, "xyz", state)

	tok, err := sdk.AuthorizeAndExchange(ctx, req, secret)
	require.NoError(t, err)
	require.Equal(t, "opaque", tok.AccessToken)

	claims, err := authsdk.VerifyIDToken(tok.IDToken, creds, "https://issuer")
	require.NoError(t, err)
	require.Equal(t, "42", claims.String("sub"))

	_, err = authsdk.VerifyIDToken(tok.IDToken, authsdk.ClientCredentials{ID: "web", Secret: secret + "x"}, "")
	require.Error(t, err)
}

func TestErrorsAreTyped(t *testing.T) {
	sdk := fakeProvider(t)
	ctx := context.Background()

	_, _, err := sdk.Authorize(ctx, authsdk.AuthorizeRequest{ClientID: "web", RedirectURI: "https://a/cb", Password: "nope"})
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)

	_, err = sdk.ExchangeAuthorizationCode(ctx, creds, "stale", "")
	var oerr *authsdk.OAuth2Error
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, http.StatusBadRequest, oerr.StatusCode)
	require.ErrorIs(t, err, authsdk.ErrInvalidGrant)

	_, err = sdk.GetUserInfo(ctx, "wrong")
	require.ErrorIs(t, err, authsdk.ErrInvalidToken)

	_, err = sdk.CreateUser(ctx, authsdk.ClientCredentials{ID: "web", Secret: "bad"}, authsdk.CreateUserRequest{})
	require.ErrorIs(t, err, authsdk.ErrInvalidClient)

	_, err = sdk.GetReadiness(ctx)
	require.True(t, errors.As(err, &oerr))
	require.Equal(t, http.StatusServiceUnavailable, oerr.StatusCode)
}

func TestGuestTokenVerifiesAgainstJWKS(t *testing.T) {
	sdk := fakeProvider(t)
	ctx := context.Background()

	tok, err := sdk.GuestToken(ctx, creds)
	require.NoError(t, err)

	verifier, err := sdk.NewVerifier(ctx, jwtx.VerifyOptions{})
	require.NoError(t, err)

	claims, err := verifier.Verify(tok.AccessToken)
	require.NoError(t, err)
	guest, ok := claims.Bool("is_guest")
	require.True(t, ok)
	require.True(t, guest)
}

func TestUserCalls(t *testing.T) {
	sdk := fakeProvider(t)
	ctx := context.Background()

	info, err := sdk.GetUserInfo(ctx, "opaque")
	require.NoError(t, err)
	require.Equal(t, "a@x.org", info.String("email"))

	require.NoError(t, sdk.Logout(ctx, "opaque"))

	created, err := sdk.CreateUser(ctx, creds, authsdk.CreateUserRequest{Email: "b@x.org"})
	require.NoError(t, err)
	require.Equal(t, "b@x.org", created.String("email"))
	require.Equal(t, "generated", created.String("password"))

	records, err := sdk.QueryUsers(ctx, "jwt", 7, 8)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.True(t, records[0].Found)
	require.False(t, records[1].Found)
}

func TestParseAuthorizationCallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		url       string
		wantCode  string
		wantState string
		wantErr   string
	}{
		{"code and state", "https://app/cb?code=c1&state=s1", "c1", "s1", ""},
		{"code only", "https://app/cb?code=c2", "c2", "", ""},
		{"provider error", "https://app/cb?error=access_denied&error_description=nope", "", "", "access_denied: nope"},
		{"missing code", "https://app/cb?state=s", "", "", "missing authorization code"},
		{"unparseable", "://bad", "", "", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, state, err := authsdk.ParseAuthorizationCallback(tt.url)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantCode, code)
			require.Equal(t, tt.wantState, state)
		})
	}
}
