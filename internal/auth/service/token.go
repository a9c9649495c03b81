package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/tokenstore"
	"github.com/aussiebroadwan/bartab-oidc/pkg/cryptox"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/slogx"
)

const (
	GrantTypeAuthorizationCode = "authorization_code"
	TokenTypeBearer            = "bearer"
)

var (
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidGrant         = errors.New("invalid_grant")
	ErrInvalidToken         = errors.New("invalid_token")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
	ErrUnauthorizedClient   = errors.New("unauthorized_client")
)

// TokenService runs the OAuth2 flows on top of the in-memory token store.
type TokenService struct {
	Factory       *TokenFactory
	Tokens        *tokenstore.Store
	Keys          jwtx.SigningKeyStore
	Clients       domain.ClientRegistry
	Authenticator identity.Authenticator
	Issuer        string

	// Expiration is the lifetime of codes, access tokens and signed tokens.
	Expiration time.Duration
}

// TokenRequest is an authorization_code grant.
type TokenRequest struct {
	GrantType    string
	Code         string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// TokenResponse mirrors the OAuth2 token endpoint response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	IDToken     string `json:"id_token,omitempty"`
}

// ExchangeCode redeems an authorization code for an opaque access token and
// an HS512 ID token signed with the client's secret. The code stays valid
// until it expires.
func (s *TokenService) ExchangeCode(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	code, err := s.redeem(ctx, req)
	if err != nil {
		return nil, err
	}

	accessToken, err := cryptox.NewAccessToken()
	if err != nil {
		return nil, err
	}

	data, err := s.Tokens.AddAccessToken(accessToken, code.AuthCode)
	if errors.Is(err, tokenstore.ErrUnknownAuthCode) {
		// swept between validation and insertion
		return nil, ErrInvalidGrant
	}
	if err != nil {
		return nil, err
	}

	claims, err := s.Factory.CreateTokenJSON(ctx, data.UserID(), data.AuthCodeData.IdTokenParams, s.Issuer, s.expirationSecs(), domain.ScopeIDToken)
	if err != nil {
		return nil, err
	}

	idToken, err := jwtx.Sign(claims, s.Keys, jwtx.SecretKeyStrategy{ClientID: req.ClientID, ClientSecret: req.ClientSecret})
	if err != nil {
		return nil, fmt.Errorf("sign id token: %w", err)
	}

	slogx.FromContext(ctx).Info("access token issued", "client_id", req.ClientID, "user_id", data.UserID())

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   s.expirationSecs(),
		IDToken:     idToken,
	}, nil
}

// BearerToken redeems an authorization code for an ES512 bearer token that
// any party can verify against the published JWKS. No opaque token is
// registered.
func (s *TokenService) BearerToken(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	code, err := s.redeem(ctx, req)
	if err != nil {
		return nil, err
	}

	claims, err := s.Factory.CreateTokenJSON(ctx, code.UserID, code.IdTokenParams, s.Issuer, s.expirationSecs(), domain.ScopeBearerToken)
	if err != nil {
		return nil, err
	}

	return s.signedBearer(claims)
}

// GuestToken mints an ES512 bearer token for a brand new guest user.
func (s *TokenService) GuestToken(ctx context.Context, clientID, clientSecret string) (*TokenResponse, error) {
	client, err := s.authenticateClient(clientID, clientSecret)
	if err != nil {
		return nil, err
	}
	if !client.AllowGuests {
		return nil, ErrUnauthorizedClient
	}

	claims, err := s.Factory.CreateGuestTokenJSON(ctx, client.ID, s.Issuer, s.expirationSecs())
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("guest token issued", "client_id", client.ID, "user_id", claims.String(jwtx.ClaimSubject))
	return s.signedBearer(claims)
}

// Profile returns the user-info document for the owner of accessToken.
func (s *TokenService) Profile(ctx context.Context, accessToken string) (jwtx.Claims, error) {
	userID, ok := s.Tokens.UserIDForToken(accessToken)
	if !ok {
		return nil, ErrInvalidToken
	}
	return s.Factory.CreateProfileJSON(ctx, userID)
}

// Logout drops every code and token held by the owner of accessToken.
func (s *TokenService) Logout(ctx context.Context, accessToken string) error {
	userID, ok := s.Tokens.UserIDForToken(accessToken)
	if !ok {
		return ErrInvalidToken
	}
	s.Tokens.ClearObjectsForUser(userID)
	slogx.FromContext(ctx).Info("user logged out", "user_id", userID)
	return nil
}

// UserIDForToken resolves an opaque access token.
func (s *TokenService) UserIDForToken(accessToken string) (string, bool) {
	return s.Tokens.UserIDForToken(accessToken)
}

// redeem validates the grant, the client and the code.
func (s *TokenService) redeem(ctx context.Context, req TokenRequest) (domain.AuthCodeData, error) {
	if req.GrantType != GrantTypeAuthorizationCode {
		return domain.AuthCodeData{}, ErrUnsupportedGrantType
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.AuthCodeData{}, ErrInvalidRequest
	}

	client, err := s.authenticateClient(req.ClientID, req.ClientSecret)
	if err != nil {
		return domain.AuthCodeData{}, err
	}
	if req.RedirectURI != "" && !client.AllowsRedirect(req.RedirectURI) {
		return domain.AuthCodeData{}, ErrInvalidGrant
	}

	if !s.Tokens.IsValidAuthCode(code, client.ID) {
		slogx.FromContext(ctx).Info("code rejected", "client_id", client.ID, "code", cryptox.FingerprintToken(code))
		return domain.AuthCodeData{}, ErrInvalidGrant
	}

	data, ok := s.Tokens.AuthCode(code)
	if !ok {
		return domain.AuthCodeData{}, ErrInvalidGrant
	}
	return data, nil
}

func (s *TokenService) authenticateClient(clientID, clientSecret string) (domain.Client, error) {
	client, ok := s.Clients.Lookup(clientID)
	if !ok {
		return domain.Client{}, ErrInvalidClient
	}
	if _, err := s.Keys.SecretKey(clientID, clientSecret); err != nil {
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

func (s *TokenService) signedBearer(claims jwtx.Claims) (*TokenResponse, error) {
	token, err := jwtx.Sign(claims, s.Keys, jwtx.AsymmetricKeyStrategy{})
	if err != nil {
		return nil, fmt.Errorf("sign bearer token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   s.expirationSecs(),
	}, nil
}

func (s *TokenService) expirationSecs() int64 {
	return int64(s.Expiration / time.Second)
}
