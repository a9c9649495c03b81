package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
	"github.com/aussiebroadwan/bartab-oidc/pkg/cryptox"
	"github.com/aussiebroadwan/bartab-oidc/pkg/slogx"
)

// AuthorizeRequest is a password login on behalf of a registered client.
type AuthorizeRequest struct {
	ClientID    string
	RedirectURI string
	State       string
	Nonce       string

	Username string
	Password string

	// RemoteAddr is recorded in the login audit log.
	RemoteAddr string
}

// AuthorizeCodeResponse carries what the handler needs to build the redirect.
type AuthorizeCodeResponse struct {
	Code        string
	RedirectURI string
	State       string
}

// loginAuditor is implemented by identity backends that keep a login log.
type loginAuditor interface {
	LogSuccessfulLogin(ctx context.Context, login, userID, clientID, redirectURI, remoteAddr string)
}

// Authorize checks the user's credentials and issues an authorization code
// bound to the client and the optional nonce.
//
// Returns ErrInvalidRequest for missing parameters or an unregistered
// redirect URI, ErrInvalidClient for unknown clients and
// ErrInvalidCredentials when the login fails.
func (s *TokenService) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeCodeResponse, error) {
	log := slogx.FromContext(ctx)

	req.ClientID = strings.TrimSpace(req.ClientID)
	req.RedirectURI = strings.TrimSpace(req.RedirectURI)
	req.Username = strings.TrimSpace(req.Username)
	if req.ClientID == "" || req.RedirectURI == "" || req.Username == "" {
		return nil, ErrInvalidRequest
	}

	client, ok := s.Clients.Lookup(req.ClientID)
	if !ok {
		return nil, ErrInvalidClient
	}
	if !client.AllowsRedirect(req.RedirectURI) {
		log.Info("authorize rejected unregistered redirect", "client_id", client.ID, "redirect_uri", req.RedirectURI)
		return nil, ErrInvalidRequest
	}

	userID, err := s.Authenticator.CredentialsValid(ctx, req.Username, req.Password)
	if errors.Is(err, identity.ErrBadCredentials) {
		log.Info("authorize credentials rejected", "client_id", client.ID)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("check credentials: %w", err)
	}

	code, err := cryptox.NewAuthCode()
	if err != nil {
		return nil, err
	}
	// Stamped with the store's clock so sweeps age codes and tokens alike.
	s.Tokens.AddAuthCode(domain.NewAuthCodeDataAt(code, client.ID, userID, req.Nonce, s.Tokens.Now()))

	if auditor, ok := s.Authenticator.(loginAuditor); ok {
		auditor.LogSuccessfulLogin(ctx, req.Username, userID, client.ID, req.RedirectURI, req.RemoteAddr)
	}

	return &AuthorizeCodeResponse{
		Code:        code,
		RedirectURI: req.RedirectURI,
		State:       req.State,
	}, nil
}
