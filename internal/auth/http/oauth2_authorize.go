package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/service"
	"github.com/aussiebroadwan/bartab-oidc/pkg/authsdk"
	"github.com/aussiebroadwan/bartab-oidc/pkg/httpx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/slogx"
)

// AuthorizeHandler serves POST /v1/oauth2/authorize: a password login that
// answers with an authorization code.
type AuthorizeHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 authorization endpoint
//	@Description	Checks the user's credentials and redirects to redirect_uri with an authorization code.
//	@Description	The code is bound to the client and to the optional nonce, which is echoed in the ID token.
//	@Description
//	@Description	**Response:**
//	@Description	- Success: 302 redirect to redirect_uri with code and state
//	@Description	- Bad credentials: 302 redirect to redirect_uri with error=access_denied
//	@Description	- Unknown client or unregistered redirect_uri: JSON error, no redirect
//	@Tags			OAuth2
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			response_type	formData	string					false	"Must be 'code' when given"	default(code)
//	@Param			client_id		formData	string					true	"OAuth2 client identifier"
//	@Param			redirect_uri	formData	string					true	"Registered callback URI"
//	@Param			state			formData	string					false	"Opaque value echoed in the redirect"
//	@Param			nonce			formData	string					false	"Echoed in the ID token"
//	@Param			username		formData	string					true	"Email address or username"
//	@Param			password		formData	string					true	"Password"
//	@Success		302				{string}	string					"Redirect to redirect_uri with code and state"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/oauth2/authorize [post]
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	if rt := strings.TrimSpace(r.Form.Get("response_type")); rt != "" && rt != "code" {
		authsdk.ErrInvalidRequest.WithDescription("response_type must be code").WriteError(w)
		return
	}

	req := service.AuthorizeRequest{
		ClientID:    r.Form.Get("client_id"),
		RedirectURI: r.Form.Get("redirect_uri"),
		State:       r.Form.Get("state"),
		Nonce:       r.Form.Get("nonce"),
		Username:    r.Form.Get("username"),
		Password:    r.Form.Get("password"),
		RemoteAddr:  httpx.IPKeyExtractor(r),
	}

	resp, err := h.TokenService.Authorize(r.Context(), req)
	if err != nil {
		// Only reached once redirect_uri has been checked against the
		// client's registration, so redirecting is safe (RFC 6749 4.1.2.1).
		if errors.Is(err, service.ErrInvalidCredentials) {
			if target := buildErrorRedirect(strings.TrimSpace(req.RedirectURI), req.State, authsdk.ErrorCodeAccessDenied, "invalid credentials"); target != "" {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
		}
		writeServiceError(w, r, "authorize", err)
		return
	}

	target, err := buildAuthorizeRedirect(resp.RedirectURI, resp.Code, resp.State)
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to build redirect URL", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, target, http.StatusFound)
}

func buildAuthorizeRedirect(baseURI, code, state string) (string, error) {
	u, err := url.Parse(baseURI)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// buildErrorRedirect returns "" if baseURI does not parse.
func buildErrorRedirect(baseURI, state, errorCode, description string) string {
	u, err := url.Parse(baseURI)
	if err != nil {
		return ""
	}

	q := u.Query()
	q.Set("error", errorCode)
	if description != "" {
		q.Set("error_description", description)
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
