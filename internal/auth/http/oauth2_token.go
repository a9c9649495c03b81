package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/service"
	"github.com/aussiebroadwan/bartab-oidc/pkg/httpx"
)

// TokenHandler serves the code exchange endpoints. Accepts
// application/x-www-form-urlencoded per RFC 6749; client credentials may
// come in the form or as HTTP basic auth.
type TokenHandler struct {
	TokenService *service.TokenService
}

// HandleToken godoc
//
//	@Summary		OAuth2 token endpoint
//	@Description	Redeems an authorization code for an opaque access token and an HS512 ID token
//	@Description	signed with the client secret. Codes stay redeemable until they expire.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(authorization_code)
//	@Param			code			formData	string					true	"Authorization code"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			client_secret	formData	string					true	"Client secret"
//	@Param			redirect_uri	formData	string					false	"Must be registered for the client when given"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, token_type, expires_in, id_token"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Router			/v1/oauth2/token [post]
func (h *TokenHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	req, ok := tokenRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.TokenService.ExchangeCode(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "code exchange", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleBearerToken godoc
//
//	@Summary		ES512 bearer token
//	@Description	Redeems an authorization code for an ES512-signed access token that resource
//	@Description	servers verify with the public key from the JWKS. No email claims are included.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(authorization_code)
//	@Param			code			formData	string					true	"Authorization code"
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			client_secret	formData	string					true	"Client secret"
//	@Param			redirect_uri	formData	string					false	"Must be registered for the client when given"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, token_type, expires_in"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/oauth2/bearer-token [post]
func (h *TokenHandler) HandleBearerToken(w http.ResponseWriter, r *http.Request) {
	req, ok := tokenRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.TokenService.BearerToken(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "bearer token", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGuestToken godoc
//
//	@Summary		Guest token
//	@Description	Creates a guest user and returns an ES512 access token for it. The client must
//	@Description	be registered with allow_guests.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			client_id		formData	string					true	"Client identifier"
//	@Param			client_secret	formData	string					true	"Client secret"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, token_type, expires_in"
//	@Failure		400				{object}	authsdk.ErrorResponse	"guests_not_supported or unauthorized_client"
//	@Failure		401				{object}	authsdk.ErrorResponse	"invalid_client"
//	@Router			/v1/oauth2/guest-token [post]
func (h *TokenHandler) HandleGuestToken(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	clientID, clientSecret := clientCredentials(r)

	resp, err := h.TokenService.GuestToken(r.Context(), clientID, clientSecret)
	if err != nil {
		writeServiceError(w, r, "guest token", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func tokenRequest(w http.ResponseWriter, r *http.Request) (service.TokenRequest, bool) {
	if !parseForm(w, r) {
		return service.TokenRequest{}, false
	}
	clientID, clientSecret := clientCredentials(r)

	return service.TokenRequest{
		GrantType:    strings.TrimSpace(r.Form.Get("grant_type")),
		Code:         r.Form.Get("code"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  strings.TrimSpace(r.Form.Get("redirect_uri")),
	}, true
}
