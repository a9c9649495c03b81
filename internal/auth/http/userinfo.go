package http

import (
	"net/http"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/service"
	"github.com/aussiebroadwan/bartab-oidc/pkg/authsdk"
	"github.com/aussiebroadwan/bartab-oidc/pkg/httpx"
)

// SessionHandler serves the endpoints authenticated with the opaque access
// token from the code exchange.
type SessionHandler struct {
	TokenService *service.TokenService
}

// HandleUserInfo godoc
//
//	@Summary		Get user information
//	@Description	Returns the profile of the user owning the access token: sub, is_guest, email,
//	@Description	email_verified, preferred_username, signature and the backend's profile fields.
//	@Tags			User
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Profile claims"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"User no longer exists"
//	@Router			/v1/user [get]
func (h *SessionHandler) HandleUserInfo(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.AccessTokenFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	claims, err := h.TokenService.Profile(r.Context(), token)
	if err != nil {
		writeServiceError(w, r, "user info", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, claims)
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Invalidates every authorization code and access token of the token's owner.
//	@Tags			User
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/logout [post]
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := httpx.AccessTokenFromContext(r.Context())
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.TokenService.Logout(r.Context(), token); err != nil {
		writeServiceError(w, r, "logout", err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
