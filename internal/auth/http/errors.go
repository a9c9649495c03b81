package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/service"
	"github.com/aussiebroadwan/bartab-oidc/pkg/authsdk"
	"github.com/aussiebroadwan/bartab-oidc/pkg/slogx"
)

// validationErrors are surfaced to the caller as the error description.
var validationErrors = []error{
	identity.ErrInvalidEmail,
	identity.ErrEmailInUse,
	identity.ErrUsernameInUse,
	identity.ErrMissingProperty,
	identity.ErrInvalidQuery,
}

// oauth2Error maps a service error onto the wire error. Unknown errors are
// server errors.
func oauth2Error(err error) *authsdk.OAuth2Error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		for _, target := range validationErrors {
			if errors.Is(err, target) {
				return authsdk.ErrInvalidRequest.WithDescription(strings.TrimPrefix(target.Error(), "identity: "))
			}
		}
		return authsdk.ErrInvalidRequest
	case errors.Is(err, service.ErrInvalidClient):
		return authsdk.ErrInvalidClient
	case errors.Is(err, service.ErrInvalidGrant):
		return authsdk.ErrInvalidGrant
	case errors.Is(err, service.ErrInvalidCredentials):
		return authsdk.ErrAccessDenied.WithDescription("invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		return authsdk.ErrAccessDenied
	case errors.Is(err, service.ErrInvalidToken):
		return authsdk.ErrInvalidToken
	case errors.Is(err, service.ErrUnsupportedGrantType):
		return authsdk.ErrUnsupportedGrantType
	case errors.Is(err, service.ErrUnauthorizedClient):
		return authsdk.ErrUnauthorizedClient
	case errors.Is(err, service.ErrGuestsNotSupported):
		return authsdk.ErrGuestsNotSupported
	default:
		return nil
	}
}

// writeServiceError writes err as an OAuth2 error response and logs the
// ones the caller could not have caused.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if oerr := oauth2Error(err); oerr != nil {
		oerr.WriteError(w)
		return
	}
	slogx.FromContext(r.Context()).Error(op+" failed", "err", err)
	authsdk.ErrServerError.WriteError(w)
}

// clientCredentials reads client_id and client_secret from HTTP basic auth,
// falling back to the parsed form.
func clientCredentials(r *http.Request) (id, secret string) {
	if id, secret, ok := r.BasicAuth(); ok {
		return id, secret
	}
	return strings.TrimSpace(r.Form.Get("client_id")), r.Form.Get("client_secret")
}

// parseForm enforces the form content type and parses the body.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return false
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidBody.WriteError(w)
		return false
	}
	return true
}
