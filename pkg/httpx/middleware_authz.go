package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

// RequireRegisteredUser rejects signed bearer tokens issued to guests. It
// must run after AuthnMiddleware.
func RequireRegisteredUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			if isGuest, _ := claims.Bool(jwtx.ClaimIsGuest); isGuest {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope", error_description="guest tokens are not accepted"`)
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"error":             "insufficient_scope",
					"error_description": "guest tokens are not accepted",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
