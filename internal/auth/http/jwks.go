package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

// JWKSHandler godoc
//
//	@Summary		Get JWKS
//	@Description	Returns the key set: kid "0" is the HS512 descriptor (the key is each client's
//	@Description	own secret), kid "1" is the P-521 public key for ES512 tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	jwtx.JWKS	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(jwks jwtx.JWKS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(jwks)
	}
}
