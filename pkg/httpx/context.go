package httpx

import (
	"context"

	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID      ctxKey = "user_id"
	CtxKeyAccessToken ctxKey = "access_token"
	CtxKeyClaims      ctxKey = "claims"
)

// UserIDFromContext returns the authenticated user id set by one of the
// authentication middlewares.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// AccessTokenFromContext returns the raw bearer credential of the request.
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyAccessToken).(string)
	return v, ok && v != ""
}

// ClaimsFromContext returns the verified claims of a signed bearer token.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}
