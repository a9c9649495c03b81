package jwtx

import "github.com/golang-jwt/jwt/v5"

// Claim names with fixed meaning in issued tokens. Identity backends may add
// their own fields to a token but can never override one of these.
const (
	ClaimSubject           = "sub"
	ClaimIsGuest           = "is_guest"
	ClaimIssuer            = "iss"
	ClaimAudience          = "aud"
	ClaimAuthorizedParty   = "azp"
	ClaimAuthTime          = "auth_time"
	ClaimIssuedAt          = "iat"
	ClaimExpiresAt         = "exp"
	ClaimNonce             = "nonce"
	ClaimEmail             = "email"
	ClaimEmailVerified     = "email_verified"
	ClaimPreferredUsername = "preferred_username"
	ClaimSignature         = "signature"
	ClaimPassword          = "password"
)

var reservedClaims = map[string]struct{}{
	ClaimSubject:           {},
	ClaimIsGuest:           {},
	ClaimIssuer:            {},
	ClaimAudience:          {},
	ClaimAuthorizedParty:   {},
	ClaimAuthTime:          {},
	ClaimIssuedAt:          {},
	ClaimExpiresAt:         {},
	ClaimNonce:             {},
	ClaimEmail:             {},
	ClaimEmailVerified:     {},
	ClaimPreferredUsername: {},
	ClaimSignature:         {},
	ClaimPassword:          {},
}

// IsReservedClaim reports whether name is one of the fixed claim names.
func IsReservedClaim(name string) bool {
	_, ok := reservedClaims[name]
	return ok
}

// Claims is a flat claims document. Values are strings, numbers or booleans
// and are signed using their standard JSON encoding.
type Claims map[string]any

// String returns the string value of a claim, or "" when it is missing or
// not a string.
func (c Claims) String(name string) string {
	s, _ := c[name].(string)
	return s
}

// Int64 returns the numeric value of a claim. Claims decoded from JSON hold
// float64 values, claims built in process hold int64.
func (c Claims) Int64(name string) (int64, bool) {
	switch v := c[name].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

// Bool returns the boolean value of a claim.
func (c Claims) Bool(name string) (bool, bool) {
	b, ok := c[name].(bool)
	return b, ok
}

func (c Claims) mapClaims() jwt.MapClaims {
	return jwt.MapClaims(c)
}
