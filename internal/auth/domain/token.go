package domain

import "time"

// IdTokenParams records who asked for a token and when they authenticated.
// CreationTime is the Unix time, in seconds, at construction and never
// changes afterwards. An empty Nonce means the client didn't send one.
type IdTokenParams struct {
	ClientID     string
	Nonce        string
	CreationTime int64
}

// NewIdTokenParams captures the current time as the authentication time.
func NewIdTokenParams(clientID, nonce string) IdTokenParams {
	return NewIdTokenParamsAt(clientID, nonce, time.Now())
}

// NewIdTokenParamsAt is NewIdTokenParams with an explicit creation time.
func NewIdTokenParamsAt(clientID, nonce string, at time.Time) IdTokenParams {
	return IdTokenParams{
		ClientID:     clientID,
		Nonce:        nonce,
		CreationTime: at.Unix(),
	}
}

// AuthCodeData is an issued authorization code. It's identified by AuthCode
// alone and is never mutated. Exchanging a code does not consume it: it can
// be redeemed until it expires or its user is logged out.
type AuthCodeData struct {
	IdTokenParams
	AuthCode string
	UserID   string
}

// NewAuthCodeData creates the record for a code issued now.
func NewAuthCodeData(authCode, clientID, userID, nonce string) AuthCodeData {
	return NewAuthCodeDataAt(authCode, clientID, userID, nonce, time.Now())
}

// NewAuthCodeDataAt creates the record for a code issued at the given time.
func NewAuthCodeDataAt(authCode, clientID, userID, nonce string, at time.Time) AuthCodeData {
	return AuthCodeData{
		IdTokenParams: NewIdTokenParamsAt(clientID, nonce, at),
		AuthCode:      authCode,
		UserID:        userID,
	}
}

// AccessTokenData is an issued opaque access token, identified by
// TokenValue, along with the code it was minted from.
type AccessTokenData struct {
	TokenValue   string
	AuthCodeData AuthCodeData
	CreationTime int64
}

// UserID returns the owner of the token.
func (a AccessTokenData) UserID() string { return a.AuthCodeData.UserID }
