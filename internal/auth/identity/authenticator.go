// Package identity is the user-account backend behind token issuance. It
// answers who a user is, what profile data they expose at a given scope, and
// whether guests can be minted.
package identity

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
)

var (
	ErrNoSuchUser      = errors.New("identity: no such user")
	ErrInvalidEmail    = errors.New("identity: invalid email address")
	ErrEmailInUse      = errors.New("identity: email already registered")
	ErrUsernameInUse   = errors.New("identity: username already in use")
	ErrMissingProperty = errors.New("identity: required property is empty")
	ErrBadCredentials  = errors.New("identity: invalid credentials")
	ErrInvalidQuery    = errors.New("identity: query must name exactly one of userId or userIds")
)

// Authenticator is what the token factory and token service need from an
// identity backend.
type Authenticator interface {
	// UserInfoByUserID returns the profile for userID at scope, or
	// ErrNoSuchUser.
	UserInfoByUserID(ctx context.Context, userID string, scope domain.DataScope) (domain.UserAccountInfo, error)

	// GuestProfileInfo returns the profile for a guest id previously handed
	// out by NextGuestID.
	GuestProfileInfo(ctx context.Context, userID string) (domain.UserAccountInfo, error)

	// NextGuestID allocates a fresh guest user id.
	NextGuestID(ctx context.Context) (string, error)

	SupportsGuests() bool

	// CredentialsValid checks a login (email or username) and password and
	// returns the user id. Returns ErrBadCredentials on mismatch.
	CredentialsValid(ctx context.Context, login, password string) (string, error)
}
