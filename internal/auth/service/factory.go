package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/slogx"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrGuestsNotSupported = errors.New("guests_not_supported")
	ErrInvalidScope       = errors.New("invalid_scope")
)

// TokenFactory assembles claims documents from identity backend profiles.
// It never signs anything.
type TokenFactory struct {
	Authenticator identity.Authenticator
	Logger        *slog.Logger

	// Now is the clock used for iat and exp. Defaults to time.Now.
	Now func() time.Time
}

// CreateTokenJSON builds the claims for an ID token (ScopeIDToken) or a
// bearer token (ScopeBearerToken) for userID. ScopeProfile is rejected with
// ErrInvalidScope. A user the backend doesn't know yields ErrForbidden.
func (f *TokenFactory) CreateTokenJSON(
	ctx context.Context,
	userID string,
	params domain.IdTokenParams,
	issuer string,
	expirationSecs int64,
	scope domain.DataScope,
) (jwtx.Claims, error) {
	if scope == domain.ScopeProfile {
		return nil, fmt.Errorf("%w: %s cannot be used for tokens", ErrInvalidScope, scope)
	}

	user, err := f.userInfo(ctx, userID, scope)
	if err != nil {
		return nil, err
	}

	claims := baseClaims(user)
	f.appendOIDCFields(claims, params, issuer, expirationSecs)
	f.appendProfileFields(ctx, claims, user, scope)
	return claims, nil
}

// CreateGuestTokenJSON allocates a new guest and builds its token claims.
// Guest tokens carry only the base and OIDC claims.
func (f *TokenFactory) CreateGuestTokenJSON(
	ctx context.Context,
	clientID, issuer string,
	expirationSecs int64,
) (jwtx.Claims, error) {
	if !f.Authenticator.SupportsGuests() {
		return nil, ErrGuestsNotSupported
	}

	guestID, err := f.Authenticator.NextGuestID(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate guest id: %w", err)
	}

	guest, err := f.Authenticator.GuestProfileInfo(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("load guest %s: %w", guestID, err)
	}

	claims := baseClaims(guest)
	f.appendOIDCFields(claims, domain.NewIdTokenParamsAt(clientID, "", f.now()), issuer, expirationSecs)
	return claims, nil
}

// CreateProfileJSON builds the user-info document for userID: the base
// claims plus every profile field at ScopeProfile.
func (f *TokenFactory) CreateProfileJSON(ctx context.Context, userID string) (jwtx.Claims, error) {
	user, err := f.userInfo(ctx, userID, domain.ScopeProfile)
	if err != nil {
		return nil, err
	}

	claims := baseClaims(user)
	f.appendProfileFields(ctx, claims, user, domain.ScopeProfile)
	return claims, nil
}

// AppendPassword adds a freshly issued password to a claims document. Only
// used in responses that hand a generated password back to the client.
func AppendPassword(claims jwtx.Claims, password string) jwtx.Claims {
	claims[jwtx.ClaimPassword] = password
	return claims
}

func (f *TokenFactory) userInfo(ctx context.Context, userID string, scope domain.DataScope) (domain.UserAccountInfo, error) {
	user, err := f.Authenticator.UserInfoByUserID(ctx, userID, scope)
	if errors.Is(err, identity.ErrNoSuchUser) {
		f.logger(ctx).Warn("token requested for unknown user", "user_id", userID)
		return domain.UserAccountInfo{}, ErrForbidden
	}
	if err != nil {
		f.logger(ctx).Error("unable to retrieve user info", "user_id", userID, "error", err)
		return domain.UserAccountInfo{}, fmt.Errorf("user info for %s: %w", userID, err)
	}
	return user, nil
}

func baseClaims(user domain.UserAccountInfo) jwtx.Claims {
	return jwtx.Claims{
		jwtx.ClaimSubject: user.UserID,
		jwtx.ClaimIsGuest: user.IsGuest,
	}
}

func (f *TokenFactory) appendOIDCFields(claims jwtx.Claims, params domain.IdTokenParams, issuer string, expirationSecs int64) {
	now := f.now().Unix()
	claims[jwtx.ClaimIssuer] = issuer
	claims[jwtx.ClaimAudience] = params.ClientID
	claims[jwtx.ClaimAuthorizedParty] = params.ClientID
	claims[jwtx.ClaimAuthTime] = params.CreationTime
	claims[jwtx.ClaimIssuedAt] = now
	claims[jwtx.ClaimExpiresAt] = now + expirationSecs

	if params.Nonce != "" {
		claims[jwtx.ClaimNonce] = params.Nonce
	}
}

func (f *TokenFactory) appendProfileFields(ctx context.Context, claims jwtx.Claims, user domain.UserAccountInfo, scope domain.DataScope) {
	if scope != domain.ScopeBearerToken && strings.TrimSpace(user.Email) != "" {
		claims[jwtx.ClaimEmail] = user.Email
		claims[jwtx.ClaimEmailVerified] = user.EmailVerified
	}

	if strings.TrimSpace(user.PreferredUsername) != "" {
		claims[jwtx.ClaimPreferredUsername] = user.PreferredUsername
	}

	if strings.TrimSpace(user.Signature) != "" {
		claims[jwtx.ClaimSignature] = user.Signature
	}

	for name, value := range user.SupplementalFields {
		if jwtx.IsReservedClaim(name) {
			f.logger(ctx).Warn("identity backend tried to override a reserved claim, skipping", "claim", name)
			continue
		}
		claims[name] = value
	}
}

func (f *TokenFactory) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *TokenFactory) logger(ctx context.Context) *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slogx.FromContext(ctx)
}
