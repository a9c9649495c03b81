package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/tokenstore"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/slogx"
)

// UserService manages accounts on behalf of authenticated clients.
type UserService struct {
	Accounts *identity.AccountDB
	Factory  *TokenFactory
	Tokens   *tokenstore.Store
	Keys     jwtx.SigningKeyStore
	Clients  domain.ClientRegistry
}

// CreateUser registers an account. When password is empty one is generated
// and returned in the password claim of the profile document.
func (s *UserService) CreateUser(
	ctx context.Context,
	clientID, clientSecret string,
	props domain.UserProperties,
	password string,
) (jwtx.Claims, error) {
	if err := s.authenticate(clientID, clientSecret); err != nil {
		return nil, err
	}

	generated := password == ""
	if generated {
		var err error
		if password, err = s.Accounts.GenerateNewPassword(); err != nil {
			return nil, err
		}
	}

	user, err := s.Accounts.CreateUser(ctx, props, password)
	if err != nil {
		return nil, mapIdentityError(err)
	}

	claims, err := s.Factory.CreateProfileJSON(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	slogx.FromContext(ctx).Info("user created", "client_id", clientID, "user_id", user.UserID)

	if generated {
		AppendPassword(claims, password)
	}
	return claims, nil
}

// ResetPassword assigns a generated password to userID, logs the user out
// everywhere and returns the profile with the new password.
func (s *UserService) ResetPassword(ctx context.Context, clientID, clientSecret, userID string) (jwtx.Claims, error) {
	if err := s.authenticate(clientID, clientSecret); err != nil {
		return nil, err
	}

	password, err := s.Accounts.GenerateNewPassword()
	if err != nil {
		return nil, err
	}
	if err := s.Accounts.ResetPassword(ctx, userID, password); err != nil {
		return nil, mapIdentityError(err)
	}
	s.Tokens.ClearObjectsForUser(userID)

	claims, err := s.Factory.CreateProfileJSON(ctx, userID)
	if err != nil {
		return nil, err
	}
	slogx.FromContext(ctx).Info("password reset", "client_id", clientID, "user_id", userID)

	return AppendPassword(claims, password), nil
}

// ModifyUser replaces the profile of userID and returns the stored profile.
// Tokens already issued keep the claims they were minted with.
func (s *UserService) ModifyUser(
	ctx context.Context,
	clientID, clientSecret, userID string,
	props domain.UserProperties,
) (jwtx.Claims, error) {
	if err := s.authenticate(clientID, clientSecret); err != nil {
		return nil, err
	}

	if _, err := s.Accounts.ModifyUser(ctx, userID, props); err != nil {
		return nil, mapIdentityError(err)
	}

	claims, err := s.Factory.CreateProfileJSON(ctx, userID)
	if err != nil {
		return nil, err
	}
	slogx.FromContext(ctx).Info("user modified", "client_id", clientID, "user_id", userID)
	return claims, nil
}

// SetPassword overwrites the password of the user logging in as login and
// signs them out everywhere. An empty password generates one, returned in
// the password claim.
func (s *UserService) SetPassword(ctx context.Context, clientID, clientSecret, login, password string) (jwtx.Claims, error) {
	if err := s.authenticate(clientID, clientSecret); err != nil {
		return nil, err
	}

	generated := password == ""
	if generated {
		var err error
		if password, err = s.Accounts.GenerateNewPassword(); err != nil {
			return nil, err
		}
	}

	userID, err := s.Accounts.OverwritePassword(ctx, login, password)
	if err != nil {
		return nil, mapIdentityError(err)
	}
	s.Tokens.ClearObjectsForUser(userID)

	claims, err := s.Factory.CreateProfileJSON(ctx, userID)
	if err != nil {
		return nil, err
	}
	slogx.FromContext(ctx).Info("password set", "client_id", clientID, "user_id", userID)

	if generated {
		AppendPassword(claims, password)
	}
	return claims, nil
}

// QueryUsers looks up public records for the requested ids.
func (s *UserService) QueryUsers(ctx context.Context, q identity.UserQuery) ([]domain.UserRecord, error) {
	records, err := s.Accounts.QueryUsers(ctx, q)
	if err != nil {
		return nil, mapIdentityError(err)
	}
	return records, nil
}

func (s *UserService) authenticate(clientID, clientSecret string) error {
	if _, ok := s.Clients.Lookup(clientID); !ok {
		return ErrInvalidClient
	}
	if _, err := s.Keys.SecretKey(clientID, clientSecret); err != nil {
		return ErrInvalidClient
	}
	return nil
}

// mapIdentityError folds validation failures into ErrInvalidRequest while
// keeping the cause in the chain.
func mapIdentityError(err error) error {
	switch {
	case errors.Is(err, identity.ErrNoSuchUser):
		return ErrForbidden
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrEmailInUse),
		errors.Is(err, identity.ErrUsernameInUse),
		errors.Is(err, identity.ErrMissingProperty),
		errors.Is(err, identity.ErrInvalidQuery):
		return errors.Join(ErrInvalidRequest, err)
	default:
		return err
	}
}
