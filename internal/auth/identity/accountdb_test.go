package identity_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bartab-oidc/pkg/cryptox"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "identity-pepper")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newAccountDB(t *testing.T) *identity.AccountDB {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	return identity.NewAccountDB(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func adaProps() domain.UserProperties {
	return domain.UserProperties{
		Email:        "  Ada@Example.COM ",
		Username:     "ada",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Organization: "Analytical Engines",
		Interests:    "mathematics",
	}
}

func TestCreateUserAndLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newAccountDB(t)

	created, err := db.CreateUser(ctx, adaProps(), "correct horse")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", created.Email)
	require.False(t, created.EmailVerified)
	require.NotEmpty(t, created.PreferredUsername)
	require.Equal(t, "Ada Lovelace", created.SupplementalFields[identity.FieldName])

	t.Run("login by email is case insensitive", func(t *testing.T) {
		userID, err := db.CredentialsValid(ctx, "ADA@example.com", "correct horse")
		require.NoError(t, err)
		require.Equal(t, created.UserID, userID)
	})

	t.Run("login by username", func(t *testing.T) {
		userID, err := db.CredentialsValid(ctx, "ada", "correct horse")
		require.NoError(t, err)
		require.Equal(t, created.UserID, userID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := db.CredentialsValid(ctx, "ada", "battery staple")
		require.ErrorIs(t, err, identity.ErrBadCredentials)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, err := db.CredentialsValid(ctx, "grace", "whatever")
		require.ErrorIs(t, err, identity.ErrBadCredentials)
	})

	t.Run("reset password", func(t *testing.T) {
		require.NoError(t, db.ResetPassword(ctx, created.UserID, "new secret"))

		_, err := db.CredentialsValid(ctx, "ada", "correct horse")
		require.ErrorIs(t, err, identity.ErrBadCredentials)
		userID, err := db.CredentialsValid(ctx, "ada", "new secret")
		require.NoError(t, err)
		require.Equal(t, created.UserID, userID)
	})
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newAccountDB(t)

	_, err := db.CreateUser(ctx, adaProps(), "pw")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*domain.UserProperties)
		want   error
	}{
		{"empty email", func(p *domain.UserProperties) { p.Email = "   " }, identity.ErrInvalidEmail},
		{"missing at sign", func(p *domain.UserProperties) { p.Email = "ada.example.com" }, identity.ErrInvalidEmail},
		{"leading at sign", func(p *domain.UserProperties) { p.Email = "@example.com" }, identity.ErrInvalidEmail},
		{"duplicate email", func(p *domain.UserProperties) { p.Username = "other" }, identity.ErrEmailInUse},
		{"duplicate username", func(p *domain.UserProperties) { p.Email = "grace@example.com" }, identity.ErrUsernameInUse},
		{"missing first name", func(p *domain.UserProperties) {
			p.Email = "grace@example.com"
			p.Username = ""
			p.FirstName = " "
		}, identity.ErrMissingProperty},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			props := adaProps()
			tc.mutate(&props)
			_, err := db.CreateUser(ctx, props, "pw")
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUserInfoScopes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newAccountDB(t)

	created, err := db.CreateUser(ctx, adaProps(), "pw")
	require.NoError(t, err)

	idToken, err := db.UserInfoByUserID(ctx, created.UserID, domain.ScopeIDToken)
	require.NoError(t, err)
	require.True(t, idToken.EmailVerified)
	require.Equal(t, created.PreferredUsername, idToken.PreferredUsername)
	require.Equal(t, map[string]any{
		identity.FieldName:         "Ada Lovelace",
		identity.FieldOrganization: "Analytical Engines",
	}, idToken.SupplementalFields)

	profile, err := db.UserInfoByUserID(ctx, created.UserID, domain.ScopeProfile)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		identity.FieldName:         "Ada Lovelace",
		identity.FieldOrganization: "Analytical Engines",
		identity.FieldFirstName:    "Ada",
		identity.FieldLastName:     "Lovelace",
		identity.FieldUsername:     "ada",
		identity.FieldInterests:    "mathematics",
	}, profile.SupplementalFields)

	byLogin, err := db.UserInfoByLoginName(ctx, "ada@example.com", domain.ScopeIDToken)
	require.NoError(t, err)
	require.Equal(t, created.UserID, byLogin.UserID)

	_, err = db.UserInfoByUserID(ctx, "999", domain.ScopeIDToken)
	require.ErrorIs(t, err, identity.ErrNoSuchUser)
	_, err = db.UserInfoByUserID(ctx, "not-a-number", domain.ScopeIDToken)
	require.ErrorIs(t, err, identity.ErrNoSuchUser)
}

func TestGuests(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newAccountDB(t)
	require.True(t, db.SupportsGuests())

	first, err := db.NextGuestID(ctx)
	require.NoError(t, err)
	second, err := db.NextGuestID(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	guest, err := db.GuestProfileInfo(ctx, first)
	require.NoError(t, err)
	require.True(t, guest.IsGuest)
	require.False(t, guest.EmailVerified)
	require.Empty(t, guest.Email)
	require.NotEmpty(t, guest.PreferredUsername)

	// Guests never authenticate with credentials.
	_, err = db.CredentialsValid(ctx, guest.PreferredUsername, "")
	require.ErrorIs(t, err, identity.ErrBadCredentials)

	created, err := db.CreateUser(ctx, adaProps(), "pw")
	require.NoError(t, err)
	_, err = db.GuestProfileInfo(ctx, created.UserID)
	require.ErrorIs(t, err, identity.ErrNoSuchUser)
}

func TestQueryUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newAccountDB(t)

	created, err := db.CreateUser(ctx, adaProps(), "pw")
	require.NoError(t, err)
	guestID, err := db.NextGuestID(ctx)
	require.NoError(t, err)

	_, err = db.QueryUsers(ctx, identity.UserQuery{})
	require.ErrorIs(t, err, identity.ErrInvalidQuery)

	one := int64(1)
	_, err = db.QueryUsers(ctx, identity.UserQuery{UserID: &one, UserIDs: []int64{2}})
	require.ErrorIs(t, err, identity.ErrInvalidQuery)

	records, err := db.QueryUsers(ctx, identity.UserQuery{UserIDs: []int64{1, 2, 77}})
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, created.UserID, "1")
	require.Equal(t, domain.UserRecord{
		UserID:       1,
		Found:        true,
		Email:        "ada@example.com",
		Name:         "Ada Lovelace",
		Organization: "Analytical Engines",
	}, records[0])

	require.Equal(t, "2", guestID)
	require.True(t, records[1].Found)
	require.True(t, records[1].IsGuest)

	require.Equal(t, domain.UserRecord{UserID: 77}, records[2])
}

func TestGenerateNewPassword(t *testing.T) {
	t.Parallel()

	db := newAccountDB(t)
	pw, err := db.GenerateNewPassword()
	require.NoError(t, err)
	require.Len(t, pw, cryptox.GeneratedPasswordLength)
}

func TestModifyUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newAccountDB(t)

	ada, err := db.CreateUser(ctx, adaProps(), "pw")
	require.NoError(t, err)
	_, err = db.CreateUser(ctx, domain.UserProperties{
		Email:        "grace@example.com",
		Username:     "grace",
		FirstName:    "Grace",
		LastName:     "Hopper",
		Organization: "US Navy",
	}, "pw")
	require.NoError(t, err)

	t.Run("keeping own email and username", func(t *testing.T) {
		props := adaProps()
		props.Organization = " Royal Society "
		props.MiddleName = "Augusta"

		info, err := db.ModifyUser(ctx, ada.UserID, props)
		require.NoError(t, err)
		require.Equal(t, ada.UserID, info.UserID)
		require.Equal(t, ada.PreferredUsername, info.PreferredUsername)
		require.Equal(t, "ada@example.com", info.Email)
		require.True(t, info.EmailVerified)
		require.Equal(t, "Royal Society", info.SupplementalFields[identity.FieldOrganization])
		require.Equal(t, "Ada Augusta Lovelace", info.SupplementalFields[identity.FieldName])
	})

	t.Run("new email logs in, old one does not", func(t *testing.T) {
		props := adaProps()
		props.Email = "Countess@Example.com"
		_, err := db.ModifyUser(ctx, ada.UserID, props)
		require.NoError(t, err)

		userID, err := db.CredentialsValid(ctx, "countess@example.com", "pw")
		require.NoError(t, err)
		require.Equal(t, ada.UserID, userID)
		_, err = db.CredentialsValid(ctx, "ada@example.com", "pw")
		require.ErrorIs(t, err, identity.ErrBadCredentials)
	})

	tests := []struct {
		name   string
		userID string
		mutate func(*domain.UserProperties)
		want   error
	}{
		{"email of another user", ada.UserID, func(p *domain.UserProperties) { p.Email = "GRACE@example.com" }, identity.ErrEmailInUse},
		{"username of another user", ada.UserID, func(p *domain.UserProperties) { p.Username = "grace" }, identity.ErrUsernameInUse},
		{"bad email", ada.UserID, func(p *domain.UserProperties) { p.Email = "nope" }, identity.ErrInvalidEmail},
		{"blank last name", ada.UserID, func(p *domain.UserProperties) { p.LastName = "  " }, identity.ErrMissingProperty},
		{"unknown user", "99", func(*domain.UserProperties) {}, identity.ErrNoSuchUser},
		{"non-numeric id", "ada", func(*domain.UserProperties) {}, identity.ErrNoSuchUser},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			props := adaProps()
			props.Email = "countess@example.com"
			tc.mutate(&props)
			_, err := db.ModifyUser(ctx, tc.userID, props)
			require.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("guests have no profile", func(t *testing.T) {
		guestID, err := db.NextGuestID(ctx)
		require.NoError(t, err)
		props := adaProps()
		props.Email = "guest@example.com"
		props.Username = ""
		_, err = db.ModifyUser(ctx, guestID, props)
		require.ErrorIs(t, err, identity.ErrNoSuchUser)
	})
}

func TestOverwritePassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newAccountDB(t)

	ada, err := db.CreateUser(ctx, adaProps(), "old")
	require.NoError(t, err)

	userID, err := db.OverwritePassword(ctx, "ada", "new")
	require.NoError(t, err)
	require.Equal(t, ada.UserID, userID)

	_, err = db.CredentialsValid(ctx, "ada@example.com", "old")
	require.ErrorIs(t, err, identity.ErrBadCredentials)
	_, err = db.CredentialsValid(ctx, "ada@example.com", "new")
	require.NoError(t, err)

	_, err = db.OverwritePassword(ctx, "nobody@example.com", "x")
	require.ErrorIs(t, err, identity.ErrNoSuchUser)
}
