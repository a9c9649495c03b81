package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/store"
	"github.com/aussiebroadwan/bartab-oidc/pkg/cryptox"
	"github.com/aussiebroadwan/bartab-oidc/pkg/idx"
)

// Supplemental field names returned alongside the standard profile.
const (
	FieldName         = "name"
	FieldOrganization = "organization"
	FieldFirstName    = "firstName"
	FieldMiddleName   = "middleName"
	FieldLastName     = "lastName"
	FieldUsername     = "username"
	FieldInterests    = "interests"
)

// AccountDB is the Authenticator backed by the account store.
type AccountDB struct {
	store    store.Store
	logger   *slog.Logger
	loginLog *slog.Logger
}

var _ Authenticator = (*AccountDB)(nil)

func NewAccountDB(s store.Store, logger *slog.Logger) *AccountDB {
	return &AccountDB{
		store:    s,
		logger:   logger,
		loginLog: logger.With("log", "login"),
	}
}

func (a *AccountDB) SupportsGuests() bool { return true }

func (a *AccountDB) CredentialsValid(ctx context.Context, login, password string) (string, error) {
	account, err := a.lookupLogin(ctx, login)
	if errors.Is(err, ErrNoSuchUser) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}

	if account.IsGuest || account.PasswordHash == "" {
		return "", ErrBadCredentials
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return "", ErrBadCredentials
		}
		return "", fmt.Errorf("verify password: %w", err)
	}

	return formatUserID(account.ID), nil
}

// UserInfoByLoginName resolves a login the same way CredentialsValid does.
func (a *AccountDB) UserInfoByLoginName(ctx context.Context, login string, scope domain.DataScope) (domain.UserAccountInfo, error) {
	account, err := a.lookupLogin(ctx, login)
	if err != nil {
		return domain.UserAccountInfo{}, err
	}
	return userInfo(account, true, scope), nil
}

func (a *AccountDB) UserInfoByUserID(ctx context.Context, userID string, scope domain.DataScope) (domain.UserAccountInfo, error) {
	account, err := a.accountByUserID(ctx, userID)
	if err != nil {
		return domain.UserAccountInfo{}, err
	}
	return userInfo(account, true, scope), nil
}

func (a *AccountDB) NextGuestID(ctx context.Context) (string, error) {
	id, err := a.store.Accounts().CreateGuestAccount(ctx, idx.New().String())
	if err != nil {
		return "", fmt.Errorf("create guest account: %w", err)
	}
	return formatUserID(id), nil
}

func (a *AccountDB) GuestProfileInfo(ctx context.Context, userID string) (domain.UserAccountInfo, error) {
	account, err := a.accountByUserID(ctx, userID)
	if err != nil {
		return domain.UserAccountInfo{}, err
	}
	if !account.IsGuest {
		return domain.UserAccountInfo{}, ErrNoSuchUser
	}
	return userInfo(account, false, domain.ScopeProfile), nil
}

// CreateUser validates props, stores a new account with the given initial
// password and returns its profile. New users have unverified emails.
func (a *AccountDB) CreateUser(ctx context.Context, props domain.UserProperties, password string) (domain.UserAccountInfo, error) {
	props, err := validateProps(props)
	if err != nil {
		return domain.UserAccountInfo{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.UserAccountInfo{}, fmt.Errorf("hash password: %w", err)
	}

	var account domain.Account
	err = a.store.WithTx(ctx, func(tx store.Tx) error {
		accounts := tx.Accounts()
		if err := checkUnique(ctx, accounts, props, 0); err != nil {
			return err
		}

		id, err := accounts.CreateAccount(ctx, domain.Account{
			Email:        props.Email,
			Username:     props.Username,
			PasswordHash: hash,
			StableID:     idx.New().String(),
			FirstName:    props.FirstName,
			MiddleName:   props.MiddleName,
			LastName:     props.LastName,
			Organization: props.Organization,
			Interests:    props.Interests,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrEmailInUse
		}
		if err != nil {
			return err
		}

		account, err = accounts.GetAccountByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.UserAccountInfo{}, err
	}

	a.logger.InfoContext(ctx, "account created", "user_id", account.ID)
	return userInfo(account, false, domain.ScopeProfile), nil
}

// ModifyUser replaces the profile of userID with props, validated the same
// way as on creation, and returns the profile as stored. An empty username
// clears it. Guests have no profile to modify.
func (a *AccountDB) ModifyUser(ctx context.Context, userID string, props domain.UserProperties) (domain.UserAccountInfo, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return domain.UserAccountInfo{}, err
	}
	props, err = validateProps(props)
	if err != nil {
		return domain.UserAccountInfo{}, err
	}

	var account domain.Account
	err = a.store.WithTx(ctx, func(tx store.Tx) error {
		accounts := tx.Accounts()

		current, err := accounts.GetAccountByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoSuchUser
		}
		if err != nil {
			return err
		}
		if current.IsGuest {
			return ErrNoSuchUser
		}

		if err := checkUnique(ctx, accounts, props, id); err != nil {
			return err
		}

		err = accounts.UpdateAccount(ctx, domain.Account{
			ID:           id,
			Email:        props.Email,
			Username:     props.Username,
			FirstName:    props.FirstName,
			MiddleName:   props.MiddleName,
			LastName:     props.LastName,
			Organization: props.Organization,
			Interests:    props.Interests,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrEmailInUse
		}
		if err != nil {
			return err
		}

		account, err = accounts.GetAccountByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.UserAccountInfo{}, err
	}

	a.logger.InfoContext(ctx, "account modified", "user_id", account.ID)
	return userInfo(account, true, domain.ScopeProfile), nil
}

// validateProps normalizes the email and trims every field, then checks the
// email format and the required names.
func validateProps(props domain.UserProperties) (domain.UserProperties, error) {
	email, err := normalizeEmail(props.Email)
	if err != nil {
		return props, err
	}

	out := domain.UserProperties{
		Email:        email,
		Username:     strings.TrimSpace(props.Username),
		FirstName:    strings.TrimSpace(props.FirstName),
		MiddleName:   strings.TrimSpace(props.MiddleName),
		LastName:     strings.TrimSpace(props.LastName),
		Organization: strings.TrimSpace(props.Organization),
		Interests:    strings.TrimSpace(props.Interests),
	}

	for _, f := range []struct{ name, value string }{
		{FieldFirstName, out.FirstName},
		{FieldLastName, out.LastName},
		{FieldOrganization, out.Organization},
	} {
		if f.value == "" {
			return props, fmt.Errorf("%w: %s", ErrMissingProperty, f.name)
		}
	}
	return out, nil
}

// checkUnique fails when the email or username is held by an account other
// than owner. owner is 0 for accounts not yet created.
func checkUnique(ctx context.Context, accounts store.Accounts, props domain.UserProperties, owner int64) error {
	existing, err := accounts.GetAccountByEmail(ctx, props.Email)
	switch {
	case err == nil && existing.ID != owner:
		return ErrEmailInUse
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return err
	}

	if props.Username == "" {
		return nil
	}
	existing, err = accounts.GetAccountByUsername(ctx, props.Username)
	switch {
	case err == nil && existing.ID != owner:
		return ErrUsernameInUse
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return err
	}
	return nil
}

// ResetPassword replaces the password of userID.
func (a *AccountDB) ResetPassword(ctx context.Context, userID, newPassword string) error {
	id, err := parseUserID(userID)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = a.store.Accounts().UpdatePasswordHash(ctx, id, hash)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoSuchUser
	}
	return err
}

// OverwritePassword sets the password of the account that logs in as login
// (email or username). Guests have no password to set.
func (a *AccountDB) OverwritePassword(ctx context.Context, login, newPassword string) (string, error) {
	account, err := a.lookupLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if account.IsGuest {
		return "", ErrNoSuchUser
	}

	userID := formatUserID(account.ID)
	if err := a.ResetPassword(ctx, userID, newPassword); err != nil {
		return "", err
	}
	return userID, nil
}

// GenerateNewPassword returns a random password suitable for a reset email.
func (a *AccountDB) GenerateNewPassword() (string, error) {
	return cryptox.GeneratePassword()
}

// LogSuccessfulLogin writes one audit line per successful login.
func (a *AccountDB) LogSuccessfulLogin(ctx context.Context, login, userID, clientID, redirectURI, remoteAddr string) {
	a.loginLog.InfoContext(ctx, "login",
		"remote_addr", remoteAddr,
		"client_id", clientID,
		"redirect_host", redirectHost(redirectURI),
		"user_id", userID,
		"login", login,
	)
}

// UserQuery selects users by id. Exactly one of UserID or UserIDs is set.
type UserQuery struct {
	UserID  *int64  `json:"userId,omitempty"`
	UserIDs []int64 `json:"userIds,omitempty"`
}

// QueryUsers returns one record per requested id, in request order. Unknown
// ids come back with Found unset.
func (a *AccountDB) QueryUsers(ctx context.Context, q UserQuery) ([]domain.UserRecord, error) {
	if (q.UserID == nil) == (q.UserIDs == nil) {
		return nil, ErrInvalidQuery
	}

	ids := q.UserIDs
	if q.UserID != nil {
		ids = []int64{*q.UserID}
	}

	records := make([]domain.UserRecord, 0, len(ids))
	for _, id := range ids {
		account, err := a.store.Accounts().GetAccountByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			records = append(records, domain.UserRecord{UserID: id})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("query user %d: %w", id, err)
		}
		records = append(records, domain.UserRecord{
			UserID:       id,
			Found:        true,
			IsGuest:      account.IsGuest,
			Email:        account.Email,
			Name:         displayName(account),
			Organization: account.Organization,
		})
	}
	return records, nil
}

func (a *AccountDB) lookupLogin(ctx context.Context, login string) (domain.Account, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return domain.Account{}, ErrNoSuchUser
	}

	accounts := a.store.Accounts()
	var (
		account domain.Account
		err     error
	)
	if strings.Contains(login, "@") {
		account, err = accounts.GetAccountByEmail(ctx, strings.ToLower(login))
	} else {
		account, err = accounts.GetAccountByUsername(ctx, login)
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrNoSuchUser
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("lookup login: %w", err)
	}
	return account, nil
}

func (a *AccountDB) accountByUserID(ctx context.Context, userID string) (domain.Account, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return domain.Account{}, err
	}

	account, err := a.store.Accounts().GetAccountByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrNoSuchUser
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("lookup user %d: %w", id, err)
	}
	return account, nil
}

func userInfo(account domain.Account, emailVerified bool, scope domain.DataScope) domain.UserAccountInfo {
	fields := map[string]any{}
	setField(fields, FieldName, displayName(account))
	setField(fields, FieldOrganization, account.Organization)
	if scope == domain.ScopeProfile {
		setField(fields, FieldFirstName, account.FirstName)
		setField(fields, FieldMiddleName, account.MiddleName)
		setField(fields, FieldLastName, account.LastName)
		setField(fields, FieldUsername, account.Username)
		setField(fields, FieldInterests, account.Interests)
	}

	return domain.UserAccountInfo{
		UserID:             formatUserID(account.ID),
		IsGuest:            account.IsGuest,
		Email:              account.Email,
		EmailVerified:      emailVerified && !account.IsGuest,
		PreferredUsername:  account.StableID,
		Signature:          account.Signature,
		SupplementalFields: fields,
	}
}

func setField(fields map[string]any, name, value string) {
	if value != "" {
		fields[name] = value
	}
}

func displayName(a domain.Account) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.FirstName, a.MiddleName, a.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidEmail)
	}
	// must be present and not the first char
	if strings.Index(email, "@") < 1 {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func redirectHost(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}

func parseUserID(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, ErrNoSuchUser
	}
	return id, nil
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}
