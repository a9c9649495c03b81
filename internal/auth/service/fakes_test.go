package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
)

// fakeAuthenticator is an in-memory identity backend.
type fakeAuthenticator struct {
	mu        sync.Mutex
	users     map[string]domain.UserAccountInfo
	passwords map[string]string // login -> password
	logins    map[string]string // login -> user id
	guests    bool
	nextGuest int
	failWith  error
}

func newFakeAuthenticator() *fakeAuthenticator {
	return &fakeAuthenticator{
		users:     map[string]domain.UserAccountInfo{},
		passwords: map[string]string{},
		logins:    map[string]string{},
		guests:    true,
		nextGuest: 1000,
	}
}

func (f *fakeAuthenticator) addUser(login, password string, info domain.UserAccountInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[info.UserID] = info
	f.passwords[login] = password
	f.logins[login] = info.UserID
}

func (f *fakeAuthenticator) UserInfoByUserID(_ context.Context, userID string, scope domain.DataScope) (domain.UserAccountInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return domain.UserAccountInfo{}, f.failWith
	}
	u, ok := f.users[userID]
	if !ok {
		return domain.UserAccountInfo{}, identity.ErrNoSuchUser
	}
	return u, nil
}

func (f *fakeAuthenticator) GuestProfileInfo(_ context.Context, userID string) (domain.UserAccountInfo, error) {
	return domain.UserAccountInfo{
		UserID:            userID,
		IsGuest:           true,
		PreferredUsername: "guest_" + userID,
	}, nil
}

func (f *fakeAuthenticator) NextGuestID(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextGuest++
	return strconv.Itoa(f.nextGuest), nil
}

func (f *fakeAuthenticator) SupportsGuests() bool { return f.guests }

func (f *fakeAuthenticator) CredentialsValid(_ context.Context, login, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	if pw, ok := f.passwords[login]; !ok || pw != password {
		return "", identity.ErrBadCredentials
	}
	return f.logins[login], nil
}

var errBackendDown = errors.New("backend down")
