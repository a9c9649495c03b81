package tokenstore

import (
	"errors"
	"sync"
	"time"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
)

var ErrUnknownAuthCode = errors.New("tokenstore: unknown authorization code")

// Store is the in-memory registry of live authorization codes and access
// tokens. State is volatile: it lives for the process and nothing survives a
// restart.
//
// Codes and tokens are indexed by value and by owning user. Every mutation
// updates both indices under one exclusive lock, so no reader ever sees a
// half-applied change. Per-user indices hold values, not records, and empty
// per-user sets are removed as soon as they empty.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	codesByValue  map[string]domain.AuthCodeData
	tokensByValue map[string]domain.AccessTokenData
	codesByUser   map[string]map[string]struct{}
	tokensByUser  map[string]map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for token creation times and
// expiration sweeps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:           time.Now,
		codesByValue:  make(map[string]domain.AuthCodeData),
		tokensByValue: make(map[string]domain.AccessTokenData),
		codesByUser:   make(map[string]map[string]struct{}),
		tokensByUser:  make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now reads the store's clock. Callers stamping codes use it so creation
// times and sweeps share one time source.
func (s *Store) Now() time.Time { return s.now() }

// AddAuthCode registers an issued code. Codes must be globally unique; if a
// code is added twice the later record replaces the earlier one everywhere.
func (s *Store) AddAuthCode(data domain.AuthCodeData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.codesByValue[data.AuthCode]; ok {
		removeOwned(s.codesByUser, old.UserID, old.AuthCode)
	}
	s.codesByValue[data.AuthCode] = data
	addOwned(s.codesByUser, data.UserID, data.AuthCode)
}

// AddAccessToken mints the record for tokenValue from an existing code and
// registers it. The code is left in place. Returns ErrUnknownAuthCode, and
// registers nothing, when authCode isn't live.
func (s *Store) AddAccessToken(tokenValue, authCode string) (domain.AccessTokenData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, ok := s.codesByValue[authCode]
	if !ok {
		return domain.AccessTokenData{}, ErrUnknownAuthCode
	}

	data := domain.AccessTokenData{
		TokenValue:   tokenValue,
		AuthCodeData: code,
		CreationTime: s.now().Unix(),
	}

	if old, ok := s.tokensByValue[tokenValue]; ok {
		removeOwned(s.tokensByUser, old.UserID(), old.TokenValue)
	}
	s.tokensByValue[tokenValue] = data
	addOwned(s.tokensByUser, data.UserID(), tokenValue)

	return data, nil
}

// IsValidAuthCode reports whether authCode is live and was issued to clientID.
func (s *Store) IsValidAuthCode(authCode, clientID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.codesByValue[authCode]
	return ok && code.ClientID == clientID
}

// AuthCode looks up a live authorization code.
func (s *Store) AuthCode(authCode string) (domain.AuthCodeData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.codesByValue[authCode]
	return data, ok
}

// TokenData looks up a live access token.
func (s *Store) TokenData(tokenValue string) (domain.AccessTokenData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.tokensByValue[tokenValue]
	return data, ok
}

// UserIDForToken returns the owner of a live access token.
func (s *Store) UserIDForToken(tokenValue string) (string, bool) {
	data, ok := s.TokenData(tokenValue)
	if !ok {
		return "", false
	}
	return data.UserID(), true
}

// ClearObjectsForUser removes every code and token owned by userID. Unknown
// users are a no-op.
func (s *Store) ClearObjectsForUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code := range s.codesByUser[userID] {
		delete(s.codesByValue, code)
	}
	delete(s.codesByUser, userID)

	for token := range s.tokensByUser[userID] {
		delete(s.tokensByValue, token)
	}
	delete(s.tokensByUser, userID)
}

// RemoveExpiredTokens drops every code and token older than expirationSecs.
// The current time is sampled once for the whole pass, and an entry exactly
// expirationSecs old is kept. Returns how many codes and tokens were removed.
func (s *Store) RemoveExpiredTokens(expirationSecs int64) (codes, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()

	for value, data := range s.codesByValue {
		if now-data.CreationTime > expirationSecs {
			delete(s.codesByValue, value)
			removeOwned(s.codesByUser, data.UserID, value)
			codes++
		}
	}

	for value, data := range s.tokensByValue {
		if now-data.CreationTime > expirationSecs {
			delete(s.tokensByValue, value)
			removeOwned(s.tokensByUser, data.UserID(), value)
			tokens++
		}
	}

	return codes, tokens
}

// Stats is a point-in-time count of the store's contents.
type Stats struct {
	Codes  int
	Tokens int
	Users  int // distinct users owning at least one code or token
}

// Stats returns current counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := len(s.codesByUser)
	for userID := range s.tokensByUser {
		if _, ok := s.codesByUser[userID]; !ok {
			users++
		}
	}

	return Stats{
		Codes:  len(s.codesByValue),
		Tokens: len(s.tokensByValue),
		Users:  users,
	}
}

func addOwned(index map[string]map[string]struct{}, userID, value string) {
	set, ok := index[userID]
	if !ok {
		set = make(map[string]struct{})
		index[userID] = set
	}
	set[value] = struct{}{}
}

func removeOwned(index map[string]map[string]struct{}, userID, value string) {
	set, ok := index[userID]
	if !ok {
		return
	}
	delete(set, value)
	if len(set) == 0 {
		delete(index, userID)
	}
}
