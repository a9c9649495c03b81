package tokenstore

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
)

type fakeClock struct {
	unix atomic.Int64
}

func newFakeClock(start int64) *fakeClock {
	c := &fakeClock{}
	c.unix.Store(start)
	return c
}

func (c *fakeClock) Now() time.Time      { return time.Unix(c.unix.Load(), 0) }
func (c *fakeClock) Advance(secs int64) { c.unix.Add(secs) }

func codeAt(code, clientID, userID string, created int64) domain.AuthCodeData {
	return domain.AuthCodeData{
		IdTokenParams: domain.IdTokenParams{ClientID: clientID, CreationTime: created},
		AuthCode:      code,
		UserID:        userID,
	}
}

func TestAuthCodeLifecycle(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(1_000)
	s := New(WithClock(clock.Now))

	s.AddAuthCode(codeAt("ABC", "app", "u1", 1_000))

	require.True(t, s.IsValidAuthCode("ABC", "app"))
	require.False(t, s.IsValidAuthCode("ABC", "other-app"))
	code, ok := s.AuthCode("ABC")
	require.True(t, ok)
	require.Equal(t, "u1", code.UserID)
	require.False(t, s.IsValidAuthCode("XYZ", "app"))

	clock.Advance(5)
	tok, err := s.AddAccessToken("T1", "ABC")
	require.NoError(t, err)
	require.Equal(t, "T1", tok.TokenValue)
	require.Equal(t, "u1", tok.UserID())
	require.Equal(t, int64(1_005), tok.CreationTime)
	require.Equal(t, int64(1_000), tok.AuthCodeData.CreationTime)

	userID, ok := s.UserIDForToken("T1")
	require.True(t, ok)
	require.Equal(t, "u1", userID)

	// Exchanging a code does not consume it.
	require.True(t, s.IsValidAuthCode("ABC", "app"))

	s.ClearObjectsForUser("u1")

	_, ok = s.TokenData("T1")
	require.False(t, ok)
	require.False(t, s.IsValidAuthCode("ABC", "app"))
	require.Equal(t, Stats{}, s.Stats())
}

func TestAddAccessTokenUnknownCode(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.AddAccessToken("T1", "missing")
	require.ErrorIs(t, err, ErrUnknownAuthCode)

	_, ok := s.TokenData("T1")
	require.False(t, ok)
	require.Equal(t, Stats{}, s.Stats())
}

func TestCodeIsReusableUntilExpiry(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddAuthCode(codeAt("ABC", "app", "u1", time.Now().Unix()))

	for i := range 3 {
		_, err := s.AddAccessToken(fmt.Sprintf("T%d", i), "ABC")
		require.NoError(t, err)
	}
	require.Equal(t, Stats{Codes: 1, Tokens: 3, Users: 1}, s.Stats())
}

func TestDuplicateAuthCodeReplaces(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddAuthCode(codeAt("ABC", "app", "u1", 10))
	s.AddAuthCode(codeAt("ABC", "app", "u2", 20))

	require.Equal(t, Stats{Codes: 1, Users: 1}, s.Stats())

	// Clearing the previous owner must not touch the replacement.
	s.ClearObjectsForUser("u1")
	require.True(t, s.IsValidAuthCode("ABC", "app"))

	tok, err := s.AddAccessToken("T1", "ABC")
	require.NoError(t, err)
	require.Equal(t, "u2", tok.UserID())
}

func TestClearObjectsForUserIsolation(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddAuthCode(codeAt("c1", "app", "u1", 1))
	s.AddAuthCode(codeAt("c2", "app", "u2", 1))
	_, err := s.AddAccessToken("t1", "c1")
	require.NoError(t, err)
	_, err = s.AddAccessToken("t2", "c2")
	require.NoError(t, err)

	s.ClearObjectsForUser("u1")
	s.ClearObjectsForUser("u1")
	s.ClearObjectsForUser("nobody")

	require.False(t, s.IsValidAuthCode("c1", "app"))
	require.True(t, s.IsValidAuthCode("c2", "app"))
	_, ok := s.TokenData("t1")
	require.False(t, ok)
	_, ok = s.TokenData("t2")
	require.True(t, ok)
	require.Equal(t, Stats{Codes: 1, Tokens: 1, Users: 1}, s.Stats())
}

func TestRemoveExpiredTokens(t *testing.T) {
	t.Parallel()

	const window = 60

	t.Run("entry exactly at the window survives", func(t *testing.T) {
		clock := newFakeClock(1_000)
		s := New(WithClock(clock.Now))
		s.AddAuthCode(codeAt("ABC", "app", "u1", 1_000))
		_, err := s.AddAccessToken("T1", "ABC")
		require.NoError(t, err)

		clock.Advance(window)
		codes, tokens := s.RemoveExpiredTokens(window)
		require.Zero(t, codes)
		require.Zero(t, tokens)
		require.True(t, s.IsValidAuthCode("ABC", "app"))

		clock.Advance(1)
		codes, tokens = s.RemoveExpiredTokens(window)
		require.Equal(t, 1, codes)
		require.Equal(t, 1, tokens)
		require.False(t, s.IsValidAuthCode("ABC", "app"))
		_, ok := s.TokenData("T1")
		require.False(t, ok)
		require.Equal(t, Stats{}, s.Stats())
	})

	t.Run("codes and tokens age independently", func(t *testing.T) {
		clock := newFakeClock(1_000)
		s := New(WithClock(clock.Now))
		s.AddAuthCode(codeAt("ABC", "app", "u1", 1_000))

		clock.Advance(50)
		_, err := s.AddAccessToken("T1", "ABC")
		require.NoError(t, err)

		clock.Advance(20)
		codes, tokens := s.RemoveExpiredTokens(window)
		require.Equal(t, 1, codes)
		require.Zero(t, tokens)

		userID, ok := s.UserIDForToken("T1")
		require.True(t, ok)
		require.Equal(t, "u1", userID)
		require.Equal(t, Stats{Tokens: 1, Users: 1}, s.Stats())
	})

	t.Run("zero window removes anything older than now", func(t *testing.T) {
		clock := newFakeClock(1_000)
		s := New(WithClock(clock.Now))
		s.AddAuthCode(codeAt("old", "app", "u1", 999))
		s.AddAuthCode(codeAt("new", "app", "u1", 1_000))

		codes, _ := s.RemoveExpiredTokens(0)
		require.Equal(t, 1, codes)
		require.True(t, s.IsValidAuthCode("new", "app"))
	})
}

func TestStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", w)
			for i := range perWorker {
				code := fmt.Sprintf("code-%d-%d", w, i)
				s.AddAuthCode(codeAt(code, "app", userID, time.Now().Unix()))
				_, err := s.AddAccessToken("tok-"+code, code)
				if err != nil {
					t.Errorf("add token: %v", err)
					return
				}
				if _, ok := s.UserIDForToken("tok-" + code); !ok {
					t.Errorf("token %s not visible after insert", code)
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range perWorker {
			s.RemoveExpiredTokens(3600)
			_ = s.Stats()
		}
	}()

	wg.Wait()
	require.Equal(t, Stats{Codes: workers * perWorker, Tokens: workers * perWorker, Users: workers}, s.Stats())

	for w := range workers {
		s.ClearObjectsForUser(fmt.Sprintf("user-%d", w))
	}
	require.Equal(t, Stats{}, s.Stats())
}

func TestCollector(t *testing.T) {
	t.Parallel()

	s := New()
	s.AddAuthCode(codeAt("c1", "app", "u1", time.Now().Unix()))
	s.AddAuthCode(codeAt("c2", "app", "u2", time.Now().Unix()))
	_, err := s.AddAccessToken("t1", "c1")
	require.NoError(t, err)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(s)))

	expected := `
# HELP bartab_oidc_tokenstore_access_tokens Number of live access tokens.
# TYPE bartab_oidc_tokenstore_access_tokens gauge
bartab_oidc_tokenstore_access_tokens 1
# HELP bartab_oidc_tokenstore_auth_codes Number of live authorization codes.
# TYPE bartab_oidc_tokenstore_auth_codes gauge
bartab_oidc_tokenstore_auth_codes 2
# HELP bartab_oidc_tokenstore_users Number of users owning at least one live code or token.
# TYPE bartab_oidc_tokenstore_users gauge
bartab_oidc_tokenstore_users 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}
