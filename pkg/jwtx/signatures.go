package jwtx

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/aussiebroadwan/bartab-oidc/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinSecretKeyLength is the minimum HMAC key length, in bytes, accepted
	// for HS512 (512 bits).
	MinSecretKeyLength = 64

	// MinSeedLength is the minimum number of characters in a key seed.
	MinSeedLength = 16

	// Key ids published in the JWKS and set on token headers.
	KidSecretKey     = "0"
	KidAsymmetricKey = "1"
)

// ErrCrypto marks misconfigured or unusable key material. It is never
// retriable: the same input fails the same way every time.
var ErrCrypto = errors.New("jwtx: crypto error")

// KeyPair is the EC key pair used for ES512 tokens.
type KeyPair struct {
	Public  *ecdsa.PublicKey
	Private *ecdsa.PrivateKey
}

// GetValidatedSecretKey turns a configured secret into an HS512 key. The key
// is the UTF-8 bytes of secret and must be at least MinSecretKeyLength long.
func GetValidatedSecretKey(secret string) ([]byte, error) {
	key := []byte(secret)
	if len(key) < MinSecretKeyLength {
		return nil, fmt.Errorf(
			"%w: secret key is %d bytes, %s requires at least %d",
			ErrCrypto, len(key), jwt.SigningMethodHS512.Alg(), MinSecretKeyLength,
		)
	}
	return key, nil
}

// keyPairs memoizes GetKeyPair by seed.
var keyPairs sync.Map // string -> KeyPair

// GetKeyPair derives the P-521 key pair for seed. The same seed always
// yields the same pair, so the public key is stable across restarts without
// the private key ever being stored. The seed is a secret.
func GetKeyPair(seed string) (KeyPair, error) {
	if utf8.RuneCountInString(seed) < MinSeedLength {
		return KeyPair{}, fmt.Errorf("%w: key seed must be at least %d characters", ErrCrypto, MinSeedLength)
	}

	if cached, ok := keyPairs.Load(seed); ok {
		return cached.(KeyPair), nil
	}

	priv, err := cryptox.DeriveECDSAKey(ecCurve, []byte(seed))
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: derive key pair: %w", ErrCrypto, err)
	}

	pair := KeyPair{Public: &priv.PublicKey, Private: priv}
	actual, _ := keyPairs.LoadOrStore(seed, pair)
	return actual.(KeyPair), nil
}

// Strategy selects how a token is signed. It is one of SecretKeyStrategy or
// AsymmetricKeyStrategy.
type Strategy interface {
	method() jwt.SigningMethod
	kid() string
	signingKey(keys SigningKeyStore) (any, error)
}

// SecretKeyStrategy signs with HS512 using the requesting client's secret.
type SecretKeyStrategy struct {
	ClientID     string
	ClientSecret string
}

func (SecretKeyStrategy) method() jwt.SigningMethod { return jwt.SigningMethodHS512 }
func (SecretKeyStrategy) kid() string               { return KidSecretKey }

func (s SecretKeyStrategy) signingKey(keys SigningKeyStore) (any, error) {
	return keys.SecretKey(s.ClientID, s.ClientSecret)
}

// AsymmetricKeyStrategy signs with ES512 using the shared EC private key.
type AsymmetricKeyStrategy struct{}

func (AsymmetricKeyStrategy) method() jwt.SigningMethod { return jwt.SigningMethodES512 }
func (AsymmetricKeyStrategy) kid() string               { return KidAsymmetricKey }

func (AsymmetricKeyStrategy) signingKey(keys SigningKeyStore) (any, error) {
	priv := keys.AsyncKeys().Private
	if priv == nil {
		return nil, fmt.Errorf("%w: no EC private key configured", ErrCrypto)
	}
	return priv, nil
}

// Sign serializes claims to JSON and returns the compact JWS produced by
// strategy.
func Sign(claims Claims, keys SigningKeyStore, strategy Strategy) (string, error) {
	if strategy == nil {
		return "", errors.New("jwtx: nil signing strategy")
	}

	key, err := strategy.signingKey(keys)
	if err != nil {
		return "", err
	}

	t := jwt.NewWithClaims(strategy.method(), claims.mapClaims())
	t.Header["kid"] = strategy.kid()

	signed, err := t.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign %s: %w", strategy.method().Alg(), err)
	}
	return signed, nil
}
