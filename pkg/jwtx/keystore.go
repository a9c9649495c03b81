package jwtx

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

// SecretKeyFormat is the format reported for HMAC keys: the raw UTF-8 bytes
// of the client secret.
const SecretKeyFormat = "RAW"

var ErrUnknownClient = errors.New("jwtx: unknown client or secret")

// SigningKeyStore supplies the key material used for signing. HMAC keys are
// per client (the client's own secret), the EC key pair is shared.
type SigningKeyStore interface {
	// SecretKey returns the validated HMAC key for a client, or an error if the
	// client is unknown or the secret doesn't match.
	SecretKey(clientID, clientSecret string) ([]byte, error)

	// AsyncKeys returns the EC key pair used for ES512 tokens.
	AsyncKeys() KeyPair

	// SecretKeyFormat names the encoding of the HMAC keys.
	SecretKeyFormat() string
}

// StaticKeyStore is a SigningKeyStore built once at startup from the client
// registry and the key seed.
type StaticKeyStore struct {
	secrets map[string][][]byte
	pair    KeyPair
}

// NewStaticKeyStore validates every client secret for HS512 and derives the
// EC key pair from seed. Any bad secret or seed fails construction.
func NewStaticKeyStore(seed string, clientSecrets map[string][]string) (*StaticKeyStore, error) {
	pair, err := GetKeyPair(seed)
	if err != nil {
		return nil, err
	}

	secrets := make(map[string][][]byte, len(clientSecrets))
	for clientID, list := range clientSecrets {
		for _, secret := range list {
			key, err := GetValidatedSecretKey(secret)
			if err != nil {
				return nil, fmt.Errorf("client %q: %w", clientID, err)
			}
			secrets[clientID] = append(secrets[clientID], key)
		}
	}

	return &StaticKeyStore{secrets: secrets, pair: pair}, nil
}

// SecretKey returns the key matching clientSecret among the client's
// registered secrets. Comparison is constant time per candidate.
func (s *StaticKeyStore) SecretKey(clientID, clientSecret string) ([]byte, error) {
	candidate := []byte(clientSecret)
	for _, key := range s.secrets[clientID] {
		if subtle.ConstantTimeCompare(key, candidate) == 1 {
			return key, nil
		}
	}
	return nil, ErrUnknownClient
}

func (s *StaticKeyStore) AsyncKeys() KeyPair      { return s.pair }
func (s *StaticKeyStore) SecretKeyFormat() string { return SecretKeyFormat }
