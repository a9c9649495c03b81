package jwtx

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds the EC verification keys loaded from a published JWKS. It's
// safe for concurrent use so a client can refresh it while verifying.
//
// The HS512 descriptor in our JWKS carries a placeholder rather than a key,
// so "oct" entries are kept in the JWKS snapshot but never resolved to a key.
type KeySet struct {
	mu  sync.RWMutex
	jks JWKS
	pub map[string]*ecdsa.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{
		pub: make(map[string]*ecdsa.PublicKey),
	}
}

// AddJWK adds a JWK to the KeySet and parses it into a usable public key.
func (k *KeySet) AddJWK(j JWK) error {
	key, err := parseJWK(j)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if key != nil {
		k.pub[j.Kid] = key
	}
	k.jks.Keys = append(k.jks.Keys, j)
	return nil
}

// Get returns the public key for the given kid.
func (k *KeySet) Get(kid string) (*ecdsa.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns a snapshot of the loaded JWKS.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: append([]JWK(nil), k.jks.Keys...)}
}

// IsReady returns true if at least one verification key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

// ResetFromJWKS replaces all keys from a JWKS, typically one just fetched
// from the auth service. Nothing changes if any key fails to parse.
func (k *KeySet) ResetFromJWKS(jwks JWKS) error {
	newMap := make(map[string]*ecdsa.PublicKey, len(jwks.Keys))
	for _, j := range jwks.Keys {
		key, err := parseJWK(j)
		if err != nil {
			return err
		}
		if key != nil {
			newMap[j.Kid] = key
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub = newMap
	k.jks = jwks

	return nil
}

// parseJWK returns the EC public key described by j, or nil for an "oct"
// descriptor. Coordinates are preferred; the X.509 "k" value is the fallback.
func parseJWK(j JWK) (*ecdsa.PublicKey, error) {
	switch j.Kty {
	case "oct":
		return nil, nil

	case "EC":
		if j.Crv != ecCurve.Params().Name {
			return nil, fmt.Errorf("jwtx: unsupported EC curve %q", j.Crv)
		}
		if j.X != "" || j.Y != "" {
			return PublicKeyFromCoordinates(j.X, j.Y)
		}
		if j.K != "" {
			return PublicKeyFromBase64(j.K)
		}
		return nil, fmt.Errorf("%w: EC key %q has no key material", ErrMalformedKey, j.Kid)

	default:
		return nil, fmt.Errorf("jwtx: unsupported kty %q", j.Kty)
	}
}
