package cryptox

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// maxScalarAttempts bounds rejection sampling. For the NIST curves the chance
// of a single candidate being rejected is negligible, so hitting this limit
// means the reader is broken rather than unlucky.
const maxScalarAttempts = 64

var ErrSeedExhausted = errors.New("cryptox: seed stream exhausted")

// NewSeededReader expands seed into a deterministic byte stream using
// HKDF-SHA-512. The same seed and info always produce the same stream.
//
// The stream is capped by HKDF at 255 * 64 bytes, which is plenty for
// deriving a handful of keys.
func NewSeededReader(seed []byte, info string) io.Reader {
	return hkdf.New(sha512.New, seed, nil, []byte(info))
}

// DeriveECDSAKey deterministically derives an ECDSA private key on curve from
// seed. Scalars are drawn from the seeded stream, masked to the curve's bit
// length, and rejected until one lands in [1, n-1].
//
// ecdsa.GenerateKey can't be used here: it ignores the supplied reader for
// the NIST curves and always pulls from the system's randomness.
func DeriveECDSAKey(curve elliptic.Curve, seed []byte) (*ecdsa.PrivateKey, error) {
	params := curve.Params()
	size := (params.BitSize + 7) / 8
	excess := size*8 - params.BitSize

	r := NewSeededReader(seed, "bartab-oidc/ecdsa/"+params.Name)
	buf := make([]byte, size)

	for range maxScalarAttempts {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("cryptox: read seeded stream: %w", err)
		}
		buf[0] &= 0xff >> excess

		key, err := ecdsa.ParseRawPrivateKey(curve, buf)
		if err == nil {
			return key, nil
		}
	}

	return nil, ErrSeedExhausted
}
