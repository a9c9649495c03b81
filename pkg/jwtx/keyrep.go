package jwtx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrMalformedKey is returned when public key material can't be decoded or
// doesn't describe a point on the expected curve.
var ErrMalformedKey = errors.New("jwtx: malformed key")

// ecCurve is the curve used for asymmetric signing (ES512).
var ecCurve = elliptic.P521()

// CoordinateSize is the fixed width, in bytes, of an encoded P-521 affine
// coordinate: ceil(521 / 8).
var CoordinateSize = (ecCurve.Params().BitSize + 7) / 8

// PublicKeyToBase64 encodes pub as a standard base64 X.509 SubjectPublicKeyInfo.
func PublicKeyToBase64(pub *ecdsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("jwtx: marshal public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// PublicKeyFromBase64 reverses PublicKeyToBase64. The key must be on P-521.
func PublicKeyFromBase64(encoded string) (*ecdsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", ErrMalformedKey, err)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an ECDSA public key", ErrMalformedKey)
	}
	if err := checkCurve(pub.Curve); err != nil {
		return nil, err
	}
	return pub, nil
}

// PublicKeyToCoordinates returns the affine coordinates of pub as base64url
// strings (no padding). Each coordinate is always CoordinateSize bytes,
// left-padded with zeros, as required for JWK Base64urlUInt values.
func PublicKeyToCoordinates(pub *ecdsa.PublicKey) (x, y string, err error) {
	if pub == nil {
		return "", "", fmt.Errorf("%w: nil public key", ErrMalformedKey)
	}
	if err := checkCurve(pub.Curve); err != nil {
		return "", "", err
	}

	xb, err := fixedWidth(pub.X, CoordinateSize)
	if err != nil {
		return "", "", err
	}
	yb, err := fixedWidth(pub.Y, CoordinateSize)
	if err != nil {
		return "", "", err
	}

	return base64.RawURLEncoding.EncodeToString(xb), base64.RawURLEncoding.EncodeToString(yb), nil
}

// PublicKeyFromCoordinates rebuilds a P-521 public key from base64url
// coordinates. Padded and unpadded encodings are both accepted, and shorter
// values are treated as unsigned integers. The point must lie on the curve.
func PublicKeyFromCoordinates(x, y string) (*ecdsa.PublicKey, error) {
	point := make([]byte, 1+2*CoordinateSize)
	point[0] = 4 // uncompressed

	if err := decodeCoordinate(x, point[1:1+CoordinateSize]); err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	if err := decodeCoordinate(y, point[1+CoordinateSize:]); err != nil {
		return nil, fmt.Errorf("y: %w", err)
	}

	pub, err := ecdsa.ParseUncompressedPublicKey(ecCurve, point)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}
	return pub, nil
}

func decodeCoordinate(encoded string, dst []byte) error {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
	if err != nil {
		return fmt.Errorf("%w: base64url: %w", ErrMalformedKey, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty coordinate", ErrMalformedKey)
	}

	b, err := fixedWidth(new(big.Int).SetBytes(raw), len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// fixedWidth encodes n as an unsigned big-endian integer of exactly size bytes.
func fixedWidth(n *big.Int, size int) ([]byte, error) {
	if n == nil || n.Sign() < 0 || n.BitLen() > size*8 {
		return nil, fmt.Errorf("%w: coordinate does not fit in %d bytes", ErrMalformedKey, size)
	}
	return n.FillBytes(make([]byte, size)), nil
}

func checkCurve(c elliptic.Curve) error {
	if c == nil || c.Params().Name != ecCurve.Params().Name {
		name := "<nil>"
		if c != nil {
			name = c.Params().Name
		}
		return fmt.Errorf("%w: expected %s curve, got %s", ErrMalformedKey, ecCurve.Params().Name, name)
	}
	return nil
}
