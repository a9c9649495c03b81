package jwtx

import "github.com/golang-jwt/jwt/v5"

const (
	// SecretKeyPlaceholder is published in place of the HMAC key. Each client
	// verifies HS512 tokens with its own secret.
	SecretKeyPlaceholder = "<your_client_secret>"

	// PublicKeyFormat is the encoding of the "k" value on the EC key.
	PublicKeyFormat = "X.509"
)

// JWK is a key descriptor in a JSON Web Key Set (RFC 7517). Fmt and K on the
// EC key are non-standard and kept for older clients that load the key from
// its X.509 encoding.
type JWK struct {
	Kid string `json:"kid,omitempty"` // key ID
	Use string `json:"use,omitempty"` // "sig"
	Fmt string `json:"fmt,omitempty"` // key encoding: "RAW" or "X.509"
	Kty string `json:"kty"`           // "oct" or "EC"
	Alg string `json:"alg,omitempty"` // "HS512" or "ES512"
	K   string `json:"k,omitempty"`   // placeholder (oct) or base64 SPKI (EC)

	// EC fields
	Crv string `json:"crv,omitempty"` // "P-521"
	X   string `json:"x,omitempty"`   // base64url x-coordinate, fixed width
	Y   string `json:"y,omitempty"`   // base64url y-coordinate, fixed width
}

// JWKS is a JSON Web Key Set (RFC 7517).
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewES512JWK builds the EC descriptor for the public half of pair.
func NewES512JWK(kid string, pair KeyPair) (JWK, error) {
	x, y, err := PublicKeyToCoordinates(pair.Public)
	if err != nil {
		return JWK{}, err
	}
	k, err := PublicKeyToBase64(pair.Public)
	if err != nil {
		return JWK{}, err
	}

	return JWK{
		Kid: kid,
		Use: "sig",
		Fmt: PublicKeyFormat,
		Kty: "EC",
		Alg: jwt.SigningMethodES512.Alg(),
		K:   k,
		Crv: ecCurve.Params().Name,
		X:   x,
		Y:   y,
	}, nil
}

// JWKSContent builds the published key set: the HS512 descriptor with a
// placeholder instead of a secret, then the ES512 public key.
func JWKSContent(keys SigningKeyStore) (JWKS, error) {
	ec, err := NewES512JWK(KidAsymmetricKey, keys.AsyncKeys())
	if err != nil {
		return JWKS{}, err
	}

	return JWKS{Keys: []JWK{
		{
			Kid: KidSecretKey,
			Use: "sig",
			Fmt: keys.SecretKeyFormat(),
			Kty: "oct",
			Alg: jwt.SigningMethodHS512.Alg(),
			K:   SecretKeyPlaceholder,
		},
		ec,
	}}, nil
}
