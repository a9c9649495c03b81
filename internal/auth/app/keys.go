package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	"github.com/aussiebroadwan/bartab-oidc/pkg/cryptox"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
)

// InitSigningKeys derives the ES512 key pair from the configured seed,
// registers every client secret as an HS512 key and builds the key set
// published at /.well-known/jwks.json.
//
// The key pair is a pure function of the seed, so tokens survive restarts
// and every replica sharing the seed signs with the same key.
func InitSigningKeys(cfg Config, clients domain.ClientRegistry, logger *slog.Logger) (*jwtx.StaticKeyStore, jwtx.JWKS, error) {
	keys, err := jwtx.NewStaticKeyStore(cfg.KeySeed, clients.Secrets())
	if err != nil {
		return nil, jwtx.JWKS{}, fmt.Errorf("signing keys: %w", err)
	}

	jwks, err := jwtx.JWKSContent(keys)
	if err != nil {
		return nil, jwtx.JWKS{}, fmt.Errorf("jwks: %w", err)
	}

	pub, err := jwtx.PublicKeyToBase64(keys.AsyncKeys().Public)
	if err != nil {
		return nil, jwtx.JWKS{}, err
	}
	logger.Info("signing keys initialized",
		"clients", len(clients),
		"jwks_keys", len(jwks.Keys),
		"public_key_fingerprint", cryptox.FingerprintToken(pub),
	)

	return keys, jwks, nil
}
