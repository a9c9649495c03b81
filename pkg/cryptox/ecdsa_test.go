package cryptox_test

import (
	"crypto/elliptic"
	"io"
	"testing"

	"github.com/aussiebroadwan/bartab-oidc/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestNewSeededReader_Deterministic(t *testing.T) {
	a := make([]byte, 128)
	b := make([]byte, 128)

	_, err := io.ReadFull(cryptox.NewSeededReader([]byte("same seed value"), "test"), a)
	require.NoError(t, err)
	_, err = io.ReadFull(cryptox.NewSeededReader([]byte("same seed value"), "test"), b)
	require.NoError(t, err)
	require.Equal(t, a, b)

	// A different info label gives an unrelated stream
	_, err = io.ReadFull(cryptox.NewSeededReader([]byte("same seed value"), "other"), b)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestDeriveECDSAKey(t *testing.T) {
	tests := []struct {
		name  string
		curve elliptic.Curve
	}{
		{"P-256", elliptic.P256()},
		{"P-384", elliptic.P384()},
		{"P-521", elliptic.P521()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1, err := cryptox.DeriveECDSAKey(tt.curve, []byte("a reasonably long seed"))
			require.NoError(t, err)
			require.Equal(t, tt.curve, key1.Curve)
			require.True(t, tt.curve.IsOnCurve(key1.X, key1.Y))

			key2, err := cryptox.DeriveECDSAKey(tt.curve, []byte("a reasonably long seed"))
			require.NoError(t, err)
			require.True(t, key1.Equal(key2), "same seed must give the same key")

			other, err := cryptox.DeriveECDSAKey(tt.curve, []byte("a different long seed"))
			require.NoError(t, err)
			require.False(t, key1.Equal(other), "different seeds must give different keys")
		})
	}
}
