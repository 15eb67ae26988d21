package seqidx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateECKey(t *testing.T, curve elliptic.Curve) ecdsa.PrivateKey {
	privateKey, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	return *privateKey
}

func TestNewSealer(t *testing.T, issuer string) Sealer {
	cborCodec, err := NewSealCodec()
	require.NoError(t, err)
	return NewSealer(issuer, cborCodec)
}
