package tx

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUnsigned(t *testing.T) {
	signer := bytes.Repeat([]byte{0x42}, PublicKeySize)

	unsigned, err := BuildUnsigned(signer, "Coin", "transfer", [][]byte{[]byte("x")}, nil, nil, 77)
	require.NoError(t, err)

	decoded, err := Decode(unsigned.Blob)
	require.NoError(t, err)
	assert.Equal(t, int64(77), decoded.Nonce)
	assert.Equal(t, OpCall, decoded.Action.Op)
	assert.Equal(t, signer, decoded.Signer)
	assert.Equal(t, [32]byte(sha256.Sum256(unsigned.Blob)), unsigned.Hash)
}

func TestBuildUnsignedDefaultsNonceToNow(t *testing.T) {
	signer := bytes.Repeat([]byte{0x42}, PublicKeySize)

	unsigned, err := BuildUnsigned(signer, "Coin", "transfer", nil, nil, nil, 0)
	require.NoError(t, err)

	decoded, err := Decode(unsigned.Blob)
	require.NoError(t, err)
	// Unix nanoseconds, so comfortably past 2020.
	assert.Greater(t, decoded.Nonce, int64(1_577_000_000_000_000_000))
}

func TestBuildUnsignedValidation(t *testing.T) {
	signer := bytes.Repeat([]byte{0x42}, PublicKeySize)

	_, err := BuildUnsigned(signer[:10], "Coin", "transfer", nil, nil, nil, 1)
	require.Error(t, err)

	_, err = BuildUnsigned(signer, "", "transfer", nil, nil, nil, 1)
	require.Error(t, err)

	_, err = BuildUnsigned(signer, "Coin", "", nil, nil, nil, 1)
	require.Error(t, err)
}

func TestDecodeAddress(t *testing.T) {
	raw := bytes.Repeat([]byte{0x99}, PublicKeySize)

	decoded, err := DecodeAddress(base58.Encode(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	_, err = DecodeAddress("0OIl") // invalid base58 alphabet
	require.Error(t, err)

	_, err = DecodeAddress(base58.Encode([]byte("short")))
	require.Error(t, err)
}
