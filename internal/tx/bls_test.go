package tx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() []byte {
	seed := make([]byte, SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return seed
}

func TestPublicKeyFromSeed(t *testing.T) {
	pk, err := PublicKeyFromSeed(testSeed())
	require.NoError(t, err)
	assert.Len(t, pk, PublicKeySize)
	assert.True(t, PublicKeyWellFormed(pk))

	// Same seed, same key.
	again, err := PublicKeyFromSeed(testSeed())
	require.NoError(t, err)
	assert.Equal(t, pk, again)
}

func TestPublicKeyFromSeedRejectsBadSeed(t *testing.T) {
	_, err := PublicKeyFromSeed(make([]byte, 32))
	require.Error(t, err)

	_, err = PublicKeyFromSeed(make([]byte, SeedSize)) // all-zero reduces to zero scalar
	require.Error(t, err)
}

func TestSignVerify(t *testing.T) {
	seed := testSeed()
	pk, err := PublicKeyFromSeed(seed)
	require.NoError(t, err)

	msg := []byte("signing payload")
	sig, err := Sign(seed, msg)
	require.NoError(t, err)
	assert.Len(t, sig, SignatureSize)
	assert.True(t, SignatureWellFormed(sig))

	assert.True(t, Verify(pk, msg, sig))
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	seed := testSeed()
	pk, err := PublicKeyFromSeed(seed)
	require.NoError(t, err)

	sig, err := Sign(seed, []byte("message one"))
	require.NoError(t, err)

	assert.False(t, Verify(pk, []byte("message two"), sig))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	seed := testSeed()
	otherSeed := testSeed()
	otherSeed[0] ^= 0xFF

	pkOther, err := PublicKeyFromSeed(otherSeed)
	require.NoError(t, err)

	msg := []byte("signing payload")
	sig, err := Sign(seed, msg)
	require.NoError(t, err)

	assert.False(t, Verify(pkOther, msg, sig))
}

func TestVerifyRejectsCorruptedSignature(t *testing.T) {
	seed := testSeed()
	pk, err := PublicKeyFromSeed(seed)
	require.NoError(t, err)

	msg := []byte("signing payload")
	sig, err := Sign(seed, msg)
	require.NoError(t, err)

	corrupted := bytes.Clone(sig)
	corrupted[10] ^= 0x01
	assert.False(t, Verify(pk, msg, corrupted))
}

func TestVerifyRejectsMalformedInputs(t *testing.T) {
	seed := testSeed()
	pk, err := PublicKeyFromSeed(seed)
	require.NoError(t, err)
	msg := []byte("signing payload")
	sig, err := Sign(seed, msg)
	require.NoError(t, err)

	assert.False(t, Verify(pk[:20], msg, sig))
	assert.False(t, Verify(pk, msg, sig[:40]))
	assert.False(t, Verify(make([]byte, PublicKeySize), msg, sig))
	assert.False(t, Verify(pk, msg, make([]byte, SignatureSize)))
}

func TestWellFormedPredicates(t *testing.T) {
	seed := testSeed()
	pk, err := PublicKeyFromSeed(seed)
	require.NoError(t, err)
	sig, err := Sign(seed, []byte("m"))
	require.NoError(t, err)

	assert.True(t, PublicKeyWellFormed(pk))
	assert.True(t, SignatureWellFormed(sig))

	assert.False(t, PublicKeyWellFormed(make([]byte, PublicKeySize)))
	assert.False(t, PublicKeyWellFormed(pk[:10]))
	assert.False(t, SignatureWellFormed(make([]byte, SignatureSize)))
	assert.False(t, SignatureWellFormed(sig[:10]))
}
