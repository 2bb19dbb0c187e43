package tx

import (
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// SignatureDST is the hash-to-curve domain separation tag the node uses
// for transaction signatures (min-pk: public keys in G1, signatures in G2).
const SignatureDST = "AMADEUS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_TX_"

const (
	// PublicKeySize is a compressed G1 point.
	PublicKeySize = 48
	// SignatureSize is a compressed G2 point.
	SignatureSize = 96
	// SeedSize is the 64-byte master secret the wallet tooling produces.
	SeedSize = 64
)

// Verify reports whether signature is a valid BLS signature by publicKey
// over message. It is a pure predicate: malformed keys, off-curve points
// and malformed signatures all report false rather than erroring, so the
// caller classifies the false branch using the shapes it already
// validated.
func Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != PublicKeySize || len(signature) != SignatureSize {
		return false
	}

	var pk bls12381.G1Affine
	if _, err := pk.SetBytes(publicKey); err != nil {
		return false
	}
	if pk.IsInfinity() {
		return false
	}

	var sig bls12381.G2Affine
	if _, err := sig.SetBytes(signature); err != nil {
		return false
	}

	hm, err := bls12381.HashToG2(message, []byte(SignatureDST))
	if err != nil {
		return false
	}

	// e(pk, H(m)) == e(g1, sig), checked as e(-pk, H(m)) * e(g1, sig) == 1.
	_, _, g1, _ := bls12381.Generators()
	var negPk bls12381.G1Affine
	negPk.Neg(&pk)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{negPk, g1},
		[]bls12381.G2Affine{hm, sig},
	)
	return err == nil && ok
}

// PublicKeyWellFormed reports whether b is a valid compressed G1 point
// in the subgroup and not the identity. Used to tell a malformed key
// apart from a well-formed key whose signature simply does not verify.
func PublicKeyWellFormed(b []byte) bool {
	if len(b) != PublicKeySize {
		return false
	}
	var pk bls12381.G1Affine
	if _, err := pk.SetBytes(b); err != nil {
		return false
	}
	return !pk.IsInfinity()
}

// SignatureWellFormed reports whether b is a valid compressed G2 point
// in the subgroup.
func SignatureWellFormed(b []byte) bool {
	if len(b) != SignatureSize {
		return false
	}
	var sig bls12381.G2Affine
	_, err := sig.SetBytes(b)
	return err == nil
}

// Sign produces a signature over message with the secret derived from a
// 64-byte seed. Only the faucet's own minting key ever signs here; user
// transactions are signed externally.
func Sign(seed, message []byte) ([]byte, error) {
	k, err := scalarFromSeed(seed)
	if err != nil {
		return nil, err
	}

	hm, err := bls12381.HashToG2(message, []byte(SignatureDST))
	if err != nil {
		return nil, fmt.Errorf("hash to curve: %w", err)
	}

	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&hm, k)
	out := sig.Bytes()
	return out[:], nil
}

// PublicKeyFromSeed derives the compressed G1 public key for a seed.
func PublicKeyFromSeed(seed []byte) ([]byte, error) {
	k, err := scalarFromSeed(seed)
	if err != nil {
		return nil, err
	}

	_, _, g1, _ := bls12381.Generators()
	var pk bls12381.G1Affine
	pk.ScalarMultiplication(&g1, k)
	out := pk.Bytes()
	return out[:], nil
}

// scalarFromSeed wide-reduces the little-endian 64-byte seed modulo the
// group order, matching the wallet's key derivation.
func scalarFromSeed(seed []byte) (*big.Int, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}

	be := make([]byte, SeedSize)
	for i, b := range seed {
		be[SeedSize-1-i] = b
	}

	k := new(big.Int).SetBytes(be)
	k.Mod(k, fr.Modulus())
	if k.Sign() == 0 {
		return nil, fmt.Errorf("seed reduces to the zero scalar")
	}
	return k, nil
}
