package tx

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// OpCall is the only action op the node accepts from this gateway.
const OpCall = "call"

// Unsigned is the result of building a transaction: the canonical blob
// and the SHA-256 signing hash derived from it.
type Unsigned struct {
	Blob []byte
	Hash [32]byte
}

// BuildUnsigned assembles and canonically encodes an unsigned
// transaction. A zero nonce is replaced with the current unix
// nanosecond timestamp, matching the node CLI.
func BuildUnsigned(signer []byte, contract, function string, args [][]byte, attachedSymbol, attachedAmount []byte, nonce int64) (*Unsigned, error) {
	if len(signer) != PublicKeySize {
		return nil, fmt.Errorf("signer must be %d bytes, got %d", PublicKeySize, len(signer))
	}
	if contract == "" {
		return nil, fmt.Errorf("contract must not be empty")
	}
	if function == "" {
		return nil, fmt.Errorf("function must not be empty")
	}
	if nonce == 0 {
		nonce = time.Now().UnixNano()
	}

	t := &Tx{
		Action: Action{
			Args:           args,
			Contract:       contract,
			Function:       function,
			Op:             OpCall,
			AttachedSymbol: attachedSymbol,
			AttachedAmount: attachedAmount,
		},
		Nonce:  nonce,
		Signer: signer,
	}

	blob := Encode(t)
	return &Unsigned{Blob: blob, Hash: SigningHash(blob)}, nil
}

// SigningHash derives the 32-byte payload that gets signed.
func SigningHash(blob []byte) [32]byte {
	return sha256.Sum256(blob)
}

// DecodeAddress parses a base58 account address / public key and
// enforces the 48-byte compressed-G1 length.
func DecodeAddress(addr string) ([]byte, error) {
	b := base58.Decode(addr)
	if len(b) == 0 {
		return nil, fmt.Errorf("invalid base58 address %q", addr)
	}
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("address must decode to %d bytes, got %d", PublicKeySize, len(b))
	}
	return b, nil
}
