// Package faucet grants rate-limited testnet AMA. The 24h cooldown per
// origin is enforced by the durable store's atomic upsert; this package
// holds no locks of its own, so multiple server instances stay safe.
package faucet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/amadeus-robot/amadeus-mcp/internal/chain"
	"github.com/amadeus-robot/amadeus-mcp/internal/db/repositories"
	"github.com/amadeus-robot/amadeus-mcp/internal/logging"
	"github.com/amadeus-robot/amadeus-mcp/internal/tx"
)

const (
	Symbol   = "AMA"
	Cooldown = 24 * time.Hour

	// AmountAtoms is 100 AMA (9 decimals).
	AmountAtoms = "100000000000"
)

// ErrStore marks failures of the durable claim store, as opposed to
// failures of the mint submission.
var ErrStore = errors.New("faucet claim store failure")

// Submitter is the slice of the chain client the faucet needs.
type Submitter interface {
	SubmitPacked(ctx context.Context, packedB58 string) (*chain.SubmitResult, error)
}

// CooldownError is a denied claim; not an exceptional condition.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("faucet cooldown active, retry after %s", e.RetryAfter)
}

// Grant reports a successful claim and the mint it queued.
type Grant struct {
	TxHash      string `json:"tx_hash"`
	Destination string `json:"destination"`
	Amount      string `json:"amount"`
	Symbol      string `json:"symbol"`
}

type Service struct {
	claims   *repositories.FaucetClaimRepo
	testnet  Submitter
	seed     []byte
	signerPK []byte
	now      func() time.Time
}

// NewService derives the faucet's signing identity from the base58
// 64-byte seed and wires the testnet submitter.
func NewService(claims *repositories.FaucetClaimRepo, testnet Submitter, seedB58 string) (*Service, error) {
	seed := base58.Decode(seedB58)
	if len(seed) != tx.SeedSize {
		return nil, fmt.Errorf("faucet seed must decode to %d bytes, got %d", tx.SeedSize, len(seed))
	}
	signerPK, err := tx.PublicKeyFromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to derive faucet public key: %w", err)
	}

	return &Service{
		claims:   claims,
		testnet:  testnet,
		seed:     seed,
		signerPK: signerPK,
		now:      time.Now,
	}, nil
}

// Claim grants at most one mint per origin key per rolling cooldown
// window. The claim record is written first through the store's atomic
// primitive; if the mint submission then fails, the record is released
// so the caller keeps a retry within the window.
func (s *Service) Claim(ctx context.Context, originKey, destination string) (*Grant, error) {
	receiver, err := tx.DecodeAddress(destination)
	if err != nil {
		return nil, err
	}

	now := s.now().Truncate(time.Second)
	granted, prev, err := s.claims.TryClaim(ctx, originKey, destination, now, Cooldown)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !granted {
		// prev can be nil if the blocking claim was released between the
		// upsert and the lookup; the caller may simply retry then.
		var retryAfter time.Duration
		if prev != nil {
			retryAfter = Cooldown - now.Sub(prev.ClaimedAt)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return nil, &CooldownError{RetryAfter: retryAfter}
	}

	grant, err := s.mint(ctx, receiver, destination)
	if err != nil {
		if relErr := s.claims.Release(ctx, originKey, now); relErr != nil {
			logging.Error("failed to release faucet claim for %s: %v", originKey, relErr)
		}
		return nil, err
	}

	logging.Info("faucet granted %s %s to %s (origin %s, tx %s)",
		grant.Amount, grant.Symbol, destination, originKey, grant.TxHash)
	return grant, nil
}

func (s *Service) mint(ctx context.Context, receiver []byte, destination string) (*Grant, error) {
	args := [][]byte{receiver, []byte(AmountAtoms), []byte(Symbol)}
	unsigned, err := tx.BuildUnsigned(s.signerPK, "Coin", "transfer", args, nil, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to build mint transaction: %w", err)
	}

	sig, err := tx.Sign(s.seed, unsigned.Hash[:])
	if err != nil {
		return nil, fmt.Errorf("failed to sign mint transaction: %w", err)
	}

	decoded, err := tx.Decode(unsigned.Blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mint transaction: %w", err)
	}
	packed := tx.EncodePacked(&tx.Packed{
		Hash:      unsigned.Hash[:],
		Signature: sig,
		Tx:        *decoded,
	})

	if _, err := s.testnet.SubmitPacked(ctx, base58.Encode(packed)); err != nil {
		return nil, fmt.Errorf("mint submission failed: %w", err)
	}

	return &Grant{
		TxHash:      base58.Encode(unsigned.Hash[:]),
		Destination: destination,
		Amount:      AmountAtoms,
		Symbol:      Symbol,
	}, nil
}
