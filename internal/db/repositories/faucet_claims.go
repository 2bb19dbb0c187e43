package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// FaucetClaimRepo mediates access to the durable faucet cooldown ledger.
// The cooldown invariant lives entirely in the store's atomic upsert so
// it holds across concurrent requests and across process instances.
type FaucetClaimRepo struct {
	db *sql.DB
}

func NewFaucetClaimRepo(db *sql.DB) *FaucetClaimRepo {
	return &FaucetClaimRepo{db: db}
}

// FaucetClaim is one recorded grant.
type FaucetClaim struct {
	OriginKey   string
	Destination string
	ClaimedAt   time.Time
}

// TryClaim atomically records a claim for originKey unless a grant
// younger than cooldown already exists. It returns granted=true when the
// record was written. On denial, prev carries the blocking claim so the
// caller can compute retry-after.
func (r *FaucetClaimRepo) TryClaim(ctx context.Context, originKey, destination string, now time.Time, cooldown time.Duration) (granted bool, prev *FaucetClaim, err error) {
	// Insert wins when no row exists; the conditional update wins only
	// when the existing grant has aged out. A concurrent claim for the
	// same key serializes on the row, so exactly one request is granted.
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO faucet_claims (origin_key, destination, claimed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(origin_key) DO UPDATE SET
			destination = excluded.destination,
			claimed_at = excluded.claimed_at
		WHERE excluded.claimed_at - faucet_claims.claimed_at >= ?`,
		originKey, destination, now.Unix(), int64(cooldown.Seconds()))
	if err != nil {
		return false, nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, nil, err
	}
	if affected > 0 {
		return true, nil, nil
	}

	existing, err := r.Get(ctx, originKey)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

// Release deletes a claim written at exactly claimedAt. Used to hand the
// cooldown window back when the downstream mint fails; the timestamp
// guard keeps a racing fresh claim from being released by accident.
func (r *FaucetClaimRepo) Release(ctx context.Context, originKey string, claimedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM faucet_claims WHERE origin_key = ? AND claimed_at = ?`,
		originKey, claimedAt.Unix())
	return err
}

// Get returns the claim for originKey, or nil when absent.
func (r *FaucetClaimRepo) Get(ctx context.Context, originKey string) (*FaucetClaim, error) {
	var (
		claim     = FaucetClaim{OriginKey: originKey}
		claimedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT destination, claimed_at FROM faucet_claims WHERE origin_key = ?`,
		originKey).Scan(&claim.Destination, &claimedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	claim.ClaimedAt = time.Unix(claimedAt, 0).UTC()
	return &claim, nil
}
