package chain

import "encoding/json"

// Balance is one asset balance of an account.
type Balance struct {
	Symbol string `json:"symbol"`
	// Flat is the balance in atomic units.
	Flat uint64 `json:"flat"`
	// Float is the human-readable balance.
	Float float64 `json:"float"`
}

// AccountBalance groups all balances of one address.
type AccountBalance struct {
	Address  string    `json:"address"`
	Balances []Balance `json:"balances"`
}

// ChainStats mirrors /api/chain/stats. The node adds fields over time,
// so unknown ones are preserved in Extra and re-emitted on marshal.
type ChainStats struct {
	Height        uint64   `json:"height"`
	TxsCount      *uint64  `json:"txs_count,omitempty"`
	AccountsCount *uint64  `json:"accounts_count,omitempty"`
	Pflops        *float64 `json:"pflops,omitempty"`
	Burned        *float64 `json:"burned,omitempty"`
	Circulating   *float64 `json:"circulating,omitempty"`
	DiffBits      *uint32  `json:"diff_bits,omitempty"`
	TxPoolSize    *uint64  `json:"tx_pool_size,omitempty"`
	TxsPerSec     *float64 `json:"txs_per_sec,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s *ChainStats) UnmarshalJSON(data []byte) error {
	type alias ChainStats
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"height", "txs_count", "accounts_count", "pflops", "burned", "circulating", "diff_bits", "tx_pool_size", "txs_per_sec"} {
		delete(all, k)
	}
	known.Extra = all

	*s = ChainStats(known)
	return nil
}

func (s ChainStats) MarshalJSON() ([]byte, error) {
	type alias ChainStats
	base, err := json.Marshal(alias(s))
	if err != nil {
		return nil, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// BlockEntry is one chain entry at a height.
type BlockEntry struct {
	Hash           string         `json:"hash"`
	HeaderUnpacked HeaderUnpacked `json:"header_unpacked"`
	TxCount        uint64         `json:"tx_count"`
	Consensus      *Consensus     `json:"consensus,omitempty"`
}

// HeaderUnpacked is the decoded entry header.
type HeaderUnpacked struct {
	Slot     uint64 `json:"slot"`
	Height   uint64 `json:"height"`
	DR       string `json:"dr"`
	VR       string `json:"vr"`
	PrevHash string `json:"prev_hash"`
	Signer   string `json:"signer"`
	PrevSlot uint64 `json:"prev_slot"`
}

// Consensus is the finality summary attached once voting completes.
type Consensus struct {
	Score           float64 `json:"score"`
	FinalityReached bool    `json:"finality_reached"`
	MutHash         string  `json:"mut_hash"`
}

// SubmitResult reports a transaction submission outcome. Err is the
// node's own code ("ok", "invalid_signature", "insufficient_funds", ...).
type SubmitResult struct {
	Err    string `json:"error"`
	TxHash string `json:"tx_hash,omitempty"`
}
