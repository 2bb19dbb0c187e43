// Package chain is a typed facade over the Amadeus node REST API. It
// normalizes transport and node failures into a small error taxonomy and
// retries idempotent reads a bounded number of times on pure
// network-level failure.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	requestTimeout = 30 * time.Second
	// readRetries is extra attempts for idempotent GETs beyond the first.
	readRetries = 2

	userAgent = "amadeus-mcp/1.0"
)

// Client talks to one node endpoint (one per network).
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New builds a client for the given node base URL. apiKey may be empty.
func New(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// BaseURL returns the node endpoint this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// GetAccountBalance returns all asset balances for a public key.
func (c *Client) GetAccountBalance(ctx context.Context, address string) (*AccountBalance, error) {
	const op = "get_account_balance"
	env, err := c.getJSON(ctx, op, "/api/wallet/balance_all/"+url.PathEscape(address))
	if err != nil {
		return nil, err
	}
	if code := env.errorCode(); code != "ok" {
		return nil, &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("account %s: %s", address, code)}
	}

	var balances []Balance
	if err := env.decode(op, "balances", &balances); err != nil {
		return nil, err
	}
	return &AccountBalance{Address: address, Balances: balances}, nil
}

// GetChainStats returns the node's chain-wide statistics.
func (c *Client) GetChainStats(ctx context.Context) (*ChainStats, error) {
	const op = "get_chain_stats"
	env, err := c.getJSON(ctx, op, "/api/chain/stats")
	if err != nil {
		return nil, err
	}
	if code := env.errorCode(); code != "ok" {
		return nil, &Error{Kind: KindRemote, Op: op, Message: code}
	}

	var stats ChainStats
	if err := env.decode(op, "stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetBlockByHeight returns all chain entries recorded at a height.
func (c *Client) GetBlockByHeight(ctx context.Context, height uint64) ([]BlockEntry, error) {
	const op = "get_block_by_height"
	env, err := c.getJSON(ctx, op, fmt.Sprintf("/api/chain/height/%d", height))
	if err != nil {
		return nil, err
	}
	if code := env.errorCode(); code != "ok" {
		return nil, &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("height %d: %s", height, code)}
	}

	var entries []BlockEntry
	if err := env.decode(op, "entries", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetTransaction returns one transaction by hash, shape preserved.
func (c *Client) GetTransaction(ctx context.Context, txHash string) (json.RawMessage, error) {
	const op = "get_transaction"
	env, err := c.getJSON(ctx, op, "/api/chain/tx/"+url.PathEscape(txHash))
	if err != nil {
		return nil, err
	}
	if code := env.errorCode(); code == "not_found" {
		return nil, &Error{Kind: KindNotFound, Op: op, Message: "transaction " + txHash}
	}

	raw, ok := env["transaction"]
	if !ok {
		return nil, &Error{Kind: KindBadResponse, Op: op, Message: "missing transaction field"}
	}
	return raw, nil
}

// GetTransactionHistory returns transaction events for an account,
// shape preserved. limit and offset of 0 are omitted.
func (c *Client) GetTransactionHistory(ctx context.Context, address string, limit, offset int, sort string) ([]json.RawMessage, error) {
	const op = "get_transaction_history"

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		params.Set("offset", fmt.Sprint(offset))
	}
	if sort != "" {
		params.Set("sort", sort)
	}
	path := "/api/chain/tx_events_by_account/" + url.PathEscape(address)
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	env, err := c.getJSON(ctx, op, path)
	if err != nil {
		return nil, err
	}

	var txs []json.RawMessage
	if err := env.decode(op, "txs", &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// GetValidators returns the current trainer public keys.
func (c *Client) GetValidators(ctx context.Context) ([]string, error) {
	const op = "get_validators"
	env, err := c.getJSON(ctx, op, "/api/peer/trainers")
	if err != nil {
		return nil, err
	}
	if code := env.errorCode(); code != "ok" {
		return nil, &Error{Kind: KindRemote, Op: op, Message: code}
	}

	var trainers []string
	if err := env.decode(op, "trainers", &trainers); err != nil {
		return nil, err
	}
	return trainers, nil
}

// GetContractState reads one key from a contract's storage.
func (c *Client) GetContractState(ctx context.Context, contractAddress, key string) (json.RawMessage, error) {
	const op = "get_contract_state"
	path := "/api/contract/get/" + url.PathEscape(contractAddress) + "/" + url.PathEscape(key)

	body, err := c.do(ctx, op, http.MethodGet, path, "", nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &Error{Kind: KindBadResponse, Op: op, Message: "response is not valid JSON"}
	}
	return json.RawMessage(body), nil
}

// SubmitPacked submits a packed, signed transaction encoded as base58.
// Submissions are never retried; only the node decides idempotency.
func (c *Client) SubmitPacked(ctx context.Context, packedB58 string) (*SubmitResult, error) {
	const op = "submit_transaction"

	body, err := c.do(ctx, op, http.MethodPost, "/api/tx/submit", "text/plain", strings.NewReader(packedB58))
	if err != nil {
		return nil, err
	}

	var result SubmitResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{Kind: KindBadResponse, Op: op, Message: "unparseable submit response", Err: err}
	}
	if result.Err != "ok" {
		return &result, &Error{Kind: KindRemote, Op: op, Message: result.Err}
	}
	return &result, nil
}

// apiEnvelope is the node's standard {"error": "...", <payload>} reply.
type apiEnvelope map[string]json.RawMessage

func (e apiEnvelope) errorCode() string {
	var code string
	if raw, ok := e["error"]; ok {
		_ = json.Unmarshal(raw, &code)
	}
	return code
}

func (e apiEnvelope) decode(op, field string, dst any) error {
	raw, ok := e[field]
	if !ok {
		return &Error{Kind: KindBadResponse, Op: op, Message: "missing " + field + " field"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &Error{Kind: KindBadResponse, Op: op, Message: "failed to parse " + field, Err: err}
	}
	return nil
}

// getJSON performs a GET with bounded retry on network-level failure.
func (c *Client) getJSON(ctx context.Context, op, path string) (apiEnvelope, error) {
	var env apiEnvelope

	attempt := func() error {
		body, err := c.do(ctx, op, http.MethodGet, path, "", nil)
		if err != nil {
			if IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if err := json.Unmarshal(body, &env); err != nil {
			return backoff.Permanent(&Error{Kind: KindBadResponse, Op: op, Message: "unparseable response", Err: err})
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), readRetries), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return nil, err
	}
	return env, nil
}

func (c *Client) do(ctx context.Context, op, method, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindBadResponse, Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := KindNetwork
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = KindTimeout
		}
		return nil, &Error{Kind: kind, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Message: "failed to read response", Err: err}
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindNetwork, Op: op, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		return nil, &Error{Kind: KindRemote, Op: op, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}
	return data, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
