package mcp

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amadeus-robot/amadeus-mcp/internal/config"
	"github.com/amadeus-robot/amadeus-mcp/internal/db"
	"github.com/amadeus-robot/amadeus-mcp/internal/db/repositories"
	"github.com/amadeus-robot/amadeus-mcp/internal/tx"
)

// fakeSession drives the protocol engine directly, standing in for a
// transport-owned session.
type fakeSession struct {
	id          string
	notifCh     chan mcp.JSONRPCNotification
	initialized atomic.Bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		id:      uuid.NewString(),
		notifCh: make(chan mcp.JSONRPCNotification, 16),
	}
}

var _ server.ClientSession = (*fakeSession)(nil)

func (s *fakeSession) SessionID() string                                   { return s.id }
func (s *fakeSession) NotificationChannel() chan<- mcp.JSONRPCNotification { return s.notifCh }
func (s *fakeSession) Initialize()                                         { s.initialized.Store(true) }
func (s *fakeSession) Initialized() bool                                   { return s.initialized.Load() }

func newTestServer(t *testing.T, nodeURL, faucetSeed string) *Server {
	t.Helper()

	cfg := &config.Config{
		MainnetURL: nodeURL,
		TestnetURL: nodeURL,
		FaucetSeed: faucetSeed,
	}
	repos := repositories.New(db.NewTest(t))

	s, err := NewServer(cfg, repos)
	require.NoError(t, err)
	return s
}

// sessionContext registers a fake session with the engine. When
// initialized is true the handshake is treated as already complete.
func sessionContext(t *testing.T, s *Server, initialized bool) context.Context {
	t.Helper()

	session := newFakeSession()
	ctx := context.Background()
	require.NoError(t, s.mcpServer.RegisterSession(ctx, session))
	t.Cleanup(func() { s.mcpServer.UnregisterSession(ctx, session.SessionID()) })

	if initialized {
		session.Initialize()
	}
	return s.mcpServer.WithContext(ctx, session)
}

type rpcReply struct {
	ID     json.RawMessage `json:"id"`
	Result *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func handleMessage(t *testing.T, ctx context.Context, s *Server, raw string) *rpcReply {
	t.Helper()

	response := s.mcpServer.HandleMessage(ctx, json.RawMessage(raw))
	if response == nil {
		return nil
	}
	data, err := json.Marshal(response)
	require.NoError(t, err)

	var reply rpcReply
	require.NoError(t, json.Unmarshal(data, &reply))
	return &reply
}

// callTool invokes one tool and returns the text payload and error flag.
func callTool(t *testing.T, ctx context.Context, s *Server, name string, args map[string]any) (string, bool) {
	t.Helper()

	argsJSON, err := json.Marshal(args)
	require.NoError(t, err)
	raw := fmt.Sprintf(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":%q,"arguments":%s}}`, name, argsJSON)

	reply := handleMessage(t, ctx, s, raw)
	require.NotNil(t, reply)
	require.Nil(t, reply.Error, "expected tool result, got protocol error: %+v", reply.Error)
	require.NotNil(t, reply.Result)
	require.NotEmpty(t, reply.Result.Content)
	return reply.Result.Content[0].Text, reply.Result.IsError
}

func errorKind(t *testing.T, text string) string {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	kind, _ := payload["error"].(string)
	return kind
}

func stubNode(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestInitializeHandshake(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, false)

	reply := handleMessage(t, ctx, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0.0.1"}}}`)
	require.NotNil(t, reply)
	assert.Nil(t, reply.Error)
	assert.Equal(t, json.RawMessage("1"), reply.ID)

	// notifications carry no id and get no reply
	reply = handleMessage(t, ctx, s, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Nil(t, reply)
}

func TestToolCallBeforeInitializeRejected(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"ok","stats":{"height":1}}`))
	})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, false)

	text, isError := callTool(t, ctx, s, "get_chain_stats", map[string]any{})
	assert.True(t, isError)
	assert.Equal(t, "protocol_error", errorKind(t, text))
}

func TestUnknownToolRejected(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	reply := handleMessage(t, ctx, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"no_such_tool","arguments":{}}}`)
	require.NotNil(t, reply)
	require.NotNil(t, reply.Error)
	assert.Equal(t, json.RawMessage("3"), reply.ID)
}

func TestValidationRejectsUnknownField(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	text, isError := callTool(t, ctx, s, "get_account_balance", map[string]any{
		"address": "somekey",
		"bogus":   true,
	})
	assert.True(t, isError)
	assert.Equal(t, "validation_error", errorKind(t, text))
	assert.Contains(t, text, "bogus")
}

func TestValidationRejectsMissingField(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	text, isError := callTool(t, ctx, s, "get_account_balance", map[string]any{})
	assert.True(t, isError)
	assert.Equal(t, "validation_error", errorKind(t, text))
	assert.Contains(t, text, "address")
}

func TestGetChainStatsTool(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chain/stats", r.URL.Path)
		w.Write([]byte(`{"error":"ok","stats":{"height":4242}}`))
	})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	text, isError := callTool(t, ctx, s, "get_chain_stats", map[string]any{})
	assert.False(t, isError)
	assert.Contains(t, text, "4242")
}

func TestUpstreamFailureMapped(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	text, isError := callTool(t, ctx, s, "get_validators", map[string]any{})
	assert.True(t, isError)
	assert.Equal(t, "upstream_error", errorKind(t, text))
	assert.Contains(t, text, `"transient": false`)
}

func signerKeys(t *testing.T) (seed []byte, addressB58 string) {
	t.Helper()
	seed = make([]byte, tx.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 7)
	}
	pk, err := tx.PublicKeyFromSeed(seed)
	require.NoError(t, err)
	return seed, base58.Encode(pk)
}

func TestCreateTransferThenSubmit(t *testing.T) {
	var submits atomic.Int32
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tx/submit", r.URL.Path)
		submits.Add(1)
		w.Write([]byte(`{"error":"ok","tx_hash":"node-reported-hash"}`))
	})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	seed, source := signerKeys(t)
	_, destination := signerKeys(t) // self-transfer is fine for the wire path

	text, isError := callTool(t, ctx, s, "create_transfer", map[string]any{
		"symbol":      "AMA",
		"source":      source,
		"destination": destination,
		"amount":      "1000000000",
	})
	require.False(t, isError, "create_transfer failed: %s", text)

	var built struct {
		Blob           string `json:"blob"`
		SigningPayload string `json:"signing_payload"`
		Status         string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &built))
	assert.Equal(t, "unsigned", built.Status)

	payload, err := hex.DecodeString(built.SigningPayload)
	require.NoError(t, err)
	sig, err := tx.Sign(seed, payload)
	require.NoError(t, err)

	text, isError = callTool(t, ctx, s, "submit_transaction", map[string]any{
		"transaction": built.Blob,
		"signature":   base58.Encode(sig),
	})
	require.False(t, isError, "submit_transaction failed: %s", text)
	assert.Contains(t, text, `"status": "success"`)
	assert.Equal(t, int32(1), submits.Load())
}

func TestSubmitRejectsTamperedSignature(t *testing.T) {
	var submits atomic.Int32
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {
		submits.Add(1)
		w.Write([]byte(`{"error":"ok"}`))
	})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	seed, source := signerKeys(t)
	text, isError := callTool(t, ctx, s, "create_transfer", map[string]any{
		"symbol":      "AMA",
		"source":      source,
		"destination": source,
		"amount":      "1",
	})
	require.False(t, isError, "create_transfer failed: %s", text)

	var built struct {
		Blob           string `json:"blob"`
		SigningPayload string `json:"signing_payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &built))

	payload, err := hex.DecodeString(built.SigningPayload)
	require.NoError(t, err)
	sig, err := tx.Sign(seed, payload)
	require.NoError(t, err)
	sig[20] ^= 0x01

	text, isError = callTool(t, ctx, s, "submit_transaction", map[string]any{
		"transaction": built.Blob,
		"signature":   base58.Encode(sig),
	})
	assert.True(t, isError)
	assert.Equal(t, "signature_invalid", errorKind(t, text))
	// The invalid transaction never reached the node.
	assert.Equal(t, int32(0), submits.Load())
}

func TestSubmitRejectsBlobFieldMismatch(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("nothing should reach the node")
	})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	seed, source := signerKeys(t)

	// A canonical blob for different fields than the ones submitted.
	signer, err := tx.DecodeAddress(source)
	require.NoError(t, err)
	other, err := tx.BuildUnsigned(signer, "Coin", "transfer", [][]byte{[]byte("x")}, nil, nil, 999)
	require.NoError(t, err)
	sig, err := tx.Sign(seed, other.Hash[:])
	require.NoError(t, err)

	text, isError := callTool(t, ctx, s, "submit_transaction", map[string]any{
		"transaction": base58.Encode(other.Blob),
		"signature":   base58.Encode(sig),
		"tx": map[string]any{
			"signer":   source,
			"contract": "Coin",
			"function": "transfer",
			"args":     []any{"y"},
			"nonce":    1000,
		},
	})
	assert.True(t, isError)
	assert.Equal(t, "encoding_mismatch", errorKind(t, text))
}

func TestSubmitRejectsNonCanonicalBlob(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("nothing should reach the node")
	})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	seed, source := signerKeys(t)
	signer, err := tx.DecodeAddress(source)
	require.NoError(t, err)
	unsigned, err := tx.BuildUnsigned(signer, "Coin", "transfer", [][]byte{[]byte("x")}, nil, nil, 5)
	require.NoError(t, err)
	sig, err := tx.Sign(seed, unsigned.Hash[:])
	require.NoError(t, err)

	padded := append(append([]byte{}, unsigned.Blob...), 0x00)
	text, isError := callTool(t, ctx, s, "submit_transaction", map[string]any{
		"transaction": base58.Encode(padded),
		"signature":   base58.Encode(sig),
	})
	assert.True(t, isError)
	assert.Equal(t, "validation_error", errorKind(t, text))
}

func TestFaucetClaimTool(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"ok","tx_hash":"minted"}`))
	})

	seed := make([]byte, tx.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	s := newTestServer(t, nodeURL, base58.Encode(seed))
	ctx := sessionContext(t, s, true)

	_, destination := signerKeys(t)
	text, isError := callTool(t, ctx, s, "claim_testnet_ama", map[string]any{"address": destination})
	require.False(t, isError, "claim failed: %s", text)
	assert.Contains(t, text, `"status": "success"`)

	// Same origin again within the window is denied with a retry hint.
	text, isError = callTool(t, ctx, s, "claim_testnet_ama", map[string]any{"address": destination})
	assert.True(t, isError)
	assert.Equal(t, "faucet_cooldown", errorKind(t, text))
	assert.Contains(t, text, "retry_after_seconds")
}

func TestFaucetToolAbsentWithoutSeed(t *testing.T) {
	nodeURL := stubNode(t, func(w http.ResponseWriter, r *http.Request) {})
	s := newTestServer(t, nodeURL, "")
	ctx := sessionContext(t, s, true)

	reply := handleMessage(t, ctx, s, `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"claim_testnet_ama","arguments":{"address":"x"}}}`)
	require.NotNil(t, reply)
	assert.NotNil(t, reply.Error)
}
