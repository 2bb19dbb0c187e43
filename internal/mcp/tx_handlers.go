package mcp

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/amadeus-robot/amadeus-mcp/internal/logging"
	"github.com/amadeus-robot/amadeus-mcp/internal/tx"
)

// Transaction pipeline handlers. A transaction moves through
// built (unsigned) -> verified -> submitted; verification always runs on
// a blob this server re-derived itself.

func (s *Server) handleCreateTransfer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	var (
		signerB58 string
		contract  string
		function  string
		argList   []tx.Arg
	)

	_, generic := args["signer"]
	switch {
	case generic:
		for _, field := range []string{"contract", "function", "args"} {
			if _, ok := args[field]; !ok {
				return errorResult(kindValidation, field+": required with signer", nil), nil
			}
		}
		signerB58 = request.GetString("signer", "")
		contract = request.GetString("contract", "")
		function = request.GetString("function", "")

		parsed, vErr := parseArgList(args["args"])
		if vErr != nil {
			return errorResult(kindValidation, vErr.Error(), nil), nil
		}
		argList = parsed

	default:
		for _, field := range []string{"symbol", "source", "destination", "amount"} {
			if _, ok := args[field]; !ok {
				return errorResult(kindValidation, field+": required for a transfer", nil), nil
			}
		}
		signerB58 = request.GetString("source", "")
		contract = "Coin"
		function = "transfer"
		argList = []tx.Arg{
			{Kind: tx.ArgAddress, Value: request.GetString("destination", "")},
			{Kind: tx.ArgText, Value: request.GetString("amount", "")},
			{Kind: tx.ArgText, Value: request.GetString("symbol", "")},
		}
		if memo := request.GetString("memo", ""); memo != "" {
			argList = append(argList, tx.Arg{Kind: tx.ArgText, Value: memo})
		}
	}

	signer, err := tx.DecodeAddress(signerB58)
	if err != nil {
		return errorResult(kindValidation, "signer: "+err.Error(), nil), nil
	}
	argBytes, err := tx.ArgBytes(argList)
	if err != nil {
		return errorResult(kindValidation, err.Error(), nil), nil
	}

	unsigned, err := tx.BuildUnsigned(signer, contract, function, argBytes, nil, nil, int64(request.GetInt("nonce", 0)))
	if err != nil {
		return errorResult(kindValidation, err.Error(), nil), nil
	}

	// Echo the logical fields so the caller can see exactly what they
	// are about to sign, and re-submit by fields later.
	built, err := tx.Decode(unsigned.Blob)
	if err != nil {
		return errorResult(kindProtocol, "failed to round-trip built transaction", nil), nil
	}

	logging.Debug("built unsigned %s.%s transaction for %s", contract, function, signerB58)
	return successResult(map[string]any{
		"blob":             base58.Encode(unsigned.Blob),
		"signing_payload":  hex.EncodeToString(unsigned.Hash[:]),
		"transaction_hash": base58.Encode(unsigned.Hash[:]),
		"status":           "unsigned",
		"tx": map[string]any{
			"signer":   signerB58,
			"contract": contract,
			"function": function,
			"args":     argList,
			"nonce":    built.Nonce,
		},
		"next_step": "Sign the signing_payload with BLS12-381 and call submit_transaction",
	}), nil
}

func (s *Server) handleSubmitTransaction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	signatureB58, err := request.RequireString("signature")
	if err != nil {
		return errorResult(kindValidation, fmt.Sprintf("signature: %v", err), nil), nil
	}
	network := request.GetString("network", "mainnet")

	args := request.GetArguments()
	blobB58 := request.GetString("transaction", "")
	fields, hasFields := args["tx"]
	if blobB58 == "" && !hasFields {
		return errorResult(kindValidation, "either transaction or tx is required", nil), nil
	}

	// The canonical blob is always re-derived here. Caller-supplied
	// blobs are only accepted when they match the re-derivation.
	var blob []byte
	if hasFields {
		derived, vErr := blobFromFields(fields)
		if vErr != nil {
			return errorResult(kindValidation, vErr.Error(), nil), nil
		}
		if blobB58 != "" && !bytes.Equal(base58.Decode(blobB58), derived) {
			logging.Error("submit_transaction: supplied blob disagrees with re-derived encoding")
			return errorResult(kindEncodingMismatch,
				"supplied transaction blob does not match the canonical encoding of tx fields", nil), nil
		}
		blob = derived
	} else {
		blob = base58.Decode(blobB58)
		if len(blob) == 0 {
			return errorResult(kindValidation, "transaction: invalid base58", nil), nil
		}
		decoded, dErr := tx.Decode(blob)
		if dErr != nil {
			return errorResult(kindValidation, "transaction: "+dErr.Error(), nil), nil
		}
		if !bytes.Equal(tx.Encode(decoded), blob) {
			logging.Error("submit_transaction: non-canonical transaction blob")
			return errorResult(kindEncodingMismatch, "transaction blob is not in canonical form", nil), nil
		}
	}

	parsed, err := tx.Decode(blob)
	if err != nil {
		return errorResult(kindValidation, "transaction: "+err.Error(), nil), nil
	}

	signature := base58.Decode(signatureB58)
	hash := tx.SigningHash(blob)
	switch {
	case len(signature) != tx.SignatureSize || !tx.SignatureWellFormed(signature):
		return errorResult(kindSignature, "signature is malformed", map[string]any{
			"reason": "malformed_signature",
		}), nil
	case !tx.PublicKeyWellFormed(parsed.Signer):
		return errorResult(kindSignature, "signer public key is malformed", map[string]any{
			"reason": "malformed_public_key",
		}), nil
	case !tx.Verify(parsed.Signer, hash[:], signature):
		return errorResult(kindSignature, "signature does not verify against the signing payload", map[string]any{
			"reason": "signature_mismatch",
		}), nil
	}

	packed := tx.EncodePacked(&tx.Packed{Hash: hash[:], Signature: signature, Tx: *parsed})
	result, err := s.clientFor(network).SubmitPacked(ctx, base58.Encode(packed))
	if err != nil {
		return upstreamResult("submit_transaction", err), nil
	}

	txHash := base58.Encode(hash[:])
	logging.Info("submitted transaction %s to %s", txHash, network)
	return successResult(map[string]any{
		"status":  "success",
		"tx_hash": txHash,
		"network": network,
		"node":    result.Err,
	}), nil
}

// blobFromFields re-derives the canonical encoding from logical fields.
func blobFromFields(fields any) ([]byte, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("tx: %v", err)
	}

	var logical struct {
		Signer   string   `json:"signer"`
		Contract string   `json:"contract"`
		Function string   `json:"function"`
		Args     []tx.Arg `json:"args"`
		Nonce    int64    `json:"nonce"`
	}
	if err := json.Unmarshal(raw, &logical); err != nil {
		return nil, fmt.Errorf("tx: %v", err)
	}
	if logical.Nonce <= 0 {
		return nil, fmt.Errorf("tx.nonce: must be a positive integer")
	}

	signer, err := tx.DecodeAddress(logical.Signer)
	if err != nil {
		return nil, fmt.Errorf("tx.signer: %v", err)
	}
	argBytes, err := tx.ArgBytes(logical.Args)
	if err != nil {
		return nil, fmt.Errorf("tx.%v", err)
	}

	unsigned, err := tx.BuildUnsigned(signer, logical.Contract, logical.Function, argBytes, nil, nil, logical.Nonce)
	if err != nil {
		return nil, fmt.Errorf("tx: %v", err)
	}
	return unsigned.Blob, nil
}

// parseArgList converts the raw JSON argument array into tagged args.
func parseArgList(raw any) ([]tx.Arg, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("args: %v", err)
	}
	var list []tx.Arg
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("args: %v", err)
	}
	return list, nil
}
