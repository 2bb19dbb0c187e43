package mcp

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/amadeus-robot/amadeus-mcp/internal/chain"
	"github.com/amadeus-robot/amadeus-mcp/internal/logging"
)

// Stable error kind tags surfaced to callers. No internal stack detail
// crosses this boundary.
const (
	kindProtocol         = "protocol_error"
	kindValidation       = "validation_error"
	kindEncodingMismatch = "encoding_mismatch"
	kindSignature        = "signature_invalid"
	kindUpstream         = "upstream_error"
	kindCooldown         = "faucet_cooldown"
	kindStore            = "store_error"
)

// errorResult builds the structured error envelope every failing tool
// call returns: {"error": <kind>, "message": ..., <detail>}.
func errorResult(kind, message string, detail map[string]any) *mcp.CallToolResult {
	payload := map[string]any{
		"error":   kind,
		"message": message,
	}
	for k, v := range detail {
		payload[k] = v
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(message)
	}
	return mcp.NewToolResultError(string(data))
}

// successResult wraps a handler result in an indented JSON text content.
func successResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logging.Error("failed to marshal tool result: %v", err)
		return errorResult(kindUpstream, "failed to serialize result", nil)
	}
	return mcp.NewToolResultText(string(data))
}

// upstreamResult maps a chain client failure into the taxonomy, keeping
// enough detail for the caller to tell transient from semantic causes.
func upstreamResult(tool string, err error) *mcp.CallToolResult {
	logging.Error("%s: upstream call failed: %v", tool, err)

	var ce *chain.Error
	if errors.As(err, &ce) {
		return errorResult(kindUpstream, ce.Message, map[string]any{
			"cause":     string(ce.Kind),
			"transient": chain.IsTransient(err),
		})
	}
	return errorResult(kindUpstream, err.Error(), nil)
}
