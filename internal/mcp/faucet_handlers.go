package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/amadeus-robot/amadeus-mcp/internal/faucet"
	"github.com/amadeus-robot/amadeus-mcp/internal/tx"
)

func (s *Server) handleClaimTestnetAMA(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := request.RequireString("address")
	if err != nil {
		return errorResult(kindValidation, fmt.Sprintf("address: %v", err), nil), nil
	}
	if _, err := tx.DecodeAddress(address); err != nil {
		return errorResult(kindValidation, "address: "+err.Error(), nil), nil
	}

	grant, err := s.faucet.Claim(ctx, originFromContext(ctx), address)
	if err != nil {
		var cooldown *faucet.CooldownError
		switch {
		case errors.As(err, &cooldown):
			return errorResult(kindCooldown,
				fmt.Sprintf("already claimed within the last %s", faucet.Cooldown),
				map[string]any{
					"retry_after_seconds": int64(cooldown.RetryAfter.Seconds()),
				}), nil
		case errors.Is(err, faucet.ErrStore):
			return errorResult(kindStore, err.Error(), nil), nil
		default:
			return upstreamResult("claim_testnet_ama", err), nil
		}
	}

	return successResult(map[string]any{
		"status": "success",
		"grant":  grant,
	}), nil
}
