package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Read-only query handlers. Each validates input shape, delegates to the
// chain client and maps failures into the taxonomy; nothing more.

func (s *Server) handleGetAccountBalance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := request.RequireString("address")
	if err != nil {
		return errorResult(kindValidation, fmt.Sprintf("address: %v", err), nil), nil
	}

	balance, err := s.mainnet.GetAccountBalance(ctx, address)
	if err != nil {
		return upstreamResult("get_account_balance", err), nil
	}
	return successResult(balance), nil
}

func (s *Server) handleGetChainStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.mainnet.GetChainStats(ctx)
	if err != nil {
		return upstreamResult("get_chain_stats", err), nil
	}
	return successResult(stats), nil
}

func (s *Server) handleGetBlockByHeight(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	height, err := request.RequireInt("height")
	if err != nil {
		return errorResult(kindValidation, fmt.Sprintf("height: %v", err), nil), nil
	}
	if height < 0 {
		return errorResult(kindValidation, "height: must be non-negative", nil), nil
	}

	entries, err := s.mainnet.GetBlockByHeight(ctx, uint64(height))
	if err != nil {
		return upstreamResult("get_block_by_height", err), nil
	}
	return successResult(map[string]any{
		"height":  height,
		"entries": entries,
		"count":   len(entries),
	}), nil
}

func (s *Server) handleGetTransaction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	txHash, err := request.RequireString("tx_hash")
	if err != nil {
		return errorResult(kindValidation, fmt.Sprintf("tx_hash: %v", err), nil), nil
	}

	transaction, err := s.mainnet.GetTransaction(ctx, txHash)
	if err != nil {
		return upstreamResult("get_transaction", err), nil
	}
	return successResult(transaction), nil
}

func (s *Server) handleGetTransactionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := request.RequireString("address")
	if err != nil {
		return errorResult(kindValidation, fmt.Sprintf("address: %v", err), nil), nil
	}
	limit := request.GetInt("limit", 0)
	offset := request.GetInt("offset", 0)
	sort := request.GetString("sort", "")

	txs, err := s.mainnet.GetTransactionHistory(ctx, address, limit, offset, sort)
	if err != nil {
		return upstreamResult("get_transaction_history", err), nil
	}
	return successResult(map[string]any{
		"address": address,
		"txs":     txs,
		"count":   len(txs),
	}), nil
}

func (s *Server) handleGetValidators(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	validators, err := s.mainnet.GetValidators(ctx)
	if err != nil {
		return upstreamResult("get_validators", err), nil
	}
	return successResult(map[string]any{
		"validators": validators,
		"count":      len(validators),
	}), nil
}

func (s *Server) handleGetContractState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contractAddress, err := request.RequireString("contract_address")
	if err != nil {
		return errorResult(kindValidation, fmt.Sprintf("contract_address: %v", err), nil), nil
	}
	key, err := request.RequireString("key")
	if err != nil {
		return errorResult(kindValidation, fmt.Sprintf("key: %v", err), nil), nil
	}

	state, err := s.mainnet.GetContractState(ctx, contractAddress, key)
	if err != nil {
		return upstreamResult("get_contract_state", err), nil
	}
	return successResult(map[string]any{
		"contract_address": contractAddress,
		"key":              key,
		"value":            state,
	}), nil
}
