package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

var (
	blockURIPattern = regexp.MustCompile(`^ama://block/(\d+)$`)
	txURIPattern    = regexp.MustCompile(`^ama://tx/([1-9A-HJ-NP-Za-km-z]+)$`)
)

func (s *Server) handleChainStatsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := s.mainnet.GetChainStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain stats: %w", err)
	}

	return jsonResourceContents(request.Params.URI, map[string]any{
		"stats":        stats,
		"resource_uri": request.Params.URI,
		"timestamp":    time.Now(),
	})
}

func (s *Server) handleValidatorsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	validators, err := s.mainnet.GetValidators(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get validators: %w", err)
	}

	return jsonResourceContents(request.Params.URI, map[string]any{
		"total_count":  len(validators),
		"validators":   validators,
		"resource_uri": request.Params.URI,
		"timestamp":    time.Now(),
	})
}

func (s *Server) handleBlockResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	m := blockURIPattern.FindStringSubmatch(request.Params.URI)
	if m == nil {
		return nil, fmt.Errorf("invalid block URI: %s", request.Params.URI)
	}
	height, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid block height in URI: %w", err)
	}

	entries, err := s.mainnet.GetBlockByHeight(ctx, height)
	if err != nil {
		return nil, fmt.Errorf("failed to get block %d: %w", height, err)
	}

	return jsonResourceContents(request.Params.URI, map[string]any{
		"height":       height,
		"total_count":  len(entries),
		"entries":      entries,
		"resource_uri": request.Params.URI,
		"timestamp":    time.Now(),
	})
}

func (s *Server) handleTransactionResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	m := txURIPattern.FindStringSubmatch(request.Params.URI)
	if m == nil {
		return nil, fmt.Errorf("invalid transaction URI: %s", request.Params.URI)
	}

	transaction, err := s.mainnet.GetTransaction(ctx, m[1])
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", m[1], err)
	}

	return jsonResourceContents(request.Params.URI, map[string]any{
		"tx_hash":      m[1],
		"transaction":  transaction,
		"resource_uri": request.Params.URI,
		"timestamp":    time.Now(),
	})
}

func jsonResourceContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
