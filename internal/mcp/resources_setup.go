package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// setupResources exposes read-only chain data under ama:// URIs. The
// same data is reachable via the query tools; resources let a client
// load it as context without a tool round trip.
func (s *Server) setupResources() {
	statsResource := mcp.NewResource(
		"ama://chain/stats",
		"Chain Statistics",
		mcp.WithResourceDescription("Current chain height, transaction and account totals"),
		mcp.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(statsResource, s.handleChainStatsResource)

	validatorsResource := mcp.NewResource(
		"ama://validators",
		"Validators",
		mcp.WithResourceDescription("Current validator set (trainers)"),
		mcp.WithMIMEType("application/json"),
	)
	s.mcpServer.AddResource(validatorsResource, s.handleValidatorsResource)

	blockTemplate := mcp.NewResourceTemplate(
		"ama://block/{height}",
		"Block by Height",
		mcp.WithTemplateDescription("All chain entries at a specific height"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.mcpServer.AddResourceTemplate(blockTemplate, s.handleBlockResource)

	txTemplate := mcp.NewResourceTemplate(
		"ama://tx/{hash}",
		"Transaction by Hash",
		mcp.WithTemplateDescription("A single transaction looked up by its base58 hash"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.mcpServer.AddResourceTemplate(txTemplate, s.handleTransactionResource)
}
