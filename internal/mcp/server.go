// Package mcp exposes the Amadeus blockchain tool catalogue over the
// Model Context Protocol. One engine serves both transports: stdio for a
// single local session and streamable HTTP for request-parallel callers.
package mcp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/amadeus-robot/amadeus-mcp/internal/chain"
	"github.com/amadeus-robot/amadeus-mcp/internal/config"
	"github.com/amadeus-robot/amadeus-mcp/internal/db/repositories"
	"github.com/amadeus-robot/amadeus-mcp/internal/faucet"
	"github.com/amadeus-robot/amadeus-mcp/internal/logging"
	"github.com/amadeus-robot/amadeus-mcp/internal/version"
)

const serverName = "Amadeus MCP Server"

type Server struct {
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	mainnet    *chain.Client
	testnet    *chain.Client
	faucet     *faucet.Service
}

// NewServer wires the chain clients, the faucet (when key material is
// configured) and the full tool/resource catalogue. The registry is
// complete before the server accepts any session and is never mutated
// afterwards.
func NewServer(cfg *config.Config, repos *repositories.Repositories) (*Server, error) {
	mcpServer := server.NewMCPServer(
		serverName,
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(requireInitialized),
		server.WithToolHandlerMiddleware(validateParams),
		server.WithInstructions(
			"Amadeus blockchain gateway. Use create_transfer to build an unsigned "+
				"transaction, sign the signing_payload externally with BLS12-381, then "+
				"submit_transaction to broadcast. Read-only chain data is also available "+
				"as ama:// resources."),
	)

	s := &Server{
		mcpServer: mcpServer,
		mainnet:   chain.New(cfg.MainnetURL, cfg.APIKey),
		testnet:   chain.New(cfg.TestnetURL, cfg.APIKey),
	}

	if cfg.FaucetEnabled() {
		svc, err := faucet.NewService(repos.FaucetClaims, chain.New(cfg.TestnetURL, cfg.APIKey), cfg.FaucetSeed)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize faucet: %w", err)
		}
		s.faucet = svc
	} else {
		logging.Info("AMADEUS_TESTNET_SK not set, claim_testnet_ama disabled")
	}

	s.setupTools()
	s.setupResources()

	s.httpServer = server.NewStreamableHTTPServer(
		mcpServer,
		server.WithHTTPContextFunc(withRequestOrigin),
	)

	return s, nil
}

// Start serves the streamable HTTP transport until the listener fails.
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("starting MCP server on streamable HTTP transport %s", addr)

	if err := s.httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// StartStdio serves a single session over stdin/stdout.
func (s *Server) StartStdio(ctx context.Context) error {
	logging.Info("starting MCP server on stdio transport")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("MCP server shutdown: %w", err)
		}
	}
	logging.Info("MCP server shutdown complete")
	return nil
}

// clientFor resolves the target network for submissions.
func (s *Server) clientFor(network string) *chain.Client {
	if network == "testnet" {
		return s.testnet
	}
	return s.mainnet
}

// requireInitialized rejects tool calls from sessions that have not
// completed the initialize handshake. The transport layer owns the
// lifecycle; this gate just makes the ordering rule explicit.
func requireInitialized(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if session := server.ClientSessionFromContext(ctx); session != nil && !session.Initialized() {
			return errorResult(kindProtocol, "session not initialized", nil), nil
		}
		return next(ctx, request)
	}
}

type contextKey string

const originContextKey contextKey = "client-origin"

// localOrigin keys faucet claims for the stdio transport, which has no
// network peer.
const localOrigin = "local"

// WithOrigin attaches a faucet origin key to the context.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originContextKey, origin)
}

func originFromContext(ctx context.Context) string {
	if origin, ok := ctx.Value(originContextKey).(string); ok && origin != "" {
		return origin
	}
	return localOrigin
}

// withRequestOrigin derives the caller's origin key from the HTTP
// request: first hop of X-Forwarded-For when present, else the peer
// address.
func withRequestOrigin(ctx context.Context, r *http.Request) context.Context {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return WithOrigin(ctx, strings.TrimSpace(first))
		}
		return WithOrigin(ctx, strings.TrimSpace(xff))
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return WithOrigin(ctx, host)
	}
	return WithOrigin(ctx, r.RemoteAddr)
}
