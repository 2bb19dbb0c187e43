package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amadeus-robot/amadeus-mcp/internal/config"
	"github.com/amadeus-robot/amadeus-mcp/internal/db"
	"github.com/amadeus-robot/amadeus-mcp/internal/db/repositories"
	"github.com/amadeus-robot/amadeus-mcp/internal/logging"
	"github.com/amadeus-robot/amadeus-mcp/internal/mcp"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Start the MCP server on the stdio transport",
	Long: `Start the MCP server over stdin/stdout for a single local session.
All logging goes to stderr so the protocol stream stays clean.`,
	RunE: runStdio,
}

func runStdio(cmd *cobra.Command, args []string) error {
	_, server, cleanup, err := buildServer()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintln(os.Stderr, "Amadeus MCP server ready on stdin/stdout")
	if err := server.StartStdio(context.Background()); err != nil {
		return fmt.Errorf("MCP stdio server failed: %w", err)
	}
	return nil
}

// buildServer wires config, database, repositories and the MCP server.
// The returned cleanup closes the database.
func buildServer() (*config.Config, *mcp.Server, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.Initialize(cfg.Debug)

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	repos := repositories.New(database)
	server, err := mcp.NewServer(cfg, repos)
	if err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		if err := database.Close(); err != nil {
			logging.Error("failed to close database: %v", err)
		}
	}
	return cfg, server, cleanup, nil
}
