package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amadeus-robot/amadeus-mcp/internal/version"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "amadeus-mcp",
		Short: "Amadeus MCP - blockchain gateway for AI agents",
		Long: `Amadeus MCP exposes the Amadeus blockchain to AI agents through the
Model Context Protocol: transaction building and submission, chain queries
and a rate-limited testnet faucet, over stdio or streamable HTTP.`,
		Version: version.GetVersionString(),
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./amadeus-mcp.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stdioCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionString())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
