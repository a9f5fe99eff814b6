package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "codelens/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing file selection, analysis, and artifact tracing tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, database, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		fmt.Fprintln(os.Stderr, "codelens MCP server started on stdio")

		srv := mcpserver.NewServer(cfg, store, newConceptIndex(cfg), newOracle(cfg))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
