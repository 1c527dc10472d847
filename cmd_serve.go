package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/BradSegal/anatomize/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Serve exposes the pack and explain tools to MCP clients over
stdin/stdout. Pack flags and config values become the defaults of every
tool call; relative roots resolve against the working directory.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	defaults, err := packOptions(cwd)
	if err != nil {
		return err
	}
	return mcpserver.NewServer(version, cwd, defaults, logger).Run(cmd.Context())
}
