package main

import (
	"context"

	"github.com/spf13/cobra"

	"casectl/internal/logging"
	"casectl/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: "Serve exposes the case console as MCP tools on stdin/stdout, for use\n" +
		"by MCP-capable clients. All logging goes to stderr.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	tracker, closeStore, err := openTracker()
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(client, tracker, version)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go mcp.WatchParent(ctx, logging.New("watchdog"), cancel)

	return srv.Run(ctx)
}
