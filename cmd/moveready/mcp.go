package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dukerupert/moveready/internal/bridge"
)

var mcpUser string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the agent tools over MCP on stdin/stdout",
	Long:  "mcp exposes the inventory, grocery and analysis tools of one user's checklist to an MCP client. Logs go to stderr.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mcpUser == "" {
			return errors.New("--user is required")
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, closeStore, err := e.openStore(ctx, mcpUser)
		if err != nil {
			return err
		}
		defer closeStore()

		srv := bridge.NewMCPServer(bridge.New(s, e.logger), version)
		return bridge.ServeStdio(ctx, srv, os.Stdin, os.Stdout, e.logger)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpUser, "user", "", "User id whose checklist the tools work on")
	rootCmd.AddCommand(mcpCmd)
}
