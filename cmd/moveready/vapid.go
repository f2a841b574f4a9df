package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/moveready/internal/push"
)

var vapidCmd = &cobra.Command{
	Use:   "vapid-keys",
	Short: "Generate a VAPID key pair for push notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		public, private, err := push.GenerateVAPIDKeys()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "MOVEREADY_PUSH_VAPID_PUBLIC_KEY=%s\n", public)
		fmt.Fprintf(cmd.OutOrStdout(), "MOVEREADY_PUSH_VAPID_PRIVATE_KEY=%s\n", private)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vapidCmd)
}
