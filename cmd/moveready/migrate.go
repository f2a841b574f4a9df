package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and print their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		// opening the database applies pending migrations
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()
		return e.db.Status()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
