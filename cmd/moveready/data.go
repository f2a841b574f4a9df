package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/moveready/internal/backup"
	"github.com/dukerupert/moveready/internal/calendar"
	"github.com/dukerupert/moveready/internal/store"
)

var (
	dataUser       string
	dataFile       string
	dataPassphrase string
)

// output opens dataFile for writing, or stdout when it is empty or "-".
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if dataFile == "" || dataFile == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.OpenFile(dataFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's inventory as JSON, optionally encrypted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dataUser == "" {
			return errors.New("--user is required")
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		src := backup.StoreSource{Docs: store.NewDocumentStore(e.db), Users: store.NewUserStore(e.db)}
		data, err := src.Export(cmd.Context(), dataUser)
		if err != nil {
			return err
		}
		if dataPassphrase != "" {
			if data, err = backup.Encrypt(data, dataPassphrase); err != nil {
				return err
			}
		}

		w, closeOut, err := output(cmd)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			closeOut()
			return fmt.Errorf("write export: %w", err)
		}
		return closeOut()
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace a user's inventory with an export file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dataUser == "" || dataFile == "" {
			return errors.New("--user and --file are required")
		}
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return err
		}
		plain, err := backup.Open(raw, dataPassphrase)
		if err != nil {
			return err
		}
		exp, err := backup.Parse(plain)
		if err != nil {
			return err
		}

		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		s, closeStore, err := e.openStore(cmd.Context(), dataUser)
		if err != nil {
			return err
		}
		defer closeStore()

		if _, err := s.ImportData(exp.Inventory, exp.Roommates).Wait(cmd.Context()); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items (export %s, %s)\n", len(exp.Inventory), exp.Version, exp.Timestamp.Format(time.RFC3339))
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Write a user's dated admin tasks as an iCalendar file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dataUser == "" {
			return errors.New("--user is required")
		}
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		doc, err := store.NewDocumentStore(e.db).Get(cmd.Context(), dataUser)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("user %s: %w", dataUser, store.ErrDocumentNotFound)
		}

		w, closeOut, err := output(cmd)
		if err != nil {
			return err
		}
		if _, err := w.Write(calendar.Export(*doc, time.Now())); err != nil {
			closeOut()
			return fmt.Errorf("write calendar: %w", err)
		}
		return closeOut()
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Upload exports of every user to S3 and prune old archives",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		src := backup.StoreSource{Docs: store.NewDocumentStore(e.db), Users: store.NewUserStore(e.db)}
		a := backup.NewArchiver(e.cfg.Backup, src, e.logger, nil)
		if !a.Enabled() {
			return backup.ErrNotConfigured
		}
		if dataUser != "" {
			key, err := a.ArchiveUser(cmd.Context(), dataUser)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		}
		return a.RunAll(cmd.Context())
	},
}

func init() {
	for _, c := range []*cobra.Command{exportCmd, importCmd, calendarCmd, archiveCmd} {
		c.Flags().StringVar(&dataUser, "user", "", "User id")
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{exportCmd, importCmd, calendarCmd} {
		c.Flags().StringVar(&dataFile, "file", "", "File to read or write (stdout when empty)")
	}
	for _, c := range []*cobra.Command{exportCmd, importCmd} {
		c.Flags().StringVar(&dataPassphrase, "passphrase", os.Getenv("MOVEREADY_EXPORT_PASSPHRASE"), "Encryption passphrase")
	}
}
