package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Local store management commands",
	Long:  `Commands for backing up and restoring the local key/value store.`,
}

var storeExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the local store",
	Long: `Write an xz-compressed JSON dump of the local store.

With no file argument the archive goes to stdout:

  auviostream store export > backup.json.xz`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreExport,
}

var storeImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a local store export",
	Long:  `Restore documents from an archive produced by "store export". Existing keys are overwritten.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStoreImport,
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeImportCmd)
}

func openStore() (*store.Store, func(), error) {
	db, err := database.New(cfg.Database, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("opening local store: %w", err)
	}

	st, err := store.New(db, slog.Default())
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initializing local store: %w", err)
	}

	return st, func() { db.Close() }, nil
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return st.Export(context.Background(), out)
}

func runStoreImport(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	if err := st.Import(context.Background(), f); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "store imported from", args[0])
	return nil
}
