package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/khendrix/saveguard/internal/backup"
)

var pruneKeep int

func init() {
	pruneCmd.Flags().IntVarP(&pruneKeep, "keep", "k", -1,
		"number of newest backups to keep (default: the configured retention count)")
	rootCmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old backups beyond the retention count",
	Long: `Delete the oldest backups, keeping only the newest ones.

Without --keep, the configured retention count applies. Failures on
individual backups are collected and reported together; the prune keeps
going past them.`,
	Example: `  # Apply the configured retention count
  saveguard prune -g skyrim

  # Keep only the 3 newest
  saveguard prune -g skyrim --keep 3

  See Also:
    saveguard list   - List available backups
    saveguard delete - Delete a single backup`,
	RunE: runPrune,
}

func runPrune(_ *cobra.Command, _ []string) error {
	e, err := resolveEngine(cfg)
	if err != nil {
		return err
	}

	keep := pruneKeep
	if keep < 0 {
		keep = e.MaxBackups()
	}

	return runPruneWithWriter(os.Stdout, e, keep)
}

func runPruneWithWriter(w io.Writer, e *backup.Engine, keep int) error {
	removed, err := e.Prune(keep)
	if err != nil {
		return errors.Wrapf(err, "pruning to %d backups", keep)
	}

	if removed == 0 {
		fmt.Fprintf(w, "Nothing to prune (keeping up to %d backups).\n", keep)
		return nil
	}

	noun := "backups"
	if removed == 1 {
		noun = "backup"
	}
	fmt.Fprintf(w, "%s✓ Pruned %d %s (keeping %d)%s\n", colorGreen, removed, noun, keep, colorReset)
	return nil
}
