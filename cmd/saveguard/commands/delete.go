package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/khendrix/saveguard/internal/backup"
	"github.com/khendrix/saveguard/internal/cli/prompt"
)

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete [index]",
	Short: "Delete a backup",
	Long: `Delete a single backup by its 1-based index from 'saveguard list'.

Without an index, an interactive picker opens over the available
backups. Deletion is permanent.`,
	Example: `  # Delete backup #3
  saveguard delete 3 -g skyrim

  # Pick interactively
  saveguard delete -g skyrim

  See Also:
    saveguard list  - List available backups
    saveguard prune - Delete all but the newest backups`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func runDelete(_ *cobra.Command, args []string) error {
	e, err := resolveEngine(cfg)
	if err != nil {
		return err
	}

	index, err := pickIndex(e, args)
	if err != nil {
		return err
	}

	return runDeleteWithIO(os.Stdin, os.Stdout, e, index, deleteYes)
}

func runDeleteWithIO(in io.Reader, w io.Writer, e *backup.Engine, index int, skipConfirm bool) error {
	snaps, err := e.List()
	if err != nil {
		return errors.Wrap(err, "listing backups")
	}
	if index < 1 || index > len(snaps) {
		return errors.Wrapf(backup.ErrNotFound, "index %d of %d", index, len(snaps))
	}
	target := snaps[index-1]

	if !skipConfirm {
		question := fmt.Sprintf("Delete %s permanently?", target.Name)
		ok, err := prompt.NewWithIO(in, w).Confirm(question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Delete cancelled.")
			return nil
		}
	}

	if err := e.Delete(index); err != nil {
		return errors.Wrap(err, "deleting backup")
	}

	fmt.Fprintf(w, "%s✓ Deleted %s%s\n", colorGreen, target.Name, colorReset)
	return nil
}
