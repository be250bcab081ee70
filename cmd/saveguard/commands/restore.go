package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/khendrix/saveguard/internal/backup"
	"github.com/khendrix/saveguard/internal/cli"
	"github.com/khendrix/saveguard/internal/cli/prompt"
)

var restoreYes bool

func init() {
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [index]",
	Short: "Restore saves from a backup",
	Long: `Restore the game's save directory from a backup.

The index is the 1-based position shown by 'saveguard list'. Without an
index, an interactive picker opens over the available backups.

Before anything is overwritten, a safety backup of the current saves is
taken; if that safety backup cannot be created the restore still
proceeds and the failure is reported as a warning. The save directory
is then cleared and the backup's files are copied back in.`,
	Example: `  # Restore the most recent backup
  saveguard restore 1 -g skyrim

  # Pick interactively
  saveguard restore -g skyrim

  # No confirmation prompt
  saveguard restore 1 -g skyrim --yes

  See Also:
    saveguard list   - List available backups
    saveguard create - Create a new backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

func runRestore(cmd *cobra.Command, args []string) error {
	e, err := resolveEngine(cfg)
	if err != nil {
		return err
	}

	index, err := pickIndex(e, args)
	if err != nil {
		return err
	}

	return runRestoreWithIO(cmd.Context(), os.Stdin, os.Stdout, e, index, restoreYes)
}

// pickIndex resolves the snapshot index from args, or interactively.
func pickIndex(e *backup.Engine, args []string) (int, error) {
	if len(args) > 0 {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return 0, errors.Newf("%q is not a backup index", args[0])
		}
		return index, nil
	}

	snaps, err := e.List()
	if err != nil {
		return 0, errors.Wrap(err, "listing backups")
	}
	index, err := cli.PickSnapshot(snaps)
	if err != nil {
		if errors.Is(err, prompt.ErrNoItems) {
			return 0, errors.New("no backups available")
		}
		return 0, err
	}
	return index, nil
}

func runRestoreWithIO(ctx context.Context, in io.Reader, w io.Writer, e *backup.Engine, index int, skipConfirm bool) error {
	snaps, err := e.List()
	if err != nil {
		return errors.Wrap(err, "listing backups")
	}
	if index < 1 || index > len(snaps) {
		return errors.Wrapf(backup.ErrNotFound, "index %d of %d", index, len(snaps))
	}
	target := snaps[index-1]

	if !skipConfirm {
		question := fmt.Sprintf("Restore %s over %s?", target.Name, e.SaveDir())
		ok, err := prompt.NewWithIO(in, w).Confirm(question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Restore cancelled.")
			return nil
		}
	}

	var progress backup.ProgressFunc
	if !quiet {
		progress = progressPrinter(w)
	}

	report, err := e.Restore(ctx, index, progress)
	if err != nil {
		return errors.Wrap(err, "restoring backup")
	}

	if report.SafetyErr != nil {
		fmt.Fprintf(w, "%s! No safety backup: %v%s\n", colorYellow, report.SafetyErr, colorReset)
	} else if report.SafetyBackup != nil {
		fmt.Fprintf(w, "Current saves preserved as %s\n", report.SafetyBackup.Name)
	}

	fmt.Fprintf(w, "%s✓ Restored %s (%d files)%s\n",
		colorGreen, report.Restored.Name, report.FilesRestored, colorReset)
	return nil
}
