package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/khendrix/saveguard/internal/backup"
)

func init() {
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create [description]",
	Short: "Create a backup of the current saves",
	Long: `Create a timestamped backup of the game's save directory.

The backup is staged privately and only becomes visible once every file
has been copied, so an interrupted run leaves nothing behind. After a
successful backup, the oldest backups beyond the retention count are
pruned automatically.

Any arguments are joined into a free-text description stored with the
backup and shown in listings.`,
	Example: `  # Plain backup
  saveguard create -g skyrim

  # With a description
  saveguard create "before final boss" -g skyrim

  See Also:
    saveguard list    - List available backups
    saveguard restore - Restore from a backup`,
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	e, err := resolveEngine(cfg)
	if err != nil {
		return err
	}
	return runCreateWithWriter(cmd.Context(), os.Stdout, e, strings.Join(args, " "))
}

func runCreateWithWriter(ctx context.Context, w io.Writer, e *backup.Engine, description string) error {
	var progress backup.ProgressFunc
	if !quiet {
		progress = progressPrinter(w)
	}

	snap, err := e.Create(ctx, description, progress)
	if err != nil {
		if errors.Is(err, backup.ErrNoFiles) {
			fmt.Fprintf(w, "%sNothing to back up in %s%s\n", colorYellow, e.SaveDir(), colorReset)
			return nil
		}
		return errors.Wrap(err, "creating backup")
	}

	m, merr := snap.Manifest()
	if merr != nil {
		fmt.Fprintf(w, "%s✓ Created backup %s%s\n", colorGreen, snap.Name, colorReset)
		return nil
	}

	fmt.Fprintf(w, "%s✓ Created backup %s (%d files, %s)%s\n",
		colorGreen, snap.Name, m.FileCount, backup.FormatSize(m.TotalBytes), colorReset)
	return nil
}
