package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/khendrix/saveguard/internal/backup"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long: `List all backups for the targeted game, most recent first.

Each row shows the 1-based index used by restore and delete, the
creation time, relative age, size, file count, and description.
Backups with unparseable names are listed last without a timestamp.`,
	Example: `  # List backups
  saveguard list -g skyrim

  # Output as JSON
  saveguard list -g skyrim --json

  See Also:
    saveguard restore - Restore from a backup
    saveguard create  - Create a new backup`,
	RunE: runList,
}

// listEntry represents a single backup in JSON output.
type listEntry struct {
	Index       int        `json:"index"`
	Name        string     `json:"name"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	SizeBytes   int64      `json:"size_bytes"`
	FileCount   int        `json:"file_count,omitempty"`
	Description string     `json:"description,omitempty"`
}

func runList(_ *cobra.Command, _ []string) error {
	e, err := resolveEngine(cfg)
	if err != nil {
		return err
	}
	return runListWithWriter(os.Stdout, e, listJSON)
}

func runListWithWriter(w io.Writer, e *backup.Engine, asJSON bool) error {
	snaps, err := e.List()
	if err != nil {
		return errors.Wrap(err, "listing backups")
	}

	if asJSON {
		return outputListJSON(w, snaps)
	}
	return outputListTabular(w, e, snaps)
}

func outputListJSON(w io.Writer, snaps []backup.Snapshot) error {
	entries := make([]listEntry, len(snaps))
	for i, s := range snaps {
		entries[i] = listEntry{
			Index:       i + 1,
			Name:        s.Name,
			SizeBytes:   s.Size(),
			Description: s.Description(),
		}
		if s.HasTimestamp() {
			t := s.CreatedAt
			entries[i].CreatedAt = &t
		}
		if m, err := s.Manifest(); err == nil {
			entries[i].FileCount = m.FileCount
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func outputListTabular(w io.Writer, e *backup.Engine, snaps []backup.Snapshot) error {
	label := e.Label()
	if label == "" {
		label = e.SaveDir()
	}
	fmt.Fprintf(w, "%sBackups for %s%s\n", colorCyan+colorBold, label, colorReset)

	if len(snaps) == 0 {
		fmt.Fprintf(w, "  %s(no backups available)%s\n", colorGray, colorReset)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Create one with: saveguard create")
		return nil
	}

	now := time.Now()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s#%s\t%sCREATED%s\t%sAGE%s\t%sSIZE%s\t%sFILES%s\t%sDESCRIPTION%s\n",
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset)

	for i, s := range snaps {
		created := "-"
		if s.HasTimestamp() {
			created = s.CreatedAt.Format("2006-01-02 15:04:05")
		}
		files := "-"
		if m, err := s.Manifest(); err == nil {
			files = fmt.Sprintf("%d", m.FileCount)
		}
		fmt.Fprintf(tw, "  %s%d%s\t%s\t%s\t%s\t%s\t%s\n",
			colorGreen, i+1, colorReset,
			created,
			s.Age(now),
			backup.FormatSize(s.Size()),
			files,
			truncate(s.Description(), 40))
	}
	return tw.Flush()
}
