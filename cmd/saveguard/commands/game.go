package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/khendrix/saveguard/internal/backup"
	"github.com/khendrix/saveguard/internal/cli/prompt"
	"github.com/khendrix/saveguard/internal/config"
	"github.com/khendrix/saveguard/internal/errors"
	"github.com/khendrix/saveguard/internal/paths"
)

var (
	gameAddName        string
	gameAddSavePath    string
	gameAddBackupPath  string
	gameAddDescription string
	gameRemoveYes      bool
)

func init() {
	gameAddCmd.Flags().StringVar(&gameAddName, "name", "", "display name (default: the id)")
	gameAddCmd.Flags().StringVar(&gameAddSavePath, "save-path", "", "save directory (required; ~ and $VARS allowed)")
	gameAddCmd.Flags().StringVar(&gameAddBackupPath, "backup-path", "", "backup root override")
	gameAddCmd.Flags().StringVar(&gameAddDescription, "description", "", "free-text description")
	_ = gameAddCmd.MarkFlagRequired("save-path")

	gameRemoveCmd.Flags().BoolVarP(&gameRemoveYes, "yes", "y", false, "skip the confirmation prompt")

	gameCmd.AddCommand(gameAddCmd)
	gameCmd.AddCommand(gameListCmd)
	gameCmd.AddCommand(gameRemoveCmd)
	gameCmd.AddCommand(gameShowCmd)
	rootCmd.AddCommand(gameCmd)
}

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage game profiles",
	Long: `Manage the game profiles saveguard backs up.

A profile maps an id to a save directory, an optional backup location,
and a description. Profiles live in the YAML config file and are
targeted with the -g/--game flag on other commands.

Without a subcommand, lists all profiles.`,
	Example: `  # Register a profile
  saveguard game add skyrim --name Skyrim --save-path ~/games/skyrim/saves

  # List profiles
  saveguard game list

  # Inspect one
  saveguard game show skyrim

See Also: saveguard create, saveguard list`,
	RunE: runGameList,
}

var gameAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Register a game profile",
	Long: `Register a game profile under the given id.

The save path may contain ~ and environment variables; they are
expanded when a backup runs, not when the profile is stored. Adding an
existing id overwrites that profile.`,
	Example: `  # Minimal profile
  saveguard game add celeste --save-path ~/.local/share/Celeste/Saves

  # With a custom backup location
  saveguard game add skyrim --name Skyrim \
    --save-path '$HOME/games/skyrim/saves' \
    --backup-path /mnt/backups/skyrim

See Also: saveguard game list, saveguard game remove`,
	Args: cobra.ExactArgs(1),
	RunE: runGameAdd,
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List game profiles",
	Long:  `List all registered game profiles.`,
	Example: `  # List profiles
  saveguard game list

See Also: saveguard game add, saveguard game show`,
	RunE: runGameList,
}

var gameRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a game profile",
	Long: `Remove a game profile from the configuration.

Existing backups on disk are left untouched; only the profile entry is
removed.`,
	Example: `  # Remove a profile
  saveguard game remove skyrim

See Also: saveguard game add, saveguard game list`,
	Args: cobra.ExactArgs(1),
	RunE: runGameRemove,
}

var gameShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a game profile",
	Long: `Show a game profile's resolved paths and backup status.

Paths are shown both as stored and as resolved, with ~ and environment
variables expanded.`,
	Example: `  # Inspect a profile
  saveguard game show skyrim

See Also: saveguard game list, saveguard list`,
	Args: cobra.ExactArgs(1),
	RunE: runGameShow,
}

func runGameAdd(_ *cobra.Command, args []string) error {
	id := args[0]
	name := gameAddName
	if name == "" {
		name = id
	}

	game := config.Game{
		Name:        name,
		SavePath:    gameAddSavePath,
		BackupPath:  gameAddBackupPath,
		Description: gameAddDescription,
	}
	return runGameAddWithWriter(os.Stdout, cfg, configPath(), id, game)
}

func runGameAddWithWriter(w io.Writer, cfg *config.Config, path, id string, game config.Game) error {
	_, existed := cfg.Games[id]
	cfg.Games[id] = game

	if err := config.Save(cfg, path); err != nil {
		return errors.Wrap(err, "saving config")
	}

	verb := "Added"
	if existed {
		verb = "Updated"
	}
	fmt.Fprintf(w, "%s✓ %s game %s (%s)%s\n", colorGreen, verb, id, game.Name, colorReset)
	return nil
}

func runGameList(_ *cobra.Command, _ []string) error {
	return runGameListWithWriter(os.Stdout, cfg)
}

func runGameListWithWriter(w io.Writer, cfg *config.Config) error {
	ids := cfg.GameIDs()
	if len(ids) == 0 {
		fmt.Fprintln(w, "No games configured")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Register one with: saveguard game add <id> --save-path <dir>")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sID%s\t%sNAME%s\t%sSAVE PATH%s\t%sDESCRIPTION%s\n",
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset,
		colorBold, colorReset)

	for _, id := range ids {
		g := cfg.Games[id]
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\t%s\n",
			colorGreen, id, colorReset,
			g.Name,
			g.SavePath,
			truncate(g.Description, 40))
	}
	return tw.Flush()
}

func runGameRemove(_ *cobra.Command, args []string) error {
	return runGameRemoveWithIO(os.Stdin, os.Stdout, cfg, configPath(), args[0], gameRemoveYes)
}

func runGameRemoveWithIO(in io.Reader, w io.Writer, cfg *config.Config, path, id string, skipConfirm bool) error {
	g, ok := cfg.Game(id)
	if !ok {
		return errors.Wrapf(errors.ErrGameNotFound, "%q", id)
	}

	if !skipConfirm {
		question := fmt.Sprintf("Remove game %s (%s)? Backups on disk are kept.", id, g.Name)
		ok, err := prompt.NewWithIO(in, w).Confirm(question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Remove cancelled.")
			return nil
		}
	}

	delete(cfg.Games, id)
	if err := config.Save(cfg, path); err != nil {
		return errors.Wrap(err, "saving config")
	}

	fmt.Fprintf(w, "%s✓ Removed game %s%s\n", colorGreen, id, colorReset)
	return nil
}

func runGameShow(_ *cobra.Command, args []string) error {
	return runGameShowWithWriter(os.Stdout, cfg, args[0])
}

func runGameShowWithWriter(w io.Writer, cfg *config.Config, id string) error {
	g, ok := cfg.Game(id)
	if !ok {
		return errors.Wrapf(errors.ErrGameNotFound, "%q", id)
	}

	saveDir := paths.Expand(g.SavePath)
	backupDir, err := cfg.ResolveBackupDir(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s%s%s (%s)\n", colorCyan+colorBold, g.Name, colorReset, id)
	if g.Description != "" {
		fmt.Fprintf(w, "  %s\n", g.Description)
	}
	fmt.Fprintf(w, "  Save path:   %s\n", g.SavePath)
	if saveDir != g.SavePath {
		fmt.Fprintf(w, "  Resolved:    %s\n", saveDir)
	}
	fmt.Fprintf(w, "  Backup path: %s\n", backupDir)

	// Backup status is informational; a broken save path still shows.
	e, err := backup.New(saveDir, backupDir)
	if err != nil {
		fmt.Fprintf(w, "  %s! %v%s\n", colorYellow, err, colorReset)
		return nil
	}
	snaps, err := e.List()
	if err != nil {
		return errors.Wrap(err, "listing backups")
	}
	if len(snaps) == 0 {
		fmt.Fprintf(w, "  Backups:     %snone%s\n", colorGray, colorReset)
		return nil
	}
	fmt.Fprintf(w, "  Backups:     %d (latest %s)\n", len(snaps), snaps[0].Age(time.Now()))
	return nil
}
