package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/khendrix/saveguard/internal/backup"
	"github.com/khendrix/saveguard/internal/cli"
	"github.com/khendrix/saveguard/internal/config"
	"github.com/khendrix/saveguard/internal/errors"
	"github.com/khendrix/saveguard/internal/paths"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorRed    = "\033[31m"
)

// truncate shortens a string to maxLen characters, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// resolveGameID determines which game profile a command targets: the
// -g/--game flag, the sole configured profile, or an interactive pick.
func resolveGameID(cfg *config.Config) (string, error) {
	if gameFlag != "" {
		if _, ok := cfg.Game(gameFlag); !ok {
			return "", errors.NewUserError(
				errors.Wrapf(errors.ErrGameNotFound, "%q", gameFlag),
				"Run: saveguard game list")
		}
		return gameFlag, nil
	}

	ids := cfg.GameIDs()
	switch len(ids) {
	case 0:
		return "", errors.NewUserError(
			errors.New("no games configured"),
			"Run: saveguard game add <id> --save-path <dir>")
	case 1:
		return ids[0], nil
	default:
		return cli.PickGame(cfg)
	}
}

// resolveEngine builds a backup engine for the targeted game profile, or for
// the --save-dir/--backup-dir pair when given.
func resolveEngine(cfg *config.Config) (*backup.Engine, error) {
	if saveDirFlag != "" {
		saveDir := paths.Expand(saveDirFlag)
		backupDir := paths.Expand(backupDirFlag)
		if backupDir == "" {
			backupDir = filepath.Join(saveDir, "backups")
		}
		e, err := backup.New(saveDir, backupDir,
			backup.WithMaxBackups(cfg.Settings.DefaultMaxBackups))
		if err != nil {
			return nil, errors.NewUserError(err, "Check the --save-dir path")
		}
		return e, nil
	}
	if backupDirFlag != "" {
		return nil, errors.NewUserError(
			errors.New("--backup-dir requires --save-dir"),
			"Pass --save-dir, or configure a game profile instead")
	}

	id, err := resolveGameID(cfg)
	if err != nil {
		return nil, err
	}

	saveDir, err := cfg.ResolveSaveDir(id)
	if err != nil {
		return nil, errors.NewConfigError(err)
	}
	backupDir, err := cfg.ResolveBackupDir(id)
	if err != nil {
		return nil, errors.NewConfigError(err)
	}

	e, err := backup.New(saveDir, backupDir,
		backup.WithMaxBackups(cfg.Settings.DefaultMaxBackups),
		backup.WithLabel(cfg.Games[id].Name))
	if err != nil {
		return nil, errors.NewUserError(err,
			"Check the save_path for this game: saveguard game show "+id)
	}
	return e, nil
}

// progressPrinter renders per-file copy progress on a single line.
func progressPrinter(w io.Writer) backup.ProgressFunc {
	return func(done, total int) {
		fmt.Fprintf(w, "\r  %d/%d files", done, total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}

// configPath returns where game profile changes are persisted.
func configPath() string {
	if configFlag != "" {
		return configFlag
	}
	return config.DefaultPath()
}
