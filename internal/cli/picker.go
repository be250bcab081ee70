// Package cli provides shared interactive helpers for saveguard commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/khendrix/saveguard/internal/backup"
	"github.com/khendrix/saveguard/internal/cli/prompt"
	"github.com/khendrix/saveguard/internal/config"
	"github.com/khendrix/saveguard/internal/errors"
	"github.com/khendrix/saveguard/internal/logging"
)

// PickSnapshot lets the user choose one of snaps and returns its 1-based
// index. On a terminal it opens a fuzzy finder with a preview pane; otherwise
// it falls back to a numbered prompt. Aborting returns ErrSelectionCancelled.
func PickSnapshot(snaps []backup.Snapshot) (int, error) {
	if len(snaps) == 0 {
		return 0, prompt.ErrNoItems
	}

	if !logging.IsTTY(os.Stdin) {
		labels := make([]string, len(snaps))
		for i, s := range snaps {
			labels[i] = snapshotLabel(s)
		}
		idx, err := prompt.New().Select("Available backups:", labels)
		if err != nil {
			return 0, err
		}
		return idx + 1, nil
	}

	idx, err := fuzzyfinder.Find(
		snaps,
		func(i int) string {
			return snapshotLabel(snaps[i])
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return snapshotPreview(snaps[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return 0, prompt.ErrSelectionCancelled
		}
		return 0, errors.Wrap(err, "interactive selection failed")
	}

	return idx + 1, nil
}

// PickGame lets the user choose a configured game profile and returns its id.
func PickGame(cfg *config.Config) (string, error) {
	ids := cfg.GameIDs()
	if len(ids) == 0 {
		return "", prompt.ErrNoItems
	}

	if !logging.IsTTY(os.Stdin) {
		labels := make([]string, len(ids))
		for i, id := range ids {
			labels[i] = fmt.Sprintf("%s (%s)", cfg.Games[id].Name, id)
		}
		idx, err := prompt.New().Select("Configured games:", labels)
		if err != nil {
			return "", err
		}
		return ids[idx], nil
	}

	idx, err := fuzzyfinder.Find(
		ids,
		func(i int) string {
			return fmt.Sprintf("%s (%s)", cfg.Games[ids[i]].Name, ids[i])
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			g := cfg.Games[ids[i]]
			return fmt.Sprintf("Name: %s\nSave path: %s\nBackup path: %s\n\n%s",
				g.Name,
				g.SavePath,
				orDefault(g.BackupPath, "(default)"),
				g.Description,
			)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", prompt.ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "interactive selection failed")
	}

	return ids[idx], nil
}

func snapshotLabel(s backup.Snapshot) string {
	desc := s.Description()
	if desc == "" {
		desc = "(no description)"
	}
	return fmt.Sprintf("%s  %s  %s", s.Name, s.Age(time.Now()), desc)
}

func snapshotPreview(s backup.Snapshot) string {
	created := "unknown"
	if s.HasTimestamp() {
		created = s.CreatedAt.Format("2006-01-02 15:04:05")
	}
	preview := fmt.Sprintf("Name: %s\nCreated: %s\nSize: %s",
		s.Name,
		created,
		backup.FormatSize(s.Size()),
	)
	if m, err := s.Manifest(); err == nil {
		preview += fmt.Sprintf("\nFiles: %d\nChecksum: %s", m.FileCount, m.Checksum)
	}
	if desc := s.Description(); desc != "" {
		preview += "\n\nDescription:\n" + desc
	}
	return preview
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
