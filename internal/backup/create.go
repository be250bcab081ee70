package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/khendrix/saveguard/pkg/fileutil"
)

// Create snapshots the save directory into a new timestamped backup.
//
// The copy is staged under a hidden name inside the backup root and only
// promoted to a visible backup_ name once every file has transferred, so an
// interrupted create never leaves a partial snapshot visible. Promotion is
// an atomic rename; when the backup root sits on a different filesystem
// than the staging temp dir cannot (EXDEV), a recursive copy fallback is
// used and recorded in the manifest.
//
// progress, if non-nil, fires after each file copied. ctx cancellation is
// honored between file copies and rolls back staging like any other failure.
func (e *Engine) Create(ctx context.Context, description string, progress ProgressFunc) (*Snapshot, error) {
	entries, err := enumerate(e.saveDir, e.backupDir)
	if err != nil {
		return nil, err
	}
	fileCount := countFiles(entries)
	if fileCount == 0 {
		return nil, ErrNoFiles
	}

	name := e.uniqueName(time.Now())
	finalPath := filepath.Join(e.backupDir, name)

	staging, err := os.MkdirTemp(e.backupDir, stagingPattern)
	if err != nil {
		return nil, errors.Wrap(err, "creating staging directory")
	}
	promoted := false
	defer func() {
		if !promoted {
			os.RemoveAll(staging)
		}
	}()

	totalBytes, err := copyEntries(ctx, e.saveDir, staging, entries, progress)
	if err != nil {
		return nil, err
	}

	checksum, err := checksumTree(staging)
	if err != nil {
		return nil, err
	}

	if description != "" {
		descPath := filepath.Join(staging, DescriptionFile)
		if err := os.WriteFile(descPath, []byte(description+"\n"), 0o644); err != nil {
			return nil, errors.Wrap(err, "writing description")
		}
	}

	method, err := e.promote(ctx, staging, finalPath)
	if err != nil {
		return nil, err
	}
	promoted = true

	manifest := Manifest{
		Checksum:    checksum,
		CompletedAt: time.Now().UTC(),
		MoveMethod:  method,
		FileCount:   fileCount,
		TotalBytes:  totalBytes,
		ToolVersion: Version,
	}
	if err := fileutil.AtomicWriteJSON(filepath.Join(finalPath, ManifestFile), manifest); err != nil {
		// A snapshot without its manifest does not count as a successful
		// create; remove it rather than leave a half-described backup.
		os.RemoveAll(finalPath)
		return nil, errors.Wrap(err, "writing manifest")
	}

	// Retention runs after every successful create. Per-item failures must
	// not fail the create that just succeeded.
	if _, pruneErr := e.Prune(e.maxBackups); pruneErr != nil {
		slog.Warn("retention cleanup failed", "backup_dir", e.backupDir, "error", pruneErr)
	}

	ts, _ := parseName(name)
	return &Snapshot{Name: name, Path: finalPath, CreatedAt: ts}, nil
}

// promote moves the completed staging directory to its visible name.
// Returns the move method recorded in the manifest.
func (e *Engine) promote(ctx context.Context, staging, finalPath string) (string, error) {
	err := e.rename(staging, finalPath)
	if err == nil {
		return MoveMethodMoved, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", errors.Wrap(err, "promoting snapshot")
	}

	// Cross-device: fall back to copy + remove. The fallback must leave no
	// destination remnants behind on failure.
	entries, err := enumerate(staging, "")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(finalPath, 0o755); err != nil {
		return "", errors.Wrap(err, "creating snapshot directory")
	}
	if _, err := copyEntries(ctx, staging, finalPath, entries, nil); err != nil {
		os.RemoveAll(finalPath)
		return "", errors.Wrap(err, "cross-device fallback copy")
	}

	// The copied snapshot is complete; the staging source must not linger
	// under the backup root.
	if err := os.RemoveAll(staging); err != nil {
		slog.Warn("removing staging after fallback copy", "staging", staging, "error", err)
	}

	return MoveMethodCopied, nil
}

// uniqueName generates a snapshot name for the given time, appending _02,
// _03, ... when a snapshot with the bare name already exists (two creates
// within the same second). Suffixed names sort after the base name and the
// zero padding keeps name order equal to creation order for up to 99
// snapshots in one second.
func (e *Engine) uniqueName(now time.Time) string {
	base := NamePrefix + now.Format(nameTimeLayout)
	name := base
	for i := 2; e.exists(name); i++ {
		name = fmt.Sprintf("%s_%02d", base, i)
	}
	return name
}

func (e *Engine) exists(name string) bool {
	_, err := os.Stat(filepath.Join(e.backupDir, name))
	return err == nil
}
