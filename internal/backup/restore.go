package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Restore replaces the save directory's contents with the snapshot at the
// given 1-based index (as returned by List).
//
// Before touching the save directory, a safety snapshot of its current
// state is taken. A failed safety snapshot (for example an empty save
// directory) is a warning carried in the report, never a reason to block
// the restore. If the restore itself fails midway the engine does not
// revert; the safety snapshot is the recovery path.
//
// The caller owns any user confirmation; Restore never prompts.
func (e *Engine) Restore(ctx context.Context, index int, progress ProgressFunc) (*RestoreReport, error) {
	snap, err := e.resolveIndex(index)
	if err != nil {
		return nil, err
	}

	report := &RestoreReport{Restored: snap}
	if safety, err := e.Create(ctx, SafetyDescription, nil); err != nil {
		report.SafetyErr = err
	} else {
		report.SafetyBackup = safety
	}

	// The safety snapshot's retention pass can evict the restore target when
	// it is the oldest at the limit. Catch that before clearing anything; the
	// save directory must stay intact.
	if _, err := os.Stat(snap.Path); err != nil {
		return nil, errors.Wrapf(ErrNotFound, "%s was removed by retention during the safety backup", snap.Name)
	}

	if err := e.clearSaveDir(); err != nil {
		return nil, err
	}

	entries, err := e.snapshotEntries(snap)
	if err != nil {
		return nil, err
	}
	if _, err := copyEntries(ctx, snap.Path, e.saveDir, entries, progress); err != nil {
		return nil, errors.Wrapf(err, "restoring %s", snap.Name)
	}

	report.FilesRestored = countFiles(entries)
	return report, nil
}

// clearSaveDir removes every top-level entry of the save directory except
// the one containing the backup root (when the backup root is nested under
// the save directory, as with the default <save dir>/backups layout).
func (e *Engine) clearSaveDir() error {
	dirEntries, err := os.ReadDir(e.saveDir)
	if err != nil {
		return errors.Wrap(err, "reading save directory")
	}

	for _, entry := range dirEntries {
		path := filepath.Join(e.saveDir, entry.Name())
		if e.containsBackupDir(path) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrapf(err, "removing %s", entry.Name())
		}
	}
	return nil
}

// containsBackupDir reports whether path is the backup root or an ancestor
// of it.
func (e *Engine) containsBackupDir(path string) bool {
	if path == e.backupDir {
		return true
	}
	return strings.HasPrefix(e.backupDir, path+string(filepath.Separator))
}

// snapshotEntries enumerates a snapshot's tree minus the sidecar files.
func (e *Engine) snapshotEntries(snap Snapshot) ([]treeEntry, error) {
	entries, err := enumerate(snap.Path, "")
	if err != nil {
		return nil, err
	}

	filtered := entries[:0]
	for _, entry := range entries {
		if entry.rel == DescriptionFile || entry.rel == ManifestFile {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered, nil
}
