package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Engine owns one backup root for one save directory: it creates
// crash-safe snapshots, lists them, restores them, and enforces retention.
//
// Each operation runs to completion on the calling goroutine; the engine
// holds no locks and assumes a single logical operation per backup root at
// a time. Crash safety comes from staging privately and promoting
// atomically, not from locking.
type Engine struct {
	saveDir    string
	backupDir  string
	maxBackups int
	label      string

	// rename is the promotion primitive; swapped in tests to force the
	// cross-device fallback path.
	rename func(oldpath, newpath string) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxBackups sets the retention count. Values below 1 are ignored.
func WithMaxBackups(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.maxBackups = n
		}
	}
}

// WithLabel sets a cosmetic label (typically the game name) used by callers
// when rendering engine output.
func WithLabel(label string) Option {
	return func(e *Engine) {
		e.label = label
	}
}

// New creates an Engine for the given save directory and backup root.
// The backup root is created if it does not exist. The save directory must
// exist and must not equal the backup root.
func New(saveDir, backupDir string, opts ...Option) (*Engine, error) {
	if saveDir == "" {
		return nil, errors.New("save directory is required")
	}
	if backupDir == "" {
		return nil, errors.New("backup directory is required")
	}

	absSave, err := filepath.Abs(saveDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving save directory")
	}
	absBackup, err := filepath.Abs(backupDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving backup directory")
	}
	if absSave == absBackup {
		return nil, errors.New("backup directory must differ from save directory")
	}

	info, err := os.Stat(absSave)
	if err != nil {
		return nil, errors.Wrapf(err, "save directory %s", saveDir)
	}
	if !info.IsDir() {
		return nil, errors.Newf("save path %s is not a directory", saveDir)
	}

	if err := os.MkdirAll(absBackup, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating backup directory")
	}

	e := &Engine{
		saveDir:    absSave,
		backupDir:  absBackup,
		maxBackups: DefaultMaxBackups,
		rename:     os.Rename,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// SaveDir returns the save directory the engine snapshots.
func (e *Engine) SaveDir() string { return e.saveDir }

// BackupDir returns the backup root containing the snapshots.
func (e *Engine) BackupDir() string { return e.backupDir }

// MaxBackups returns the retention count.
func (e *Engine) MaxBackups() int { return e.maxBackups }

// Label returns the cosmetic label, or "" if unset.
func (e *Engine) Label() string { return e.label }

// List returns all visible snapshots, most recent first. Directories whose
// name carries the backup_ prefix but no parseable timestamp are listed
// after all valid snapshots. A missing backup root yields an empty list.
func (e *Engine) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(e.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	var valid, malformed []Snapshot
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), NamePrefix) {
			continue
		}
		s := Snapshot{
			Name: entry.Name(),
			Path: filepath.Join(e.backupDir, entry.Name()),
		}
		if ts, ok := parseName(entry.Name()); ok {
			s.CreatedAt = ts
			valid = append(valid, s)
		} else {
			malformed = append(malformed, s)
		}
	}

	// Fixed-width zero-padded timestamps sort lexicographically in
	// chronological order, so name order is creation order.
	sort.Slice(valid, func(i, j int) bool { return valid[i].Name > valid[j].Name })
	sort.Slice(malformed, func(i, j int) bool { return malformed[i].Name > malformed[j].Name })

	return append(valid, malformed...), nil
}

// resolveIndex maps a 1-based position in a fresh List to a snapshot.
func (e *Engine) resolveIndex(index int) (Snapshot, error) {
	snaps, err := e.List()
	if err != nil {
		return Snapshot{}, err
	}
	if index < 1 || index > len(snaps) {
		return Snapshot{}, errors.Wrapf(ErrNotFound, "index %d of %d", index, len(snaps))
	}
	return snaps[index-1], nil
}

// Delete removes the snapshot at the given 1-based index.
// Confirmation is the caller's responsibility.
func (e *Engine) Delete(index int) error {
	snap, err := e.resolveIndex(index)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(snap.Path); err != nil {
		return errors.Wrapf(err, "deleting %s", snap.Name)
	}
	return nil
}

// Prune removes the oldest snapshots beyond keep, returning how many were
// removed. Individual deletion failures are collected and returned combined;
// the batch keeps going.
func (e *Engine) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New("keep must be non-negative")
	}

	snaps, err := e.List()
	if err != nil {
		return 0, err
	}
	if len(snaps) <= keep {
		return 0, nil
	}

	removed := 0
	var combined error
	// snaps is newest first; everything past keep goes, oldest last.
	for i := len(snaps) - 1; i >= keep; i-- {
		if err := os.RemoveAll(snaps[i].Path); err != nil {
			combined = errors.CombineErrors(combined, errors.Wrapf(err, "removing %s", snaps[i].Name))
			continue
		}
		removed++
	}
	return removed, combined
}
