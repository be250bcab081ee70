package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/khendrix/saveguard/pkg/fileutil"
)

// Snapshot is one visible, complete backup directory under the backup root.
type Snapshot struct {
	// Name is the directory name (backup_<timestamp>[_<n>]).
	Name string

	// Path is the absolute path of the snapshot directory.
	Path string

	// CreatedAt is the timestamp parsed from the name.
	// Zero when the name does not follow the convention.
	CreatedAt time.Time
}

// HasTimestamp reports whether the snapshot name parsed to a valid timestamp.
func (s Snapshot) HasTimestamp() bool {
	return !s.CreatedAt.IsZero()
}

// Description returns the contents of the description sidecar,
// or "" when the sidecar is absent or unreadable.
func (s Snapshot) Description() string {
	data, err := fileutil.ReadFileWithLimit(filepath.Join(s.Path, DescriptionFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Manifest reads and parses the manifest sidecar.
// Returns os.ErrNotExist-wrapped error when the sidecar is absent
// (a snapshot interrupted between promotion and manifest write).
func (s Snapshot) Manifest() (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(s.Path, ManifestFile))
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	return &m, nil
}

// Size walks the snapshot and returns its total size in bytes.
// Unreadable entries are skipped.
func (s Snapshot) Size() int64 {
	var total int64
	_ = filepath.WalkDir(s.Path, func(_ string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// Age renders the snapshot's age relative to now ("3 days ago", "just now").
// Returns "unknown" for snapshots without a parseable timestamp.
func (s Snapshot) Age(now time.Time) string {
	if !s.HasTimestamp() {
		return "unknown"
	}

	d := now.Sub(s.CreatedAt)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	case d >= time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	default:
		return "just now"
	}
}

// parseName extracts the creation timestamp from a snapshot directory name.
// Accepts an optional _<n> disambiguation suffix. Returns a zero time and
// false for names outside the convention.
func parseName(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, NamePrefix)
	if !ok || len(rest) < len(nameTimeLayout) {
		return time.Time{}, false
	}

	ts, err := time.ParseInLocation(nameTimeLayout, rest[:len(nameTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}

	suffix := rest[len(nameTimeLayout):]
	if suffix == "" {
		return ts, true
	}
	// Same-second disambiguation: _02, _03, ...
	digits, ok := strings.CutPrefix(suffix, "_")
	if !ok || digits == "" {
		return time.Time{}, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return time.Time{}, false
		}
	}
	return ts, true
}

// FormatSize renders a byte count in human-readable units.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
