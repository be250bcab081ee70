package backup

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Snapshot naming convention: backup_<YYYYMMDD_HHMMSS>, optionally followed
// by _<n> when two snapshots land in the same second. Names sort
// lexicographically in creation order.
const (
	// NamePrefix is the prefix of every visible snapshot directory.
	NamePrefix = "backup_"

	// nameTimeLayout is the timestamp portion of a snapshot name.
	nameTimeLayout = "20060102_150405"

	// stagingPattern is the os.MkdirTemp pattern for in-progress snapshots.
	// The dot prefix keeps staging hidden and outside the naming convention.
	stagingPattern = ".staging-*"
)

// Sidecar files stored inside each snapshot directory alongside the copied
// tree. Both are optional on read.
const (
	// DescriptionFile holds the user-supplied free-text description.
	DescriptionFile = ".backup_description"

	// ManifestFile holds the snapshot manifest as JSON.
	ManifestFile = ".backup_meta.json"
)

// Promotion methods recorded in the manifest.
const (
	// MoveMethodMoved means staging was atomically renamed into place.
	MoveMethodMoved = "moved"

	// MoveMethodCopied means a cross-device rename failure forced a
	// recursive copy from staging instead.
	MoveMethodCopied = "copied"
)

// DefaultMaxBackups is the default retention count.
const DefaultMaxBackups = 10

// SafetyDescription marks the automatic snapshot taken before a restore.
const SafetyDescription = "pre-restore safety backup"

// Sentinel errors for engine operations.
var (
	// ErrNoFiles indicates the save directory contains nothing to back up.
	ErrNoFiles = errors.New("no files to back up")

	// ErrNotFound indicates a snapshot index is out of range.
	ErrNotFound = errors.New("backup not found")
)

// ProgressFunc receives incremental copy progress, once per file copied.
// It is invoked synchronously on the goroutine performing the copy and
// must not block indefinitely.
type ProgressFunc func(done, total int)

// Manifest records how a snapshot was realized. It is written to
// ManifestFile after the snapshot's contents are fully transferred.
type Manifest struct {
	// Checksum is a cumulative SHA256 over relative paths and file contents.
	Checksum string `json:"checksum"`

	// CompletedAt is when the snapshot finished.
	CompletedAt time.Time `json:"completed_at"`

	// MoveMethod is how staging was promoted: "moved" or "copied".
	MoveMethod string `json:"move_method"`

	// FileCount is the number of files in the snapshot.
	FileCount int `json:"file_count"`

	// TotalBytes is the combined size of all copied files.
	TotalBytes int64 `json:"total_bytes"`

	// ToolVersion is the saveguard version that created the snapshot.
	ToolVersion string `json:"saveguard_version"`
}

// RestoreReport describes the outcome of a successful restore.
type RestoreReport struct {
	// Restored is the snapshot that was copied back over the save directory.
	Restored Snapshot

	// SafetyBackup is the pre-restore snapshot of the previous state,
	// or nil if the safety backup failed.
	SafetyBackup *Snapshot

	// SafetyErr is the non-fatal error from the safety backup attempt,
	// surfaced as a warning by callers.
	SafetyErr error

	// FilesRestored is the number of files copied into the save directory.
	FilesRestored int
}
