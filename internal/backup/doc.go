// Package backup implements the save-game snapshot engine.
//
// An [Engine] binds one save directory to one backup root and provides
// create, list, restore, delete, and prune operations. Each snapshot is a
// directory under the backup root named backup_<YYYYMMDD_HHMMSS>, holding a
// full recursive copy of the save directory plus two optional sidecars:
//
//	backups/
//	└── backup_20250101_120000/
//	    ├── .backup_description   (free-text, user-supplied)
//	    ├── .backup_meta.json     (checksum, completion time, move method)
//	    └── {copied save files...}
//
// # Crash Safety
//
// Snapshot construction is transactional: files are copied into a hidden
// .staging-* directory inside the backup root and promoted to their visible
// name with a single rename once complete. A crash or error mid-copy
// removes the staging directory and leaves nothing visible. When the rename
// fails across filesystems, a recursive copy fallback promotes the snapshot
// instead and the manifest records move_method "copied".
//
// # Retention
//
// After every successful create the engine prunes the oldest snapshots
// beyond its retention count. Pruning is best-effort per snapshot.
//
// # Concurrency
//
// Operations run to completion on the calling goroutine and report progress
// through a synchronous callback. The engine holds no locks; it guarantees
// crash safety for a single writer, not coordination between processes.
package backup
