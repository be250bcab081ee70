package backup

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
)

func TestCreate_ShowsUpFirstInList(t *testing.T) {
	e := newTestEngine(t)

	if err := os.MkdirAll(filepath.Join(e.BackupDir(), "backup_20200101_000000"), 0o755); err != nil {
		t.Fatal(err)
	}

	snap, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}

	snaps, err := e.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	if snaps[0].Name != snap.Name {
		t.Errorf("new snapshot not first: got %s, want %s", snaps[0].Name, snap.Name)
	}
}

func TestCreate_CopiesTree(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(snap.Path, "slot1.sav"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hero at level 3" {
		t.Errorf("slot1.sav = %q", data)
	}

	nested, err := os.ReadFile(filepath.Join(snap.Path, "profiles", "alice", "options.cfg"))
	if err != nil {
		t.Fatal(err)
	}
	if string(nested) != "fullscreen=1" {
		t.Errorf("options.cfg = %q", nested)
	}
}

func TestCreate_EmptySource(t *testing.T) {
	e, err := New(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	before := countSnapshots(t, e.BackupDir())
	_, err = e.Create(t.Context(), "", nil)
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("err = %v, want ErrNoFiles", err)
	}
	if after := countSnapshots(t, e.BackupDir()); after != before {
		t.Errorf("snapshot count changed: %d -> %d", before, after)
	}
	assertNoStagingLeftover(t, e.BackupDir())
}

func TestCreate_Description(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Create(t.Context(), "before boss fight", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := snap.Description(); got != "before boss fight" {
		t.Errorf("Description = %q", got)
	}
}

func TestCreate_NoDescriptionSidecar(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(snap.Path, DescriptionFile)); !os.IsNotExist(err) {
		t.Error("empty description should not produce a sidecar")
	}
	if got := snap.Description(); got != "" {
		t.Errorf("Description = %q, want empty", got)
	}
}

func TestCreate_Manifest(t *testing.T) {
	e := newTestEngine(t)

	snap, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}

	m, err := snap.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	if m.Checksum == "" {
		t.Error("manifest missing checksum")
	}
	if m.CompletedAt.IsZero() {
		t.Error("manifest missing completion timestamp")
	}
	if m.MoveMethod != MoveMethodMoved {
		t.Errorf("MoveMethod = %q, want %q", m.MoveMethod, MoveMethodMoved)
	}
	if m.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", m.FileCount)
	}
	if m.TotalBytes == 0 {
		t.Error("manifest missing total bytes")
	}
}

func TestCreate_ChecksumDeterministic(t *testing.T) {
	e := newTestEngine(t)

	s1, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := e.Create(t.Context(), "with a description this time", nil)
	if err != nil {
		t.Fatal(err)
	}

	m1, err := s1.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	m2, err := s2.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	// Same source content, same checksum; sidecars are excluded from it.
	if m1.Checksum != m2.Checksum {
		t.Errorf("checksums differ for identical content: %s vs %s", m1.Checksum, m2.Checksum)
	}
}

func TestCreate_Progress(t *testing.T) {
	e := newTestEngine(t)

	var calls [][2]int
	_, err := e.Create(t.Context(), "", func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(calls) != 2 {
		t.Fatalf("progress fired %d times, want 2", len(calls))
	}
	if calls[0] != [2]int{1, 2} || calls[1] != [2]int{2, 2} {
		t.Errorf("progress sequence = %v", calls)
	}
}

func TestCreate_Retention(t *testing.T) {
	e := newTestEngine(t, WithMaxBackups(2))

	var names []string
	for range 3 {
		snap, err := e.Create(t.Context(), "", nil)
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, snap.Name)
	}

	snaps, err := e.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(snaps))
	}
	// The 2nd and 3rd created survive, newest first.
	if snaps[0].Name != names[2] || snaps[1].Name != names[1] {
		t.Errorf("retained %s, %s; want %s, %s", snaps[0].Name, snaps[1].Name, names[2], names[1])
	}
}

func TestCreate_SameSecondNamesDistinct(t *testing.T) {
	e := newTestEngine(t)

	s1, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}

	if s1.Name == s2.Name {
		t.Fatalf("snapshot names collided: %s", s1.Name)
	}
	if !s2.HasTimestamp() {
		t.Errorf("disambiguated name %s should still parse", s2.Name)
	}
	// Both visible.
	snaps, err := e.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Errorf("got %d snapshots, want 2", len(snaps))
	}
	// Ordering still matches creation order.
	if snaps[0].Name != s2.Name {
		t.Errorf("newest first = %s, want %s", snaps[0].Name, s2.Name)
	}
}

func TestUniqueName_SuffixOrdering(t *testing.T) {
	e := newTestEngine(t)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)

	// Force a dozen collisions in the same second; the padded suffixes must
	// keep lexicographic order equal to creation order past the tenth.
	var names []string
	for range 12 {
		name := e.uniqueName(now)
		if err := os.MkdirAll(filepath.Join(e.BackupDir(), name), 0o755); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}

	if !sort.StringsAreSorted(names) {
		t.Errorf("same-second names out of creation order: %v", names)
	}
	for _, name := range names {
		if _, ok := parseName(name); !ok {
			t.Errorf("%s should still parse as a snapshot name", name)
		}
	}
}

func TestCreate_MidCopyFailure(t *testing.T) {
	saveDir := t.TempDir()
	for _, name := range []string{"a.sav", "b.sav", "c.sav", "d.sav"} {
		writeSaveFile(t, saveDir, name, "data")
	}
	e, err := New(saveDir, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Yank an upcoming source file once two of four copies are done, so the
	// third copy fails with a real I/O error.
	_, err = e.Create(t.Context(), "", func(done, total int) {
		if done == 2 {
			if err := os.Remove(filepath.Join(saveDir, "c.sav")); err != nil {
				t.Fatal(err)
			}
		}
	})
	if err == nil {
		t.Fatal("create should fail when a source file vanishes mid-copy")
	}

	if n := countSnapshots(t, e.BackupDir()); n != 0 {
		t.Errorf("%d visible snapshots after failed create, want 0", n)
	}
	assertNoStagingLeftover(t, e.BackupDir())
}

func TestCreate_CancelledMidCopy(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithCancel(t.Context())
	_, err := e.Create(ctx, "", func(done, total int) {
		if done == 1 {
			cancel()
		}
	})
	if err == nil {
		t.Fatal("cancelled create should fail")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}

	if n := countSnapshots(t, e.BackupDir()); n != 0 {
		t.Errorf("%d visible snapshots after cancelled create, want 0", n)
	}
	assertNoStagingLeftover(t, e.BackupDir())
}

func TestCreate_ExcludesTransientAndBackupRoot(t *testing.T) {
	saveDir := t.TempDir()
	writeSaveFile(t, saveDir, "slot1.sav", "data")
	writeSaveFile(t, saveDir, "scratch.tmp", "ignore me")
	writeSaveFile(t, saveDir, ".DS_Store", "finder junk")

	// Backup root nested inside the save directory, the original layout.
	backupDir := filepath.Join(saveDir, "backups")
	e, err := New(saveDir, backupDir, WithMaxBackups(5))
	if err != nil {
		t.Fatal(err)
	}

	// An older snapshot must not be re-snapshotted into the new one.
	if _, err := e.Create(t.Context(), "", nil); err != nil {
		t.Fatal(err)
	}
	snap, err := e.Create(t.Context(), "", nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(snap.Path, "slot1.sav")); err != nil {
		t.Errorf("slot1.sav missing from snapshot: %v", err)
	}
	for _, absent := range []string{"scratch.tmp", ".DS_Store", "backups"} {
		if _, err := os.Stat(filepath.Join(snap.Path, absent)); !os.IsNotExist(err) {
			t.Errorf("%s should not be in the snapshot", absent)
		}
	}

	m, err := snap.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	if m.FileCount != 1 {
		t.Errorf("FileCount = %d, want 1", m.FileCount)
	}
}

func TestCreate_CrossDeviceFallback(t *testing.T) {
	e := newTestEngine(t)

	// Force the rename to report a cross-device link; the real rename is
	// replayed by the recursive copy fallback.
	e.rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}

	snap, err := e.Create(t.Context(), "moved across volumes", nil)
	if err != nil {
		t.Fatal(err)
	}

	m, err := snap.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	if m.MoveMethod != MoveMethodCopied {
		t.Errorf("MoveMethod = %q, want %q", m.MoveMethod, MoveMethodCopied)
	}
	if got := snap.Description(); got != "moved across volumes" {
		t.Errorf("Description = %q", got)
	}
	if _, err := os.Stat(filepath.Join(snap.Path, "slot1.sav")); err != nil {
		t.Errorf("file missing after fallback copy: %v", err)
	}
	assertNoStagingLeftover(t, e.BackupDir())
}

func TestCreate_RenameAndFallbackBothFail(t *testing.T) {
	e := newTestEngine(t)

	// Sabotage: the rename deletes staging before failing, so the fallback
	// copy has nothing to read from and fails too.
	e.rename = func(oldpath, newpath string) error {
		os.RemoveAll(oldpath)
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}

	_, err := e.Create(t.Context(), "", nil)
	if err == nil {
		t.Fatal("create should fail when promotion and fallback both fail")
	}

	if n := countSnapshots(t, e.BackupDir()); n != 0 {
		t.Errorf("%d visible snapshots after failed promotion, want 0", n)
	}
	assertNoStagingLeftover(t, e.BackupDir())
}

func assertNoStagingLeftover(t *testing.T, backupDir string) {
	t.Helper()
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".staging-") {
			t.Errorf("leftover staging directory: %s", e.Name())
		}
	}
}
