package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// transientFiles are system artifacts never worth snapshotting.
var transientFiles = map[string]struct{}{
	".DS_Store":   {},
	"Thumbs.db":   {},
	"desktop.ini": {},
}

func isTransient(name string) bool {
	if _, ok := transientFiles[name]; ok {
		return true
	}
	return strings.HasSuffix(name, ".tmp")
}

// treeEntry is one item discovered by enumerate, relative to the tree root.
type treeEntry struct {
	rel   string
	isDir bool
}

// enumerate walks root and returns its directories and files in walk order,
// excluding skipDir (and everything under it), hidden staging directories,
// and transient artifacts. Directories come before their contents.
func enumerate(root, skipDir string) ([]treeEntry, error) {
	var out []treeEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		if d.IsDir() {
			if skipDir != "" && path == skipDir {
				return filepath.SkipDir
			}
			if strings.HasPrefix(d.Name(), ".staging-") {
				return filepath.SkipDir
			}
		} else {
			if isTransient(d.Name()) {
				return nil
			}
			if !d.Type().IsRegular() {
				// Sockets, devices, symlinks: not save data.
				return nil
			}
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, treeEntry{rel: rel, isDir: d.IsDir()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "walking tree")
	}
	return out, nil
}

// countFiles returns how many entries are files.
func countFiles(entries []treeEntry) int {
	n := 0
	for _, e := range entries {
		if !e.isDir {
			n++
		}
	}
	return n
}

// copyFile copies src to dst preserving permissions and modification time.
// Returns the number of bytes copied.
func copyFile(src, dst string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat source file")
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, errors.Wrap(err, "creating destination file")
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return 0, errors.Wrap(err, "copying file")
	}
	if err := dstFile.Close(); err != nil {
		return 0, errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return 0, errors.Wrap(err, "setting permissions")
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return 0, errors.Wrap(err, "setting modification time")
	}

	return n, nil
}

// copyEntries replays entries from srcRoot into dstRoot, preserving
// structure. Progress fires after each file; ctx is polled between files so
// a cancelled copy stops promptly. Returns total bytes copied.
func copyEntries(ctx context.Context, srcRoot, dstRoot string, entries []treeEntry, progress ProgressFunc) (int64, error) {
	total := countFiles(entries)
	done := 0
	var bytes int64

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return bytes, errors.Wrap(err, "copy cancelled")
		}

		dst := filepath.Join(dstRoot, entry.rel)
		if entry.isDir {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return bytes, errors.Wrapf(err, "creating directory %s", entry.rel)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return bytes, errors.Wrapf(err, "creating parent of %s", entry.rel)
		}
		n, err := copyFile(filepath.Join(srcRoot, entry.rel), dst)
		if err != nil {
			return bytes, errors.Wrapf(err, "copying %s", entry.rel)
		}
		bytes += n

		done++
		if progress != nil {
			progress(done, total)
		}
	}

	return bytes, nil
}

// checksumTree computes a cumulative SHA256 over the tree: for each file in
// sorted relative-path order, the path (slash-separated) and the file
// contents are fed into one hash. Sidecar files are skipped so the checksum
// describes the copied save data only.
func checksumTree(root string) (string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if d.Name() == DescriptionFile || d.Name() == ManifestFile {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "walking tree for checksum")
	}
	sort.Strings(files)

	h := sha256.New()
	for _, rel := range files {
		io.WriteString(h, filepath.ToSlash(rel))
		f, err := os.Open(filepath.Join(root, rel))
		if err != nil {
			return "", errors.Wrapf(err, "opening %s", rel)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", errors.Wrapf(err, "hashing %s", rel)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
