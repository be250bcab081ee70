package fileutil

import (
	"io"
	"os"

	"github.com/khendrix/saveguard/internal/errors"
)

// MaxSidecarSize is the maximum size for metadata sidecar files (1MB).
// Description and manifest files are tiny; anything larger is malformed.
const MaxSidecarSize = 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxSidecarSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxSidecarSize)

// ReadFileWithLimit reads a file up to MaxSidecarSize.
// It returns an error if the file is larger than the limit.
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// Fail fast if the size is already known to be too large
	if info, err := f.Stat(); err == nil && info.Size() > MaxSidecarSize {
		return nil, ErrFileTooLarge
	}

	r := io.LimitReader(f, MaxSidecarSize+1)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	if len(data) > MaxSidecarSize {
		return nil, ErrFileTooLarge
	}

	return data, nil
}
