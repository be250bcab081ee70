// Package paths resolves configured paths and well-known directories.
//
// Game profiles reference save locations with environment variables and
// home-relative shorthand (for example "~/.local/share/Steam" or
// "$XDG_DATA_HOME/mygame/saves"). Expand normalizes those references
// before they reach the backup engine. Application-owned directories
// (config, default backup roots) follow the XDG base directory spec.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under XDG base directories.
const AppName = "saveguard"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or empty.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// Expand resolves environment variables and a leading ~ in path.
// Unset environment variables expand to the empty string, matching os.ExpandEnv.
func Expand(path string) string {
	expanded := os.ExpandEnv(path)
	return ExpandHome(expanded)
}

// ExpandHome expands a leading ~ to the user's home directory.
// If the home directory cannot be determined, the path is returned unchanged.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}

	// ~otheruser form is not supported; leave as-is.
	return path
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigDir returns the saveguard configuration directory.
// On Linux: ~/.config/saveguard
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir returns the saveguard data directory.
// On Linux: ~/.local/share/saveguard
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultBackupRoot returns the default backup root for a game when the
// profile carries no override: <DataDir>/backups/<gameID>.
func DefaultBackupRoot(gameID string) string {
	return filepath.Join(DataDir(), "backups", gameID)
}

// EnsureDir creates the directory and any necessary parents.
// If perm is 0, DefaultDirPerm is used. Idempotent.
func EnsureDir(path string, perm os.FileMode) error {
	if path == "" {
		return ErrInvalidPath
	}
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}
