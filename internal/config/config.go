// Package config manages the saveguard configuration file using Viper.
//
// The configuration holds the game profile registry and global settings.
// Profiles reference save locations that may contain environment variables
// or ~, expanded at resolution time by the paths package.
package config

import (
	"path/filepath"
	"sort"

	"github.com/spf13/viper"

	"github.com/khendrix/saveguard/internal/errors"
	"github.com/khendrix/saveguard/internal/paths"
	"github.com/khendrix/saveguard/pkg/fileutil"
)

// AppName is the application name used for config file naming.
const AppName = "saveguard"

// DefaultMaxBackups is the default retention count for new configurations.
const DefaultMaxBackups = 10

// Config is the top-level configuration structure.
type Config struct {
	Version  int             `mapstructure:"version" yaml:"version" json:"version" toml:"version"`
	Settings Settings        `mapstructure:"settings" yaml:"settings" json:"settings" toml:"settings"`
	Games    map[string]Game `mapstructure:"games" yaml:"games" json:"games" toml:"games"`
}

// Settings holds global defaults applied to every game profile.
type Settings struct {
	// DefaultMaxBackups is the retention count used when a profile does
	// not override it.
	DefaultMaxBackups int `mapstructure:"default_max_backups" yaml:"default_max_backups" json:"default_max_backups" toml:"default_max_backups"`

	// DefaultBackupPath, when set, roots all profile backups that carry
	// no per-game override. Each game gets its own subdirectory.
	DefaultBackupPath string `mapstructure:"default_backup_path" yaml:"default_backup_path,omitempty" json:"default_backup_path,omitempty" toml:"default_backup_path,omitempty"`
}

// Game is one save-game profile.
type Game struct {
	// Name is the human-readable display name.
	Name string `mapstructure:"name" yaml:"name" json:"name" toml:"name"`

	// SavePath locates the save directory; may contain $VARS and ~.
	SavePath string `mapstructure:"save_path" yaml:"save_path" json:"save_path" toml:"save_path"`

	// BackupPath optionally overrides where this game's backups live.
	BackupPath string `mapstructure:"backup_path" yaml:"backup_path,omitempty" json:"backup_path,omitempty" toml:"backup_path,omitempty"`

	// Description is free text shown in listings.
	Description string `mapstructure:"description" yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix("SAVEGUARD")
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("settings.default_max_backups", DefaultMaxBackups)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file exists.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Implicit load without a config file uses defaults.
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if cfg.Games == nil {
		cfg.Games = map[string]Game{}
	}
	if cfg.Settings.DefaultMaxBackups < 1 {
		cfg.Settings.DefaultMaxBackups = DefaultMaxBackups
	}

	return &cfg, nil
}

// DefaultPath returns the canonical config file location.
func DefaultPath() string {
	return filepath.Join(paths.ConfigDir(), "config.yaml")
}

// Save writes cfg to path atomically as YAML, creating parent directories.
// An empty path saves to DefaultPath.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return fileutil.AtomicWriteYAML(path, cfg)
}

// Game returns the profile for id.
func (c *Config) Game(id string) (Game, bool) {
	g, ok := c.Games[id]
	return g, ok
}

// GameIDs returns all profile ids in sorted order.
func (c *Config) GameIDs() []string {
	ids := make([]string, 0, len(c.Games))
	for id := range c.Games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the registry for profiles the engine cannot use.
func (c *Config) Validate() error {
	var err error
	for id, g := range c.Games {
		if g.SavePath == "" {
			err = errors.CombineErrors(err,
				errors.Wrapf(errors.ErrNoSavePath, "game %q", id))
		}
	}
	return err
}

// ResolveSaveDir expands the profile's save path.
func (c *Config) ResolveSaveDir(id string) (string, error) {
	g, ok := c.Games[id]
	if !ok {
		return "", errors.Wrapf(errors.ErrGameNotFound, "%q", id)
	}
	if g.SavePath == "" {
		return "", errors.Wrapf(errors.ErrNoSavePath, "game %q", id)
	}
	return paths.Expand(g.SavePath), nil
}

// ResolveBackupDir determines the backup root for a profile:
// per-game override, then the global default path (with a per-game
// subdirectory), then the XDG data directory.
func (c *Config) ResolveBackupDir(id string) (string, error) {
	g, ok := c.Games[id]
	if !ok {
		return "", errors.Wrapf(errors.ErrGameNotFound, "%q", id)
	}
	if g.BackupPath != "" {
		return paths.Expand(g.BackupPath), nil
	}
	if c.Settings.DefaultBackupPath != "" {
		return filepath.Join(paths.Expand(c.Settings.DefaultBackupPath), id), nil
	}
	return paths.DefaultBackupRoot(id), nil
}
