package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/khendrix/saveguard/internal/config"
	"github.com/khendrix/saveguard/internal/errors"
	"github.com/khendrix/saveguard/pkg/fileutil"
)

var (
	gameExportFormat string
	gameImportFormat string
)

func init() {
	gameExportCmd.Flags().StringVar(&gameExportFormat, "format", "",
		"output format: yaml, toml, json (default: by file extension, else yaml)")
	gameImportCmd.Flags().StringVar(&gameImportFormat, "format", "",
		"input format: yaml, toml, json (default: by file extension)")

	gameCmd.AddCommand(gameExportCmd)
	gameCmd.AddCommand(gameImportCmd)
}

var gameExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export game profiles to a file",
	Long: `Export all game profiles to a portable file.

Without a file argument, the export is written to stdout. The format
follows the file extension (.yaml/.yml, .toml, .json) unless --format
overrides it.`,
	Example: `  # Share profiles with another machine
  saveguard game export games.toml

  # Print as YAML
  saveguard game export

See Also: saveguard game import`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGameExport,
}

var gameImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import game profiles from a file",
	Long: `Import game profiles from a file produced by 'saveguard game export'.

Imported profiles are merged into the configuration; an imported id
that already exists overwrites the existing profile.`,
	Example: `  # Import profiles
  saveguard game import games.toml

See Also: saveguard game export`,
	Args: cobra.ExactArgs(1),
	RunE: runGameImport,
}

// portFile is the on-disk shape of an export.
type portFile struct {
	Games map[string]config.Game `yaml:"games" json:"games" toml:"games"`
}

// resolveFormat picks the serialization format from an explicit flag or the
// file extension.
func resolveFormat(flag, path string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = "yaml"
		case ".toml":
			format = "toml"
		case ".json":
			format = "json"
		default:
			format = "yaml"
		}
	}

	switch format {
	case "yaml", "toml", "json":
		return format, nil
	default:
		return "", errors.Newf("unsupported format %q (yaml, toml, json)", format)
	}
}

func runGameExport(_ *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	return runGameExportWithWriter(os.Stdout, cfg, path, gameExportFormat)
}

func runGameExportWithWriter(w io.Writer, cfg *config.Config, path, formatFlag string) error {
	format, err := resolveFormat(formatFlag, path)
	if err != nil {
		return err
	}

	data, err := marshalPort(portFile{Games: cfg.Games}, format)
	if err != nil {
		return err
	}

	if path == "" {
		_, err := w.Write(data)
		return err
	}

	if err := fileutil.AtomicWriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing export file")
	}
	fmt.Fprintf(w, "%s✓ Exported %d games to %s%s\n", colorGreen, len(cfg.Games), path, colorReset)
	return nil
}

func runGameImport(_ *cobra.Command, args []string) error {
	return runGameImportWithWriter(os.Stdout, cfg, configPath(), args[0], gameImportFormat)
}

func runGameImportWithWriter(w io.Writer, cfg *config.Config, cfgPath, path, formatFlag string) error {
	format, err := resolveFormat(formatFlag, path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading import file")
	}

	var port portFile
	if err := unmarshalPort(data, format, &port); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}
	if len(port.Games) == 0 {
		return errors.Newf("no games found in %s", path)
	}
	for id, g := range port.Games {
		if g.SavePath == "" {
			return errors.Wrapf(errors.ErrNoSavePath, "imported game %q", id)
		}
	}

	imported := 0
	for id, g := range port.Games {
		cfg.Games[id] = g
		imported++
	}

	if err := config.Save(cfg, cfgPath); err != nil {
		return errors.Wrap(err, "saving config")
	}

	fmt.Fprintf(w, "%s✓ Imported %d games from %s%s\n", colorGreen, imported, path, colorReset)
	return nil
}

func marshalPort(port portFile, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case "toml":
		data, err = toml.Marshal(port)
	case "json":
		data, err = json.MarshalIndent(port, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(port)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "marshaling %s", format)
	}
	return data, nil
}

func unmarshalPort(data []byte, format string, port *portFile) error {
	switch format {
	case "toml":
		return toml.Unmarshal(data, port)
	case "json":
		return json.Unmarshal(data, port)
	default:
		return yaml.Unmarshal(data, port)
	}
}
