// Package commands implements the CLI commands for saveguard.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/khendrix/saveguard/cmd"
	"github.com/khendrix/saveguard/internal/config"
	"github.com/khendrix/saveguard/internal/errors"
	"github.com/khendrix/saveguard/internal/logging"
)

// gameFlag holds the value of the -g/--game flag.
var gameFlag string

// saveDirFlag and backupDirFlag bypass the game registry entirely.
var (
	saveDirFlag   string
	backupDirFlag string
)

// configFlag holds the value of the --config flag.
var configFlag string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// cfg is the loaded configuration, populated by initConfig.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&gameFlag, "game", "g", "",
		"game profile to operate on (default: sole configured game, or interactive pick)")
	rootCmd.PersistentFlags().StringVar(&saveDirFlag, "save-dir", "",
		"save directory to operate on directly, bypassing the game registry")
	rootCmd.PersistentFlags().StringVar(&backupDirFlag, "backup-dir", "",
		"backup root used with --save-dir (default: <save-dir>/backups)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"config file (default: $XDG_CONFIG_HOME/saveguard/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	// Add version flag
	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("saveguard version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	// Capture load errors for later reporting
	cfg, configLoadErr = config.Load(configFlag)
}

var rootCmd = &cobra.Command{
	Use:   "saveguard",
	Short: "Crash-safe backups for game save directories",
	Long: `saveguard snapshots game save directories into timestamped backups
and restores them on demand.

Each backup is staged privately and promoted atomically, so an
interrupted run never leaves a half-written backup visible. Restores
take a safety backup of the current saves first. Old backups are
pruned automatically per the configured retention count.

Game profiles live in a YAML config file; register one with
'saveguard game add' and every other command picks it up.`,
	Example: `  # Register a game profile
  saveguard game add skyrim --name Skyrim --save-path ~/games/skyrim/saves

  # Snapshot the saves before a risky fight
  saveguard create "before final boss" -g skyrim

  # See what exists
  saveguard list -g skyrim

  # Put backup #2 back
  saveguard restore 2 -g skyrim

  See Also: saveguard game list, saveguard prune`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging first
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("SAVEGUARD_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewTeeHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig surfaces config load failures before any command runs.
func checkConfig(cmd *cobra.Command, _ []string) error {
	// Skip for help and version commands
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}

	return nil
}

// Execute runs the root command and reports failures on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	fmt.Fprintf(os.Stderr, "%s✗ %v%s\n", colorRed, err, colorReset)

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", exitErr.Suggestion)
	}

	return err
}
