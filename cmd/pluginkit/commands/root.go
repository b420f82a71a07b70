// Package commands implements the CLI commands for pluginkit.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pluginkit/cmd"
	"github.com/thoreinstein/pluginkit/internal/config"
	"github.com/thoreinstein/pluginkit/internal/errors"
	"github.com/thoreinstein/pluginkit/internal/logging"
)

// debugEnv enables debug (1, true) or trace (2) logging when no -v flag is
// given.
const debugEnv = "PLUGINKIT_DEBUG"

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

// appConfig is the configuration loaded by initConfig.
var appConfig *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

// errReported fails a command whose problems were already written to its
// output.
var errReported = errors.NewExitError(nil, errors.ExitUser)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"config file (default: ./config.yaml, then $XDG_CONFIG_HOME/pluginkit/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("pluginkit version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	appConfig, configLoadErr = config.Load(configFlag)
}

var rootCmd = &cobra.Command{
	Use:   "pluginkit",
	Short: "Parse agent definitions and manage marketplace plugins",
	Long: `pluginkit reads the YAML frontmatter of agent, command and skill
definitions, including the loosely written kind where descriptions run
over several lines and contain colons, and installs plugin components
from a local marketplace checkout.

The install root (default ~/.claude) receives agents/, commands/,
skills/ and .mcp.json; installed plugins are recorded in
installed_plugins.json.`,
	Example: `  # Show the metadata of a definition
  pluginkit parse agents/code-reviewer.md

  # Rewrite a definition so strict YAML parsers accept it
  pluginkit normalize agents/code-reviewer.md --write

  # Browse and install from the marketplace
  pluginkit plugin list
  pluginkit plugin install review agent:code-reviewer mcp:github

  # Check the install root for broken or missing components
  pluginkit doctor`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// Flags take precedence over the environment
		if v == 0 {
			if val, ok := os.LookupEnv(debugEnv); ok {
				switch val {
				case "1", "true":
					v = 2
				case "2":
					v = 3
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	handlers := []slog.Handler{logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	}.Handler()}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "opening log file"), "check the --log-file path")
		}
		handlers = append(handlers, logging.Config{Level: level, Format: logging.FormatJSON, Output: f}.Handler())
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
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

// checkConfig reports a config load failure for every command that needs
// the configuration.
func checkConfig(cmd *cobra.Command) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// currentConfig returns the loaded configuration, loading it on first use
// when a command runs outside cobra's initialization.
func currentConfig() (*config.Config, error) {
	if appConfig == nil && configLoadErr == nil {
		initConfig()
	}
	if configLoadErr != nil {
		return nil, errors.NewConfigError(configLoadErr)
	}
	return appConfig, nil
}

// Execute runs the root command.
func Execute() error {
	return errors.Wrap(rootCmd.Execute(), "executing root command")
}
