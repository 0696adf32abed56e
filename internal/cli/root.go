package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/stationcache/internal/config"
	"github.com/roach88/stationcache/internal/store"
)

// RootOptions holds global flags for all commands, and the configuration
// and logger resolved from them before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DB         string
	Backend    string

	Config config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the stationcache CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stationcache",
		Short: "Inspect and exercise the weather-station state cache",
		Long: `stationcache manages the durable cache behind the weather-station app state.

It can print what the cache holds, replace a cached slice, and run
hydration scenarios against a throwaway store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $STATIONCACHE_CONFIG or ~/.config/stationcache/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "cache database path (overrides store.path)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "store backend: sqlite or bolt (overrides store.backend)")

	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))

	return cmd
}

// resolve validates global flags, loads configuration and installs the logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.DB != "" {
		cfg.Store.Path = o.DB
	}
	if o.Backend != "" {
		if _, err := store.ParseBackend(o.Backend); err != nil {
			return WrapExitError(ExitCommandError, "invalid --backend", err)
		}
		cfg.Store.Backend = o.Backend
	}
	o.Config = cfg

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log, o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure logging", err)
	}
	o.Logger = logger
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
