package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/wtmobile/internal/config"
	"github.com/roach88/wtmobile/internal/gym"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string

	// Config is the resolved configuration, filled in before any command runs.
	Config config.Config

	// Clock and IDs override record stamping (for testing).
	// If nil, wall time and UUIDv7 ids are used.
	Clock gym.Clock
	IDs   gym.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the wtmobile CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wtmobile",
		Short: "WT Mobile - track the gyms you train at",
		Long: `Keep a list of gyms (name, city, notes) in a local database.

Records are stored in a SQLite file and listed most recent first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveConfig(opts, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", config.DefaultDatabase, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveConfig layers flags that were set explicitly over the loaded
// configuration, validates the merged result and writes it back into opts.
func resolveConfig(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return configError(opts, cmd, opts.Format, "failed to load config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = opts.Database
	}
	if flags.Changed("format") {
		cfg.Format = opts.Format
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.Verbose
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}

	if !isValidFormat(cfg.Format) {
		err := fmt.Errorf("invalid format %q: must be one of %v", cfg.Format, ValidFormats)
		return configError(opts, cmd, "text", "invalid configuration", err)
	}
	if err := config.Validate(cfg); err != nil {
		return configError(opts, cmd, cfg.Format, "invalid configuration", err)
	}

	opts.Config = cfg
	opts.Database = cfg.Database
	opts.Format = cfg.Format
	opts.Verbose = cfg.Verbose
	return nil
}

// configError reports a configuration failure in the given format, falling
// back to text when the format itself is unusable.
func configError(opts *RootOptions, cmd *cobra.Command, format, message string, err error) error {
	if !isValidFormat(format) {
		format = "text"
	}
	out := &OutputFormatter{
		Format:    format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	_ = out.Error(ErrCodeConfig, fmt.Sprintf("%s: %v", message, err), nil)
	return reportedExitError(ExitCommandError, message, err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
