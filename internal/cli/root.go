package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/datediff/internal/ir"
)

// EnvPrefix is the prefix of environment variables that set flags, e.g.
// DATEDIFF_FORMAT=json.
const EnvPrefix = "DATEDIFF"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional config file

	// Logger is built in PersistentPreRunE from Verbose.
	Logger *slog.Logger

	v *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the datediff CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:     "datediff",
		Version: ir.Version,
		Short:   "Date part boundary differences, in Go and in SQL",
		Long: `Count the date part boundaries crossed between two instants.

The same difference is computed directly in Go or by a DATEDIFF call the
query compiler rewrites for the database. Both paths must agree.

Flags can also be set through DATEDIFF_* environment variables or a YAML
config file (--config).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.loadConfig(cmd); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.Logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (yaml)")

	// Add subcommands
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewPeopleCommand(opts))

	return cmd
}

// loadConfig fills every flag the command line left unset from the
// environment or the config file. Command-line values always win.
func (o *RootOptions) loadConfig(cmd *cobra.Command) error {
	o.v.SetEnvPrefix(EnvPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	if o.Config != "" {
		o.v.SetConfigFile(o.Config)
		o.v.SetConfigType("yaml")
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", o.Config, err)
		}
	}

	if err := o.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	var errs []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !o.v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, o.v.GetString(f.Name)); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.Name, err))
		}
	})
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// newLogger returns the CLI's stderr logger. Debug records need --verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// formatter returns an OutputFormatter for cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns the configured logger, or a discarding one when the
// command runs without the root's pre-run hook.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
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
