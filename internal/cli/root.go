package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolkit/spool/internal/config"
	"github.com/spoolkit/spool/internal/store"
	"github.com/spoolkit/spool/internal/tracker"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // optional config file path
	DB      string // database path, overrides config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the spoolctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "spoolctl",
		Short: "Inspect and drive a local tracking buffer",
		Long: `spoolctl operates on the on-device buffer of pending tracking records:
enqueue events and customer updates, list what awaits upload, acknowledge
uploaded records, and read the durable customer identity.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "path to SQLite buffer (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewTrackCommand(opts))
	cmd.AddCommand(NewIdentifyCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))
	cmd.AddCommand(NewAckCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))

	return cmd
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

// loadConfig resolves the effective configuration from the config file and
// flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}
	if opts.DB != "" {
		cfg.Database = opts.DB
	}
	return cfg, nil
}

// openTracker opens the buffer named by the options and wraps it in a
// tracker. The caller closes the returned store.
func openTracker(opts *RootOptions) (*tracker.Tracker, *store.Store, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open buffer", err)
	}

	logLevel, err := cfg.SlogLevel()
	if err != nil {
		s.Close()
		return nil, nil, WrapExitError(ExitCommandError, "configure logging", err)
	}
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	return tracker.New(s, logger), s, nil
}
