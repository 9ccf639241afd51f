package cli

import (
	"github.com/spf13/cobra"
)

// IdentifyOptions holds flags for the identify command.
type IdentifyOptions struct {
	*RootOptions
	Token     string
	IDKey     string
	IDValue   string
	Timestamp float64
	Props     []string
}

// NewIdentifyCommand creates the identify command.
func NewIdentifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IdentifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "identify",
		Short: "Buffer one customer identity update",
		Long: `Buffer one customer identity/attribute update in the local store.

Example:
  spoolctl identify --db ./spool.db --id-key registered --id-value jane@example.com --prop plan=pro`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIdentify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "project token")
	cmd.Flags().StringVar(&opts.IDKey, "id-key", "", "customer id key")
	cmd.Flags().StringVar(&opts.IDValue, "id-value", "", "customer id value")
	cmd.Flags().Float64Var(&opts.Timestamp, "timestamp", 0, "unix seconds (defaults to now)")
	cmd.Flags().StringArrayVar(&opts.Props, "prop", nil, "property entry key=value (repeatable)")

	return cmd
}

func runIdentify(opts *IdentifyOptions, cmd *cobra.Command) error {
	fields, err := buildFields(opts.Token, opts.IDKey, opts.IDValue, opts.Timestamp, opts.Props)
	if err != nil {
		return err
	}

	t, s, err := openTracker(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := t.TrackCustomer(cmd.Context(), fields...); err != nil {
		return WrapExitError(ExitFailure, "track customer", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success("buffered customer update")
}
