package cli

import (
	"github.com/spf13/cobra"
)

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the durable customer identity",
		Long: `Print the durable customer identity cookie, creating it on first use.

This call never fails: if the cookie cannot be persisted, a fresh in-memory
one is still returned and the problem is logged.

Example:
  spoolctl whoami --db ./spool.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, s, err := openTracker(rootOpts)
			if err != nil {
				return err
			}
			defer s.Close()

			identity := t.Identity(cmd.Context())

			formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if rootOpts.Format == "json" {
				return formatter.Success(map[string]string{"cookie": identity.Cookie.String()})
			}
			return formatter.Success(identity.Cookie.String())
		},
	}

	return cmd
}
