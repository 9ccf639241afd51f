package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// PendingOptions holds flags for the pending command.
type PendingOptions struct {
	*RootOptions
	Kind string // "events" | "customers"
}

// NewPendingCommand creates the pending command.
func NewPendingCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PendingOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List records awaiting upload",
		Long: `List buffered records awaiting upload, in insertion order.

Example:
  spoolctl pending --db ./spool.db --kind events --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPending(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "events", "record kind (events|customers)")

	return cmd
}

func runPending(opts *PendingOptions, cmd *cobra.Command) error {
	if opts.Kind != "events" && opts.Kind != "customers" {
		return WrapExitError(ExitCommandError, "pending",
			fmt.Errorf("invalid kind %q: must be events or customers", opts.Kind))
	}

	t, s, err := openTracker(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	if opts.Kind == "events" {
		events, err := t.PendingEvents(cmd.Context())
		if err != nil {
			return WrapExitError(ExitFailure, "pending events", err)
		}

		views := make([]EventView, 0, len(events))
		for _, ev := range events {
			views = append(views, NewEventView(ev))
		}
		if opts.Format == "json" {
			return formatter.Success(views)
		}
		return renderEventsText(cmd.OutOrStdout(), views)
	}

	updates, err := t.PendingCustomerUpdates(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "pending customer updates", err)
	}

	views := make([]CustomerUpdateView, 0, len(updates))
	for _, cu := range updates {
		views = append(views, NewCustomerUpdateView(cu))
	}
	if opts.Format == "json" {
		return formatter.Success(views)
	}
	return renderCustomerUpdatesText(cmd.OutOrStdout(), views)
}

func renderEventsText(w io.Writer, views []EventView) error {
	if len(views) == 0 {
		fmt.Fprintln(w, "no pending events")
		return nil
	}
	for _, v := range views {
		fmt.Fprintf(w, "#%d %s token=%s ts=%.3f\n", v.ID, v.EventType, v.ProjectToken, v.Timestamp)
		for _, p := range v.Properties {
			fmt.Fprintf(w, "  %s=%v\n", p.Key, p.Value)
		}
	}
	return nil
}

func renderCustomerUpdatesText(w io.Writer, views []CustomerUpdateView) error {
	if len(views) == 0 {
		fmt.Fprintln(w, "no pending customer updates")
		return nil
	}
	for _, v := range views {
		fmt.Fprintf(w, "#%d %s=%v token=%s ts=%.3f\n", v.ID, v.CustomerIDKey, v.CustomerIDValue, v.ProjectToken, v.Timestamp)
		for _, p := range v.Properties {
			fmt.Fprintf(w, "  %s=%v\n", p.Key, p.Value)
		}
	}
	return nil
}
