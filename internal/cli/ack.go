package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spoolkit/spool/internal/record"
	"github.com/spoolkit/spool/internal/store"
)

// AckOptions holds flags for the ack command.
type AckOptions struct {
	*RootOptions
	Kind string // "event" | "customer"
	ID   int64
}

// NewAckCommand creates the ack command.
func NewAckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ack",
		Short: "Acknowledge an uploaded record",
		Long: `Remove one uploaded record (and its properties) from the buffer.

Acknowledging a record that is no longer buffered fails; the upload layer
acknowledges each record exactly once.

Example:
  spoolctl ack --db ./spool.db --kind event --id 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAck(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "event", "record kind (event|customer)")
	cmd.Flags().Int64Var(&opts.ID, "id", 0, "record id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func runAck(opts *AckOptions, cmd *cobra.Command) error {
	t, s, err := openTracker(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	switch opts.Kind {
	case "event":
		err = t.AcknowledgeEvent(cmd.Context(), &record.Event{ID: opts.ID})
	case "customer":
		err = t.AcknowledgeCustomerUpdate(cmd.Context(), &record.CustomerUpdate{ID: opts.ID})
	default:
		return WrapExitError(ExitCommandError, "ack",
			fmt.Errorf("invalid kind %q: must be event or customer", opts.Kind))
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = formatter.Failure(fmt.Sprintf("%s %d not found", opts.Kind, opts.ID))
			return WrapExitError(ExitFailure, "ack", err)
		}
		return WrapExitError(ExitFailure, "ack", err)
	}

	return formatter.Success(fmt.Sprintf("acknowledged %s %d", opts.Kind, opts.ID))
}
