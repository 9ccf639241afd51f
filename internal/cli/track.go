package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spoolkit/spool/internal/record"
)

// TrackOptions holds flags for the track command.
type TrackOptions struct {
	*RootOptions
	Token     string
	EventType string
	IDKey     string
	IDValue   string
	Timestamp float64
	Props     []string
}

// NewTrackCommand creates the track command.
func NewTrackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TrackOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Buffer one behavioral event",
		Long: `Buffer one behavioral event in the local store.

The event and all of its properties are persisted atomically; it stays
buffered until acknowledged after upload.

Example:
  spoolctl track --db ./spool.db --type session_start --prop screen=home`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrack(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "project token")
	cmd.Flags().StringVar(&opts.EventType, "type", "", "event type (required)")
	cmd.Flags().StringVar(&opts.IDKey, "id-key", "", "customer id key")
	cmd.Flags().StringVar(&opts.IDValue, "id-value", "", "customer id value")
	cmd.Flags().Float64Var(&opts.Timestamp, "timestamp", 0, "unix seconds (defaults to now)")
	cmd.Flags().StringArrayVar(&opts.Props, "prop", nil, "property entry key=value (repeatable)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runTrack(opts *TrackOptions, cmd *cobra.Command) error {
	fields, err := buildFields(opts.Token, opts.IDKey, opts.IDValue, opts.Timestamp, opts.Props)
	if err != nil {
		return err
	}
	fields = append(fields, record.EventTypeField{Name: opts.EventType})

	t, s, err := openTracker(opts.RootOptions)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := t.TrackEvent(cmd.Context(), fields...); err != nil {
		return WrapExitError(ExitFailure, "track event", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(fmt.Sprintf("buffered event %q", opts.EventType))
}

// buildFields assembles the tagged field list shared by track and identify.
func buildFields(token, idKey, idValue string, timestamp float64, props []string) ([]record.Field, error) {
	var fields []record.Field
	if token != "" {
		fields = append(fields, record.ProjectTokenField{Token: token})
	}
	if idKey != "" {
		fields = append(fields, record.CustomerIDField{Key: idKey, Value: record.String(idValue)})
	}
	if timestamp != 0 {
		fields = append(fields, record.TimestampField{Seconds: timestamp})
	}

	properties, err := parseProps(props)
	if err != nil {
		return nil, err
	}
	if len(properties) > 0 {
		fields = append(fields, record.PropertiesField{Properties: properties})
	}

	return fields, nil
}

// parseProps parses repeated key=value flags into property entries,
// preserving order and duplicate keys.
func parseProps(raw []string) ([]record.Property, error) {
	var props []record.Property
	for _, entry := range raw {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return nil, WrapExitError(ExitCommandError, "parse property",
				fmt.Errorf("expected key=value, got %q", entry))
		}
		props = append(props, record.Property{Key: key, Value: record.String(value)})
	}
	return props, nil
}
