package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spoolkit/spool/internal/record"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (record not found, write failed)
	ExitCommandError = 2 // Command error (invalid flags, unreadable config)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  string      `json:"error,omitempty"` // error message
}

// Success outputs a successful result in the configured format.
// Text format expects data to carry its own String rendering.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: data})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Failure outputs an error in the configured format.
func (f *OutputFormatter) Failure(message string) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "error", Error: message})
	}

	fmt.Fprintf(f.Writer, "Error: %s\n", message)
	return nil
}

// PropertyView is the display form of one property entry.
type PropertyView struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// EventView is the display form of a buffered event.
type EventView struct {
	ID              int64          `json:"id"`
	ProjectToken    string         `json:"project_token"`
	CustomerIDKey   string         `json:"customer_id_key,omitempty"`
	CustomerIDValue any            `json:"customer_id_value,omitempty"`
	EventType       string         `json:"event_type"`
	Timestamp       float64        `json:"timestamp"`
	Properties      []PropertyView `json:"properties"`
}

// CustomerUpdateView is the display form of a buffered customer update.
type CustomerUpdateView struct {
	ID              int64          `json:"id"`
	ProjectToken    string         `json:"project_token"`
	CustomerIDKey   string         `json:"customer_id_key,omitempty"`
	CustomerIDValue any            `json:"customer_id_value,omitempty"`
	Timestamp       float64        `json:"timestamp"`
	Properties      []PropertyView `json:"properties"`
}

// NewEventView converts a record for display.
func NewEventView(ev record.Event) EventView {
	return EventView{
		ID:              ev.ID,
		ProjectToken:    ev.ProjectToken,
		CustomerIDKey:   ev.CustomerIDKey,
		CustomerIDValue: record.Plain(ev.CustomerIDValue),
		EventType:       ev.EventType,
		Timestamp:       ev.Timestamp,
		Properties:      propertyViews(ev.Properties),
	}
}

// NewCustomerUpdateView converts a record for display.
func NewCustomerUpdateView(cu record.CustomerUpdate) CustomerUpdateView {
	return CustomerUpdateView{
		ID:              cu.ID,
		ProjectToken:    cu.ProjectToken,
		CustomerIDKey:   cu.CustomerIDKey,
		CustomerIDValue: record.Plain(cu.CustomerIDValue),
		Timestamp:       cu.Timestamp,
		Properties:      propertyViews(cu.Properties),
	}
}

func propertyViews(props []record.Property) []PropertyView {
	views := make([]PropertyView, 0, len(props))
	for _, p := range props {
		views = append(views, PropertyView{Key: p.Key, Value: record.Plain(p.Value)})
	}
	return views
}
