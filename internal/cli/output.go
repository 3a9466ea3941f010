package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The engine raised a fault
	ExitCommandError = 2 // Command error (bad flags, unreadable config, engine not loadable)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Err     error
	Message string
	Code    int
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitCommandError if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Result is what a validation session reports.
type Result struct {
	Faults   []entities.ExceptionEntry `json:"faults,omitempty"`
	Report   string                    `json:"report,omitempty"`
	Document string                    `json:"document,omitempty"`
	Step     string                    `json:"step"`
}

// CLIResponse is the JSON response format for CLI output.
type CLIResponse struct {
	Data   *Result `json:"data,omitempty"`
	Status string  `json:"status"` // "ok" or "fault"
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Writer io.Writer
	Format string
}

// Write prints res in the configured format.
func (f *OutputFormatter) Write(res *Result) error {
	status := "ok"
	if len(res.Faults) > 0 {
		status = "fault"
	}

	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: status, Data: res})
	}

	for _, e := range res.Faults {
		if _, err := fmt.Fprintf(f.Writer, "%s: %s\n", e.Code, e.Message); err != nil {
			return err
		}
	}
	if res.Report != "" {
		if _, err := fmt.Fprintln(f.Writer, res.Report); err != nil {
			return err
		}
	}
	if status == "ok" {
		_, err := fmt.Fprintf(f.Writer, "%s: ok\n", res.Step)
		return err
	}
	_, err := fmt.Fprintf(f.Writer, "%s: %d error(s)\n", res.Step, len(res.Faults))
	return err
}
