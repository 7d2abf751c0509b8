package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Unsupported renderer, failed cases, preprocessing failure
	ExitCommandError = 2 // Command error (bad input, invalid config, missing files)
)

// Error codes reported in JSON error responses.
const (
	ErrCodeGeneric  = "E001" // Generic/unknown error
	ErrCodeNotFound = "E002" // Input file or ledger not found
	ErrCodeNoRuns   = "E003" // Ledger has no runs
)

// ExitError represents an error with a specific exit code.
// main uses GetExitCode to turn it into the process exit status.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
	Quiet   bool   // Exit with Code but report nothing
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

// NewQuietExitError creates an ExitError that ReportFatal does not print.
// mdbook reads such answers from the exit code alone.
func NewQuietExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message, Quiet: true}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsQuiet reports whether err asks to exit without a report.
func IsQuiet(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Quiet
}

// Causes returns every error wrapped by err, depth first. Errors joined with
// several %w verbs are all visited.
func Causes(err error) []error {
	var out []error
	var walk func(error)
	walk = func(e error) {
		var next []error
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			next = u.Unwrap()
		case interface{ Unwrap() error }:
			next = []error{u.Unwrap()}
		}
		for _, cause := range next {
			if cause == nil {
				continue
			}
			out = append(out, cause)
			walk(cause)
		}
	}
	walk(err)
	return out
}

// ReportFatal logs err and each of its causes. Quiet errors are not logged.
func ReportFatal(logger *slog.Logger, err error) {
	if err == nil || IsQuiet(err) {
		return
	}
	logger.Error("Fatal error: " + err.Error())
	for _, cause := range Causes(err) {
		logger.Error("Caused by: " + cause.Error())
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status  string    `json:"status"`             // "ok" or "error"
	Data    any       `json:"data,omitempty"`     // success payload
	Error   *CLIError `json:"error,omitempty"`    // error details
	TraceID string    `json:"trace_id,omitempty"` // preprocessing run ID, when one applies
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	return f.SuccessWithTrace(data, "")
}

// SuccessWithTrace is Success with the run ID the result belongs to.
// The ID only appears in JSON output.
func (f *OutputFormatter) SuccessWithTrace(data any, traceID string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status:  "ok",
			Data:    data,
			TraceID: traceID,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Messages go to ErrWriter when set so JSON output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
