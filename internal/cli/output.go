package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/contactdb/internal/contact"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Every item was written
	ExitFailure      = 1 // One or more items were rejected, or a scenario failed
	ExitCommandError = 2 // Bad input file, unopenable database, storage failure
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse. Code is a contact.Code name
// for write outcomes.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs data in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs a failure in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line when verbose mode is enabled.
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

// WriteReport is the result of one writer call.
type WriteReport struct {
	Op      string           `json:"op"`
	Code    string           `json:"code"`
	Errors  map[int]string   `json:"errors,omitempty"`
	Handles []contact.Handle `json:"handles,omitempty"`
}

func newWriteReport(op string, errs contact.ErrorMap) WriteReport {
	r := WriteReport{Op: op, Code: errs.Worst().String()}
	if len(errs) > 0 {
		r.Errors = make(map[int]string, len(errs))
		for i, c := range errs {
			r.Errors[i] = c.String()
		}
	}
	return r
}

func (r WriteReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", r.Op, r.Code)
	if len(r.Handles) > 0 {
		ids := make([]string, len(r.Handles))
		for i, h := range r.Handles {
			ids[i] = fmt.Sprint(uint32(h))
		}
		fmt.Fprintf(&b, "\nhandles: %s", strings.Join(ids, " "))
	}
	for _, i := range slices.Sorted(maps.Keys(r.Errors)) {
		fmt.Fprintf(&b, "\n  item %d: %s", i, r.Errors[i])
	}
	return b.String()
}

// emitWrite prints a write report and maps its outcome to an exit code.
// Rejected items print a normal report and exit with ExitFailure.
func emitWrite(f *OutputFormatter, r WriteReport) error {
	if r.Code == contact.NoError.String() {
		return f.Success(r)
	}
	msg := fmt.Sprintf("%s: %d item(s) rejected", r.Op, len(r.Errors))
	if len(r.Errors) == 0 {
		msg = r.Op + ": " + r.Code
	}
	if err := f.Error(r.Code, msg, r); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}
