package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError represents a single linter output line that did not match the
// expected pattern. It is recoverable: the caller logs it and keeps going.
type ParseError struct {
	Provider string // Linter that produced the line
	Line     string // The raw line that failed to parse
	Reason   string // Why the line was rejected
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("linter %q produced an unparseable line %q: %s", e.Provider, e.Line, e.Reason)
}

// NewParseError creates a new ParseError instance.
func NewParseError(provider, line, reason string) error {
	return &ParseError{
		Provider: provider,
		Line:     line,
		Reason:   reason,
	}
}

// SpawnError represents a linter process that could not be started or executed.
// It is recoverable at the run level: the linter's run yields no results.
type SpawnError struct {
	Tool string
	Err  error
}

// Error implements the error interface for SpawnError.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to execute %q: %v", e.Tool, e.Err)
}

// Unwrap returns the underlying execution error.
func (e *SpawnError) Unwrap() error {
	return e.Err
}

// NewSpawnError creates a new SpawnError instance.
func NewSpawnError(tool string, err error) error {
	return &SpawnError{Tool: tool, Err: err}
}

// StartupError represents a refactor subprocess that failed before emitting
// its ready sentinel. DependencyMissing distinguishes the "refactoring
// library is not installed" condition from a generic startup failure.
type StartupError struct {
	DependencyMissing bool
	Message           string
	Traceback         string
}

// Error implements the error interface for StartupError.
func (e *StartupError) Error() string {
	if e.DependencyMissing {
		return "the refactoring helper could not start: the rope library is not installed in the configured Python environment"
	}
	if e.Message != "" {
		return fmt.Sprintf("the refactoring helper failed to start: %s", e.Message)
	}
	return fmt.Sprintf("the refactoring helper failed to start: %s", firstLine(e.Traceback))
}

// NewStartupError creates a new StartupError instance.
func NewStartupError(message, traceback string, dependencyMissing bool) error {
	return &StartupError{
		DependencyMissing: dependencyMissing,
		Message:           message,
		Traceback:         traceback,
	}
}

// IsDependencyMissing reports whether the error is a StartupError caused by
// the refactoring library being unavailable.
func IsDependencyMissing(err error) bool {
	var startupErr *StartupError
	return errors.As(err, &startupErr) && startupErr.DependencyMissing
}

// CommandError represents an in-flight refactor command the subprocess
// rejected. The traceback is kept for the audit log; user-facing surfaces
// show only the summary.
type CommandError struct {
	Message   string
	Traceback string
}

// Error implements the error interface for CommandError.
func (e *CommandError) Error() string {
	if e.Message != "" && e.Traceback != "" {
		return fmt.Sprintf("%s\n%s", e.Message, e.Traceback)
	}
	if e.Message != "" {
		return e.Message
	}
	return firstLine(e.Traceback)
}

// Summary returns a one-line description suitable for user-facing output.
func (e *CommandError) Summary() string {
	if e.Message != "" {
		return e.Message
	}
	return firstLine(e.Traceback)
}

// NewCommandError creates a new CommandError instance.
func NewCommandError(message, traceback string) error {
	return &CommandError{Message: message, Traceback: traceback}
}

// ApplyError represents a diff that could not be translated or applied to
// the target document. The document is left unmodified.
type ApplyError struct {
	Path string
	Err  error
}

// Error implements the error interface for ApplyError.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("failed to apply changes to %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying apply error.
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// NewApplyError creates a new ApplyError instance.
func NewApplyError(path string, err error) error {
	return &ApplyError{Path: path, Err: err}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
