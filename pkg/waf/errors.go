package waf

import (
	"errors"
	"fmt"
)

// ErrNoEngine indicates no engine binding is registered.
var ErrNoEngine = errors.New("no waf engine binding registered")

// CompilationError indicates the engine rejected a ruleset. It is fatal to
// enabling security analysis for the process; callers catch it and degrade
// to disabled rather than crash the host application.
type CompilationError struct {
	// Diagnostic is the engine's own description of the failure.
	Diagnostic string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the error message.
func (e *CompilationError) Error() string {
	if e.Cause != nil && e.Diagnostic == "" {
		return fmt.Sprintf("ruleset compilation failed: %v", e.Cause)
	}
	return fmt.Sprintf("ruleset compilation failed: %s", e.Diagnostic)
}

// Unwrap returns the underlying cause.
func (e *CompilationError) Unwrap() error {
	return e.Cause
}
