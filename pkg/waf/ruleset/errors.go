package ruleset

import "fmt"

// ParseError indicates a ruleset document failed to parse or validate.
type ParseError struct {
	// Source names the document origin (file path or "inline").
	Source string

	// Cause is the underlying parse or validation failure.
	Cause error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("ruleset %s: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
