package blueprint

import (
	"errors"
	"fmt"
)

// ErrInvalidJSON marks text that is not syntactically valid JSON
var ErrInvalidJSON = errors.New("invalid JSON format")

// ValidationError reports blueprint text or a tree that fails the node shape
// check. Path is a JSONPath-style pointer to the first offending node ("$"
// for the root); it is empty for syntax errors.
type ValidationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid blueprint: %s", e.Reason)
	}
	return fmt.Sprintf("invalid blueprint at %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// UserMessage is an actionable message suitable for the editing surface
func (e *ValidationError) UserMessage() string {
	if errors.Is(e.Err, ErrInvalidJSON) {
		return "Invalid JSON format. Please check your syntax."
	}
	return e.Error()
}

// IsValidationError reports whether err is or wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalidAt(path, format string, args ...any) *ValidationError {
	return &ValidationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
