package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by the disabled backend
	ErrNotConfigured = errors.New("generation is not configured")
	// ErrUnavailable is returned by backends that refuse calls for a while,
	// such as when their circuit breaker is open
	ErrUnavailable = errors.New("generation backend temporarily unavailable")
)

// Reason classifies a generation failure
type Reason string

const (
	ReasonEmptyPrompt   Reason = "empty_prompt"
	ReasonInvalidPrompt Reason = "invalid_prompt"
	ReasonUnavailable   Reason = "unavailable"
	ReasonUpstream      Reason = "upstream"
	ReasonTimeout       Reason = "timeout"
	ReasonInvalidOutput Reason = "invalid_output"
)

// User-facing messages
const (
	MessageEmptyPrompt   = "Please enter a description for the AI."
	MessageFailed        = "Failed to generate site structure. Please try again."
	MessageNotConfigured = "AI generation is not configured."
	MessageUnavailable   = "AI generation is temporarily unavailable. Please try again shortly."
)

// GenerationError is a user-visible, non-fatal generation failure.
// It never implies a change to stored blueprints.
type GenerationError struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed if sent again
func (e *GenerationError) Retryable() bool {
	switch e.Reason {
	case ReasonUpstream, ReasonTimeout, ReasonInvalidOutput:
		return true
	case ReasonUnavailable:
		return errors.Is(e.Err, ErrUnavailable)
	default:
		return false
	}
}

// IsGenerationError reports whether err is or wraps a *GenerationError
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
