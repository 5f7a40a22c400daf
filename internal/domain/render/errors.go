package render

import "fmt"

// ErrorMessage is the visible text of an error placeholder
const ErrorMessage = "Error: Invalid element structure found."

// MalformedNodeError describes a node the renderer could not display.
// Node holds the offending structure for diagnosis.
type MalformedNodeError struct {
	Path   string
	Reason string
	Node   any
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed blueprint node at %s: %s", e.Path, e.Reason)
}
