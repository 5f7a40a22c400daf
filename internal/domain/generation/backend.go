package generation

import "context"

// Backend turns a prompt into blueprint JSON text. Implementations talk to
// the upstream model; the Service owns validation.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// SystemInstruction describes the output format to language models
const SystemInstruction = `You are an expert web designer. Generate a single JSON object describing a complete web page for the user's description.
Every element has the shape {"type": string, "props": object, "children": array}.
"type" is an HTML tag name such as "div", "section", "h1", "p", "a" or "img".
"props" holds HTML attributes; put TailwindCSS classes in "className".
Each entry of "children" is either a plain string or another element object.
Use a modern, clean dark theme. The root should be a "div" that sets page layout.
Never emit scripts, event handler attributes or javascript: URLs.`

// UserPrompt wraps the user's description for the model
func UserPrompt(description string) string {
	return "Generate a JSON structure for a website based on this description: " + description
}

// Disabled is the backend used when no provider is configured
type Disabled struct{}

// Name returns "disabled"
func (Disabled) Name() string { return "disabled" }

// Generate always fails with ErrNotConfigured
func (Disabled) Generate(context.Context, string) ([]byte, error) {
	return nil, ErrNotConfigured
}
