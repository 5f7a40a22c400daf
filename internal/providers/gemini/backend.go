// Package gemini generates blueprints with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/GriffinCanCode/sitecraft/internal/domain/generation"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned when the backend is built without a key
var ErrMissingAPIKey = errors.New("Gemini API key is not configured")

// contentGenerator is the slice of *genai.Models the backend needs
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures the Gemini backend
type Config struct {
	APIKey string
	Model  string
}

// Backend is a generation.Backend over the Gemini API
type Backend struct {
	models contentGenerator
	model  string
}

// New creates a Gemini backend
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newBackend(client.Models, cfg.Model), nil
}

func newBackend(models contentGenerator, model string) *Backend {
	if model == "" {
		model = DefaultModel
	}
	return &Backend{models: models, model: model}
}

// Name returns "gemini"
func (b *Backend) Name() string { return "gemini" }

// Model returns the configured model name
func (b *Backend) Model() string { return b.model }

// Generate asks the model for a blueprint constrained by the node schema
func (b *Backend) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := b.models.GenerateContent(ctx, b.model, genai.Text(generation.UserPrompt(prompt)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(generation.SystemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    nodeSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned no text")
	}
	return []byte(text), nil
}

// nodeSchema constrains the root to the element shape. Nested children are
// described in the system instruction since the schema cannot recurse.
func nodeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type": {
				Type:        genai.TypeString,
				Description: "The HTML tag name, for example div, h1, p or img.",
			},
			"props": {
				Type:        genai.TypeObject,
				Description: "HTML attributes such as className, src, alt and href. Styling uses TailwindCSS classes in className.",
				Properties: map[string]*genai.Schema{
					"className": {Type: genai.TypeString},
				},
			},
			"children": {
				Type:        genai.TypeArray,
				Description: "Child nodes in order. Each is a plain string or another element object.",
				Items: &genai.Schema{
					AnyOf: []*genai.Schema{
						{Type: genai.TypeString},
						{Type: genai.TypeObject},
					},
				},
			},
		},
		PropertyOrdering: []string{"type", "props", "children"},
		Required:         []string{"type"},
	}
}
