// Package remote generates blueprints by calling an HTTP generation endpoint.
//
// Request:  POST {url} {"prompt": "...", "instruction": "..."}
// Response: the blueprint JSON document, or {"blueprint": {...}}
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/sitecraft/internal/domain/generation"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/tracing"
)

type request struct {
	Prompt      string `json:"prompt"`
	Instruction string `json:"instruction"`
}

type envelope struct {
	Blueprint json.RawMessage `json:"blueprint"`
}

// Backend is a generation.Backend over HTTP
type Backend struct {
	client *httpclient.Client
	url    string
}

// Config configures the remote backend
type Config struct {
	URL    string
	APIKey string
	HTTP   httpclient.Config
}

// New creates a remote backend
func New(cfg Config) (*Backend, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("generation URL is required")
	}
	if cfg.HTTP.Name == "" {
		cfg.HTTP = httpclient.DefaultConfig("generation-remote")
	}

	client := httpclient.New(cfg.HTTP)
	if cfg.APIKey != "" {
		client.SetBearerAuth(cfg.APIKey)
	}
	return &Backend{client: client, url: cfg.URL}, nil
}

// Name returns "remote"
func (b *Backend) Name() string { return "remote" }

// Generate posts the prompt and returns the blueprint document
func (b *Backend) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := b.client.Execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetHeaders(tracing.Headers(ctx)).
			SetBody(request{Prompt: prompt, Instruction: generation.SystemInstruction}).
			Post(b.url)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", generation.ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	var env envelope
	if json.Unmarshal(body, &env) == nil && len(env.Blueprint) > 0 {
		return env.Blueprint, nil
	}
	return body, nil
}
