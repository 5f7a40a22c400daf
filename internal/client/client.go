// Package client is the sitecraft API client used by blueprintctl, plus the
// CLI's persisted login session.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	api "github.com/GriffinCanCode/sitecraft/internal/api/http"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/httpclient"
)

// DefaultServer is used when no server is configured
const DefaultServer = "http://localhost:8000"

// APIError is an error reply from the server
type APIError struct {
	Status int
	Body   api.ErrorResponse
}

func (e *APIError) Error() string {
	msg := e.Body.Error
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Body.Path != "" {
		return fmt.Sprintf("%s (at %s)", msg, e.Body.Path)
	}
	return msg
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// RenderResult is a rendered blueprint. Tree is the display tree as JSON.
type RenderResult struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Tree   json.RawMessage `json:"tree"`
	Errors int             `json:"errors"`
}

// Fragment is a rendered HTML fragment and its malformed-node count
type Fragment struct {
	HTML   string
	Errors int
}

// Client calls the sitecraft HTTP API
type Client struct {
	http   *httpclient.Client
	server string
}

// New creates a client for server. token may be empty.
func New(server, token string) *Client {
	if server == "" {
		server = DefaultServer
	}
	server = strings.TrimRight(server, "/")

	cfg := httpclient.DefaultConfig("sitecraft-api")
	cfg.BaseURL = server
	cfg.MaxRetries = 1
	cfg.UserAgent = "blueprintctl/1.0"

	c := &Client{http: httpclient.New(cfg), server: server}
	if token != "" {
		c.http.SetBearerAuth(token)
	}
	return c
}

// Server returns the base URL
func (c *Client) Server() string {
	return c.server
}

// do sends a request and decodes a JSON reply into out
func (c *Client) do(ctx context.Context, method, path string, body, out any) (*resty.Response, error) {
	resp, err := c.http.Execute(ctx, func(r *resty.Request) (*resty.Response, error) {
		r.SetError(&api.ErrorResponse{})
		if body != nil {
			r.SetBody(body)
		}
		if out != nil {
			r.SetResult(out)
		}
		return r.Execute(method, path)
	})
	if err != nil {
		return resp, c.wrap(resp, err)
	}
	return resp, nil
}

func (c *Client) wrap(resp *resty.Response, err error) error {
	var se *httpclient.StatusError
	if resp == nil || !errors.As(err, &se) {
		return fmt.Errorf("request to %s failed: %w", c.server, err)
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*api.ErrorResponse); ok && body != nil {
		apiErr.Body = *body
	}
	return apiErr
}

// Health returns the server's health report
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	_, err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Register creates an account and returns its session
func (c *Client) Register(ctx context.Context, name, email, password string) (*api.SessionResponse, error) {
	var out api.SessionResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/register", api.RegisterRequest{Name: name, Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, email, password string) (*api.SessionResponse, error) {
	var out api.SessionResponse
	if _, err := c.do(ctx, http.MethodPost, "/auth/login", api.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the current session
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	return err
}

// Me returns the logged-in user
func (c *Client) Me(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	_, err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out)
	return out, err
}

// ListBlueprints returns the caller's blueprints, newest first
func (c *Client) ListBlueprints(ctx context.Context) ([]site.Summary, error) {
	var out struct {
		Blueprints []site.Summary `json:"blueprints"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/blueprints", nil, &out); err != nil {
		return nil, err
	}
	return out.Blueprints, nil
}

// CreateBlueprint stores blueprint JSON text under title
func (c *Client) CreateBlueprint(ctx context.Context, title, text string) (*site.Blueprint, error) {
	var out site.Blueprint
	req := api.CreateBlueprintRequest{Title: title, BlueprintJSON: &text}
	if _, err := c.do(ctx, http.MethodPost, "/blueprints", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBlueprint returns a stored blueprint
func (c *Client) GetBlueprint(ctx context.Context, id string) (*site.Blueprint, error) {
	var out site.Blueprint
	if _, err := c.do(ctx, http.MethodGet, "/blueprints/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Render returns the display tree of a stored blueprint
func (c *Client) Render(ctx context.Context, id string) (*RenderResult, error) {
	var out RenderResult
	if _, err := c.do(ctx, http.MethodGet, "/blueprints/"+url.PathEscape(id)+"/render", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenderHTML returns the sanitised HTML fragment of a stored blueprint
func (c *Client) RenderHTML(ctx context.Context, id string) (*Fragment, error) {
	resp, err := c.do(ctx, http.MethodGet, "/blueprints/"+url.PathEscape(id)+"/render?format=html", nil, nil)
	if err != nil {
		return nil, err
	}
	return fragment(resp), nil
}

// Preview renders blueprint text without storing it
func (c *Client) Preview(ctx context.Context, text string) (*Fragment, error) {
	req := api.CreateBlueprintRequest{BlueprintJSON: &text}
	resp, err := c.do(ctx, http.MethodPost, "/preview", req, nil)
	if err != nil {
		return nil, err
	}
	return fragment(resp), nil
}

// Generate asks the server for a blueprint matching prompt
func (c *Client) Generate(ctx context.Context, prompt string) (*api.GenerateResponse, error) {
	var out api.GenerateResponse
	if _, err := c.do(ctx, http.MethodPost, "/generate", api.GenerateRequest{Prompt: prompt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewSession builds the persisted session for a login reply
func (c *Client) NewSession(resp *api.SessionResponse) *Session {
	return &Session{
		Server:    c.server,
		Token:     resp.Token,
		UserID:    resp.User.UserID,
		Name:      resp.User.Name,
		Email:     resp.User.Email,
		ExpiresAt: resp.ExpiresAt.UTC().Truncate(time.Second),
	}
}

func fragment(resp *resty.Response) *Fragment {
	errs, _ := strconv.Atoi(resp.Header().Get("X-Blueprint-Errors"))
	return &Fragment{HTML: resp.String(), Errors: errs}
}
