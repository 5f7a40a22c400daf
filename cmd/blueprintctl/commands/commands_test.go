package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	api "github.com/GriffinCanCode/sitecraft/internal/api/http"
	"github.com/GriffinCanCode/sitecraft/internal/api/middleware"
	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/generation"
	"github.com/GriffinCanCode/sitecraft/internal/domain/render"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site/memory"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
)

type cannedBackend struct{}

func (cannedBackend) Name() string { return "canned" }

func (cannedBackend) Generate(context.Context, string) ([]byte, error) {
	return []byte(`{"type":"main","children":[{"type":"h1","children":["Fresh bread"]}]}`), nil
}

type harness struct {
	server  string
	session string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zaptest.NewLogger(t)
	limits := blueprint.DefaultParseOptions()
	provider := auth.NewProvider(logger)
	_, err := provider.Register("Demo User", "user@example.com", "password")
	require.NoError(t, err)

	h := api.NewHandlers(api.Deps{
		Store:     site.NewManager(memory.New(), logger, site.Config{ParseOptions: limits}),
		Generator: generation.NewService(cannedBackend{}, logger, generation.Config{ParseOptions: limits}),
		Renderer:  render.New(logger, render.Options{}),
		Auth:      provider,
		Logger:    logger,
		Limits:    limits,
	})
	router := gin.New()
	api.RegisterRoutes(router, h, middleware.Auth(provider))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &harness{server: srv.URL, session: filepath.Join(t.TempDir(), "session.yaml")}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--server", h.server, "--session", h.session}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, _, err := h.run("", "login", "--email", "user@example.com", "--password", "password")
	require.NoError(t, err)
}

var blueprintID = regexp.MustCompile(`bp_[0-9A-Z]{26}`)

func TestRootShowsHelp(t *testing.T) {
	h := newHarness(t)
	out, _, err := h.run("")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "blueprintctl")
}

func TestCommandsRequireLogin(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("", "list")
	require.Error(t, err)
	assert.Contains(t, stderr, "not logged in")
}

func TestLoginSavesSession(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run("", "login", "--email", "user@example.com", "--password", "password")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Demo User <user@example.com>")

	info, err := os.Stat(h.session)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out, _, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo User <user@example.com>")
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("", "login", "--email", "user@example.com", "--password", "not-the-password")
	require.Error(t, err)
	assert.Contains(t, stderr, "login failed")
	assert.NoFileExists(t, h.session)
}

func TestPasswordFromEnv(t *testing.T) {
	h := newHarness(t)
	t.Setenv(PasswordEnv, "password")
	_, _, err := h.run("", "login", "--email", "user@example.com")
	require.NoError(t, err)
	assert.FileExists(t, h.session)
}

func TestCreateListViewRender(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, _, err := h.run(`{"type":"section","props":{"className":"hero"},"children":["Hello"]}`, "create", "--title", "Home")
	require.NoError(t, err)
	id := blueprintID.FindString(out)
	require.NotEmpty(t, id, out)

	out, _, err = h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Home")

	out, _, err = h.run("", "view", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "section"`)

	out, _, err = h.run("", "render", id)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "element"`)

	out, _, err = h.run("", "render", "--html", id)
	require.NoError(t, err)
	assert.Contains(t, out, `<section class="hero">Hello</section>`)
}

func TestCreateFromYAMLFile(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	path := filepath.Join(t.TempDir(), "page.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: div\nchildren:\n  - Hi from YAML\n"), 0o644))

	out, _, err := h.run("", "create", path)
	require.NoError(t, err)
	assert.Contains(t, out, site.DefaultTitle)
}

func TestCreateInvalidShowsPath(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, stderr, err := h.run(`{"type":"div","children":[{"type":""}]}`, "create")
	require.Error(t, err)
	assert.Contains(t, stderr, "create failed")
	assert.Contains(t, stderr, "$.children[0].type")

	out, _, err := h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No blueprints yet")
}

func TestPreviewWarnsOnMalformedNodes(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, stderr, err := h.run(`{"type":"div","children":[true,"fine"]}`, "preview")
	require.NoError(t, err)
	assert.Contains(t, out, "blueprint-error")
	assert.Contains(t, out, "fine")
	assert.Contains(t, stderr, "1 malformed node(s)")
}

func TestGenerateAndSave(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, _, err := h.run("", "generate", "a", "bakery")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "main"`)

	out, _, err = h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No blueprints yet")

	out, _, err = h.run("", "generate", "--save", "--title", "Bakery", "a bakery")
	require.NoError(t, err)
	assert.Contains(t, out, `Saved`)
	assert.Contains(t, out, `"Bakery"`)
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, _, err := h.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	assert.NoFileExists(t, h.session)

	// logging out again is harmless
	_, _, err = h.run("", "logout")
	assert.NoError(t, err)
}

func TestReadDocument(t *testing.T) {
	text, err := readDocument("-", strings.NewReader(`{"type":"p"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"type":"p"}`, text)

	path := filepath.Join(t.TempDir(), "page.yml")
	require.NoError(t, os.WriteFile(path, []byte("type: p\nprops:\n  id: intro\n"), 0o644))
	text, err = readDocument(path, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"p","props":{"id":"intro"}}`, text)

	_, err = readDocument(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}
