package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/render"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/seeding"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
	"github.com/GriffinCanCode/sitecraft/internal/shared/inflight"
	"github.com/GriffinCanCode/sitecraft/internal/shared/utils"
)

// CreateBlueprintRequest carries the editor contents. BlueprintJSON is the
// raw editing text; Root is the same document embedded as JSON. Exactly one
// is expected; BlueprintJSON wins if both are sent.
type CreateBlueprintRequest struct {
	Title         string          `json:"title"`
	BlueprintJSON *string         `json:"blueprint_json"`
	Root          json.RawMessage `json:"root"`
}

// text returns the blueprint document to parse
func (r CreateBlueprintRequest) text() ([]byte, bool) {
	if r.BlueprintJSON != nil {
		return []byte(*r.BlueprintJSON), true
	}
	if len(r.Root) > 0 && string(r.Root) != "null" {
		return r.Root, true
	}
	return nil, false
}

// RenderResponse is the display tree of a stored blueprint
type RenderResponse struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Tree   *render.Element `json:"tree"`
	Errors int             `json:"errors"`
}

// ListBlueprints lists the caller's blueprints, newest first
func (h *Handlers) ListBlueprints(c *gin.Context, p auth.Principal) {
	bps, err := h.store.List(c.Request.Context(), p.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	summaries := make([]site.Summary, 0, len(bps))
	for _, bp := range bps {
		summaries = append(summaries, bp.Summary())
	}

	c.JSON(http.StatusOK, gin.H{
		"blueprints": summaries,
		"count":      len(summaries),
	})
}

// CreateBlueprint validates and stores a blueprint. A second create by the
// same caller while one is outstanding is refused.
func (h *Handlers) CreateBlueprint(c *gin.Context, p auth.Principal) {
	var req CreateBlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	text, ok := req.text()
	if !ok {
		h.respondError(c, &blueprint.ValidationError{Reason: "blueprint_json or root is required"})
		return
	}

	var created *site.Blueprint
	err := h.guard.Do(inflight.Key(p.UserID, "create"), func() error {
		var err error
		created, err = h.store.CreateFromJSON(c.Request.Context(), p.UserID, req.Title, text)
		return err
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetBlueprint returns one of the caller's blueprints
func (h *Handlers) GetBlueprint(c *gin.Context, p auth.Principal) {
	bp, err := h.store.Get(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.notModified(c, bp) {
		return
	}
	c.JSON(http.StatusOK, bp)
}

// notModified sets the blueprint's ETag and answers 304 when the client
// already holds it. Stored blueprints never change, so the tag is stable.
func (h *Handlers) notModified(c *gin.Context, bp *site.Blueprint) bool {
	etag, err := h.hasher.ETag(bp)
	if err != nil {
		h.logger.Warn("Failed to compute ETag", zap.String("blueprint_id", bp.ID), zap.Error(err))
		return false
	}
	c.Header("ETag", etag)
	if utils.MatchesETag(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// RenderBlueprint returns the display tree of a stored blueprint, or its
// HTML fragment with ?format=html.
func (h *Handlers) RenderBlueprint(c *gin.Context, p auth.Principal) {
	bp, err := h.store.Get(c.Request.Context(), p.UserID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	tree := h.renderer.RenderNode(bp.Root)
	if c.Query("format") == "html" {
		h.writeFragment(c, tree)
		return
	}

	c.JSON(http.StatusOK, RenderResponse{
		ID:     bp.ID,
		Title:  bp.Title,
		Tree:   tree,
		Errors: len(tree.Errors()),
	})
}

// Preview renders posted blueprint text without storing it. The document
// only has to be valid JSON: malformed nodes become error placeholders.
func (h *Handlers) Preview(c *gin.Context, _ auth.Principal) {
	var req CreateBlueprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	text, ok := req.text()
	if !ok {
		h.respondError(c, &blueprint.ValidationError{Reason: "blueprint_json or root is required"})
		return
	}

	v, err := blueprint.Decode(text, h.limits)
	if err != nil {
		h.respondError(c, err)
		return
	}

	tree := h.renderer.Render(v)
	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, RenderResponse{Title: req.Title, Tree: tree, Errors: len(tree.Errors())})
		return
	}
	h.writeFragment(c, tree)
}

// Placeholder returns the starter blueprint for the editor
func (h *Handlers) Placeholder(c *gin.Context) {
	c.JSON(http.StatusOK, seeding.Placeholder())
}

func (h *Handlers) writeFragment(c *gin.Context, tree *render.Element) {
	fragment, err := h.html.Fragment(tree)
	if err != nil {
		h.logger.Error("Failed to write fragment", zap.Error(err))
		h.respondError(c, err)
		return
	}
	c.Header("X-Blueprint-Errors", strconv.Itoa(len(tree.Errors())))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fragment))
}
