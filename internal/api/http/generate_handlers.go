package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
	"github.com/GriffinCanCode/sitecraft/internal/shared/inflight"
)

// GenerateRequest asks for a blueprint from a description
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse carries the generated tree and the same tree as indented
// editing text. Nothing is stored.
type GenerateResponse struct {
	Root          *blueprint.Element `json:"root"`
	BlueprintJSON string             `json:"blueprint_json"`
	Backend       string             `json:"backend"`
}

// Generate turns a prompt into a validated blueprint
func (h *Handlers) Generate(c *gin.Context, p auth.Principal) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	var root *blueprint.Element
	err := h.guard.Do(inflight.Key(p.UserID, "generate"), func() error {
		var err error
		root, err = h.generator.Generate(c.Request.Context(), req.Prompt)
		return err
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	text, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Root:          root,
		BlueprintJSON: string(text),
		Backend:       h.generator.Backend(),
	})
}
