package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
)

// ViewSite serves a stored blueprint as a live HTML page
func (h *Handlers) ViewSite(c *gin.Context, p auth.Principal) {
	bp, err := h.store.Get(c.Request.Context(), p.UserID, c.Param("id"))
	if errors.Is(err, site.ErrNotFound) {
		h.writePage(c, http.StatusNotFound, "Site not found", statusPage("Site not found",
			"The site you are looking for does not exist or is not yours."))
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.notModified(c, bp) {
		return
	}

	root := bp.Root
	if root == nil {
		root = statusPage(bp.Title, "This site has no content yet.")
	}
	h.writePage(c, http.StatusOK, bp.Title, root)
}

func (h *Handlers) writePage(c *gin.Context, status int, title string, root *blueprint.Element) {
	tree := h.renderer.RenderNode(root)
	page, err := h.html.Page(title, tree)
	if err != nil {
		h.logger.Error("Failed to write page", zap.Error(err))
		h.respondError(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", []byte(page))
}

// statusPage is a minimal page for the viewer's non-content states
func statusPage(heading, message string) *blueprint.Element {
	return blueprint.NewElement("div",
		blueprint.NewElement("h1", blueprint.Text(heading)).WithAttr("className", "text-3xl font-bold"),
		blueprint.NewElement("p", blueprint.Text(message)).WithAttr("className", "text-gray-400"),
	).WithAttr("className", "flex flex-col justify-center items-center h-screen bg-black text-white")
}
