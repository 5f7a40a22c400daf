package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/sitecraft/internal/api/middleware"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
)

// authedHandler receives the caller explicitly
type authedHandler func(c *gin.Context, p auth.Principal)

func authed(fn authedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Kind: KindUnauthorized})
			return
		}
		fn(c, p)
	}
}

// RegisterRoutes mounts every endpoint on router. requireAuth guards the
// per-user routes.
func RegisterRoutes(router gin.IRouter, h *Handlers, requireAuth gin.HandlerFunc) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics/json", h.MetricsJSON)
	router.GET("/placeholder", h.Placeholder)

	// Auth
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)

	private := router.Group("/", requireAuth)
	private.POST("/auth/logout", authed(h.Logout))
	private.GET("/auth/me", authed(h.Me))

	// Blueprints
	private.GET("/blueprints", authed(h.ListBlueprints))
	private.POST("/blueprints", authed(h.CreateBlueprint))
	private.GET("/blueprints/:id", authed(h.GetBlueprint))
	private.GET("/blueprints/:id/render", authed(h.RenderBlueprint))
	private.POST("/preview", authed(h.Preview))

	// Generation
	private.POST("/generate", authed(h.Generate))

	// Live site viewer
	private.GET("/sites/:id", authed(h.ViewSite))

	// Client-side render diagnostics
	private.POST("/logs", authed(h.StreamLogs))
}
