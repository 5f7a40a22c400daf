package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/generation"
	"github.com/GriffinCanCode/sitecraft/internal/domain/render"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
	"github.com/GriffinCanCode/sitecraft/internal/shared/inflight"
	"github.com/GriffinCanCode/sitecraft/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Deps are the collaborators the handlers need
type Deps struct {
	Store     *site.Manager
	Generator *generation.Service
	Renderer  *render.Renderer
	HTML      *render.HTMLWriter
	Auth      *auth.Provider
	Guard     *inflight.Guard
	Metrics   *monitoring.Metrics
	Logger    *zap.Logger
	Limits    blueprint.ParseOptions
	StoreName string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store     *site.Manager
	generator *generation.Service
	renderer  *render.Renderer
	html      *render.HTMLWriter
	auth      *auth.Provider
	guard     *inflight.Guard
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	limits    blueprint.ParseOptions
	storeName string
	hasher    *utils.Hasher
}

// NewHandlers creates a new handler set
func NewHandlers(deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	guard := deps.Guard
	if guard == nil {
		guard = inflight.New()
	}
	htmlWriter := deps.HTML
	if htmlWriter == nil {
		htmlWriter = render.NewHTMLWriter()
	}
	return &Handlers{
		store:     deps.Store,
		generator: deps.Generator,
		renderer:  deps.Renderer,
		html:      htmlWriter,
		auth:      deps.Auth,
		guard:     guard,
		metrics:   deps.Metrics,
		logger:    logger.Named("http"),
		limits:    deps.Limits,
		storeName: deps.StoreName,
		hasher:    utils.DefaultHasher(),
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "sitecraft",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"store":      h.storeName,
		"generation": h.generator.Backend(),
		"pending":    h.guard.Len(),
	})
}

// MetricsJSON returns the current metric snapshot
func (h *Handlers) MetricsJSON(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, monitoring.Snapshot{})
		return
	}
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
