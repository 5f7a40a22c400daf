package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/domain/blueprint"
	"github.com/GriffinCanCode/sitecraft/internal/domain/generation"
	"github.com/GriffinCanCode/sitecraft/internal/domain/site"
	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
	"github.com/GriffinCanCode/sitecraft/internal/shared/inflight"
)

// Error kinds
const (
	KindValidation   = "validation"
	KindGeneration   = "generation"
	KindNotFound     = "not_found"
	KindBusy         = "busy"
	KindBadRequest   = "bad_request"
	KindUnauthorized = "unauthorized"
	KindConflict     = "conflict"
	KindInternal     = "internal"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Path      string `json:"path,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// classify maps a domain error to a status code and response body
func classify(err error) (int, ErrorResponse) {
	var (
		ve *blueprint.ValidationError
		ge *generation.GenerationError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ErrorResponse{Error: ve.UserMessage(), Kind: KindValidation, Path: ve.Path}

	case errors.As(err, &ge):
		resp := ErrorResponse{Error: ge.Message, Kind: KindGeneration, Reason: string(ge.Reason), Retryable: ge.Retryable()}
		switch ge.Reason {
		case generation.ReasonEmptyPrompt, generation.ReasonInvalidPrompt:
			return http.StatusBadRequest, resp
		case generation.ReasonUnavailable:
			return http.StatusServiceUnavailable, resp
		case generation.ReasonTimeout:
			return http.StatusGatewayTimeout, resp
		default:
			return http.StatusBadGateway, resp
		}

	case errors.Is(err, site.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: KindNotFound}

	case errors.Is(err, inflight.ErrBusy):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Kind: KindBusy}

	case errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: KindValidation}

	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Kind: KindConflict}

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Kind: KindUnauthorized}

	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Kind: KindInternal}
	}
}

// respondError writes err as JSON. Unclassified errors are logged and hidden.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg, Kind: KindBadRequest})
}
