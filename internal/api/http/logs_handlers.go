package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/sitecraft/internal/providers/auth"
)

// maxLogEntries bounds one batch
const maxLogEntries = 100

// ClientLogEntry is a diagnostic reported by a client-side renderer
type ClientLogEntry struct {
	Level       string         `json:"level"`
	Message     string         `json:"message"`
	BlueprintID string         `json:"blueprint_id"`
	Path        string         `json:"path"`
	Reason      string         `json:"reason"`
	Context     map[string]any `json:"context"`
	Timestamp   string         `json:"timestamp"`
}

// ClientLogRequest is a batch of client diagnostics
type ClientLogRequest struct {
	Source  string           `json:"source"`
	Entries []ClientLogEntry `json:"entries"`
}

// StreamLogs accepts diagnostics from client-side renderers. Entries with a
// path are malformed-node reports and count towards the render metrics.
func (h *Handlers) StreamLogs(c *gin.Context, p auth.Principal) {
	var req ClientLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid log request format")
		return
	}
	if len(req.Entries) == 0 {
		badRequest(c, "no log entries provided")
		return
	}
	if len(req.Entries) > maxLogEntries {
		badRequest(c, "too many log entries")
		return
	}

	source := req.Source
	if source == "" {
		source = "client"
	}

	malformed := 0
	for _, entry := range req.Entries {
		if h.logClientEntry(source, p.UserID, entry) {
			malformed++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"entries_received": len(req.Entries),
		"malformed_nodes":  malformed,
		"timestamp":        time.Now().Unix(),
	})
}

// logClientEntry logs one entry and reports whether it was a malformed node
func (h *Handlers) logClientEntry(source, userID string, entry ClientLogEntry) bool {
	fields := make([]zap.Field, 0, len(entry.Context)+6)
	fields = append(fields,
		zap.String("source", source),
		zap.String("user_id", userID),
		zap.String("client_timestamp", entry.Timestamp),
	)
	if entry.BlueprintID != "" {
		fields = append(fields, zap.String("blueprint_id", entry.BlueprintID))
	}
	if entry.Path != "" {
		fields = append(fields, zap.String("path", entry.Path), zap.String("reason", entry.Reason))
	}
	for key, value := range entry.Context {
		fields = append(fields, zap.Any("ctx."+key, value))
	}

	logger := h.logger.Named("client")
	switch entry.Level {
	case "error":
		logger.Error(entry.Message, fields...)
	case "warn":
		logger.Warn(entry.Message, fields...)
	case "debug":
		logger.Debug(entry.Message, fields...)
	default:
		logger.Info(entry.Message, fields...)
	}

	if entry.Path == "" {
		return false
	}
	if h.metrics != nil {
		h.metrics.RecordMalformedNode()
	}
	return true
}
