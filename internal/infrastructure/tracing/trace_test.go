package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStartSpanPropagatesTrace(t *testing.T) {
	tracer := New("test", zap.NewNop())
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	child, ctx := tracer.StartSpan(ctx, "child")

	assert.NotEmpty(t, root.TraceID)
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(ctx))
	assert.Equal(t, root.TraceID, GetTraceID(ctx))
}

func TestExtractTraceContextRejectsJunk(t *testing.T) {
	traceID, spanID := ExtractTraceContext(map[string]string{
		TraceHeader: "req_01HZX3V6QA0YF7C3V2E4D9R1XM",
		SpanHeader:  "bad value\r\nX-Injected: 1",
	})
	assert.Equal(t, TraceID("req_01HZX3V6QA0YF7C3V2E4D9R1XM"), traceID)
	assert.Empty(t, spanID)
}

func TestHeaders(t *testing.T) {
	ctx := WithTraceID(context.Background(), "trace-1")
	assert.Equal(t, map[string]string{TraceHeader: "trace-1"}, Headers(ctx))
	assert.Empty(t, Headers(context.Background()))
}

func TestSetError(t *testing.T) {
	span := &Span{Tags: map[string]string{}}
	span.SetStatus(502)
	span.SetError(errors.New("upstream"))
	assert.Equal(t, 502, span.StatusCode)

	span = &Span{Tags: map[string]string{}}
	span.SetError(errors.New("boom"))
	assert.Equal(t, 500, span.StatusCode)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	tracer := New("test", zap.New(core))

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/ping", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceHeader, "incoming-trace")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, TraceID("incoming-trace"), seen)
	assert.Equal(t, "incoming-trace", rec.Header().Get(TraceHeader))
	assert.NotEmpty(t, rec.Header().Get(SpanHeader))

	tracer.Close()
	require.Eventually(t, func() bool {
		return logs.FilterMessage("span completed").Len() == 1
	}, time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("span completed").All()[0]
	assert.Equal(t, "GET /ping", entry.ContextMap()["operation"])
	assert.Equal(t, "204", entry.ContextMap()["http.status"])
}
