package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs a recording tracer provider for the test
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func tracingRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Tracing(), SpanErrorMarker())
	router.GET("/api/v1/tracking/table", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/api/v1/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("store down"))
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/api/v1/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestTracing_RecordsServerSpan(t *testing.T) {
	sr := setupTestTracer(t)
	w := serve(tracingRouter(), http.MethodGet, "/api/v1/tracking/table", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, http.StatusOK, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Contains(t, span.Name(), "/api/v1/tracking/table")
	assert.NotEqual(t, codes.Error, span.Status().Code)

	id, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-1", id.AsString())
}

func TestTracing_SkipsHealth(t *testing.T) {
	sr := setupTestTracer(t)
	serve(tracingRouter(), http.MethodGet, "/health", nil)
	assert.Empty(t, sr.Ended())
}

func TestSpanErrorMarker(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracingRouter()

	serve(router, http.MethodGet, "/api/v1/broken", nil)
	serve(router, http.MethodGet, "/api/v1/missing", nil)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	msg, ok := spanAttr(spans[0], "error.message")
	require.True(t, ok)
	assert.Equal(t, "store down", msg.AsString())

	assert.NotEqual(t, codes.Error, spans[1].Status().Code, "client errors do not fail the span")
	status, ok := spanAttr(spans[1], "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := newTestRouter(TracingWithConfig(TracingConfig{Enabled: false}))
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", nil).Code)
	assert.Empty(t, sr.Ended())
}
