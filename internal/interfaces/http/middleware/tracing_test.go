package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
	})

	return sr
}

func TestTracingWithConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("disabled passes requests through untraced", func(t *testing.T) {
		sr := setupTestTracer(t)

		router := gin.New()
		router.Use(TracingWithConfig(TracingConfig{ServiceName: "test-service", Enabled: false}))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sr.Ended())
	})

	t.Run("enabled records a span per request", func(t *testing.T) {
		sr := setupTestTracer(t)

		router := gin.New()
		router.Use(TracingWithConfig(TracingConfig{ServiceName: "test-service", Enabled: true}))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, sr.Ended(), 1)
		assert.Equal(t, "GET /test", sr.Ended()[0].Name())
	})

	t.Run("span carries the request ID", func(t *testing.T) {
		sr := setupTestTracer(t)

		router := gin.New()
		router.Use(RequestID())
		router.Use(TracingWithConfig(TracingConfig{ServiceName: "test-service", Enabled: true}))
		router.Use(TracingAttributeInjector())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "req-42")
		router.ServeHTTP(w, req)

		require.Len(t, sr.Ended(), 1)
		found := false
		for _, attr := range sr.Ended()[0].Attributes() {
			if string(attr.Key) == "request_id" {
				found = true
				assert.Equal(t, "req-42", attr.Value.AsString())
			}
		}
		assert.True(t, found, "span should carry a request_id attribute")
	})

	t.Run("span carries the operator ID set by later middleware", func(t *testing.T) {
		sr := setupTestTracer(t)

		router := gin.New()
		router.Use(TracingWithConfig(TracingConfig{ServiceName: "test-service", Enabled: true}))
		router.Use(TracingAttributeInjector())
		router.GET("/test", func(c *gin.Context) {
			c.Set(ContextKeyOperatorID, "op-7")
			c.String(http.StatusOK, "ok")
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		router.ServeHTTP(w, req)

		require.Len(t, sr.Ended(), 1)
		found := false
		for _, attr := range sr.Ended()[0].Attributes() {
			if string(attr.Key) == "operator_id" {
				found = true
				assert.Equal(t, "op-7", attr.Value.AsString())
			}
		}
		assert.True(t, found, "span should carry an operator_id attribute")
	})
}
