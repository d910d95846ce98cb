package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns OpenTelemetry tracing middleware with default configuration
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(TracingConfig{ServiceName: "shopfront-backend", Enabled: true})
}

// TracingWithConfig returns the otelgin tracing middleware. With no tracer
// provider registered the spans are no-ops.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector enriches the request span with the request ID
// and, on operator endpoints, the authenticated operator ID. Must sit
// after TracingWithConfig; enrichment runs after the rest of the chain so
// values set by later middleware are picked up while the span is still
// open.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if requestID := c.GetString("request_id"); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}
		if operatorID := c.GetString(ContextKeyOperatorID); operatorID != "" {
			span.SetAttributes(attribute.String("operator_id", operatorID))
		}
	}
}
