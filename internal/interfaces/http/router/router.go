package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// Config collects everything the router needs to wire up the HTTP surface
type Config struct {
	HTTP       config.HTTPConfig
	Telemetry  config.TelemetryConfig
	Logger     *zap.Logger
	JWTService *auth.JWTService

	SystemHandler   *handler.SystemHandler
	WebhookHandler  *handler.CarrierWebhookHandler
	ShipmentHandler *handler.ShipmentHandler
}

// New builds the gin engine with all middleware and routes registered.
// The webhook endpoint sits outside the authenticated API group: the
// carrier authenticates with an HMAC signature, not a bearer token.
func New(cfg Config) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.HTTP.RateLimitEnabled {
		rl := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rl))
	}

	engine.GET("/health", cfg.SystemHandler.Health)

	webhooks := engine.Group("/webhooks")
	webhooks.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	webhooks.POST("/carrier", cfg.WebhookHandler.Handle)

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	{
		// Storefront-facing: quoting and tracking lookups need no operator token
		shipments := v1.Group("/shipments")
		shipments.POST("/quote", cfg.ShipmentHandler.Quote)
		shipments.GET("/tracking", cfg.ShipmentHandler.Tracking)

		// Back-office: shipment creation and manual reconcile are operator actions
		operator := shipments.Group("")
		operator.Use(middleware.JWTAuth(cfg.JWTService))
		operator.POST("", cfg.ShipmentHandler.Create)
		operator.POST("/reconcile", cfg.ShipmentHandler.Reconcile)
	}

	return engine
}
