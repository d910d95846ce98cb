package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appshipping "github.com/shopfront/backend/internal/application/shipping"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/cache"
	"github.com/shopfront/backend/internal/infrastructure/carrier"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"github.com/shopfront/backend/internal/interfaces/http/handler"
	"github.com/shopfront/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting shopfront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Carrier aggregator client. Fails fast when neither sandbox nor
	// production credentials are configured.
	gateway, err := carrier.NewClient(&carrier.Config{
		APIBaseURL:        cfg.Carrier.APIBaseURL,
		Token:             cfg.Carrier.Token,
		SandboxAPIBaseURL: cfg.Carrier.SandboxAPIBaseURL,
		SandboxToken:      cfg.Carrier.SandboxToken,
		WebhookSecret:     cfg.Carrier.WebhookSecret,
		UserAgent:         cfg.Carrier.UserAgent,
		TimeoutSeconds:    cfg.Carrier.TimeoutSeconds,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize carrier client", zap.Error(err))
	}

	// Webhook dedupe store: Redis when reachable, in-memory otherwise
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	idempotencyStore, err := storeFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)

	// Application services
	labelService := appshipping.NewLabelService(shipmentRepo, gateway, log)
	trackingService := appshipping.NewTrackingService(shipmentRepo)
	reconcileService := appshipping.NewReconcileService(shipmentRepo, gateway, cfg.Reconcile.MaxConcurrentUpdates, log)
	webhookService := appshipping.NewWebhookService(appshipping.WebhookServiceConfig{
		WebhookSecret: cfg.Carrier.WebhookSecret,
		ShipmentRepo:  shipmentRepo,
		Gateway:       gateway,
		Idempotency:   idempotencyStore,
		Logger:        log,
	})

	jwtService := auth.NewJWTService(cfg.JWT)

	// Periodic reconciliation sweep for shipments the carrier went quiet on
	reconcileScheduler, err := scheduler.NewReconcileScheduler(reconcileService, scheduler.ReconcileSchedulerConfig{
		Enabled:    cfg.Reconcile.Enabled,
		Interval:   cfg.Reconcile.Interval,
		StaleAfter: cfg.Reconcile.StaleAfter,
		BatchLimit: cfg.Reconcile.BatchLimit,
		RunTimeout: cfg.Reconcile.RunTimeout,
	}, log)
	if err != nil {
		log.Fatal("Invalid reconciliation scheduler configuration", zap.Error(err))
	}
	if err := reconcileScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := reconcileScheduler.Stop(stopCtx); err != nil {
			log.Error("Error stopping reconciliation scheduler", zap.Error(err))
		}
	}()

	// HTTP handlers
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, log)
	webhookHandler := handler.NewCarrierWebhookHandler(webhookService, log)
	shipmentHandler := handler.NewShipmentHandler(labelService, trackingService, reconcileService, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Config{
		HTTP:            cfg.HTTP,
		Telemetry:       cfg.Telemetry,
		Logger:          log,
		JWTService:      jwtService,
		SystemHandler:   systemHandler,
		WebhookHandler:  webhookHandler,
		ShipmentHandler: shipmentHandler,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
