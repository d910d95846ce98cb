// Package telemetry wires OpenTelemetry instrumentation into the
// infrastructure layer.
package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database query tracing
type DBTracingConfig struct {
	Enabled    bool
	LogFullSQL bool // include query variables in spans (dev only)
}

// RegisterDBTracing attaches the otelgorm plugin to the given GORM handle
// so every query runs inside a span of the surrounding request trace.
// Query variables are stripped from the recorded SQL unless LogFullSQL is
// set.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("database query tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName("postgresql"),
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("database query tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL))
	return nil
}
