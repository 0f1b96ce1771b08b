package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for GORM query spans.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound values in db.statement; leave off outside development.
	LogFullSQL bool
	DBName     string
	// Provider overrides the global tracer provider.
	Provider trace.TracerProvider
}

// DefaultDBTracingConfig returns tracing disabled with masked query values.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{DBName: "marketplace"}
}

// RegisterDBTracing installs the otelgorm plugin on db.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(cfg.DBName),
		otelgorm.WithoutMetrics(),
	}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.Provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.Provider))
	}

	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	logger.Info("Database tracing enabled", zap.Bool("log_full_sql", cfg.LogFullSQL))
	return nil
}
