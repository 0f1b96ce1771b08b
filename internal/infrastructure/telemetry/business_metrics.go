package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Business metric attribute keys
var (
	AttrProcedure = attribute.Key("procedure")
	AttrOperation = attribute.Key("operation")
	AttrStatus    = attribute.Key("status")
	AttrReason    = attribute.Key("reason")
)

// BusinessMetrics counts marketplace events: stored function fallbacks,
// order status changes and rejected credentials.
type BusinessMetrics struct {
	logger *zap.Logger

	procedureFallbacks *Counter
	orderTransitions   *Counter
	authFailures       *Counter
}

// BusinessMetricsConfig holds configuration for business metrics
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates the business counters on cfg.Meter
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger}

	var err error
	bm.procedureFallbacks, err = NewCounter(
		cfg.Meter,
		"marketplace_db_procedure_fallbacks_total",
		"Stored function calls that failed and were answered by the inline query",
		"{calls}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderTransitions, err = NewCounter(
		cfg.Meter,
		"marketplace_orders_transitions_total",
		"Order status changes by operation and resulting status",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.authFailures, err = NewCounter(
		cfg.Meter,
		"marketplace_auth_failures_total",
		"Rejected logins and tokens by reason",
		"{attempts}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordProcedureFallback counts a stored function that fell back to inline SQL
func (bm *BusinessMetrics) RecordProcedureFallback(ctx context.Context, procedure string) {
	bm.procedureFallbacks.Inc(ctx, AttrProcedure.String(procedure))
}

// RecordOrderTransition counts an order reaching status through operation
func (bm *BusinessMetrics) RecordOrderTransition(ctx context.Context, operation, status string) {
	bm.orderTransitions.Inc(ctx, AttrOperation.String(operation), AttrStatus.String(status))
}

// RecordAuthFailure counts a rejected credential
func (bm *BusinessMetrics) RecordAuthFailure(ctx context.Context, reason string) {
	bm.authFailures.Inc(ctx, AttrReason.String(reason))
	bm.logger.Debug("Authentication rejected", zap.String("reason", reason))
}
