package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func newManualBusinessMetrics(t *testing.T) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	bm, err := NewBusinessMetrics(BusinessMetricsConfig{Meter: provider.Meter("test"), Logger: zap.NewNop()})
	require.NoError(t, err)
	return bm, reader
}

// counterValue returns the sum recorded on name for the data point carrying attrs
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	want := attribute.NewSet(attrs...)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if dp.Attributes.Equals(&want) {
					return dp.Value
				}
			}
		}
	}
	return 0
}

func TestNewBusinessMetrics(t *testing.T) {
	bm, err := NewBusinessMetrics(BusinessMetricsConfig{Meter: noop.NewMeterProvider().Meter("test")})
	require.NoError(t, err)
	require.NotNil(t, bm)

	ctx := context.Background()
	bm.RecordProcedureFallback(ctx, "usp_get_order_details")
	bm.RecordOrderTransition(ctx, "claim", "Dispatched")
	bm.RecordAuthFailure(ctx, "wrong_password")
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := NewBusinessMetrics(BusinessMetricsConfig{})
	assert.ErrorIs(t, err, ErrMeterNil)
	assert.Nil(t, bm)
}

func TestBusinessMetrics_Counters(t *testing.T) {
	bm, reader := newManualBusinessMetrics(t)
	ctx := context.Background()

	bm.RecordProcedureFallback(ctx, "usp_get_order_details")
	bm.RecordProcedureFallback(ctx, "usp_get_order_details")
	bm.RecordProcedureFallback(ctx, "usp_reactions_upsert")
	bm.RecordOrderTransition(ctx, "claim", "Dispatched")
	bm.RecordAuthFailure(ctx, "wrong_password")

	assert.Equal(t, int64(2), counterValue(t, reader, "marketplace_db_procedure_fallbacks_total", AttrProcedure.String("usp_get_order_details")))
	assert.Equal(t, int64(1), counterValue(t, reader, "marketplace_db_procedure_fallbacks_total", AttrProcedure.String("usp_reactions_upsert")))
	assert.Equal(t, int64(1), counterValue(t, reader, "marketplace_orders_transitions_total",
		AttrOperation.String("claim"), AttrStatus.String("Dispatched")))
	assert.Equal(t, int64(1), counterValue(t, reader, "marketplace_auth_failures_total", AttrReason.String("wrong_password")))
	assert.Zero(t, counterValue(t, reader, "marketplace_auth_failures_total", AttrReason.String("revoked_token")))
}
