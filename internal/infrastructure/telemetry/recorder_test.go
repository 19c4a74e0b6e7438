package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func counterTotal(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecorder_RecordAnalysis(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rec, err := NewRecorder(provider.Meter(MeterName))
	require.NoError(t, err)
	ctx := context.Background()

	rec.RecordAnalysis(ctx, model.AnalysisResult{
		Success:    true,
		FraudScore: 0.82,
		RiskLevel:  valueobject.RiskLevelCritical,
		Method:     valueobject.MethodHybrid,
		IsFraud:    true,
	}, 0.004)
	rec.RecordAnalysis(ctx, model.AnalysisResult{
		Success:    true,
		FraudScore: 0.1,
		RiskLevel:  valueobject.RiskLevelLow,
		Method:     valueobject.MethodRuleBased,
	}, 0.001)
	rec.RecordAnalysis(ctx, model.FailedResult(assert.AnError), 0.002)

	metrics := collect(t, reader)

	assert.Equal(t, int64(3), counterTotal(t, metrics["fraud_analyses"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["fraud_alerts_raised"]))
	assert.Equal(t, int64(1), counterTotal(t, metrics["fraud_analysis_failures"]))

	hist, ok := metrics["fraud_score"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestRecorder_NoopMeter(t *testing.T) {
	rec, err := NewRecorder(noop.NewMeterProvider().Meter(MeterName))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		rec.RecordAnalysis(context.Background(), model.FailedResult(nil), 0)
	})
}
