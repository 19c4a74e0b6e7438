package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

// MeterName is the instrumentation scope of the analysis metrics.
const MeterName = "github.com/saaayf/smartmedishop/fraud"

// Recorder implements port.AnalysisMetrics with OpenTelemetry instruments.
type Recorder struct {
	analyses metric.Int64Counter
	alerts   metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
	score    metric.Float64Histogram
}

// NewRecorder creates the analysis instruments on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	analyses, err := meter.Int64Counter("fraud_analyses",
		metric.WithDescription("Transactions analyzed, by risk level and scoring method"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create analyses counter: %w", err)
	}
	alerts, err := meter.Int64Counter("fraud_alerts_raised",
		metric.WithDescription("Analyses that opened a fraud alert"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create alerts counter: %w", err)
	}
	failures, err := meter.Int64Counter("fraud_analysis_failures",
		metric.WithDescription("Analyses that returned the fail-safe verdict"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create failures counter: %w", err)
	}
	duration, err := meter.Float64Histogram("fraud_analysis_duration",
		metric.WithDescription("Time spent scoring one transaction"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create duration histogram: %w", err)
	}
	score, err := meter.Float64Histogram("fraud_score",
		metric.WithDescription("Distribution of final fraud scores"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create score histogram: %w", err)
	}

	return &Recorder{
		analyses: analyses,
		alerts:   alerts,
		failures: failures,
		duration: duration,
		score:    score,
	}, nil
}

// RecordAnalysis records one verdict.
func (r *Recorder) RecordAnalysis(ctx context.Context, result model.AnalysisResult, durationSeconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("risk_level", result.RiskLevel.String()),
		attribute.String("method", result.Method.String()),
		attribute.Bool("success", result.Success),
	)

	r.analyses.Add(ctx, 1, attrs)
	r.duration.Record(ctx, durationSeconds, attrs)

	if !result.Success {
		r.failures.Add(ctx, 1)
		return
	}

	r.score.Record(ctx, result.FraudScore, metric.WithAttributes(attribute.String("method", result.Method.String())))
	if result.RaisesAlert() {
		r.alerts.Add(ctx, 1, metric.WithAttributes(attribute.String("risk_level", result.RiskLevel.String())))
	}
}
