package ml

import (
	"context"
	"log/slog"
	"math"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

// StubEstimators is a deterministic stand-in for the trained models, used
// in development when no model server is running. It derives a risk in
// [0,1] from a handful of engineered features and reports it through both
// estimator interfaces.
type StubEstimators struct {
	logger *slog.Logger
}

// NewStubEstimators creates the stub estimators.
func NewStubEstimators(logger *slog.Logger) *StubEstimators {
	return &StubEstimators{logger: logger}
}

// AnomalyDetector returns the stub outlier model.
func (s *StubEstimators) AnomalyDetector() *StubDetector {
	return &StubDetector{stub: s}
}

// Classifier returns the stub fraud classifier.
func (s *StubEstimators) Classifier() *StubClassifier {
	return &StubClassifier{stub: s}
}

func (s *StubEstimators) risk(ctx context.Context, features model.FeatureVector) float64 {
	s.logger.DebugContext(ctx, "stub ML prediction requested",
		slog.Int("feature_count", len(features.Numeric)+len(features.Categorical)),
	)

	n := features.Numeric
	amount := math.Min(n["amount_log"]/math.Log1p(10000), 1)
	r := 0.3*n["is_night"] + 0.25*n["new_user"] + 0.2*n["high_frequency"] + 0.25*amount
	return math.Max(0, math.Min(r, 1))
}

// StubDetector implements port.AnomalyDetector.
type StubDetector struct {
	stub *StubEstimators
}

// Predict flags transactions whose decision value is negative.
func (d *StubDetector) Predict(ctx context.Context, features model.FeatureVector) (int, error) {
	v, _ := d.DecisionFunction(ctx, features)
	if v < 0 {
		return model.AnomalyLabel, nil
	}
	return 1, nil
}

// DecisionFunction maps risk r to 1-2r so that it normalizes back to r.
func (d *StubDetector) DecisionFunction(ctx context.Context, features model.FeatureVector) (float64, error) {
	return 1 - 2*d.stub.risk(ctx, features), nil
}

// StubClassifier implements port.Classifier.
type StubClassifier struct {
	stub *StubEstimators
}

// Predict labels transactions with probability at least 0.5 as fraud.
func (c *StubClassifier) Predict(ctx context.Context, features model.FeatureVector) (int, error) {
	p, _ := c.PredictProba(ctx, features)
	if p >= 0.5 {
		return model.FraudLabel, nil
	}
	return 0, nil
}

// PredictProba returns the stub risk as the fraud probability.
func (c *StubClassifier) PredictProba(ctx context.Context, features model.FeatureVector) (float64, error) {
	return c.stub.risk(ctx, features), nil
}
