package service

import (
	"context"
	"fmt"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
)

// Blend weights of the two estimators inside the ML score.
const (
	AnomalyWeight    = 0.4
	ClassifierWeight = 0.6
)

// NormalizeAnomalyScore maps a signed decision value, where lower is more
// anomalous, onto [0,1] where higher is riskier.
func NormalizeAnomalyScore(decision float64) float64 {
	return clamp01((1 - decision) / 2)
}

// BlendMLScore combines a normalized anomaly score and a fraud probability.
func BlendMLScore(normalizedAnomaly, probability float64) float64 {
	return AnomalyWeight*clamp01(normalizedAnomaly) + ClassifierWeight*clamp01(probability)
}

// EstimatorScorer implements port.MLScorer on top of a pair of pre-trained
// estimators.
type EstimatorScorer struct {
	features   *FeatureEngineer
	detector   port.AnomalyDetector
	classifier port.Classifier
}

// NewEstimatorScorer creates an EstimatorScorer.
func NewEstimatorScorer(features *FeatureEngineer, detector port.AnomalyDetector, classifier port.Classifier) *EstimatorScorer {
	return &EstimatorScorer{
		features:   features,
		detector:   detector,
		classifier: classifier,
	}
}

// Score runs both estimators on the engineered features of tx.
func (s *EstimatorScorer) Score(ctx context.Context, tx model.Transaction) (*model.MLResult, error) {
	fv := s.features.Prepare(tx)

	anomalyLabel, err := s.detector.Predict(ctx, fv)
	if err != nil {
		return nil, fmt.Errorf("anomaly prediction: %w", err)
	}
	decision, err := s.detector.DecisionFunction(ctx, fv)
	if err != nil {
		return nil, fmt.Errorf("anomaly decision function: %w", err)
	}
	fraudLabel, err := s.classifier.Predict(ctx, fv)
	if err != nil {
		return nil, fmt.Errorf("classifier prediction: %w", err)
	}
	probability, err := s.classifier.PredictProba(ctx, fv)
	if err != nil {
		return nil, fmt.Errorf("classifier probability: %w", err)
	}

	normalized := NormalizeAnomalyScore(decision)
	probability = clamp01(probability)

	return &model.MLResult{
		Anomaly: model.AnomalyEstimate{
			Label:      anomalyLabel,
			Score:      decision,
			Normalized: normalized,
		},
		Classifier: model.ClassifierEstimate{
			Label:       fraudLabel,
			Probability: probability,
		},
		Score: BlendMLScore(normalized, probability),
	}, nil
}

// clamp01 bounds v to [0,1]. NaN maps to 0.
func clamp01(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v >= 0:
		return v
	default:
		return 0
	}
}
