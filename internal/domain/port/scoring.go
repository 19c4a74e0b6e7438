package port

import (
	"context"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

// MLScorer is the optional machine-learning collaborator of the detector.
type MLScorer interface {
	// Score returns the blended ML estimate for tx.
	Score(ctx context.Context, tx model.Transaction) (*model.MLResult, error)
}

// AnomalyDetector is a pre-trained outlier model.
type AnomalyDetector interface {
	// Predict returns -1 for an outlier and 1 otherwise.
	Predict(ctx context.Context, features model.FeatureVector) (int, error)

	// DecisionFunction returns the signed decision value; lower is more anomalous.
	DecisionFunction(ctx context.Context, features model.FeatureVector) (float64, error)
}

// Classifier is a pre-trained binary fraud classifier.
type Classifier interface {
	// Predict returns 1 for fraud and 0 otherwise.
	Predict(ctx context.Context, features model.FeatureVector) (int, error)

	// PredictProba returns the probability of the fraud class.
	PredictProba(ctx context.Context, features model.FeatureVector) (float64, error)
}
