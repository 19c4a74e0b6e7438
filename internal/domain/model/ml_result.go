package model

// AnomalyLabel is the isolation forest's outlier label.
const AnomalyLabel = -1

// FraudLabel is the classifier's positive label.
const FraudLabel = 1

// AnomalyEstimate is the anomaly detector's verdict for one transaction.
type AnomalyEstimate struct {
	Label      int
	Score      float64 // raw decision value, lower is more anomalous
	Normalized float64 // mapped into [0,1], higher is riskier
}

// ClassifierEstimate is the fraud classifier's verdict for one transaction.
type ClassifierEstimate struct {
	Label       int
	Probability float64
}

// MLResult is the blended output of the optional ML scorer.
type MLResult struct {
	Anomaly    AnomalyEstimate
	Classifier ClassifierEstimate
	Score      float64
}

// AnomalyFlagged reports whether the detector labelled the transaction an outlier.
func (r MLResult) AnomalyFlagged() bool {
	return r.Anomaly.Label == AnomalyLabel
}

// FeatureVector is the engineered input handed to the estimators.
// Categorical values are sent raw; the model server owns their encoding.
type FeatureVector struct {
	Numeric     map[string]float64 `json:"numeric"`
	Categorical map[string]string  `json:"categorical"`
}
