package model

import (
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
)

// AnalysisResult is the detector's verdict on one transaction. When the
// ML scorer did not run, RuleScore, MLDetails and MLExplanation are nil.
type AnalysisResult struct {
	RuleScore       *float64                  `json:"rule_score,omitempty"`
	MLDetails       *MLDetails                `json:"ml_details,omitempty"`
	MLExplanation   *MLExplanation            `json:"ml_explanation,omitempty"`
	RuleExplanation *RuleExplanation          `json:"rule_explanation,omitempty"`
	Conclusion      *Conclusion               `json:"conclusion,omitempty"`
	RiskLevel       valueobject.RiskLevel     `json:"risk_level"`
	Method          valueobject.ScoringMethod `json:"method,omitzero"`
	Error           string                    `json:"error,omitempty"`
	Reasons         []string                  `json:"reasons,omitzero"`
	FraudScore      float64                   `json:"fraud_score"`
	Confidence      float64                   `json:"confidence"`
	Success         bool                      `json:"success"`
	IsFraud         bool                      `json:"is_fraud"`
}

// FailedResult is the fail-safe verdict returned when scoring breaks.
func FailedResult(err error) AnalysisResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return AnalysisResult{
		Success:    false,
		Error:      msg,
		IsFraud:    false,
		FraudScore: 0.0,
		RiskLevel:  valueobject.RiskLevelUnknown,
	}
}

// RaisesAlert reports whether the verdict should open a fraud alert.
func (r AnalysisResult) RaisesAlert() bool {
	return r.Success && (r.IsFraud || r.RiskLevel.RaisesAlert())
}

// MLDetails summarises the raw ML outputs.
type MLDetails struct {
	IsolationForestScore    float64 `json:"isolation_forest_score"`
	RandomForestProbability float64 `json:"random_forest_probability"`
	CombinedMLScore         float64 `json:"combined_ml_score"`
}

// AnomalyExplanation describes the anomaly detector's contribution.
type AnomalyExplanation struct {
	Prediction      string  `json:"prediction"`
	Interpretation  string  `json:"interpretation"`
	Score           float64 `json:"score"`
	NormalizedScore float64 `json:"normalized_score"`
}

// ClassifierExplanation describes the classifier's contribution.
type ClassifierExplanation struct {
	Prediction     string  `json:"prediction"`
	Interpretation string  `json:"interpretation"`
	Probability    float64 `json:"probability"`
}

// MLExplanation is the analyst-facing breakdown of the ML score.
type MLExplanation struct {
	IsolationForest AnomalyExplanation    `json:"isolation_forest"`
	RandomForest    ClassifierExplanation `json:"random_forest"`
	Interpretation  string                `json:"interpretation"`
	CombinedScore   float64               `json:"combined_score"`
	Weight          float64               `json:"weight"`
	Contribution    float64               `json:"contribution"`
}

// RuleExplanation is the analyst-facing breakdown of the rule score.
type RuleExplanation struct {
	Interpretation string  `json:"interpretation"`
	Score          float64 `json:"score"`
	Weight         float64 `json:"weight"`
	Contribution   float64 `json:"contribution"`
	ReasonCount    int     `json:"reason_count"`
}

// Conclusion summarises the final verdict in prose.
type Conclusion struct {
	FinalRiskLevel valueobject.RiskLevel `json:"final_risk_level"`
	Method         string                `json:"method"`
	Explanation    string                `json:"explanation"`
	FinalScore     float64               `json:"final_score"`
	IsFraud        bool                  `json:"is_fraud"`
}
