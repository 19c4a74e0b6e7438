package service

import (
	"fmt"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
)

// Weights of the hybrid blend.
const (
	MLWeight   = 0.7
	RuleWeight = 0.3
)

// Reasons appended when the ML scorer ran.
const (
	reasonAnomalyFlagged = "Anomaly detection flagged unusual behavior"
	reasonClassifierFmt  = "Classification model indicates fraud probability (%.1f%%)"
	reasonMLPatternFmt   = "ML models detected suspicious pattern (score: %.2f)"
)

// Verdict is the combined decision on one transaction.
type Verdict struct {
	RiskLevel  valueobject.RiskLevel
	Method     valueobject.ScoringMethod
	Reasons    []string
	FinalScore float64
	RuleScore  float64
	MLScore    float64
	IsFraud    bool
	Hybrid     bool
}

// Combine blends the rule outcome with the optional ML result. A nil ml
// yields the rule score unchanged.
func Combine(rule RuleOutcome, ml *model.MLResult) Verdict {
	reasons := make([]string, 0, len(rule.Reasons)+3)
	reasons = append(reasons, rule.Reasons...)

	v := Verdict{
		RuleScore:  rule.Score,
		FinalScore: rule.Score,
		Method:     valueobject.MethodRuleBased,
	}

	if ml != nil {
		v.Hybrid = true
		v.Method = valueobject.MethodHybrid
		v.MLScore = ml.Score
		v.FinalScore = MLWeight*ml.Score + RuleWeight*rule.Score

		if ml.AnomalyFlagged() {
			reasons = append(reasons, reasonAnomalyFlagged)
		}
		if p := ml.Classifier.Probability; p > 0.5 {
			reasons = append(reasons, fmt.Sprintf(reasonClassifierFmt, p*100))
		}
		if ml.Score > 0.4 {
			reasons = append(reasons, fmt.Sprintf(reasonMLPatternFmt, ml.Score))
		}
	}

	v.FinalScore = clamp01(v.FinalScore)
	v.RiskLevel = valueobject.RiskLevelFromScore(v.FinalScore)
	v.IsFraud = v.RiskLevel.IsFraud()
	v.Reasons = reasons
	return v
}
