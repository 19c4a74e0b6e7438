package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/service"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
)

func TestCombine_RuleOnly(t *testing.T) {
	rule := service.RuleOutcome{Score: 0.45, Reasons: []string{"User has high risk profile"}}

	v := service.Combine(rule, nil)

	assert.Equal(t, 0.45, v.FinalScore)
	assert.Equal(t, valueobject.MethodRuleBased, v.Method)
	assert.False(t, v.Hybrid)
	assert.Equal(t, valueobject.RiskLevelMedium, v.RiskLevel)
	assert.False(t, v.IsFraud, "MEDIUM is not fraud")
	assert.Equal(t, rule.Reasons, v.Reasons)
}

func TestCombine_Hybrid(t *testing.T) {
	rule := service.RuleOutcome{Score: 0.4, Reasons: []string{"Transaction made during unusual hours"}}
	ml := &model.MLResult{
		Anomaly:    model.AnomalyEstimate{Label: model.AnomalyLabel, Score: -0.3, Normalized: 0.65},
		Classifier: model.ClassifierEstimate{Label: model.FraudLabel, Probability: 0.9},
		Score:      0.8,
	}

	v := service.Combine(rule, ml)

	assert.InDelta(t, 0.68, v.FinalScore, 1e-9)
	assert.Equal(t, valueobject.MethodHybrid, v.Method)
	assert.Equal(t, valueobject.RiskLevelHigh, v.RiskLevel)
	assert.True(t, v.IsFraud)
	assert.Equal(t, []string{
		"Transaction made during unusual hours",
		"Anomaly detection flagged unusual behavior",
		"Classification model indicates fraud probability (90.0%)",
		"ML models detected suspicious pattern (score: 0.80)",
	}, v.Reasons)
	assert.Len(t, rule.Reasons, 1, "input reasons are not mutated")
}

func TestCombine_HybridQuietModelsAddNoReasons(t *testing.T) {
	ml := &model.MLResult{
		Anomaly:    model.AnomalyEstimate{Label: 1, Score: 0.2, Normalized: 0.4},
		Classifier: model.ClassifierEstimate{Label: 0, Probability: 0.5},
		Score:      0.4,
	}

	v := service.Combine(service.RuleOutcome{}, ml)

	assert.Empty(t, v.Reasons)
	assert.InDelta(t, 0.28, v.FinalScore, 1e-9)
	assert.Equal(t, valueobject.RiskLevelLow, v.RiskLevel)
}

func TestCombine_ThresholdBoundaries(t *testing.T) {
	tests := []struct {
		level   valueobject.RiskLevel
		score   float64
		isFraud bool
	}{
		{score: 1.0, level: valueobject.RiskLevelCritical, isFraud: true},
		{score: 0.7, level: valueobject.RiskLevelCritical, isFraud: true},
		{score: 0.69999, level: valueobject.RiskLevelHigh, isFraud: true},
		{score: 0.5, level: valueobject.RiskLevelHigh, isFraud: true},
		{score: 0.49999, level: valueobject.RiskLevelMedium, isFraud: false},
		{score: 0.3, level: valueobject.RiskLevelMedium, isFraud: false},
		{score: 0.29999, level: valueobject.RiskLevelLow, isFraud: false},
		{score: 0.0, level: valueobject.RiskLevelLow, isFraud: false},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			v := service.Combine(service.RuleOutcome{Score: tt.score}, nil)

			assert.Equal(t, tt.score, v.FinalScore)
			assert.Equal(t, tt.level, v.RiskLevel)
			assert.Equal(t, tt.isFraud, v.IsFraud)
		})
	}
}

func TestCombine_FinalScoreBounded(t *testing.T) {
	for _, ruleScore := range []float64{0, 0.25, 0.5, 1} {
		for _, mlScore := range []float64{0, 0.33, 0.9, 1} {
			v := service.Combine(service.RuleOutcome{Score: ruleScore}, &model.MLResult{Score: mlScore})
			assert.GreaterOrEqual(t, v.FinalScore, 0.0)
			assert.LessOrEqual(t, v.FinalScore, 1.0)
		}
	}
}
