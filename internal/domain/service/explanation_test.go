package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saaayf/smartmedishop/internal/domain/service"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
)

func TestAnomalyInterpretation(t *testing.T) {
	assert.Equal(t,
		"Strong anomaly detected (score: 0.85). The transaction exhibits highly unusual patterns compared to normal behavior.",
		service.AnomalyInterpretation(true, 0.85))
	assert.Contains(t, service.AnomalyInterpretation(true, 0.6), "Moderate anomaly detected (score: 0.60)")
	assert.Contains(t, service.AnomalyInterpretation(true, 0.5), "Minor anomaly detected (score: 0.50)")
	assert.Equal(t,
		"No anomaly detected (score: 0.90). The transaction appears normal based on historical patterns.",
		service.AnomalyInterpretation(false, 0.9))
}

func TestClassifierInterpretation(t *testing.T) {
	tests := []struct {
		prefix string
		p      float64
	}{
		{p: 0.92, prefix: "High fraud probability (92.0%)."},
		{p: 0.7, prefix: "Moderate fraud probability (70.0%)."},
		{p: 0.31, prefix: "Low fraud probability (31.0%)."},
		{p: 0.3, prefix: "Very low fraud probability (30.0%)."},
	}
	for _, tt := range tests {
		assert.Contains(t, service.ClassifierInterpretation(tt.p), tt.prefix)
	}
}

func TestMLInterpretation(t *testing.T) {
	assert.Contains(t, service.MLInterpretation(0.71), "ML models indicate high fraud risk (score: 0.71)")
	assert.Contains(t, service.MLInterpretation(0.55), "ML models indicate moderate fraud risk")
	assert.Contains(t, service.MLInterpretation(0.35), "ML models indicate low fraud risk")
	assert.Contains(t, service.MLInterpretation(0.3), "ML models indicate very low fraud risk")
}

func TestRuleInterpretation(t *testing.T) {
	assert.Equal(t,
		"Rule-based system detected high fraud risk (score: 1.00) with 5 risk factors flagged. Multiple business rules have been triggered indicating suspicious activity.",
		service.RuleInterpretation(1.0, 5))
	assert.Contains(t, service.RuleInterpretation(0.6, 2), "moderate fraud risk (score: 0.60) with 2 risk factors.")
	assert.Contains(t, service.RuleInterpretation(0.4, 1), "Some rules have been triggered")
	assert.Contains(t, service.RuleInterpretation(0, 0), "Transaction appears to meet normal business criteria.")
}

func TestConclusionExplanation(t *testing.T) {
	hybridFraud := service.Verdict{
		FinalScore: 0.68, MLScore: 0.8, RuleScore: 0.4,
		RiskLevel: valueobject.RiskLevelHigh, IsFraud: true,
	}
	assert.Equal(t,
		"This transaction has been flagged as fraudulent (score: 0.68). The hybrid approach combining ML models (contributing 0.56) and rule-based detection (contributing 0.12) indicates a HIGH risk level. Both systems agree this transaction requires investigation.",
		service.ConclusionExplanation(hybridFraud))

	ruleFraud := service.Verdict{FinalScore: 1, RuleScore: 1, RiskLevel: valueobject.RiskLevelCritical, IsFraud: true}
	assert.Equal(t,
		"This transaction has been flagged as fraudulent (score: 1.00) with a CRITICAL risk level. The rule-based system has detected multiple risk factors.",
		service.ConclusionExplanation(ruleFraud))

	hybridLegit := service.Verdict{FinalScore: 0.2, MLScore: 0.2, RuleScore: 0.2, RiskLevel: valueobject.RiskLevelLow}
	assert.Contains(t, service.ConclusionExplanation(hybridLegit),
		"The hybrid analysis shows LOW risk with ML models contributing 0.14 and rules contributing 0.06.")

	ruleLegit := service.Verdict{RiskLevel: valueobject.RiskLevelLow}
	assert.Equal(t,
		"This transaction appears legitimate (score: 0.00) with LOW risk. Rule-based analysis found minimal risk factors.",
		service.ConclusionExplanation(ruleLegit))
}
