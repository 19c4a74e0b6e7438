package service

import (
	"fmt"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

// Explain fills the analyst-facing breakdown of a verdict into result.
func Explain(result *model.AnalysisResult, v Verdict, ml *model.MLResult) {
	if v.Hybrid && ml != nil {
		ruleScore := v.RuleScore
		result.RuleScore = &ruleScore
		result.MLDetails = &model.MLDetails{
			IsolationForestScore:    ml.Anomaly.Score,
			RandomForestProbability: ml.Classifier.Probability,
			CombinedMLScore:         ml.Score,
		}
		result.MLExplanation = &model.MLExplanation{
			IsolationForest: model.AnomalyExplanation{
				Prediction:      anomalyPrediction(ml),
				Score:           ml.Anomaly.Score,
				NormalizedScore: ml.Anomaly.Normalized,
				Interpretation:  AnomalyInterpretation(ml.AnomalyFlagged(), ml.Anomaly.Normalized),
			},
			RandomForest: model.ClassifierExplanation{
				Prediction:     classifierPrediction(ml),
				Probability:    ml.Classifier.Probability,
				Interpretation: ClassifierInterpretation(ml.Classifier.Probability),
			},
			CombinedScore:  ml.Score,
			Weight:         MLWeight,
			Contribution:   ml.Score * MLWeight,
			Interpretation: MLInterpretation(ml.Score),
		}
		result.RuleExplanation = &model.RuleExplanation{
			Score:          v.RuleScore,
			Weight:         RuleWeight,
			Contribution:   v.RuleScore * RuleWeight,
			ReasonCount:    len(v.Reasons),
			Interpretation: RuleInterpretation(v.RuleScore, len(v.Reasons)),
		}
	} else {
		result.RuleExplanation = &model.RuleExplanation{
			Score:          v.RuleScore,
			Weight:         1.0,
			Contribution:   v.RuleScore,
			ReasonCount:    len(v.Reasons),
			Interpretation: RuleInterpretation(v.RuleScore, len(v.Reasons)),
		}
	}

	result.Conclusion = &model.Conclusion{
		FinalScore:     v.FinalScore,
		FinalRiskLevel: v.RiskLevel,
		IsFraud:        v.IsFraud,
		Method:         v.Method.Description(),
		Explanation:    ConclusionExplanation(v),
	}
}

func anomalyPrediction(ml *model.MLResult) string {
	if ml.AnomalyFlagged() {
		return "Anomaly Detected"
	}
	return "Normal"
}

func classifierPrediction(ml *model.MLResult) string {
	if ml.Classifier.Label == model.FraudLabel {
		return "Fraud"
	}
	return "Normal"
}

// AnomalyInterpretation describes the anomaly detector's verdict.
func AnomalyInterpretation(flagged bool, normalized float64) string {
	if !flagged {
		return fmt.Sprintf("No anomaly detected (score: %.2f). The transaction appears normal based on historical patterns.", normalized)
	}
	switch {
	case normalized > 0.7:
		return fmt.Sprintf("Strong anomaly detected (score: %.2f). The transaction exhibits highly unusual patterns compared to normal behavior.", normalized)
	case normalized > 0.5:
		return fmt.Sprintf("Moderate anomaly detected (score: %.2f). The transaction shows some unusual characteristics.", normalized)
	default:
		return fmt.Sprintf("Minor anomaly detected (score: %.2f). The transaction has slight deviations from normal patterns.", normalized)
	}
}

// ClassifierInterpretation describes the classifier's fraud probability.
func ClassifierInterpretation(p float64) string {
	pct := p * 100
	switch {
	case p > 0.7:
		return fmt.Sprintf("High fraud probability (%.1f%%). The model is confident this transaction is fraudulent based on learned patterns.", pct)
	case p > 0.5:
		return fmt.Sprintf("Moderate fraud probability (%.1f%%). The model suggests this transaction may be fraudulent.", pct)
	case p > 0.3:
		return fmt.Sprintf("Low fraud probability (%.1f%%). The model indicates some risk but not strongly confident.", pct)
	default:
		return fmt.Sprintf("Very low fraud probability (%.1f%%). The model indicates this transaction is likely legitimate.", pct)
	}
}

// MLInterpretation describes the blended ML score.
func MLInterpretation(score float64) string {
	switch {
	case score > 0.7:
		return fmt.Sprintf("ML models indicate high fraud risk (score: %.2f). Both anomaly detection and classification models are raising concerns.", score)
	case score > 0.5:
		return fmt.Sprintf("ML models indicate moderate fraud risk (score: %.2f). At least one model has detected suspicious patterns.", score)
	case score > 0.3:
		return fmt.Sprintf("ML models indicate low fraud risk (score: %.2f). Some minor concerns detected but not strongly indicative of fraud.", score)
	default:
		return fmt.Sprintf("ML models indicate very low fraud risk (score: %.2f). Models suggest the transaction appears legitimate.", score)
	}
}

// RuleInterpretation describes the rule score and how many reasons fired.
func RuleInterpretation(score float64, reasonCount int) string {
	switch {
	case score > 0.7:
		return fmt.Sprintf("Rule-based system detected high fraud risk (score: %.2f) with %d risk factors flagged. Multiple business rules have been triggered indicating suspicious activity.", score, reasonCount)
	case score > 0.5:
		return fmt.Sprintf("Rule-based system detected moderate fraud risk (score: %.2f) with %d risk factors. Several business rules indicate potential issues.", score, reasonCount)
	case score > 0.3:
		return fmt.Sprintf("Rule-based system detected low fraud risk (score: %.2f) with %d risk factors. Some rules have been triggered but risk is manageable.", score, reasonCount)
	default:
		return fmt.Sprintf("Rule-based system indicates low fraud risk (score: %.2f) with %d risk factors. Transaction appears to meet normal business criteria.", score, reasonCount)
	}
}

// ConclusionExplanation summarises the verdict. The hybrid wording is used
// only when both sub-scores are positive.
func ConclusionExplanation(v Verdict) string {
	both := v.MLScore > 0 && v.RuleScore > 0
	level := v.RiskLevel.String()

	switch {
	case v.IsFraud && both:
		return fmt.Sprintf("This transaction has been flagged as fraudulent (score: %.2f). The hybrid approach combining ML models (contributing %.2f) and rule-based detection (contributing %.2f) indicates a %s risk level. Both systems agree this transaction requires investigation.",
			v.FinalScore, v.MLScore*MLWeight, v.RuleScore*RuleWeight, level)
	case v.IsFraud:
		return fmt.Sprintf("This transaction has been flagged as fraudulent (score: %.2f) with a %s risk level. The rule-based system has detected multiple risk factors.",
			v.FinalScore, level)
	case both:
		return fmt.Sprintf("This transaction appears legitimate (score: %.2f). The hybrid analysis shows %s risk with ML models contributing %.2f and rules contributing %.2f. No significant fraud indicators detected.",
			v.FinalScore, level, v.MLScore*MLWeight, v.RuleScore*RuleWeight)
	default:
		return fmt.Sprintf("This transaction appears legitimate (score: %.2f) with %s risk. Rule-based analysis found minimal risk factors.",
			v.FinalScore, level)
	}
}
