package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
)

// HybridDetector scores transactions with the rule scorer and, when one is
// configured, the ML scorer. If the ML scorer fails it falls back to
// rules-only scoring.
type HybridDetector struct {
	rules  *RuleScorer
	ml     port.MLScorer
	logger *slog.Logger
}

// NewHybridDetector creates a HybridDetector. A nil ml gives a rule-based detector.
func NewHybridDetector(rules *RuleScorer, ml port.MLScorer, logger *slog.Logger) *HybridDetector {
	return &HybridDetector{
		rules:  rules,
		ml:     ml,
		logger: logger,
	}
}

// MLEnabled reports whether an ML scorer is configured.
func (d *HybridDetector) MLEnabled() bool {
	return d.ml != nil
}

// Analyze scores tx. It never returns an error: a failure anywhere in the
// scoring path yields the UNKNOWN fail-safe result instead.
func (d *HybridDetector) Analyze(ctx context.Context, tx model.Transaction) (result model.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("fraud scoring panicked", slog.String("panic", fmt.Sprint(r)))
			result = model.FailedResult(fmt.Errorf("scoring failed: %v", r))
		}
	}()

	tx = tx.Sanitize()

	rule := d.rules.Score(tx)
	ml := d.scoreML(ctx, tx)
	verdict := Combine(rule, ml)

	result = model.AnalysisResult{
		Success:    true,
		IsFraud:    verdict.IsFraud,
		FraudScore: verdict.FinalScore,
		RiskLevel:  verdict.RiskLevel,
		Reasons:    verdict.Reasons,
		Confidence: min(verdict.FinalScore, 1.0),
		Method:     verdict.Method,
	}
	Explain(&result, verdict, ml)
	return result
}

func (d *HybridDetector) scoreML(ctx context.Context, tx model.Transaction) *model.MLResult {
	if d.ml == nil {
		return nil
	}

	ml, err := d.ml.Score(ctx, tx)
	if err != nil {
		d.logger.Warn("ML scoring failed, using rules-only scoring", slog.String("error", err.Error()))
		return nil
	}
	return ml
}
