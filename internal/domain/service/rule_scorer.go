package service

import (
	"fmt"
	"math"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

// RuleOutcome is the result of the rule scorer: a score in [0,1] and the
// reasons of every heuristic that fired, in evaluation order.
type RuleOutcome struct {
	Reasons []string
	Score   float64
}

// heuristic inspects a transaction and reports the increment it contributes.
type heuristic struct {
	eval func(tx model.Transaction) (weight float64, reason string, fired bool)
	name string
}

// RuleScorer sums a fixed, ordered set of independent heuristics and clamps
// the total to 1.0. Overlapping heuristics saturate rather than renormalize.
type RuleScorer struct {
	heuristics []heuristic
}

// NewRuleScorer creates a RuleScorer with the business heuristics.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{heuristics: defaultHeuristics()}
}

// Score evaluates every heuristic against tx.
func (s *RuleScorer) Score(tx model.Transaction) RuleOutcome {
	var (
		score   float64
		reasons []string
	)

	for _, h := range s.heuristics {
		weight, reason, fired := h.eval(tx)
		if !fired {
			continue
		}
		score += weight
		reasons = append(reasons, reason)
	}

	return RuleOutcome{
		Score:   math.Min(score, 1.0),
		Reasons: reasons,
	}
}

func defaultHeuristics() []heuristic {
	return []heuristic{
		{name: "amount_deviation", eval: amountDeviation},
		{name: "above_historical_max", eval: func(tx model.Transaction) (float64, string, bool) {
			fired := tx.UserAverageAmount > 0 &&
				tx.UserMaxTransactionAmount > 0 &&
				tx.Amount > tx.UserMaxTransactionAmount*1.5
			return 0.3, "Amount exceeds user's historical maximum by 50%", fired
		}},
		{name: "new_user_high_amount", eval: func(tx model.Transaction) (float64, string, bool) {
			return 0.2, "High amount for new user", tx.UserAverageAmount <= 0 && tx.Amount > 1000
		}},
		{name: "new_user_very_high_amount", eval: func(tx model.Transaction) (float64, string, bool) {
			return 0.3, "Very high amount for new user", tx.UserAverageAmount <= 0 && tx.Amount > 5000
		}},
		{name: "risk_profile", eval: func(tx model.Transaction) (float64, string, bool) {
			switch tx.UserRiskProfile {
			case "HIGH":
				return 0.2, "User has high risk profile", true
			case "CRITICAL":
				return 0.3, "User has critical risk profile", true
			default:
				return 0, "", false
			}
		}},
		{name: "fraud_history", eval: func(tx model.Transaction) (float64, string, bool) {
			n := tx.UserFraudCount
			return 0.1 * float64(n), fmt.Sprintf("User has %d previous fraud incidents", n), n > 0
		}},
		{name: "transaction_history", eval: func(tx model.Transaction) (float64, string, bool) {
			switch {
			case tx.UserTotalTransactions < 5:
				return 0.2, "User has limited transaction history", true
			case tx.UserTotalTransactions < 10:
				return 0.1, "User is relatively new", true
			default:
				return 0, "", false
			}
		}},
		{name: "unusual_hours", eval: func(tx model.Transaction) (float64, string, bool) {
			return 0.2, "Transaction made during unusual hours", isNightHour(tx.Hour)
		}},
		{name: "high_frequency", eval: func(tx model.Transaction) (float64, string, bool) {
			return 0.3, "High transaction frequency detected", tx.TransactionCount24h > 10
		}},
		{name: "very_high_frequency", eval: func(tx model.Transaction) (float64, string, bool) {
			return 0.2, "Very high transaction frequency", tx.TransactionCount24h > 20
		}},
		{name: "account_age", eval: func(tx model.Transaction) (float64, string, bool) {
			switch days := tx.AccountAgeDays(); {
			case days < 1:
				return 0.3, "Brand new user", true
			case days < 7:
				return 0.2, "New user with limited history", true
			default:
				return 0, "", false
			}
		}},
		{name: "large_mobile", eval: func(tx model.Transaction) (float64, string, bool) {
			return 0.1, "Large mobile transaction", tx.DeviceType == "mobile" && tx.Amount > 500
		}},
		{name: "international", eval: func(tx model.Transaction) (float64, string, bool) {
			international := tx.LocationCountry == "FR" || tx.LocationCountry == "DE"
			return 0.1, "International transaction", international && tx.Amount > 200
		}},
		{name: "underage", eval: func(tx model.Transaction) (float64, string, bool) {
			age, known := tx.Age()
			return 0.2, fmt.Sprintf("Underage user (age: %d years)", age), known && age < 18
		}},
	}
}

// amountDeviation scores how far the amount strays from the user's average.
// Only the highest matching tier contributes.
func amountDeviation(tx model.Transaction) (float64, string, bool) {
	avg := tx.UserAverageAmount
	if avg <= 0 {
		return 0, "", false
	}

	deviation := math.Abs(tx.Amount-avg) / avg
	reason := fmt.Sprintf("Amount %.1fx higher than user's typical $%.2f", deviation, avg)

	switch {
	case deviation > 3.0:
		return 0.4, reason, true
	case deviation > 2.0:
		return 0.3, reason, true
	case deviation > 1.5:
		return 0.2, reason, true
	default:
		return 0, "", false
	}
}

func isNightHour(hour int) bool {
	return hour >= 22 || (hour >= 0 && hour <= 5)
}
