package model

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/saaayf/smartmedishop/internal/domain/event"
	"github.com/saaayf/smartmedishop/pkg/events"
)

var transactionRefPattern = regexp.MustCompile(`^TXN_\d{8}_\d{6}_\d{4}$`)

// NewTransactionRef formats the public transaction identifier,
// TXN_YYYYMMDD_HHMMSS_NNNN, for a transaction received at at.
func NewTransactionRef(at time.Time, seq int) string {
	return fmt.Sprintf("TXN_%s_%04d", at.Format("20060102_150405"), seq%10000)
}

// ValidTransactionRef reports whether s is a well-formed transaction identifier.
func ValidTransactionRef(s string) bool {
	return transactionRefPattern.MatchString(s)
}

// FraudAnalysis is the aggregate root recording one scored transaction and
// the alert it may have opened.
type FraudAnalysis struct {
	createdAt      time.Time
	alert          *FraudAlert
	transactionRef string
	collector      events.EventCollector
	transaction    Transaction
	result         AnalysisResult
	id             uuid.UUID
}

// NewFraudAnalysis records the verdict for a transaction. HIGH and CRITICAL
// verdicts also open a pending alert.
func NewFraudAnalysis(transactionRef string, tx Transaction, result AnalysisResult, now time.Time) (*FraudAnalysis, error) {
	if !ValidTransactionRef(transactionRef) {
		return nil, fmt.Errorf("invalid transaction id: %q", transactionRef)
	}

	a := &FraudAnalysis{
		id:             uuid.New(),
		transactionRef: transactionRef,
		transaction:    tx,
		result:         result,
		createdAt:      now,
	}

	a.collector.Record(event.NewTransactionAnalyzed(
		a.id, transactionRef, result.Success, result.FraudScore,
		result.RiskLevel.String(), result.Method.String(),
		result.IsFraud, result.Reasons, now,
	))

	if result.RaisesAlert() {
		a.alert = newFraudAlert(a.id, transactionRef, result, now)
		a.collector.Record(event.NewAlertRaised(
			a.alert.ID(), a.id, transactionRef, result.FraudScore,
			result.RiskLevel.String(), result.Reasons, now,
		))
	}

	return a, nil
}

// ReconstructAnalysis rebuilds a FraudAnalysis from persisted data (no validation, no events).
func ReconstructAnalysis(
	id uuid.UUID,
	transactionRef string,
	tx Transaction,
	result AnalysisResult,
	alert *FraudAlert,
	createdAt time.Time,
) *FraudAnalysis {
	return &FraudAnalysis{
		id:             id,
		transactionRef: transactionRef,
		transaction:    tx,
		result:         result,
		alert:          alert,
		createdAt:      createdAt,
	}
}

func (a *FraudAnalysis) ID() uuid.UUID            { return a.id }
func (a *FraudAnalysis) TransactionRef() string   { return a.transactionRef }
func (a *FraudAnalysis) Transaction() Transaction { return a.transaction }
func (a *FraudAnalysis) Result() AnalysisResult   { return a.result }
func (a *FraudAnalysis) CreatedAt() time.Time     { return a.createdAt }

// Alert returns the alert opened by this analysis, or nil.
func (a *FraudAnalysis) Alert() *FraudAlert { return a.alert }

// DomainEvents returns all accumulated domain events and clears them.
func (a *FraudAnalysis) DomainEvents() []events.DomainEvent {
	return a.collector.ClearEvents()
}
