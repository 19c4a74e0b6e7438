package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/saaayf/smartmedishop/pkg/events"
)

// AggregateType is the aggregate every fraud event belongs to.
const AggregateType = "FraudAnalysis"

const (
	// EventTypeTransactionAnalyzed is emitted for every scored transaction.
	EventTypeTransactionAnalyzed = "fraud.transaction.analyzed"

	// EventTypeAlertRaised is emitted when an analysis opens a fraud alert.
	EventTypeAlertRaised = "fraud.alert.raised"

	// EventTypeAlertStatusChanged is emitted when an analyst moves an alert.
	EventTypeAlertStatusChanged = "fraud.alert.status_changed"
)

// TransactionAnalyzed is published once a transaction has been scored.
type TransactionAnalyzed struct {
	events.BaseEvent
	AnalyzedAt     time.Time `json:"analyzed_at"`
	TransactionRef string    `json:"transaction_id"`
	RiskLevel      string    `json:"risk_level"`
	Method         string    `json:"method"`
	Reasons        []string  `json:"reasons"`
	FraudScore     float64   `json:"fraud_score"`
	AnalysisID     uuid.UUID `json:"analysis_id"`
	IsFraud        bool      `json:"is_fraud"`
	Success        bool      `json:"success"`
}

// NewTransactionAnalyzed builds the event and its JSON payload.
func NewTransactionAnalyzed(
	analysisID uuid.UUID,
	transactionRef string,
	success bool,
	fraudScore float64,
	riskLevel, method string,
	isFraud bool,
	reasons []string,
	analyzedAt time.Time,
) TransactionAnalyzed {
	e := TransactionAnalyzed{
		AnalysisID:     analysisID,
		TransactionRef: transactionRef,
		Success:        success,
		FraudScore:     fraudScore,
		RiskLevel:      riskLevel,
		Method:         method,
		IsFraud:        isFraud,
		Reasons:        reasons,
		AnalyzedAt:     analyzedAt,
	}
	e.BaseEvent = events.NewBaseEvent(EventTypeTransactionAnalyzed, analysisID, AggregateType, payload(e))
	return e
}

// AlertRaised is published when a HIGH or CRITICAL analysis opens an alert.
type AlertRaised struct {
	events.BaseEvent
	RaisedAt       time.Time `json:"raised_at"`
	TransactionRef string    `json:"transaction_id"`
	RiskLevel      string    `json:"risk_level"`
	Reasons        []string  `json:"reasons"`
	FraudScore     float64   `json:"fraud_score"`
	AlertID        uuid.UUID `json:"alert_id"`
	AnalysisID     uuid.UUID `json:"analysis_id"`
}

// NewAlertRaised builds the event and its JSON payload.
func NewAlertRaised(
	alertID, analysisID uuid.UUID,
	transactionRef string,
	fraudScore float64,
	riskLevel string,
	reasons []string,
	raisedAt time.Time,
) AlertRaised {
	e := AlertRaised{
		AlertID:        alertID,
		AnalysisID:     analysisID,
		TransactionRef: transactionRef,
		FraudScore:     fraudScore,
		RiskLevel:      riskLevel,
		Reasons:        reasons,
		RaisedAt:       raisedAt,
	}
	e.BaseEvent = events.NewBaseEvent(EventTypeAlertRaised, analysisID, AggregateType, payload(e))
	return e
}

// AlertStatusChanged is published when an alert moves through its lifecycle.
type AlertStatusChanged struct {
	events.BaseEvent
	ChangedAt      time.Time `json:"changed_at"`
	TransactionRef string    `json:"transaction_id"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	AlertID        uuid.UUID `json:"alert_id"`
	AnalysisID     uuid.UUID `json:"analysis_id"`
}

// NewAlertStatusChanged builds the event and its JSON payload.
func NewAlertStatusChanged(alertID, analysisID uuid.UUID, transactionRef, from, to string, changedAt time.Time) AlertStatusChanged {
	e := AlertStatusChanged{
		AlertID:        alertID,
		AnalysisID:     analysisID,
		TransactionRef: transactionRef,
		From:           from,
		To:             to,
		ChangedAt:      changedAt,
	}
	e.BaseEvent = events.NewBaseEvent(EventTypeAlertStatusChanged, analysisID, AggregateType, payload(e))
	return e
}

// payload encodes the exported fields of an event. The field types above
// cannot fail to marshal.
func payload(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
