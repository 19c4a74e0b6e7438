package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saaayf/smartmedishop/internal/domain/event"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
	"github.com/saaayf/smartmedishop/pkg/events"
)

// ErrInvalidAlertTransition is returned when an alert cannot move to the
// requested status.
var ErrInvalidAlertTransition = errors.New("invalid alert status transition")

// FraudAlert is opened for every HIGH or CRITICAL analysis and tracks its review.
type FraudAlert struct {
	createdAt      time.Time
	updatedAt      time.Time
	riskLevel      valueobject.RiskLevel
	status         valueobject.AlertStatus
	transactionRef string
	reasons        []string
	collector      events.EventCollector
	fraudScore     float64
	id             uuid.UUID
	analysisID     uuid.UUID
}

func newFraudAlert(analysisID uuid.UUID, transactionRef string, result AnalysisResult, now time.Time) *FraudAlert {
	return &FraudAlert{
		id:             uuid.New(),
		analysisID:     analysisID,
		transactionRef: transactionRef,
		fraudScore:     result.FraudScore,
		riskLevel:      result.RiskLevel,
		reasons:        result.Reasons,
		status:         valueobject.AlertStatusPending,
		createdAt:      now,
		updatedAt:      now,
	}
}

// ReconstructAlert rebuilds a FraudAlert from persisted data (no validation, no events).
func ReconstructAlert(
	id, analysisID uuid.UUID,
	transactionRef string,
	fraudScore float64,
	riskLevel valueobject.RiskLevel,
	reasons []string,
	status valueobject.AlertStatus,
	createdAt, updatedAt time.Time,
) *FraudAlert {
	return &FraudAlert{
		id:             id,
		analysisID:     analysisID,
		transactionRef: transactionRef,
		fraudScore:     fraudScore,
		riskLevel:      riskLevel,
		reasons:        reasons,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// TransitionTo moves the alert to next and records a status change event.
func (a *FraudAlert) TransitionTo(next valueobject.AlertStatus, now time.Time) error {
	if !a.status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidAlertTransition, a.status, next)
	}

	from := a.status
	a.status = next
	a.updatedAt = now
	a.collector.Record(event.NewAlertStatusChanged(
		a.id, a.analysisID, a.transactionRef, from.String(), next.String(), now,
	))
	return nil
}

func (a *FraudAlert) ID() uuid.UUID                    { return a.id }
func (a *FraudAlert) AnalysisID() uuid.UUID            { return a.analysisID }
func (a *FraudAlert) TransactionRef() string           { return a.transactionRef }
func (a *FraudAlert) FraudScore() float64              { return a.fraudScore }
func (a *FraudAlert) RiskLevel() valueobject.RiskLevel { return a.riskLevel }
func (a *FraudAlert) Reasons() []string                { return a.reasons }
func (a *FraudAlert) Status() valueobject.AlertStatus  { return a.status }
func (a *FraudAlert) CreatedAt() time.Time             { return a.createdAt }
func (a *FraudAlert) UpdatedAt() time.Time             { return a.updatedAt }

// DomainEvents returns all accumulated domain events and clears them.
func (a *FraudAlert) DomainEvents() []events.DomainEvent {
	return a.collector.ClearEvents()
}
