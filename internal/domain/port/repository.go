package port

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
	"github.com/saaayf/smartmedishop/pkg/events"
)

var (
	// ErrNotFound is returned by repositories when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a record changed since it was read.
	ErrConflict = errors.New("conflict")
)

// AnalysisRepository defines the persistence port for fraud analyses.
type AnalysisRepository interface {
	// Save persists a new analysis together with the alert it opened, if any.
	Save(ctx context.Context, analysis *model.FraudAnalysis) error

	// FindByTransactionRef retrieves an analysis by its public transaction ID.
	FindByTransactionRef(ctx context.Context, transactionRef string) (*model.FraudAnalysis, error)

	// ListRecent returns the newest analyses first.
	ListRecent(ctx context.Context, limit int) ([]*model.FraudAnalysis, error)
}

// AlertRepository defines the persistence port for fraud alerts.
type AlertRepository interface {
	// ListAlerts returns the newest alerts first. A zero status matches every alert.
	ListAlerts(ctx context.Context, status valueobject.AlertStatus, limit int) ([]*model.FraudAlert, error)

	// FindAlertByID retrieves an alert by its unique identifier.
	FindAlertByID(ctx context.Context, id uuid.UUID) (*model.FraudAlert, error)

	// UpdateAlert persists the alert's current status if the stored status
	// is still from. Otherwise it returns ErrConflict.
	UpdateAlert(ctx context.Context, alert *model.FraudAlert, from valueobject.AlertStatus) error
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// AnalysisMetrics records the outcome of every analysis.
type AnalysisMetrics interface {
	RecordAnalysis(ctx context.Context, result model.AnalysisResult, durationSeconds float64)
}
