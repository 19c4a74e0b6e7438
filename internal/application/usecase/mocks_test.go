package usecase_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/service"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
	"github.com/saaayf/smartmedishop/pkg/events"
)

// --- Mock implementations ---

type mockAnalysisRepository struct {
	saved     []*model.FraudAnalysis
	saveFunc  func(ctx context.Context, a *model.FraudAnalysis) error
	findFunc  func(ctx context.Context, ref string) (*model.FraudAnalysis, error)
	listFunc  func(ctx context.Context, limit int) ([]*model.FraudAnalysis, error)
	lastLimit int
}

func (m *mockAnalysisRepository) Save(ctx context.Context, a *model.FraudAnalysis) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, a)
	}
	m.saved = append(m.saved, a)
	return nil
}

func (m *mockAnalysisRepository) FindByTransactionRef(ctx context.Context, ref string) (*model.FraudAnalysis, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, ref)
	}
	return nil, port.ErrNotFound
}

func (m *mockAnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*model.FraudAnalysis, error) {
	m.lastLimit = limit
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return m.saved, nil
}

type mockAlertRepository struct {
	alerts     map[uuid.UUID]*model.FraudAlert
	updated    []*model.FraudAlert
	lastStatus valueobject.AlertStatus
	lastLimit  int
	updateErr  error
	lastFrom   valueobject.AlertStatus
}

func (m *mockAlertRepository) ListAlerts(_ context.Context, status valueobject.AlertStatus, limit int) ([]*model.FraudAlert, error) {
	m.lastStatus = status
	m.lastLimit = limit
	var out []*model.FraudAlert
	for _, a := range m.alerts {
		if status.IsZero() || a.Status() == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAlertRepository) FindAlertByID(_ context.Context, id uuid.UUID) (*model.FraudAlert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return a, nil
}

func (m *mockAlertRepository) UpdateAlert(_ context.Context, a *model.FraudAlert, from valueobject.AlertStatus) error {
	m.lastFrom = from
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = append(m.updated, a)
	return nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockMetrics struct {
	recorded []model.AnalysisResult
}

func (m *mockMetrics) RecordAnalysis(_ context.Context, result model.AnalysisResult, _ float64) {
	m.recorded = append(m.recorded, result)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ruleDetector() *service.HybridDetector {
	return service.NewHybridDetector(service.NewRuleScorer(), nil, discardLogger())
}
