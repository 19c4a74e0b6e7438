package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
)

// UpdateAlertStatus is the use case for reviewing a fraud alert.
type UpdateAlertStatus struct {
	repo      port.AlertRepository
	publisher port.EventPublisher
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewUpdateAlertStatus creates a new UpdateAlertStatus use case.
func NewUpdateAlertStatus(repo port.AlertRepository, publisher port.EventPublisher, logger *slog.Logger) *UpdateAlertStatus {
	return &UpdateAlertStatus{
		repo:      repo,
		publisher: publisher,
		validate:  NewValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Execute moves the alert to the requested status.
func (uc *UpdateAlertStatus) Execute(ctx context.Context, req dto.UpdateAlertStatusRequest) (dto.AlertResponse, error) {
	if err := validateRequest(uc.validate, req); err != nil {
		return dto.AlertResponse{}, err
	}

	next, err := valueobject.AlertStatusFromString(req.Status)
	if err != nil {
		return dto.AlertResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	alert, err := uc.repo.FindAlertByID(ctx, req.AlertID)
	if err != nil {
		return dto.AlertResponse{}, fmt.Errorf("failed to find alert: %w", err)
	}

	from := alert.Status()
	if err := alert.TransitionTo(next, uc.now().UTC()); err != nil {
		if errors.Is(err, model.ErrInvalidAlertTransition) {
			return dto.AlertResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return dto.AlertResponse{}, fmt.Errorf("failed to update alert: %w", err)
	}

	if err := uc.repo.UpdateAlert(ctx, alert, from); err != nil {
		return dto.AlertResponse{}, fmt.Errorf("failed to save alert: %w", err)
	}

	publishEvents(ctx, uc.publisher, uc.logger, alert.DomainEvents())

	return dto.AlertFromModel(alert), nil
}
