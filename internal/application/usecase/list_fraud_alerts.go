package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
)

// ListFraudAlerts is the use case for the fraud alert queue.
type ListFraudAlerts struct {
	repo     port.AlertRepository
	validate *validator.Validate
}

// NewListFraudAlerts creates a new ListFraudAlerts use case.
func NewListFraudAlerts(repo port.AlertRepository) *ListFraudAlerts {
	return &ListFraudAlerts{repo: repo, validate: NewValidator()}
}

// Execute returns alerts newest first, optionally filtered by status.
func (uc *ListFraudAlerts) Execute(ctx context.Context, req dto.ListAlertsRequest) (dto.ListAlertsResponse, error) {
	if err := validateRequest(uc.validate, req); err != nil {
		return dto.ListAlertsResponse{}, err
	}

	var status valueobject.AlertStatus
	if req.Status != "" {
		s, err := valueobject.AlertStatusFromString(req.Status)
		if err != nil {
			return dto.ListAlertsResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		status = s
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	alerts, err := uc.repo.ListAlerts(ctx, status, limit)
	if err != nil {
		return dto.ListAlertsResponse{}, fmt.Errorf("failed to list alerts: %w", err)
	}

	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.AlertFromModel(a))
	}

	return dto.ListAlertsResponse{
		Success: true,
		Alerts:  out,
		Count:   len(out),
	}, nil
}
