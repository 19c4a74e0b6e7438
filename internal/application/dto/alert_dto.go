package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

// ListAlertsRequest filters fraud alerts. An empty status matches all alerts.
type ListAlertsRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=PENDING REVIEWED RESOLVED DISMISSED"`
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
}

// UpdateAlertStatusRequest moves an alert through its review lifecycle.
type UpdateAlertStatusRequest struct {
	Status  string    `json:"status" validate:"required,oneof=PENDING REVIEWED RESOLVED DISMISSED"`
	AlertID uuid.UUID `json:"-" validate:"required"`
}

// AlertResponse is the output DTO for a fraud alert.
type AlertResponse struct {
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	TransactionID string    `json:"transaction_id"`
	RiskLevel     string    `json:"risk_level"`
	Status        string    `json:"status"`
	Reasons       []string  `json:"reasons"`
	FraudScore    float64   `json:"fraud_score"`
	ID            uuid.UUID `json:"id"`
}

// ListAlertsResponse lists fraud alerts, newest first.
type ListAlertsResponse struct {
	Alerts  []AlertResponse `json:"alerts"`
	Count   int             `json:"count"`
	Success bool            `json:"success"`
}

// AlertFromModel maps a domain alert to the response DTO.
func AlertFromModel(a *model.FraudAlert) AlertResponse {
	reasons := a.Reasons()
	if reasons == nil {
		reasons = []string{}
	}
	return AlertResponse{
		ID:            a.ID(),
		TransactionID: a.TransactionRef(),
		FraudScore:    a.FraudScore(),
		RiskLevel:     a.RiskLevel().String(),
		Reasons:       reasons,
		Status:        a.Status().String(),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
	}
}
