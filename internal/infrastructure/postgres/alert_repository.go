package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
	pgutil "github.com/saaayf/smartmedishop/pkg/postgres"
)

// AlertRepository implements port.AlertRepository using PostgreSQL.
type AlertRepository struct {
	db pgutil.Querier
}

// NewAlertRepository creates a new PostgreSQL-backed alert repository.
func NewAlertRepository(db pgutil.Querier) *AlertRepository {
	return &AlertRepository{db: db}
}

const selectAlert = `
	SELECT id, analysis_id, transaction_ref, fraud_score, risk_level,
		reasons, status, created_at, updated_at
	FROM fraud_alerts
`

// ListAlerts returns the newest alerts first. A zero status matches every alert.
func (r *AlertRepository) ListAlerts(ctx context.Context, status valueobject.AlertStatus, limit int) ([]*model.FraudAlert, error) {
	rows, err := r.db.Query(ctx,
		selectAlert+` WHERE ($1::text = '' OR status = $1::text) ORDER BY created_at DESC LIMIT $2`,
		status.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*model.FraudAlert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alerts: %w", err)
	}

	return alerts, nil
}

// FindAlertByID retrieves an alert by its unique identifier.
func (r *AlertRepository) FindAlertByID(ctx context.Context, id uuid.UUID) (*model.FraudAlert, error) {
	alert, err := scanAlert(r.db.QueryRow(ctx, selectAlert+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("alert %s: %w", id, port.ErrNotFound)
		}
		return nil, err
	}
	return alert, nil
}

// UpdateAlert persists the alert's current status. The row is only written
// while its status still equals from, so two reviewers racing on the same
// alert cannot both move it.
func (r *AlertRepository) UpdateAlert(ctx context.Context, alert *model.FraudAlert, from valueobject.AlertStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE fraud_alerts SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		alert.ID(), alert.Status().String(), alert.UpdatedAt(), from.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fraud_alerts WHERE id = $1)`, alert.ID()).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check alert: %w", err)
	}
	if !exists {
		return fmt.Errorf("alert %s: %w", alert.ID(), port.ErrNotFound)
	}
	return fmt.Errorf("alert %s is no longer %s: %w", alert.ID(), from, port.ErrConflict)
}

func insertAlert(ctx context.Context, q pgutil.Querier, alert *model.FraudAlert) error {
	reasonsJSON, err := encodeReasons(alert.Reasons())
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, `
		INSERT INTO fraud_alerts (
			id, analysis_id, transaction_ref, fraud_score, risk_level,
			reasons, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		alert.ID(),
		alert.AnalysisID(),
		alert.TransactionRef(),
		alert.FraudScore(),
		alert.RiskLevel().String(),
		reasonsJSON,
		alert.Status().String(),
		alert.CreatedAt(),
		alert.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

func scanAlert(row pgx.Row) (*model.FraudAlert, error) {
	var (
		id             uuid.UUID
		analysisID     uuid.UUID
		transactionRef string
		fraudScore     float64
		riskLevel      string
		reasons        []byte
		status         string
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(&id, &analysisID, &transactionRef, &fraudScore, &riskLevel,
		&reasons, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan alert: %w", err)
	}

	return reconstructAlert(id, analysisID, transactionRef, fraudScore, riskLevel, reasons, status, createdAt, updatedAt)
}

func reconstructAlert(
	id, analysisID uuid.UUID,
	transactionRef string,
	fraudScore float64,
	riskLevelStr string,
	reasonsJSON []byte,
	statusStr string,
	createdAt, updatedAt time.Time,
) (*model.FraudAlert, error) {
	riskLevel, err := valueobject.RiskLevelFromString(riskLevelStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk level: %w", err)
	}
	status, err := valueobject.AlertStatusFromString(statusStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse alert status: %w", err)
	}

	reasons := make([]string, 0)
	if len(reasonsJSON) > 0 {
		if err := json.Unmarshal(reasonsJSON, &reasons); err != nil {
			return nil, fmt.Errorf("failed to decode alert reasons: %w", err)
		}
	}

	return model.ReconstructAlert(id, analysisID, transactionRef, fraudScore,
		riskLevel, reasons, status, createdAt, updatedAt), nil
}
