package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	pgutil "github.com/saaayf/smartmedishop/pkg/postgres"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pgutil.Querier
	pgutil.TxStarter
}

// AnalysisRepository implements port.AnalysisRepository using PostgreSQL.
type AnalysisRepository struct {
	db DB
}

// NewAnalysisRepository creates a new PostgreSQL-backed analysis repository.
func NewAnalysisRepository(db DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const selectAnalysis = `
	SELECT a.id, a.transaction_ref, a.amount, a.transaction, a.result, a.created_at,
		al.id, al.fraud_score, al.risk_level, al.reasons, al.status, al.created_at, al.updated_at
	FROM fraud_analyses a
	LEFT JOIN fraud_alerts al ON al.analysis_id = a.id
`

// Save persists an analysis and the alert it opened in one transaction.
func (r *AnalysisRepository) Save(ctx context.Context, analysis *model.FraudAnalysis) error {
	tx := analysis.Transaction()
	result := analysis.Result()

	txJSON, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to encode transaction: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	reasonsJSON, err := encodeReasons(result.Reasons)
	if err != nil {
		return err
	}

	return pgutil.WithTransaction(ctx, r.db, func(dbtx pgx.Tx) error {
		_, err := dbtx.Exec(ctx, `
			INSERT INTO fraud_analyses (
				id, transaction_ref, amount, hour, payment_method,
				device_type, location_country, success, is_fraud,
				fraud_score, risk_level, method, reasons,
				transaction, result, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			analysis.ID(),
			analysis.TransactionRef(),
			decimal.NewFromFloat(tx.Amount).Round(2),
			tx.Hour,
			tx.PaymentMethod,
			tx.DeviceType,
			tx.LocationCountry,
			result.Success,
			result.IsFraud,
			result.FraudScore,
			result.RiskLevel.String(),
			result.Method.String(),
			reasonsJSON,
			txJSON,
			resultJSON,
			analysis.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert analysis: %w", err)
		}

		if alert := analysis.Alert(); alert != nil {
			if err := insertAlert(ctx, dbtx, alert); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByTransactionRef retrieves an analysis by its public transaction ID.
func (r *AnalysisRepository) FindByTransactionRef(ctx context.Context, transactionRef string) (*model.FraudAnalysis, error) {
	row := r.db.QueryRow(ctx, selectAnalysis+` WHERE a.transaction_ref = $1`, transactionRef)

	analysis, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("analysis %s: %w", transactionRef, port.ErrNotFound)
		}
		return nil, err
	}
	return analysis, nil
}

// ListRecent returns the newest analyses first.
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*model.FraudAnalysis, error) {
	rows, err := r.db.Query(ctx, selectAnalysis+` ORDER BY a.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]*model.FraudAnalysis, 0)
	for rows.Next() {
		analysis, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}

	return analyses, nil
}

func scanAnalysis(row pgx.Row) (*model.FraudAnalysis, error) {
	var (
		id             uuid.UUID
		transactionRef string
		amount         decimal.Decimal
		txJSON         []byte
		resultJSON     []byte
		createdAt      time.Time

		alertID        *uuid.UUID
		alertScore     *float64
		alertLevel     *string
		alertReasons   []byte
		alertStatus    *string
		alertCreatedAt *time.Time
		alertUpdatedAt *time.Time
	)

	err := row.Scan(
		&id, &transactionRef, &amount, &txJSON, &resultJSON, &createdAt,
		&alertID, &alertScore, &alertLevel, &alertReasons, &alertStatus, &alertCreatedAt, &alertUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	var tx model.Transaction
	if err := json.Unmarshal(txJSON, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", transactionRef, err)
	}
	tx.Amount = amount.InexactFloat64()

	var result model.AnalysisResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result %s: %w", transactionRef, err)
	}

	var alert *model.FraudAlert
	if alertID != nil {
		alert, err = reconstructAlert(*alertID, id, transactionRef,
			*alertScore, *alertLevel, alertReasons, *alertStatus, *alertCreatedAt, *alertUpdatedAt)
		if err != nil {
			return nil, err
		}
	}

	return model.ReconstructAnalysis(id, transactionRef, tx, result, alert, createdAt), nil
}

func encodeReasons(reasons []string) ([]byte, error) {
	if reasons == nil {
		reasons = []string{}
	}
	data, err := json.Marshal(reasons)
	if err != nil {
		return nil, fmt.Errorf("failed to encode reasons: %w", err)
	}
	return data, nil
}
