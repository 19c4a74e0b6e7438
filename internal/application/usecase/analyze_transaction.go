package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/service"
)

const tracerName = "github.com/saaayf/smartmedishop/internal/application/usecase"

// AnalyzeTransaction is the use case for scoring a transaction, recording the
// analysis and opening a fraud alert when warranted.
type AnalyzeTransaction struct {
	detector  *service.HybridDetector
	repo      port.AnalysisRepository
	publisher port.EventPublisher
	metrics   port.AnalysisMetrics
	validate  *validator.Validate
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAnalyzeTransaction creates a new AnalyzeTransaction use case. The
// publisher and metrics may be nil.
func NewAnalyzeTransaction(
	detector *service.HybridDetector,
	repo port.AnalysisRepository,
	publisher port.EventPublisher,
	metrics port.AnalysisMetrics,
	logger *slog.Logger,
) *AnalyzeTransaction {
	return &AnalyzeTransaction{
		detector:  detector,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		validate:  NewValidator(),
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
}

// Execute validates the request, scores the transaction, persists the
// analysis and publishes its events.
func (uc *AnalyzeTransaction) Execute(ctx context.Context, req dto.AnalyzeTransactionRequest) (dto.AnalyzeTransactionResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "AnalyzeTransaction")
	defer span.End()

	if err := validateRequest(uc.validate, req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return dto.AnalyzeTransactionResponse{}, err
	}

	now := uc.now()
	tx := req.ToTransaction(now)

	// 1. Score.
	start := time.Now()
	result := uc.detector.Analyze(ctx, tx)
	elapsed := time.Since(start).Seconds()
	if uc.metrics != nil {
		uc.metrics.RecordAnalysis(ctx, result, elapsed)
	}

	// 2. Record the analysis, which opens an alert for HIGH and CRITICAL verdicts.
	ref := model.NewTransactionRef(now, 1000+rand.IntN(9000))
	analysis, err := model.NewFraudAnalysis(ref, tx, result, now)
	if err != nil {
		span.RecordError(err)
		return dto.AnalyzeTransactionResponse{}, fmt.Errorf("failed to create analysis: %w", err)
	}

	span.SetAttributes(
		attribute.String("fraud.transaction_id", ref),
		attribute.String("fraud.risk_level", result.RiskLevel.String()),
		attribute.String("fraud.method", result.Method.String()),
		attribute.Float64("fraud.score", result.FraudScore),
		attribute.Bool("fraud.is_fraud", result.IsFraud),
	)

	// 3. Persist.
	if err := uc.repo.Save(ctx, analysis); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return dto.AnalyzeTransactionResponse{}, fmt.Errorf("failed to save analysis: %w", err)
	}

	// 4. Publish domain events.
	publishEvents(ctx, uc.publisher, uc.logger, analysis.DomainEvents())

	if analysis.Alert() != nil {
		uc.logger.Warn("fraud alert raised",
			slog.String("transaction_id", ref),
			slog.String("risk_level", result.RiskLevel.String()),
			slog.Float64("fraud_score", result.FraudScore),
		)
	}

	return dto.AnalyzeTransactionResponse{
		Success:       true,
		TransactionID: ref,
		Analysis:      result,
	}, nil
}
