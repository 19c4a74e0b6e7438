package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/application/usecase"
	pkgkafka "github.com/saaayf/smartmedishop/pkg/kafka"
)

// Analyzer runs the analyze-transaction use case.
type Analyzer interface {
	Execute(ctx context.Context, req dto.AnalyzeTransactionRequest) (dto.AnalyzeTransactionResponse, error)
}

// TransactionConsumer scores transactions submitted by the storefront on
// the transactions topic.
type TransactionConsumer struct {
	analyzer Analyzer
	logger   *slog.Logger
}

// NewTransactionConsumer creates a handler for submitted transactions.
func NewTransactionConsumer(analyzer Analyzer, logger *slog.Logger) *TransactionConsumer {
	return &TransactionConsumer{analyzer: analyzer, logger: logger}
}

// Handle is a pkgkafka.Handler. Malformed or invalid records are logged and
// dropped so they do not block the partition. Any other failure is returned;
// the consumer retries it and stops before committing if it keeps failing.
func (c *TransactionConsumer) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var req dto.AnalyzeTransactionRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.WarnContext(ctx, "dropping malformed transaction",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return nil
	}

	resp, err := c.analyzer.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRequest) {
			c.logger.WarnContext(ctx, "dropping invalid transaction",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
			return nil
		}
		return fmt.Errorf("failed to analyze transaction at offset %d: %w", msg.Offset, err)
	}

	c.logger.InfoContext(ctx, "transaction analyzed from stream",
		slog.String("transaction_id", resp.TransactionID),
		slog.String("risk_level", resp.Analysis.RiskLevel.String()),
		slog.Float64("fraud_score", resp.Analysis.FraudScore),
	)
	return nil
}
