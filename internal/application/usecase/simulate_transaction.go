package usecase

import (
	"context"
	"time"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/service"
)

// SimulateTransaction scores a randomly generated transaction without storing it.
type SimulateTransaction struct {
	simulator *service.Simulator
	detector  *service.HybridDetector
	metrics   port.AnalysisMetrics
}

// NewSimulateTransaction creates a new SimulateTransaction use case. metrics may be nil.
func NewSimulateTransaction(simulator *service.Simulator, detector *service.HybridDetector, metrics port.AnalysisMetrics) *SimulateTransaction {
	return &SimulateTransaction{
		simulator: simulator,
		detector:  detector,
		metrics:   metrics,
	}
}

// Execute generates and analyzes one transaction.
func (uc *SimulateTransaction) Execute(ctx context.Context) (dto.SimulateTransactionResponse, error) {
	tx := uc.simulator.Next()

	start := time.Now()
	result := uc.detector.Analyze(ctx, tx)
	if uc.metrics != nil {
		uc.metrics.RecordAnalysis(ctx, result, time.Since(start).Seconds())
	}

	return dto.SimulateTransactionResponse{
		Success:              true,
		SimulatedTransaction: tx,
		Analysis:             result,
	}, nil
}
