package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
)

// GetAnalysis is the use case for retrieving a stored analysis.
type GetAnalysis struct {
	repo     port.AnalysisRepository
	validate *validator.Validate
}

// NewGetAnalysis creates a new GetAnalysis use case.
func NewGetAnalysis(repo port.AnalysisRepository) *GetAnalysis {
	return &GetAnalysis{repo: repo, validate: NewValidator()}
}

// Execute retrieves an analysis by its transaction ID.
func (uc *GetAnalysis) Execute(ctx context.Context, req dto.GetAnalysisRequest) (dto.TransactionDetail, error) {
	if err := validateRequest(uc.validate, req); err != nil {
		return dto.TransactionDetail{}, err
	}
	if !model.ValidTransactionRef(req.TransactionID) {
		return dto.TransactionDetail{}, fmt.Errorf("%w: malformed transaction_id %q", ErrInvalidRequest, req.TransactionID)
	}

	analysis, err := uc.repo.FindByTransactionRef(ctx, req.TransactionID)
	if err != nil {
		return dto.TransactionDetail{}, fmt.Errorf("failed to find analysis: %w", err)
	}

	return dto.DetailFromModel(analysis), nil
}
