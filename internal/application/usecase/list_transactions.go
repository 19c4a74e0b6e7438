package usecase

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/domain/port"
)

// DefaultListLimit is applied when a list request does not set a limit.
const DefaultListLimit = 100

// ListTransactions is the use case for the transaction history.
type ListTransactions struct {
	repo     port.AnalysisRepository
	validate *validator.Validate
}

// NewListTransactions creates a new ListTransactions use case.
func NewListTransactions(repo port.AnalysisRepository) *ListTransactions {
	return &ListTransactions{repo: repo, validate: NewValidator()}
}

// Execute returns the most recent analyses, newest first.
func (uc *ListTransactions) Execute(ctx context.Context, req dto.ListTransactionsRequest) (dto.ListTransactionsResponse, error) {
	if err := validateRequest(uc.validate, req); err != nil {
		return dto.ListTransactionsResponse{}, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultListLimit
	}

	analyses, err := uc.repo.ListRecent(ctx, limit)
	if err != nil {
		return dto.ListTransactionsResponse{}, fmt.Errorf("failed to list analyses: %w", err)
	}

	rows := make([]dto.TransactionSummary, 0, len(analyses))
	for _, a := range analyses {
		rows = append(rows, dto.SummaryFromModel(a))
	}

	return dto.ListTransactionsResponse{
		Success:      true,
		Transactions: rows,
		Count:        len(rows),
	}, nil
}
