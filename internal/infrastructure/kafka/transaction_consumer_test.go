package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/application/usecase"
	pkgkafka "github.com/saaayf/smartmedishop/pkg/kafka"
)

type mockAnalyzer struct {
	executeFunc func(ctx context.Context, req dto.AnalyzeTransactionRequest) (dto.AnalyzeTransactionResponse, error)
	requests    []dto.AnalyzeTransactionRequest
}

func (m *mockAnalyzer) Execute(ctx context.Context, req dto.AnalyzeTransactionRequest) (dto.AnalyzeTransactionResponse, error) {
	m.requests = append(m.requests, req)
	if m.executeFunc != nil {
		return m.executeFunc(ctx, req)
	}
	return dto.AnalyzeTransactionResponse{TransactionID: "TXN_20260314_092653_4821", Success: true}, nil
}

func TestTransactionConsumer_Handle(t *testing.T) {
	t.Run("decodes and analyzes the record", func(t *testing.T) {
		analyzer := &mockAnalyzer{}
		consumer := NewTransactionConsumer(analyzer, discardLogger())

		err := consumer.Handle(context.Background(), pkgkafka.Message{
			Value: []byte(`{"amount": 2500, "payment_method": "crypto", "hour": 3}`),
		})
		require.NoError(t, err)

		require.Len(t, analyzer.requests, 1)
		req := analyzer.requests[0]
		require.NotNil(t, req.Amount)
		assert.InDelta(t, 2500.0, *req.Amount, 1e-9)
		assert.Equal(t, "crypto", req.Transaction.PaymentMethod)
		assert.Equal(t, 3, req.Transaction.Hour)
	})

	t.Run("malformed record is dropped", func(t *testing.T) {
		analyzer := &mockAnalyzer{}
		consumer := NewTransactionConsumer(analyzer, discardLogger())

		require.NoError(t, consumer.Handle(context.Background(), pkgkafka.Message{Value: []byte(`{not json`)}))
		assert.Empty(t, analyzer.requests)
	})

	t.Run("invalid request is dropped", func(t *testing.T) {
		analyzer := &mockAnalyzer{
			executeFunc: func(context.Context, dto.AnalyzeTransactionRequest) (dto.AnalyzeTransactionResponse, error) {
				return dto.AnalyzeTransactionResponse{}, fmt.Errorf("%w: Missing required field: amount", usecase.ErrInvalidRequest)
			},
		}
		consumer := NewTransactionConsumer(analyzer, discardLogger())

		require.NoError(t, consumer.Handle(context.Background(), pkgkafka.Message{Value: []byte(`{}`)}))
	})

	t.Run("storage failure is returned for redelivery", func(t *testing.T) {
		analyzer := &mockAnalyzer{
			executeFunc: func(context.Context, dto.AnalyzeTransactionRequest) (dto.AnalyzeTransactionResponse, error) {
				return dto.AnalyzeTransactionResponse{}, errors.New("failed to save analysis: connection refused")
			},
		}
		consumer := NewTransactionConsumer(analyzer, discardLogger())

		err := consumer.Handle(context.Background(), pkgkafka.Message{Offset: 17, Value: []byte(`{"amount": 10}`)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "offset 17")
	})
}
