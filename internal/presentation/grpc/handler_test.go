package grpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/saaayf/smartmedishop/internal/application/usecase"
	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/service"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
	"github.com/saaayf/smartmedishop/pkg/auth"
)

// --- Mock implementations ---

type mockAnalysisRepo struct {
	saveErr  error
	saved    []*model.FraudAnalysis
	findFunc func(ctx context.Context, ref string) (*model.FraudAnalysis, error)
}

func (m *mockAnalysisRepo) Save(_ context.Context, a *model.FraudAnalysis) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, a)
	return nil
}

func (m *mockAnalysisRepo) FindByTransactionRef(ctx context.Context, ref string) (*model.FraudAnalysis, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, ref)
	}
	return nil, port.ErrNotFound
}

func (m *mockAnalysisRepo) ListRecent(_ context.Context, _ int) ([]*model.FraudAnalysis, error) {
	return m.saved, nil
}

// --- Helpers ---

func contextWithRoles(roles ...string) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{
		UserID: uuid.New(),
		Roles:  roles,
	})
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildHandlerWithRepo(repo *mockAnalysisRepo) *FraudDetectionHandler {
	logger := testLogger()
	detector := service.NewHybridDetector(service.NewRuleScorer(), nil, logger)

	return NewFraudDetectionHandler(
		usecase.NewAnalyzeTransaction(detector, repo, nil, nil, logger),
		usecase.NewGetAnalysis(repo),
		logger,
		true,
	)
}

func ptr[T any](v T) *T { return &v }

// requireGRPCCode asserts that an error is a gRPC status error with the given code.
func requireGRPCCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error, got %v", err)
	assert.Equal(t, code, st.Code())
}

// --- Tests ---

func TestAnalyzeTransaction(t *testing.T) {
	t.Run("missing claims returns Unauthenticated", func(t *testing.T) {
		h := buildHandlerWithRepo(&mockAnalysisRepo{})
		_, err := h.AnalyzeTransaction(context.Background(), &AnalyzeTransactionRequest{})
		requireGRPCCode(t, err, codes.Unauthenticated)
	})

	t.Run("auditor cannot analyze", func(t *testing.T) {
		h := buildHandlerWithRepo(&mockAnalysisRepo{})
		_, err := h.AnalyzeTransaction(contextWithRoles(auth.RoleAuditor), &AnalyzeTransactionRequest{})
		requireGRPCCode(t, err, codes.PermissionDenied)
	})

	t.Run("nil transaction returns InvalidArgument", func(t *testing.T) {
		h := buildHandlerWithRepo(&mockAnalysisRepo{})
		_, err := h.AnalyzeTransaction(contextWithRoles(auth.RoleService), &AnalyzeTransactionRequest{})
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("missing amount returns InvalidArgument", func(t *testing.T) {
		h := buildHandlerWithRepo(&mockAnalysisRepo{})
		_, err := h.AnalyzeTransaction(contextWithRoles(auth.RoleService), &AnalyzeTransactionRequest{
			Transaction: &TransactionMsg{Hour: ptr(int32(3))},
		})
		requireGRPCCode(t, err, codes.InvalidArgument)
		assert.Contains(t, err.Error(), "amount")
	})

	t.Run("happy path returns analysis", func(t *testing.T) {
		repo := &mockAnalysisRepo{}
		h := buildHandlerWithRepo(repo)

		resp, err := h.AnalyzeTransaction(contextWithRoles(auth.RoleService), &AnalyzeTransactionRequest{
			Transaction: &TransactionMsg{
				Amount:                ptr(120.0),
				Hour:                  ptr(int32(23)),
				UserTotalTransactions: ptr(int32(40)),
				PaymentMethod:         ptr("paypal"),
			},
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Analysis)
		assert.True(t, resp.Analysis.Success)
		assert.Equal(t, "LOW", resp.Analysis.RiskLevel)
		assert.Equal(t, []string{"Transaction made during unusual hours"}, resp.Analysis.Reasons)
		assert.Nil(t, resp.Analysis.MLScore)

		require.Len(t, repo.saved, 1)
		tx := repo.saved[0].Transaction()
		assert.Equal(t, 23, tx.Hour)
		assert.Equal(t, "paypal", tx.PaymentMethod)
		assert.Equal(t, model.DefaultDeviceType, tx.DeviceType)
	})

	t.Run("save failure returns Internal", func(t *testing.T) {
		h := buildHandlerWithRepo(&mockAnalysisRepo{saveErr: errors.New("connection reset")})
		_, err := h.AnalyzeTransaction(contextWithRoles(auth.RoleAdmin), &AnalyzeTransactionRequest{
			Transaction: &TransactionMsg{Amount: ptr(10.0)},
		})
		requireGRPCCode(t, err, codes.Internal)
	})
}

func TestGetAnalysis(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	ref := model.NewTransactionRef(at, 4821)

	stored, err := model.NewFraudAnalysis(ref, model.DefaultTransaction(), model.AnalysisResult{
		Success:    true,
		FraudScore: 0.55,
		Confidence: 0.55,
		RiskLevel:  valueobject.RiskLevelHigh,
		IsFraud:    true,
		Method:     valueobject.MethodRuleBased,
		Reasons:    []string{"High transaction frequency detected"},
	}, at)
	require.NoError(t, err)

	repo := &mockAnalysisRepo{
		findFunc: func(_ context.Context, got string) (*model.FraudAnalysis, error) {
			if got == ref {
				return stored, nil
			}
			return nil, port.ErrNotFound
		},
	}
	h := buildHandlerWithRepo(repo)

	t.Run("found", func(t *testing.T) {
		resp, err := h.GetAnalysis(contextWithRoles(auth.RoleAuditor), &GetAnalysisRequest{TransactionID: ref})
		require.NoError(t, err)
		assert.Equal(t, ref, resp.Analysis.TransactionID)
		assert.Equal(t, "HIGH", resp.Analysis.RiskLevel)
		assert.True(t, resp.Analysis.IsFraud)
		assert.Equal(t, "2026-03-14T09:26:53Z", resp.Analysis.AnalyzedAt)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := h.GetAnalysis(contextWithRoles(auth.RoleAnalyst), &GetAnalysisRequest{TransactionID: "TXN_20200101_000000_0000"})
		requireGRPCCode(t, err, codes.NotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := h.GetAnalysis(contextWithRoles(auth.RoleAnalyst), &GetAnalysisRequest{TransactionID: "42"})
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("nil request", func(t *testing.T) {
		_, err := h.GetAnalysis(contextWithRoles(auth.RoleAnalyst), nil)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})
}

func TestAuthDisabledSkipsRoleChecks(t *testing.T) {
	logger := testLogger()
	repo := &mockAnalysisRepo{}
	detector := service.NewHybridDetector(service.NewRuleScorer(), nil, logger)
	h := NewFraudDetectionHandler(
		usecase.NewAnalyzeTransaction(detector, repo, nil, nil, logger),
		usecase.NewGetAnalysis(repo),
		logger,
		false,
	)

	_, err := h.AnalyzeTransaction(context.Background(), &AnalyzeTransactionRequest{
		Transaction: &TransactionMsg{Amount: ptr(10.0)},
	})
	require.NoError(t, err)
}
