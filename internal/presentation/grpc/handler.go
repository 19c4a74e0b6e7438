package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/saaayf/smartmedishop/internal/application/dto"
	"github.com/saaayf/smartmedishop/internal/application/usecase"
	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/pkg/auth"
)

// requireRole checks that the caller has at least one of the given roles.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	if claims.HasAnyRole(roles...) {
		return nil
	}
	return status.Error(codes.PermissionDenied, "insufficient permissions")
}

// Compile-time assertion that FraudDetectionHandler implements FraudDetectionServer.
var _ FraudDetectionServer = (*FraudDetectionHandler)(nil)

// FraudDetectionHandler implements the gRPC FraudDetectionServer interface.
type FraudDetectionHandler struct {
	UnimplementedFraudDetectionServer
	analyzeTransaction *usecase.AnalyzeTransaction
	getAnalysis        *usecase.GetAnalysis
	logger             *slog.Logger
	authRequired       bool
}

// NewFraudDetectionHandler creates a new gRPC handler. When authRequired is
// false, role checks are skipped; use only without a JWT secret in development.
func NewFraudDetectionHandler(
	analyzeTransaction *usecase.AnalyzeTransaction,
	getAnalysis *usecase.GetAnalysis,
	logger *slog.Logger,
	authRequired bool,
) *FraudDetectionHandler {
	return &FraudDetectionHandler{
		analyzeTransaction: analyzeTransaction,
		getAnalysis:        getAnalysis,
		logger:             logger,
		authRequired:       authRequired,
	}
}

// Proto-aligned request/response message types.

// TransactionMsg represents the proto Transaction message. Unset fields take
// their defaults; unset hour, day_of_week and month take the receive time.
type TransactionMsg struct {
	Amount                   *float64 `json:"amount,omitempty"`
	UserAverageAmount        *float64 `json:"user_average_amount,omitempty"`
	UserMaxTransactionAmount *float64 `json:"user_max_transaction_amount,omitempty"`
	UserRegistrationDays     *float64 `json:"user_registration_days,omitempty"`
	UserAccountAgeDays       *float64 `json:"user_account_age_days,omitempty"`
	AvgTransactionAmount     *float64 `json:"avg_transaction_amount,omitempty"`
	Hour                     *int32   `json:"hour,omitempty"`
	DayOfWeek                *int32   `json:"day_of_week,omitempty"`
	Month                    *int32   `json:"month,omitempty"`
	UserAge                  *int32   `json:"user_age,omitempty"`
	UserTotalTransactions    *int32   `json:"user_total_transactions,omitempty"`
	UserFraudCount           *int32   `json:"user_fraud_count,omitempty"`
	TransactionCount24h      *int32   `json:"transaction_count_24h,omitempty"`
	TransactionCount7d       *int32   `json:"transaction_count_7d,omitempty"`
	PaymentMethod            *string  `json:"payment_method,omitempty"`
	DeviceType               *string  `json:"device_type,omitempty"`
	LocationCountry          *string  `json:"location_country,omitempty"`
	MerchantName             *string  `json:"merchant_name,omitempty"`
	TransactionType          *string  `json:"transaction_type,omitempty"`
	UserID                   *string  `json:"user_id,omitempty"`
	UserRiskProfile          *string  `json:"user_risk_profile,omitempty"`
}

// AnalysisMsg represents the proto Analysis message.
type AnalysisMsg struct {
	RuleScore     *float64 `json:"rule_score,omitempty"`
	MLScore       *float64 `json:"ml_score,omitempty"`
	TransactionID string   `json:"transaction_id"`
	RiskLevel     string   `json:"risk_level"`
	Method        string   `json:"method"`
	Error         string   `json:"error,omitempty"`
	AnalyzedAt    string   `json:"analyzed_at,omitempty"`
	Reasons       []string `json:"reasons"`
	FraudScore    float64  `json:"fraud_score"`
	Confidence    float64  `json:"confidence"`
	Success       bool     `json:"success"`
	IsFraud       bool     `json:"is_fraud"`
}

// AnalyzeTransactionRequest represents the proto AnalyzeTransactionRequest message.
type AnalyzeTransactionRequest struct {
	Transaction *TransactionMsg `json:"transaction"`
}

// AnalyzeTransactionResponse represents the proto AnalyzeTransactionResponse message.
type AnalyzeTransactionResponse struct {
	Analysis *AnalysisMsg `json:"analysis"`
}

// GetAnalysisRequest represents the proto GetAnalysisRequest message.
type GetAnalysisRequest struct {
	TransactionID string `json:"transaction_id"`
}

// GetAnalysisResponse represents the proto GetAnalysisResponse message.
type GetAnalysisResponse struct {
	Analysis *AnalysisMsg `json:"analysis"`
}

// AnalyzeTransaction handles a transaction analysis request.
func (h *FraudDetectionHandler) AnalyzeTransaction(ctx context.Context, req *AnalyzeTransactionRequest) (*AnalyzeTransactionResponse, error) {
	if err := h.authorize(ctx, auth.RoleAdmin, auth.RoleService, auth.RoleAnalyst); err != nil {
		return nil, err
	}

	if req == nil || req.Transaction == nil {
		return nil, status.Error(codes.InvalidArgument, "transaction is required")
	}

	in, err := toAnalyzeRequest(req.Transaction)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid transaction: %v", err)
	}

	result, err := h.analyzeTransaction.Execute(ctx, in)
	if err != nil {
		return nil, h.toStatus(ctx, "analyze transaction", err)
	}

	return &AnalyzeTransactionResponse{
		Analysis: toAnalysisMsg(result.TransactionID, result.Analysis, time.Time{}),
	}, nil
}

// GetAnalysis handles a stored analysis lookup.
func (h *FraudDetectionHandler) GetAnalysis(ctx context.Context, req *GetAnalysisRequest) (*GetAnalysisResponse, error) {
	if err := h.authorize(ctx, auth.RoleAdmin, auth.RoleService, auth.RoleAnalyst, auth.RoleAuditor); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	detail, err := h.getAnalysis.Execute(ctx, dto.GetAnalysisRequest{TransactionID: req.TransactionID})
	if err != nil {
		return nil, h.toStatus(ctx, "get analysis", err)
	}

	return &GetAnalysisResponse{
		Analysis: toAnalysisMsg(detail.TransactionID, detail.Analysis, detail.Timestamp),
	}, nil
}

func (h *FraudDetectionHandler) authorize(ctx context.Context, roles ...string) error {
	if !h.authRequired {
		return nil
	}
	return requireRole(ctx, roles...)
}

func (h *FraudDetectionHandler) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrNotFound):
		return status.Error(codes.NotFound, "analysis not found")
	default:
		h.logger.ErrorContext(ctx, "failed to "+op, slog.String("error", err.Error()))
		return status.Error(codes.Internal, "internal error")
	}
}

// toAnalyzeRequest routes the message through the request DTO's JSON
// decoding so unset fields get the same defaults as over REST.
func toAnalyzeRequest(msg *TransactionMsg) (dto.AnalyzeTransactionRequest, error) {
	var req dto.AnalyzeTransactionRequest
	data, err := json.Marshal(msg)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, err
	}
	return req, nil
}

func toAnalysisMsg(transactionID string, r model.AnalysisResult, analyzedAt time.Time) *AnalysisMsg {
	reasons := r.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	msg := &AnalysisMsg{
		TransactionID: transactionID,
		Success:       r.Success,
		IsFraud:       r.IsFraud,
		FraudScore:    r.FraudScore,
		Confidence:    r.Confidence,
		RiskLevel:     r.RiskLevel.String(),
		Method:        r.Method.String(),
		Reasons:       reasons,
		RuleScore:     r.RuleScore,
		Error:         r.Error,
	}
	if r.MLDetails != nil {
		score := r.MLDetails.CombinedMLScore
		msg.MLScore = &score
	}
	if !analyzedAt.IsZero() {
		msg.AnalyzedAt = analyzedAt.UTC().Format(time.RFC3339)
	}
	return msg
}
