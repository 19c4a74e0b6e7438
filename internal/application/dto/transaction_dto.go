package dto

import (
	"encoding/json"
	"time"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

// AnalyzeTransactionRequest is the input DTO for the AnalyzeTransaction use case.
// Attributes absent from the JSON body keep their defaults; hour, day of week
// and month default to the time the request is received.
type AnalyzeTransactionRequest struct {
	Amount      *float64          `json:"amount" validate:"required,gte=0,lt=1e16"`
	Transaction model.Transaction `json:"-"`

	hasHour             bool
	hasDayOfWeek        bool
	hasMonth            bool
	hasRegistrationDays bool
}

// NewAnalyzeTransactionRequest wraps a fully populated transaction.
func NewAnalyzeTransactionRequest(tx model.Transaction) AnalyzeTransactionRequest {
	amount := tx.Amount
	return AnalyzeTransactionRequest{
		Amount:              &amount,
		Transaction:         tx,
		hasHour:             true,
		hasDayOfWeek:        true,
		hasMonth:            true,
		hasRegistrationDays: true,
	}
}

// UnmarshalJSON decodes the body over the default transaction and records
// which time attributes were supplied.
func (r *AnalyzeTransactionRequest) UnmarshalJSON(data []byte) error {
	var wire struct {
		Amount           *float64         `json:"amount"`
		Hour             *json.RawMessage `json:"hour"`
		DayOfWeek        *json.RawMessage `json:"day_of_week"`
		Month            *json.RawMessage `json:"month"`
		RegistrationDays *json.RawMessage `json:"user_registration_days"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	tx := model.DefaultTransaction()
	if err := json.Unmarshal(data, &tx); err != nil {
		return err
	}

	*r = AnalyzeTransactionRequest{
		Amount:              wire.Amount,
		Transaction:         tx,
		hasHour:             wire.Hour != nil,
		hasDayOfWeek:        wire.DayOfWeek != nil,
		hasMonth:            wire.Month != nil,
		hasRegistrationDays: wire.RegistrationDays != nil,
	}
	return nil
}

// ToTransaction resolves the request into the record handed to the detector.
func (r AnalyzeTransactionRequest) ToTransaction(now time.Time) model.Transaction {
	tx := r.Transaction
	if r.Amount != nil {
		tx.Amount = *r.Amount
	}

	stamped := tx
	stamped.StampTime(now)
	if !r.hasHour {
		tx.Hour = stamped.Hour
	}
	if !r.hasDayOfWeek {
		tx.DayOfWeek = stamped.DayOfWeek
	}
	if !r.hasMonth {
		tx.Month = stamped.Month
	}

	if !r.hasRegistrationDays && tx.UserAccountAgeDays != nil {
		tx.UserRegistrationDays = *tx.UserAccountAgeDays
	}
	return tx
}

// AnalyzeTransactionResponse is returned after a transaction is analyzed.
type AnalyzeTransactionResponse struct {
	TransactionID string               `json:"transaction_id"`
	Analysis      model.AnalysisResult `json:"analysis"`
	Success       bool                 `json:"success"`
}

// SimulateTransactionResponse carries a generated transaction and its verdict.
type SimulateTransactionResponse struct {
	SimulatedTransaction model.Transaction    `json:"simulated_transaction"`
	Analysis             model.AnalysisResult `json:"analysis"`
	Success              bool                 `json:"success"`
}

// GetAnalysisRequest identifies a stored analysis.
type GetAnalysisRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// ListTransactionsRequest pages through stored analyses.
type ListTransactionsRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

// TransactionSummary is one row of the transaction history.
type TransactionSummary struct {
	Timestamp     time.Time `json:"timestamp"`
	TransactionID string    `json:"transaction_id"`
	PaymentMethod string    `json:"payment_method"`
	RiskLevel     string    `json:"risk_level"`
	Amount        float64   `json:"amount"`
	FraudScore    float64   `json:"fraud_score"`
	Hour          int       `json:"hour"`
	IsFraud       bool      `json:"is_fraud"`
}

// TransactionDetail is a stored analysis with its full verdict.
type TransactionDetail struct {
	Timestamp     time.Time            `json:"timestamp"`
	TransactionID string               `json:"transaction_id"`
	Transaction   model.Transaction    `json:"transaction"`
	Analysis      model.AnalysisResult `json:"analysis"`
}

// ListTransactionsResponse is the transaction history, newest first.
type ListTransactionsResponse struct {
	Transactions []TransactionSummary `json:"transactions"`
	Count        int                  `json:"count"`
	Success      bool                 `json:"success"`
}

// SummaryFromModel maps an analysis to a history row.
func SummaryFromModel(a *model.FraudAnalysis) TransactionSummary {
	tx := a.Transaction()
	res := a.Result()
	return TransactionSummary{
		TransactionID: a.TransactionRef(),
		Amount:        tx.Amount,
		Hour:          tx.Hour,
		PaymentMethod: tx.PaymentMethod,
		IsFraud:       res.IsFraud,
		FraudScore:    res.FraudScore,
		RiskLevel:     res.RiskLevel.String(),
		Timestamp:     a.CreatedAt(),
	}
}

// DetailFromModel maps an analysis to its detailed view.
func DetailFromModel(a *model.FraudAnalysis) TransactionDetail {
	return TransactionDetail{
		TransactionID: a.TransactionRef(),
		Transaction:   a.Transaction(),
		Analysis:      a.Result(),
		Timestamp:     a.CreatedAt(),
	}
}
