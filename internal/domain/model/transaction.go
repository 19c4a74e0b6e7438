package model

import (
	"math"
	"time"
)

// Transaction is the flat attribute record submitted for analysis. Decode
// JSON over DefaultTransaction so absent attributes keep their defaults.
type Transaction struct {
	UserAge              *int     `json:"user_age" validate:"omitempty,gte=0,lte=150"`
	UserAccountAgeDays   *float64 `json:"user_account_age_days,omitempty" validate:"omitempty,gte=0"`
	AvgTransactionAmount *float64 `json:"avg_transaction_amount,omitempty" validate:"omitempty,gte=0"`

	PaymentMethod   string `json:"payment_method" validate:"max=64"`
	DeviceType      string `json:"device_type" validate:"max=64"`
	LocationCountry string `json:"location_country" validate:"max=8"`
	MerchantName    string `json:"merchant_name"`
	TransactionType string `json:"transaction_type"`
	UserID          string `json:"user_id,omitempty"`
	UserRiskProfile string `json:"user_risk_profile"`

	Amount                   float64 `json:"amount" validate:"gte=0,lt=1e16"`
	UserAverageAmount        float64 `json:"user_average_amount" validate:"gte=0"`
	UserMaxTransactionAmount float64 `json:"user_max_transaction_amount" validate:"gte=0"`
	UserRegistrationDays     float64 `json:"user_registration_days" validate:"gte=0"`

	// Behavioural aggregates maintained by the storefront.
	UserTransactionVelocity        float64 `json:"user_transaction_velocity"`
	UserAmountVelocity             float64 `json:"user_amount_velocity"`
	UserAverageTransactionAmount   float64 `json:"user_average_transaction_amount"`
	UserTransactionFrequencyPerDay float64 `json:"user_transaction_frequency_per_day"`
	UserWeekendTransactionRatio    float64 `json:"user_weekend_transaction_ratio"`
	UserNightTransactionRatio      float64 `json:"user_night_transaction_ratio"`
	UserUnusualPatternsCount       int     `json:"user_unusual_patterns_count"`

	Hour                  int `json:"hour" validate:"gte=0,lte=23"`
	DayOfWeek             int `json:"day_of_week" validate:"gte=0,lte=6"`
	Month                 int `json:"month" validate:"gte=1,lte=12"`
	UserTotalTransactions int `json:"user_total_transactions" validate:"gte=0"`
	UserFraudCount        int `json:"user_fraud_count" validate:"gte=0"`
	TransactionCount24h   int `json:"transaction_count_24h" validate:"gte=0"`
	TransactionCount7d    int `json:"transaction_count_7d" validate:"gte=0"`
}

const (
	DefaultHour             = 12
	DefaultUserAge          = 30
	DefaultPaymentMethod    = "credit_card"
	DefaultDeviceType       = "desktop"
	DefaultLocationCountry  = "US"
	DefaultTransactionType  = "purchase"
	DefaultRiskProfile      = "LOW"
	DefaultCount24h         = 1
	DefaultCount7d          = 3
	DefaultRegistrationDays = 30
)

// DefaultTransaction returns a record with every attribute at its default.
func DefaultTransaction() Transaction {
	age := DefaultUserAge
	return Transaction{
		Hour:                 DefaultHour,
		Month:                1,
		UserAge:              &age,
		PaymentMethod:        DefaultPaymentMethod,
		DeviceType:           DefaultDeviceType,
		LocationCountry:      DefaultLocationCountry,
		TransactionType:      DefaultTransactionType,
		UserRiskProfile:      DefaultRiskProfile,
		TransactionCount24h:  DefaultCount24h,
		TransactionCount7d:   DefaultCount7d,
		UserRegistrationDays: DefaultRegistrationDays,
	}
}

// StampTime sets hour, day of week (Monday = 0) and month from t.
func (t *Transaction) StampTime(at time.Time) {
	t.Hour = at.Hour()
	t.DayOfWeek = (int(at.Weekday()) + 6) % 7
	t.Month = int(at.Month())
}

// AccountAgeDays is the account age used by the heuristics: the explicit
// account age when present, else the registration age.
func (t Transaction) AccountAgeDays() float64 {
	if t.UserAccountAgeDays != nil {
		return *t.UserAccountAgeDays
	}
	return t.UserRegistrationDays
}

// AverageAmount is the rolling average used for feature engineering. It
// falls back to the transaction amount itself.
func (t Transaction) AverageAmount() float64 {
	if t.AvgTransactionAmount != nil {
		return *t.AvgTransactionAmount
	}
	return t.Amount
}

// Age returns the user's age and whether it is known.
func (t Transaction) Age() (int, bool) {
	if t.UserAge == nil {
		return 0, false
	}
	return *t.UserAge, true
}

// Sanitize returns a copy with malformed values replaced by their defaults
// so downstream scoring never sees NaN, infinities or out-of-range fields.
func (t Transaction) Sanitize() Transaction {
	out := t
	out.Amount = finiteNonNegative(t.Amount, 0)
	out.UserAverageAmount = finiteNonNegative(t.UserAverageAmount, 0)
	out.UserMaxTransactionAmount = finiteNonNegative(t.UserMaxTransactionAmount, 0)
	out.UserRegistrationDays = finiteNonNegative(t.UserRegistrationDays, DefaultRegistrationDays)

	if t.UserAccountAgeDays != nil {
		v := finiteNonNegative(*t.UserAccountAgeDays, DefaultRegistrationDays)
		out.UserAccountAgeDays = &v
	}
	if t.AvgTransactionAmount != nil {
		v := finiteNonNegative(*t.AvgTransactionAmount, out.Amount)
		out.AvgTransactionAmount = &v
	}
	if t.UserAge != nil {
		v := *t.UserAge
		out.UserAge = &v
	}

	if t.Hour < 0 || t.Hour > 23 {
		out.Hour = DefaultHour
	}
	if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
		out.DayOfWeek = 0
	}
	if t.Month < 1 || t.Month > 12 {
		out.Month = 1
	}
	if t.UserTotalTransactions < 0 {
		out.UserTotalTransactions = 0
	}
	if t.UserFraudCount < 0 {
		out.UserFraudCount = 0
	}
	if t.TransactionCount24h < 0 {
		out.TransactionCount24h = DefaultCount24h
	}
	if t.TransactionCount7d < 0 {
		out.TransactionCount7d = DefaultCount7d
	}
	return out
}

func finiteNonNegative(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fallback
	}
	return v
}
