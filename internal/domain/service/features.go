package service

import (
	"math"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

// NumericFeatures lists the numeric columns in the order the estimators
// were trained on.
var NumericFeatures = []string{
	"amount", "hour", "day_of_week", "user_age",
	"transaction_count_24h", "transaction_count_7d",
	"avg_transaction_amount", "user_registration_days",

	"is_weekend", "is_night", "is_business_hours", "is_morning", "is_evening",

	"amount_log", "amount_sqrt", "amount_percentile",
	"amount_vs_avg", "amount_deviation",

	"transactions_per_hour", "transactions_per_day",
	"high_frequency", "very_high_frequency", "frequency_ratio_24h_7d",

	"new_user", "recent_user", "established_user",

	"risk_score",
}

// CategoricalFeatures lists the label-encoded columns that follow the numeric ones.
var CategoricalFeatures = []string{
	"payment_method", "device_type", "location_country",
	"amount_category", "age_group", "risk_category",
}

// OutOfRangeLabel is the category assigned to values that fall outside every bin.
const OutOfRangeLabel = "nan"

// bin is a right-closed interval (lo, hi] with its label.
type bin struct {
	label  string
	lo, hi float64
}

var (
	amountBins = []bin{
		{label: "low", lo: 0, hi: 50},
		{label: "medium", lo: 50, hi: 200},
		{label: "high", lo: 200, hi: 1000},
		{label: "very_high", lo: 1000, hi: math.Inf(1)},
	}
	ageBins = []bin{
		{label: "teen", lo: 0, hi: 18},
		{label: "young", lo: 18, hi: 25},
		{label: "adult", lo: 25, hi: 35},
		{label: "middle", lo: 35, hi: 50},
		{label: "senior", lo: 50, hi: 100},
	}
	riskBins = []bin{
		{label: "low", lo: 0, hi: 0.2},
		{label: "medium", lo: 0.2, hi: 0.5},
		{label: "high", lo: 0.5, hi: 0.8},
		{label: "critical", lo: 0.8, hi: 1.0},
	}
)

func categorize(v float64, bins []bin) string {
	for _, b := range bins {
		if v > b.lo && v <= b.hi {
			return b.label
		}
	}
	return OutOfRangeLabel
}

// FeatureEngineer derives the estimator inputs from a single transaction.
type FeatureEngineer struct{}

// NewFeatureEngineer creates a FeatureEngineer.
func NewFeatureEngineer() *FeatureEngineer {
	return &FeatureEngineer{}
}

// Prepare builds the feature vector for tx.
func (f *FeatureEngineer) Prepare(tx model.Transaction) model.FeatureVector {
	num := make(map[string]float64, len(NumericFeatures))
	cat := make(map[string]string, len(CategoricalFeatures))

	amount := tx.Amount
	avg := tx.AverageAmount()
	age, ageKnown := tx.Age()

	num["amount"] = amount
	num["hour"] = float64(tx.Hour)
	num["day_of_week"] = float64(tx.DayOfWeek)
	num["user_age"] = float64(age)
	num["transaction_count_24h"] = float64(tx.TransactionCount24h)
	num["transaction_count_7d"] = float64(tx.TransactionCount7d)
	num["avg_transaction_amount"] = avg
	num["user_registration_days"] = tx.UserRegistrationDays

	// time
	night := isNightHour(tx.Hour)
	num["is_weekend"] = indicator(tx.DayOfWeek == 5 || tx.DayOfWeek == 6)
	num["is_night"] = indicator(night)
	num["is_business_hours"] = indicator(tx.Hour >= 9 && tx.Hour <= 17)
	num["is_morning"] = indicator(tx.Hour >= 6 && tx.Hour <= 12)
	num["is_evening"] = indicator(tx.Hour >= 18 && tx.Hour <= 22)

	// amount
	divisor := avg
	if divisor == 0 {
		divisor = 1
	}
	vsAvg := amount / divisor
	deviation := math.Abs(amount-avg) / divisor
	num["amount_log"] = math.Log1p(amount)
	num["amount_sqrt"] = math.Sqrt(amount)
	num["amount_percentile"] = 1.0 // rank of a single row
	num["amount_vs_avg"] = vsAvg
	num["amount_deviation"] = deviation

	// frequency
	c24 := float64(tx.TransactionCount24h)
	c7 := float64(tx.TransactionCount7d)
	highFrequency := tx.TransactionCount24h > 10
	num["transactions_per_hour"] = c24 / 24
	num["transactions_per_day"] = c7 / 7
	num["high_frequency"] = indicator(highFrequency)
	num["very_high_frequency"] = indicator(tx.TransactionCount24h > 20)
	num["frequency_ratio_24h_7d"] = c24 / (c7 + 1)

	// tenure
	days := tx.UserRegistrationDays
	newUser := days < 30
	num["new_user"] = indicator(newUser)
	num["recent_user"] = indicator(days >= 30 && days <= 90)
	num["established_user"] = indicator(days > 90)

	risk := 0.3*indicator(night) +
		0.4*indicator(highFrequency) +
		0.2*indicator(newUser) +
		0.3*indicator(vsAvg > 3) +
		0.2*indicator(deviation > 2)
	num["risk_score"] = risk

	cat["payment_method"] = tx.PaymentMethod
	cat["device_type"] = tx.DeviceType
	cat["location_country"] = tx.LocationCountry
	cat["amount_category"] = categorize(amount, amountBins)
	cat["risk_category"] = categorize(risk, riskBins)
	if ageKnown {
		cat["age_group"] = categorize(float64(age), ageBins)
	} else {
		cat["age_group"] = OutOfRangeLabel
	}

	return model.FeatureVector{Numeric: num, Categorical: cat}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
