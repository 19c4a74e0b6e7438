package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

func TestDefaultTransaction(t *testing.T) {
	tx := model.DefaultTransaction()

	assert.Equal(t, 12, tx.Hour)
	assert.Equal(t, "credit_card", tx.PaymentMethod)
	assert.Equal(t, "desktop", tx.DeviceType)
	assert.Equal(t, "US", tx.LocationCountry)
	assert.Equal(t, "LOW", tx.UserRiskProfile)
	assert.Equal(t, 1, tx.TransactionCount24h)
	assert.Equal(t, 3, tx.TransactionCount7d)
	assert.InDelta(t, 30, tx.UserRegistrationDays, 1e-9)
	assert.Zero(t, tx.Amount)
	assert.Zero(t, tx.UserAverageAmount)

	age, known := tx.Age()
	require.True(t, known)
	assert.Equal(t, 30, age)
}

func TestTransaction_StampTime(t *testing.T) {
	tx := model.DefaultTransaction()
	tx.StampTime(analyzedAt) // Saturday

	assert.Equal(t, 9, tx.Hour)
	assert.Equal(t, 5, tx.DayOfWeek)
	assert.Equal(t, 3, tx.Month)
}

func TestTransaction_AccountAgeDays(t *testing.T) {
	tx := model.DefaultTransaction()
	assert.InDelta(t, 30, tx.AccountAgeDays(), 1e-9)

	explicit := 0.5
	tx.UserAccountAgeDays = &explicit
	assert.InDelta(t, 0.5, tx.AccountAgeDays(), 1e-9)
}

func TestTransaction_AverageAmount(t *testing.T) {
	tx := model.DefaultTransaction()
	tx.Amount = 80
	assert.InDelta(t, 80, tx.AverageAmount(), 1e-9)

	avg := 20.0
	tx.AvgTransactionAmount = &avg
	assert.InDelta(t, 20, tx.AverageAmount(), 1e-9)
}

func TestTransaction_Age_Unknown(t *testing.T) {
	tx := model.DefaultTransaction()
	tx.UserAge = nil

	_, known := tx.Age()
	assert.False(t, known)
}

func TestTransaction_Sanitize(t *testing.T) {
	nan := math.NaN()
	negAvg := -5.0

	tx := model.DefaultTransaction()
	tx.Amount = math.Inf(1)
	tx.UserAverageAmount = nan
	tx.UserMaxTransactionAmount = -1
	tx.UserRegistrationDays = nan
	tx.UserAccountAgeDays = &nan
	tx.AvgTransactionAmount = &negAvg
	tx.Hour = 31
	tx.DayOfWeek = -2
	tx.Month = 13
	tx.UserTotalTransactions = -4
	tx.UserFraudCount = -1
	tx.TransactionCount24h = -7
	tx.TransactionCount7d = -9

	out := tx.Sanitize()

	assert.Zero(t, out.Amount)
	assert.Zero(t, out.UserAverageAmount)
	assert.Zero(t, out.UserMaxTransactionAmount)
	assert.InDelta(t, 30, out.UserRegistrationDays, 1e-9)
	require.NotNil(t, out.UserAccountAgeDays)
	assert.InDelta(t, 30, *out.UserAccountAgeDays, 1e-9)
	require.NotNil(t, out.AvgTransactionAmount)
	assert.Zero(t, *out.AvgTransactionAmount)
	assert.Equal(t, 12, out.Hour)
	assert.Equal(t, 0, out.DayOfWeek)
	assert.Equal(t, 1, out.Month)
	assert.Zero(t, out.UserTotalTransactions)
	assert.Zero(t, out.UserFraudCount)
	assert.Equal(t, 1, out.TransactionCount24h)
	assert.Equal(t, 3, out.TransactionCount7d)

	// The receiver is untouched.
	assert.Equal(t, 31, tx.Hour)
	assert.True(t, math.IsNaN(*tx.UserAccountAgeDays))
}

func TestTransaction_Sanitize_KeepsValidValues(t *testing.T) {
	tx := model.DefaultTransaction()
	tx.Amount = 149.99
	tx.Hour = 23
	tx.DayOfWeek = 6
	tx.Month = 12

	assert.Equal(t, tx, tx.Sanitize())
}
