//go:build integration

package postgres

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaayf/smartmedishop/internal/domain/model"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/valueobject"
	pgutil "github.com/saaayf/smartmedishop/pkg/postgres"
	"github.com/saaayf/smartmedishop/pkg/testutil"
)

func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "migrations")
}

func setupRepositories(t *testing.T) (*AnalysisRepository, *AlertRepository, *testutil.PostgresContainer) {
	t.Helper()

	pg := testutil.NewPostgresContainer(context.Background(), t)
	t.Cleanup(func() { pg.Cleanup(t) })
	pg.RunMigrations(t, migrationsDir())

	return NewAnalysisRepository(pg.Pool), NewAlertRepository(pg.Pool), pg
}

func newAnalysis(t *testing.T, at time.Time, seq int, score float64) *model.FraudAnalysis {
	t.Helper()

	tx := model.DefaultTransaction()
	tx.Amount = 1234.567
	tx.Hour = 2

	level := valueobject.RiskLevelFromScore(score)
	result := model.AnalysisResult{
		Success:    true,
		FraudScore: score,
		Confidence: score,
		RiskLevel:  level,
		IsFraud:    level.IsFraud(),
		Method:     valueobject.MethodRuleBased,
		Reasons:    []string{"Transaction made during unusual hours"},
	}

	analysis, err := model.NewFraudAnalysis(model.NewTransactionRef(at, seq), tx, result, at)
	require.NoError(t, err)
	return analysis
}

func TestAnalysisRepository_SaveAndFind(t *testing.T) {
	analyses, _, pg := setupRepositories(t)
	ctx := context.Background()

	t.Run("round trips an analysis with its alert", func(t *testing.T) {
		pg.Truncate(t, "fraud_alerts", "fraud_analyses")

		saved := newAnalysis(t, analyzedAt, 1001, 0.8)
		require.NotNil(t, saved.Alert())
		testutil.RequireNoError(t, analyses.Save(ctx, saved))

		found, err := analyses.FindByTransactionRef(ctx, saved.TransactionRef())
		require.NoError(t, err)

		assert.Equal(t, saved.ID(), found.ID())
		assert.InDelta(t, 1234.57, found.Transaction().Amount, 0.001)
		assert.Equal(t, 2, found.Transaction().Hour)
		testutil.AssertScore(t, 0.8, found.Result().FraudScore)
		assert.Equal(t, valueobject.RiskLevelCritical, found.Result().RiskLevel)
		assert.Equal(t, saved.Result().Reasons, found.Result().Reasons)

		require.NotNil(t, found.Alert())
		assert.Equal(t, saved.Alert().ID(), found.Alert().ID())
		assert.Equal(t, valueobject.AlertStatusPending, found.Alert().Status())
	})

	t.Run("low risk analysis has no alert", func(t *testing.T) {
		pg.Truncate(t, "fraud_alerts", "fraud_analyses")

		saved := newAnalysis(t, analyzedAt, 1002, 0.1)
		require.NoError(t, analyses.Save(ctx, saved))

		found, err := analyses.FindByTransactionRef(ctx, saved.TransactionRef())
		require.NoError(t, err)
		assert.Nil(t, found.Alert())
	})

	t.Run("unknown ref is not found", func(t *testing.T) {
		_, err := analyses.FindByTransactionRef(ctx, "TXN_20200101_000000_0000")
		assert.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("duplicate ref is rejected", func(t *testing.T) {
		pg.Truncate(t, "fraud_alerts", "fraud_analyses")

		require.NoError(t, analyses.Save(ctx, newAnalysis(t, analyzedAt, 1003, 0.1)))
		err := analyses.Save(ctx, newAnalysis(t, analyzedAt, 1003, 0.1))
		testutil.AssertErrorContains(t, err, "failed to insert analysis")
	})
}

func TestAnalysisRepository_ListRecent(t *testing.T) {
	analyses, _, pg := setupRepositories(t)
	ctx := context.Background()
	pg.Truncate(t, "fraud_alerts", "fraud_analyses")

	for i := range 3 {
		at := analyzedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, analyses.Save(ctx, newAnalysis(t, at, 2000+i, 0.2)))
	}

	recent, err := analyses.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, model.NewTransactionRef(analyzedAt.Add(2*time.Minute), 2002), recent[0].TransactionRef())
	assert.Equal(t, model.NewTransactionRef(analyzedAt.Add(time.Minute), 2001), recent[1].TransactionRef())
}

func TestAlertRepository_ListAndUpdate(t *testing.T) {
	analyses, alerts, pg := setupRepositories(t)
	ctx := context.Background()
	pg.Truncate(t, "fraud_alerts", "fraud_analyses")

	first := newAnalysis(t, analyzedAt, 3001, 0.6)
	second := newAnalysis(t, analyzedAt.Add(time.Minute), 3002, 0.9)
	require.NoError(t, analyses.Save(ctx, first))
	require.NoError(t, analyses.Save(ctx, second))

	all, err := alerts.ListAlerts(ctx, valueobject.AlertStatus{}, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.Alert().ID(), all[0].ID())

	alert, err := alerts.FindAlertByID(ctx, first.Alert().ID())
	require.NoError(t, err)
	require.NoError(t, alert.TransitionTo(valueobject.AlertStatusReviewed, analyzedAt.Add(time.Hour)))
	require.NoError(t, alerts.UpdateAlert(ctx, alert, valueobject.AlertStatusPending))

	reviewed, err := alerts.ListAlerts(ctx, valueobject.AlertStatusReviewed, 10)
	require.NoError(t, err)
	require.Len(t, reviewed, 1)
	assert.Equal(t, first.Alert().ID(), reviewed[0].ID())

	pending, err := alerts.ListAlerts(ctx, valueobject.AlertStatusPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = alerts.FindAlertByID(ctx, uuid.New())
	assert.ErrorIs(t, err, port.ErrNotFound)

	missing := model.ReconstructAlert(uuid.New(), uuid.New(), "TXN_20260101_000000_1000", 0.9,
		valueobject.RiskLevelHigh, nil, valueobject.AlertStatusReviewed, analyzedAt, analyzedAt)
	assert.ErrorIs(t, alerts.UpdateAlert(ctx, missing, valueobject.AlertStatusPending), port.ErrNotFound)
}

func TestAlertRepository_UpdateRejectsStaleStatus(t *testing.T) {
	analyses, alerts, pg := setupRepositories(t)
	ctx := context.Background()
	pg.Truncate(t, "fraud_alerts", "fraud_analyses")

	analysis := newAnalysis(t, analyzedAt, 4001, 0.9)
	require.NoError(t, analyses.Save(ctx, analysis))

	// Two reviewers load the same PENDING alert.
	resolving, err := alerts.FindAlertByID(ctx, analysis.Alert().ID())
	require.NoError(t, err)
	dismissing, err := alerts.FindAlertByID(ctx, analysis.Alert().ID())
	require.NoError(t, err)

	require.NoError(t, resolving.TransitionTo(valueobject.AlertStatusResolved, analyzedAt.Add(time.Hour)))
	require.NoError(t, dismissing.TransitionTo(valueobject.AlertStatusDismissed, analyzedAt.Add(time.Hour)))

	require.NoError(t, alerts.UpdateAlert(ctx, resolving, valueobject.AlertStatusPending))
	err = alerts.UpdateAlert(ctx, dismissing, valueobject.AlertStatusPending)
	require.ErrorIs(t, err, port.ErrConflict)

	stored, err := alerts.FindAlertByID(ctx, analysis.Alert().ID())
	require.NoError(t, err)
	assert.Equal(t, valueobject.AlertStatusResolved, stored.Status())
}

func TestMigrations_DownThenUp(t *testing.T) {
	ctx := context.Background()
	analyses, _, pg := setupRepositories(t)

	require.NoError(t, pgutil.RunMigrationsDown(pg.DSN, migrationsDir()))

	var exists bool
	err := pg.Pool.QueryRow(ctx, `SELECT to_regclass('public.fraud_analyses') IS NOT NULL`).Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, pgutil.RunMigrations(pg.DSN, migrationsDir()))
	require.NoError(t, pgutil.RunMigrations(pg.DSN, migrationsDir()), "no pending migrations is not an error")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, analyses.Save(ctx, newAnalysis(t, at, 1, 0.2)))
}
