package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ScoreDelta is the tolerance used when comparing blended scores.
const ScoreDelta = 1e-9

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msgAndArgs ...any) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}

// AssertScore checks a score against want within ScoreDelta and within [0,1].
func AssertScore(t *testing.T, want, got float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want, got, ScoreDelta, msgAndArgs...)
	assert.GreaterOrEqual(t, got, 0.0, msgAndArgs...)
	assert.LessOrEqual(t, got, 1.0, msgAndArgs...)
}
