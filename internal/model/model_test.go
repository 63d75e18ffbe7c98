package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/testutil"
)

// testParams keeps fits fast while staying representative.
func testParams() Params {
	return Params{Contamination: 0.05, Trees: 100, SampleSize: 128, Seed: 42}
}

func TestFitEmptySnapshot(t *testing.T) {
	_, _, err := Fit(nil, testParams())
	require.ErrorIs(t, err, ErrEmptySnapshot)
}

func TestFitRejectsBadParams(t *testing.T) {
	rows := testutil.GaussianMatrix(50, 10, 1, 1)

	for _, p := range []Params{
		{Contamination: 0, Trees: 100, SampleSize: 64, Seed: 1},
		{Contamination: 0.6, Trees: 100, SampleSize: 64, Seed: 1},
		{Contamination: 0.05, Trees: 0, SampleSize: 64, Seed: 1},
		{Contamination: 0.05, Trees: 100, SampleSize: 0, Seed: 1},
	} {
		_, _, err := Fit(rows, p)
		assert.Error(t, err, "params %+v should be rejected", p)
	}
}

func TestFitDiagnostics(t *testing.T) {
	rows := testutil.GaussianMatrix(500, 10, 1, 7)

	_, diag, err := Fit(rows, testParams())
	require.NoError(t, err)

	assert.Equal(t, 500, diag.Rows)
	assert.LessOrEqual(t, diag.MinScore, diag.MaxScore)
	// The contamination prior pins roughly that fraction of the training
	// set below the decision offset.
	assert.Greater(t, diag.TrainingAnomalies, 0)
	assert.Less(t, diag.TrainingAnomalies, 50, "5%% contamination should flag well under 10%% of 500 rows")
}

func TestFitIsDeterministicForFixedSeed(t *testing.T) {
	rows := testutil.GaussianMatrix(300, 5, 2, 3)
	batch := testutil.GaussianMatrix(20, 5, 2, 99)

	m1, diag1, err := Fit(rows, testParams())
	require.NoError(t, err)
	m2, diag2, err := Fit(rows, testParams())
	require.NoError(t, err)

	assert.Equal(t, diag1, diag2)
	assert.Equal(t, m1.ScoreBatch(batch), m2.ScoreBatch(batch))
}

func TestScoreBatchPreservesOrderAndLength(t *testing.T) {
	rows := testutil.GaussianMatrix(200, 0, 1, 11)
	m, _, err := Fit(rows, testParams())
	require.NoError(t, err)

	batch := [][]telemetry.Measurement{
		testutil.ConstantRow(0),
		testutil.ConstantRow(100),
		testutil.ConstantRow(0),
	}
	outcomes := m.ScoreBatch(batch)
	require.Len(t, outcomes, 3)

	// Identical inputs produce identical outputs; positions are aligned.
	assert.Equal(t, outcomes[0], outcomes[2])
	assert.Less(t, outcomes[1].Score, outcomes[0].Score, "the extreme row scores lower")
}

func TestScoreBatchFlagsExtremeOutlier(t *testing.T) {
	// Training data centered at 10 with unit spread; find its max value.
	rows := testutil.GaussianMatrix(500, 10, 1, 21)
	trainMax := rows[0][0].Value
	for _, r := range rows {
		for _, mmt := range r {
			if mmt.Value > trainMax {
				trainMax = mmt.Value
			}
		}
	}

	m, _, err := Fit(rows, testParams())
	require.NoError(t, err)

	// Ten rows at the training mean, except row 5 at 10x the training max.
	batch := make([][]telemetry.Measurement, 10)
	for i := range batch {
		batch[i] = testutil.ConstantRow(10)
	}
	batch[5] = testutil.ConstantRow(10 * trainMax)

	outcomes := m.ScoreBatch(batch)
	require.Len(t, outcomes, 10)

	assert.True(t, outcomes[5].IsAnomaly, "the extreme row must be flagged")
	for i, o := range outcomes {
		if i == 5 {
			continue
		}
		assert.Less(t, outcomes[5].Score, o.Score,
			"the extreme row must have the minimum score in the batch")
	}
}

func TestScoreBatchImputesMissingValues(t *testing.T) {
	rows := testutil.GaussianMatrix(300, 10, 1, 31)
	m, _, err := Fit(rows, testParams())
	require.NoError(t, err)

	// An all-missing row collapses to the per-feature medians, which sit in
	// the densest region of the training data: unambiguously normal.
	missing := make([]telemetry.Measurement, len(telemetry.FeatureColumns))
	outcomes := m.ScoreBatch([][]telemetry.Measurement{missing})
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].IsAnomaly, "missing data is imputed, never an anomaly by itself")
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 0.05, p.Contamination)
	assert.Equal(t, 200, p.Trees)
	assert.Equal(t, 256, p.SampleSize)
	assert.Equal(t, int64(42), p.Seed)
	require.NoError(t, p.validate())
}
