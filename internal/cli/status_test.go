package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/store"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

func TestStatusMissingDatabaseFlag(t *testing.T) {
	_, err := runCommand(t, NewStatusCommand, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestStatusCountsSeededStore(t *testing.T) {
	csvPath := writeDatasetCSV(t, 10)
	dbPath := filepath.Join(t.TempDir(), "bridge.db")

	_, err := runCommand(t, NewSeedCommand, "text", "--db", dbPath, "--csv", csvPath)
	require.NoError(t, err)

	// Score two readings by hand so every bucket is non-zero.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, st.ApplyOutcomes(ctx, []store.OutcomeUpdate{
		{ID: 1, IsAnomaly: false, Score: 0.12},
		{ID: 2, IsAnomaly: true, Score: -0.05},
	}))
	st.Close()

	out, err := runCommand(t, NewStatusCommand, "json", "--db", dbPath)
	require.NoError(t, err)

	var report StatusReport
	decodeEnvelope(t, out, &report)
	assert.Equal(t, StatusReport{Total: 7, Pending: 5, Scored: 2, Anomalies: 1}, report)
}

func TestStatusEmptyStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bridge.db")

	out, err := runCommand(t, NewStatusCommand, "json", "--db", dbPath)
	require.NoError(t, err)

	var report StatusReport
	decodeEnvelope(t, out, &report)
	assert.Equal(t, StatusReport{}, report)
}

func TestRenderStatusGolden(t *testing.T) {
	buf := &bytes.Buffer{}
	renderStatus(buf, StatusReport{
		Total:     12345,
		Pending:   1204,
		Scored:    11141,
		Anomalies: 87,
	})

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "status_report", buf.Bytes())
}

func TestCollectStatusDerivesScoredCount(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bridge.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		r := telemetry.Reading{Features: make([]telemetry.Measurement, len(telemetry.FeatureColumns))}
		_, err := st.InsertReading(ctx, r)
		require.NoError(t, err)
	}
	require.NoError(t, st.ApplyOutcomes(ctx, []store.OutcomeUpdate{
		{ID: 3, IsAnomaly: true, Score: -0.2},
	}))

	report, err := collectStatus(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, StatusReport{Total: 4, Pending: 3, Scored: 1, Anomalies: 1}, report)
}
