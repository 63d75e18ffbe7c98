package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/store"
)

func TestScoreEmptyStoreFails(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bridge.db")

	_, err := runCommand(t, NewScoreCommand, "text", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no training data")
}

func TestScoreDrainsPendingUntilInterrupted(t *testing.T) {
	csvPath := writeDatasetCSV(t, 30)
	dbPath := filepath.Join(t.TempDir(), "bridge.db")

	_, err := runCommand(t, NewSeedCommand, "text", "--db", dbPath, "--csv", csvPath)
	require.NoError(t, err)
	_, err = runCommand(t, NewReplayCommand, "text",
		"--db", dbPath, "--csv", csvPath, "--interval", "0s")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buf := &bytes.Buffer{}
	cmd := NewScoreCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--interval", "1ms", "--batch", "50"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// Watch the store from a second connection until the loop catches up.
	watch, err := store.Open(dbPath)
	require.NoError(t, err)
	defer watch.Close()

	require.Eventually(t, func() bool {
		pending, err := watch.CountPending(context.Background())
		return err == nil && pending == 0
	}, 10*time.Second, 10*time.Millisecond, "every pending reading gets scored")

	cancel()
	require.NoError(t, <-done)

	out := buf.String()
	assert.Contains(t, out, "Scoring loop started")
	assert.Contains(t, out, "30 readings scored")

	total, err := watch.CountTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
}
