package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// writeDatasetCSV writes a synthetic historical dataset with the given
// number of rows. Every feature channel in row i carries the value i+0.5,
// so row contents are recognizable after a round-trip through the store.
func writeDatasetCSV(t *testing.T, rows int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("timestamp," + strings.Join(telemetry.FeatureColumns, ",") + "\n")

	base := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		cells := make([]string, 0, len(telemetry.FeatureColumns)+1)
		cells = append(cells, base.Add(time.Duration(i)*time.Minute).Format(time.RFC3339))
		for range telemetry.FeatureColumns {
			cells = append(cells, strconv.FormatFloat(float64(i)+0.5, 'f', -1, 64))
		}
		b.WriteString(strings.Join(cells, ",") + "\n")
	}

	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

// writeYAML writes a config file with the given contents.
func writeYAML(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// runCommand executes a freshly-built command with the given args and
// returns its stdout.
func runCommand(t *testing.T, build func(*RootOptions) *cobra.Command, format string, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := build(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeEnvelope unmarshals a JSON command response into data.
func decodeEnvelope(t *testing.T, raw string, data any) {
	t.Helper()

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, data))
}
