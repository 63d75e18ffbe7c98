package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// createTestStore creates a file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// insertN inserts n fully-present readings with every channel set to the
// row index and returns the assigned ids.
func insertN(t *testing.T, s *Store, n int) []int64 {
	t.Helper()
	ctx := context.Background()
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		features := make([]telemetry.Measurement, len(telemetry.FeatureColumns))
		for j := range features {
			features[j] = telemetry.Some(float64(i))
		}
		id, err := s.InsertReading(ctx, telemetry.Reading{
			ObservedAt: time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
			Features:   features,
		})
		if err != nil {
			t.Fatalf("InsertReading() failed: %v", err)
		}
		ids[i] = id
	}
	return ids
}
