package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// FetchPending returns up to limit readings with absent outcome, ordered by
// ascending id. Scored readings are never returned; the result is the next
// bounded batch of pending work.
func (s *Store) FetchPending(ctx context.Context, limit int) ([]telemetry.Reading, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, observed_at, %s
		FROM readings
		WHERE is_anomaly IS NULL
		ORDER BY id ASC
		LIMIT ?
	`, featureCols), limit)
	if err != nil {
		return nil, fmt.Errorf("query pending readings: %w", err)
	}
	defer rows.Close()

	var pending []telemetry.Reading
	for rows.Next() {
		var (
			id         int64
			observedAt time.Time
		)
		features := make([]sql.NullFloat64, len(telemetry.FeatureColumns))
		dest := make([]any, 0, len(features)+2)
		dest = append(dest, &id, &observedAt)
		for i := range features {
			dest = append(dest, &features[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan pending reading: %w", err)
		}

		r := telemetry.Reading{
			ID:         id,
			ObservedAt: observedAt,
			Features:   make([]telemetry.Measurement, len(features)),
		}
		for i, f := range features {
			if f.Valid {
				r.Features[i] = telemetry.Some(f.Float64)
			}
		}
		pending = append(pending, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending readings: %w", err)
	}
	return pending, nil
}

// TrainingRows returns the feature vectors of every persisted reading,
// ordered by ascending id. This is the full historical snapshot the
// training coordinator fits the model on.
func (s *Store) TrainingRows(ctx context.Context) ([][]telemetry.Measurement, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM readings
		ORDER BY id ASC
	`, featureCols))
	if err != nil {
		return nil, fmt.Errorf("query training rows: %w", err)
	}
	defer rows.Close()

	var matrix [][]telemetry.Measurement
	for rows.Next() {
		features := make([]sql.NullFloat64, len(telemetry.FeatureColumns))
		dest := make([]any, len(features))
		for i := range features {
			dest[i] = &features[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan training row: %w", err)
		}

		row := make([]telemetry.Measurement, len(features))
		for i, f := range features {
			if f.Valid {
				row[i] = telemetry.Some(f.Float64)
			}
		}
		matrix = append(matrix, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training rows: %w", err)
	}
	return matrix, nil
}

// CountTotal returns the number of readings in the store.
func (s *Store) CountTotal(ctx context.Context) (int64, error) {
	return s.countWhere(ctx, "1 = 1")
}

// CountPending returns the number of readings with absent outcome.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	return s.countWhere(ctx, "is_anomaly IS NULL")
}

// CountAnomalies returns the number of readings scored anomalous. The
// scoring loop re-derives its running anomaly total from this query so a
// restart cannot desynchronize it from ground truth.
func (s *Store) CountAnomalies(ctx context.Context) (int64, error) {
	return s.countWhere(ctx, "is_anomaly = 1")
}

func (s *Store) countWhere(ctx context.Context, predicate string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM readings WHERE "+predicate).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count readings: %w", err)
	}
	return n, nil
}
