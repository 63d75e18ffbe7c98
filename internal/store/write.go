package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// OutcomeUpdate is one durable scoring result keyed by reading id.
type OutcomeUpdate struct {
	ID        int64
	IsAnomaly bool
	Score     float64
}

// insertSQL covers observed_at plus every feature column.
var insertSQL = fmt.Sprintf(
	"INSERT INTO readings (observed_at, %s) VALUES (?%s)",
	featureCols,
	strings.Repeat(", ?", len(telemetry.FeatureColumns)),
)

// InsertReading appends one reading with outcome fields absent and returns
// the assigned id. Any outcome carried by the reading is ignored: outcomes
// are determined by the scoring pipeline, never by the source data.
func (s *Store) InsertReading(ctx context.Context, r telemetry.Reading) (int64, error) {
	args := make([]any, 0, len(r.Features)+1)
	args = append(args, r.ObservedAt)
	for _, m := range r.Features {
		if m.Valid {
			args = append(args, m.Value)
		} else {
			args = append(args, nil)
		}
	}

	res, err := s.db.ExecContext(ctx, insertSQL, args...)
	if err != nil {
		return 0, fmt.Errorf("insert reading: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert reading: last id: %w", err)
	}
	return id, nil
}

// InsertReadings appends a batch of readings in a single transaction.
// Used by the seeder to load the training prefix in chunks.
func (s *Store) InsertReadings(ctx context.Context, readings []telemetry.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert readings: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("insert readings: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		args := make([]any, 0, len(r.Features)+1)
		args = append(args, r.ObservedAt)
		for _, m := range r.Features {
			if m.Valid {
				args = append(args, m.Value)
			} else {
				args = append(args, nil)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert readings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert readings: commit: %w", err)
	}
	return nil
}

// ApplyOutcomes durably writes outcomes for the listed ids as one
// transaction: either every update lands or none do.
//
// Each UPDATE is additionally guarded with is_anomaly IS NULL so an
// already-scored reading is never rewritten, even if a stale id slips into
// the batch. A guarded miss is silently skipped, not an error.
func (s *Store) ApplyOutcomes(ctx context.Context, updates []OutcomeUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply outcomes: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE readings
		SET is_anomaly = ?, anomaly_score = ?
		WHERE id = ? AND is_anomaly IS NULL
	`)
	if err != nil {
		return fmt.Errorf("apply outcomes: prepare: %w", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.IsAnomaly, u.Score, u.ID); err != nil {
			return fmt.Errorf("apply outcome for reading %d: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply outcomes: commit: %w", err)
	}
	return nil
}

// Truncate removes all readings and resets the id sequence.
// Used by the seeder when re-seeding an already-populated database.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM readings"); err != nil {
		return fmt.Errorf("truncate readings: %w", err)
	}
	// Reset AUTOINCREMENT so re-seeded ids start at 1 again.
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'readings'"); err != nil {
		return fmt.Errorf("truncate readings: reset sequence: %w", err)
	}
	return nil
}
