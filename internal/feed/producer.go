// Package feed replays the held-out suffix of the historical dataset into
// the record store at a fixed cadence, simulating a live sensor stream.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// InsertStore is the store surface the producer needs.
type InsertStore interface {
	InsertReading(ctx context.Context, r telemetry.Reading) (int64, error)
}

// Stats reports how a replay went. Attempted counts rows the producer
// tried to insert; Inserted counts the ones the store accepted. Replay is
// best-effort, so the two can differ.
type Stats struct {
	Attempted int `json:"attempted"`
	Inserted  int `json:"inserted"`
}

// Producer replays a source sequence of readings one at a time.
type Producer struct {
	st       InsertStore
	source   []telemetry.Reading
	maxCount int
	interval time.Duration

	// now is the insertion-time clock; overridable in tests.
	now func() time.Time
}

// New creates a Producer over the replay subsequence. maxCount caps the
// number of rows replayed (0 means all of source); interval is the delay
// between insertions.
func New(st InsertStore, source []telemetry.Reading, maxCount int, interval time.Duration) *Producer {
	return &Producer{
		st:       st,
		source:   source,
		maxCount: maxCount,
		interval: interval,
		now:      time.Now,
	}
}

// Run replays the source sequence in order. Each reading is stripped of any
// pre-existing outcome, stamped with the current wall-clock time instead of
// its historical timestamp, and inserted as a new record.
//
// An insertion failure is logged and the reading is skipped; replay
// continues with the next one. Cancellation is honored between insertions,
// never mid-insert. No delay follows the final reading.
func (p *Producer) Run(ctx context.Context) Stats {
	total := len(p.source)
	if p.maxCount > 0 && p.maxCount < total {
		total = p.maxCount
	}

	runToken := uuid.Must(uuid.NewV7()).String()
	slog.Info("replay starting",
		"run", runToken,
		"rows", total,
		"available", len(p.source),
		"interval", p.interval,
	)

	var stats Stats
	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			slog.Info("replay cancelled", "run", runToken, "attempted", stats.Attempted)
			break
		}

		r := p.source[i]
		r.ID = 0
		r.Outcome = nil
		r.ObservedAt = p.now()

		stats.Attempted++
		id, err := p.st.InsertReading(ctx, r)
		if err != nil {
			// Best-effort: skip the failed row, keep replaying.
			slog.Warn("insert failed, skipping reading",
				"run", runToken, "row", i, "error", err)
		} else {
			stats.Inserted++
			slog.Debug("reading inserted",
				"run", runToken, "row", i, "id", id, "observed_at", r.ObservedAt)
		}

		if i < total-1 {
			select {
			case <-ctx.Done():
			case <-time.After(p.interval):
			}
		}
	}

	slog.Info("replay complete",
		"run", runToken,
		"attempted", stats.Attempted,
		"inserted", stats.Inserted,
	)
	return stats
}
