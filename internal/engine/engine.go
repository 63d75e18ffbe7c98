package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/store"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// Store is the record-store surface the scoring loop needs. *store.Store
// satisfies it; tests substitute scripted fakes.
type Store interface {
	FetchPending(ctx context.Context, limit int) ([]telemetry.Reading, error)
	ApplyOutcomes(ctx context.Context, updates []store.OutcomeUpdate) error
	CountAnomalies(ctx context.Context) (int64, error)
	Close() error
}

// Connector reopens the store connection after a connectivity failure.
type Connector func(ctx context.Context) (Store, error)

// Scorer is the fitted scoring capability. *model.Model satisfies it.
type Scorer interface {
	ScoreBatch(rows [][]telemetry.Measurement) []telemetry.Outcome
}

// DefaultBatchSize bounds one cycle's batch, capping memory use and keeping
// write transactions short.
const DefaultBatchSize = 100

// DefaultInterval is the fixed sleep between cycles.
const DefaultInterval = 2 * time.Second

// defaultIdleLogEvery controls how often an idle loop emits a waiting
// status, in idle cycles, so operators can tell "caught up" from "stalled".
const defaultIdleLogEvery = 10

// Config tunes the scoring loop. Zero fields take the defaults above.
type Config struct {
	BatchSize    int
	Interval     time.Duration
	IdleLogEvery int
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.IdleLogEvery <= 0 {
		c.IdleLogEvery = defaultIdleLogEvery
	}
	return c
}

// Summary reports the loop's final totals.
type Summary struct {
	Cycles     int   `json:"cycles"`
	Scored     int64 `json:"scored"`
	Anomalies  int64 `json:"anomalies"`
	Reconnects int   `json:"reconnects"`
}

// Engine is the continuous scoring loop.
//
// Run must be called from exactly one goroutine; the engine holds no locks
// and relies on being the single writer of outcome fields.
type Engine struct {
	st      Store
	connect Connector
	scorer  Scorer
	cfg     Config

	runToken string
	state    State

	cycles         int
	idleCycles     int
	totalScored    int64
	totalAnomalies int64
	reconnects     int
}

// New creates an Engine over an already-connected store and a fitted
// scorer. connect is used only to reopen the store after a connectivity
// failure.
func New(st Store, connect Connector, scorer Scorer, cfg Config) *Engine {
	return &Engine{
		st:       st,
		connect:  connect,
		scorer:   scorer,
		cfg:      cfg.withDefaults(),
		runToken: uuid.Must(uuid.NewV7()).String(),
		state:    StateConnected,
	}
}

// State returns the loop's current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Reconnects returns the number of reconnect attempts made so far.
func (e *Engine) Reconnects() int {
	return e.reconnects
}

// Run executes the scoring loop until ctx is cancelled.
//
// Cancellation is observed only at the top of each cycle: an in-flight
// batch always finishes scoring and persisting before the loop exits, so no
// batch is ever partially scored and then abandoned. Store operations run
// on a non-cancelable child context for the same reason.
//
// Connectivity failures never abort the loop; they switch it to
// reconnecting, where it retries the connection once per cycle with the
// same fixed sleep, indefinitely. Non-connectivity errors are logged and
// the loop continues on the next cycle.
func (e *Engine) Run(ctx context.Context) Summary {
	slog.Info("scoring loop starting",
		"run", e.runToken,
		"batch_size", e.cfg.BatchSize,
		"interval", e.cfg.Interval,
	)

	// Batches in flight must complete even after a shutdown request.
	opCtx := context.WithoutCancel(ctx)

	for {
		if ctx.Err() != nil {
			e.state = StateStopping
			slog.Info("shutdown requested, finishing up", "run", e.runToken)
			break
		}

		e.cycles++
		switch e.state {
		case StateConnected:
			if err := e.runCycle(opCtx); err != nil {
				if store.IsConnectivity(err) {
					slog.Warn("cycle failed, store unreachable",
						"run", e.runToken, "cycle", e.cycles, "error", err)
					e.state = StateReconnecting
					e.tryReconnect(opCtx)
				} else {
					slog.Error("cycle failed",
						"run", e.runToken, "cycle", e.cycles, "error", err)
				}
			}
		case StateReconnecting:
			e.tryReconnect(opCtx)
		}

		// Fixed-period poll: sleep the same interval whether or not work
		// was found. The sleep doubles as the shutdown suspension point.
		select {
		case <-ctx.Done():
		case <-time.After(e.cfg.Interval):
		}
	}

	if e.st != nil {
		if err := e.st.Close(); err != nil {
			slog.Error("closing store", "run", e.runToken, "error", err)
		}
	}
	e.state = StateStopped

	summary := Summary{
		Cycles:     e.cycles,
		Scored:     e.totalScored,
		Anomalies:  e.totalAnomalies,
		Reconnects: e.reconnects,
	}
	slog.Info("scoring loop stopped",
		"run", e.runToken,
		"cycles", summary.Cycles,
		"scored", summary.Scored,
		"anomalies", summary.Anomalies,
		"reconnects", summary.Reconnects,
	)
	return summary
}

// runCycle performs one connected cycle: fetch a bounded batch of pending
// readings, score it, persist the outcomes as one transaction, and refresh
// the anomaly total from the store.
func (e *Engine) runCycle(ctx context.Context) error {
	batch, err := e.st.FetchPending(ctx, e.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("fetch pending: %w", err)
	}

	if len(batch) == 0 {
		e.idleCycles++
		if e.idleCycles%e.cfg.IdleLogEvery == 0 {
			slog.Info("waiting for new readings",
				"run", e.runToken,
				"cycle", e.cycles,
				"total_scored", e.totalScored,
			)
		}
		return nil
	}
	e.idleCycles = 0

	outcomes := e.scorer.ScoreBatch(telemetry.FeatureRows(batch))

	updates := make([]store.OutcomeUpdate, len(batch))
	for i, r := range batch {
		updates[i] = store.OutcomeUpdate{
			ID:        r.ID,
			IsAnomaly: outcomes[i].IsAnomaly,
			Score:     outcomes[i].Score,
		}
	}
	if err := e.st.ApplyOutcomes(ctx, updates); err != nil {
		return fmt.Errorf("apply outcomes: %w", err)
	}
	e.totalScored += int64(len(updates))

	// Re-derive the anomaly total from the store rather than accumulating
	// in memory, so a restart cannot desynchronize it from ground truth.
	anomalies, err := e.st.CountAnomalies(ctx)
	if err != nil {
		return fmt.Errorf("count anomalies: %w", err)
	}
	e.totalAnomalies = anomalies

	slog.Info("batch scored",
		"run", e.runToken,
		"cycle", e.cycles,
		"scored", len(updates),
		"first_id", batch[0].ID,
		"last_id", batch[len(batch)-1].ID,
		"total_scored", e.totalScored,
		"total_anomalies", e.totalAnomalies,
	)
	return nil
}

// tryReconnect closes the current connection and opens a fresh one. On
// success the loop returns to connected for the next cycle; on failure it
// stays reconnecting and will retry after the fixed interval. There is no
// backoff and no attempt limit.
func (e *Engine) tryReconnect(ctx context.Context) {
	e.reconnects++

	if e.st != nil {
		_ = e.st.Close()
		e.st = nil
	}

	st, err := e.connect(ctx)
	if err != nil {
		slog.Warn("reconnect failed",
			"run", e.runToken,
			"attempt", e.reconnects,
			"error", err,
		)
		return
	}

	e.st = st
	e.state = StateConnected
	slog.Info("reconnected to store", "run", e.runToken, "attempt", e.reconnects)
}
