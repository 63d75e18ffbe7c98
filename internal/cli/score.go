package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/config"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/engine"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/model"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/store"
)

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	Database string
	Config   string
	Batch    int
	Interval time.Duration
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Train the model and run the continuous scoring loop",
		Long: `Train the anomaly model on the full persisted snapshot, then poll the
store for pending readings and score them in batches until interrupted.

Training failure (including an empty store) is fatal. Once the loop is
running, store connectivity failures trigger reconnection attempts and
never crash the process. Interrupt with Ctrl-C; an in-flight batch always
finishes scoring and persisting before the loop exits.

Examples:
  bridgectl score --db ./bridge.db
  bridgectl score --db ./bridge.db --batch 50 --interval 500ms`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.Flags().IntVar(&opts.Batch, "batch", 0, "readings scored per cycle (default from config)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "sleep between cycles (default from config)")

	return cmd
}

func runScore(opts *ScoreOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Batch > 0 {
		cfg.Scoring.BatchSize = opts.Batch
	}
	if opts.Interval > 0 {
		cfg.Scoring.Interval = config.Duration(opts.Interval)
	}

	// Initial connection failure is fatal; the reconnect policy only
	// applies once the loop is running.
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	m, _, err := engine.Train(ctx, st, modelParams(cfg))
	if err != nil {
		st.Close()
		if errors.Is(err, model.ErrEmptySnapshot) {
			return WrapExitError(ExitCommandError, "no training data", err)
		}
		return WrapExitError(ExitFailure, "training failed", err)
	}

	connect := func(ctx context.Context) (engine.Store, error) {
		return store.Open(opts.Database)
	}
	eng := engine.New(st, connect, m, engine.Config{
		BatchSize: cfg.Scoring.BatchSize,
		Interval:  cfg.Scoring.Interval.Std(),
	})

	fmt.Fprintln(cmd.OutOrStdout(), "Scoring loop started. Press Ctrl-C to stop.")
	summary := eng.Run(ctx)

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), summary)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Stopped after %s cycles: %s readings scored, %s anomalies found\n",
		formatCount(int64(summary.Cycles)), formatCount(summary.Scored), formatCount(summary.Anomalies))
	return nil
}
