package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/config"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/feed"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/store"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	CSV      string
	Ratio    float64
	Count    int
	Interval time.Duration
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the held-out dataset suffix as a live sensor feed",
		Long: `Stream the replay suffix of the historical CSV into the store, one
reading per interval, stamped with the current wall-clock time. Outcome
fields from the source data are stripped; the scoring loop determines them.

Replay is best-effort: a failed insertion is logged and skipped, and the
remaining rows keep flowing. Interrupt with Ctrl-C; the producer stops
between insertions, never mid-insert.

Examples:
  bridgectl replay --db ./bridge.db --csv ./bridge_dataset.csv
  bridgectl replay --db ./bridge.db --csv ./bridge_dataset.csv --count 500 --interval 250ms`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "path to historical dataset CSV (required)")
	_ = cmd.MarkFlagRequired("csv")
	cmd.Flags().Float64Var(&opts.Ratio, "ratio", config.DefaultSplitRatio, "training split ratio in (0, 1); must match the seeded value")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "max rows to replay (0 = all remaining)")
	cmd.Flags().DurationVar(&opts.Interval, "interval", config.DefaultReplayInterval, "delay between insertions")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	if opts.Ratio <= 0 || opts.Ratio >= 1 {
		return WrapExitError(ExitCommandError, "invalid split ratio", fmt.Errorf("ratio %g outside (0, 1)", opts.Ratio))
	}
	if opts.Interval < 0 {
		return WrapExitError(ExitCommandError, "invalid interval", fmt.Errorf("interval must not be negative"))
	}

	ds, err := telemetry.LoadCSV(opts.CSV)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load dataset", err)
	}
	_, replay := ds.Split(opts.Ratio)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	producer := feed.New(st, replay, opts.Count, opts.Interval)
	stats := producer.Run(ctx)

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Replay complete: %s of %s rows inserted\n",
		formatCount(int64(stats.Inserted)), formatCount(int64(stats.Attempted)))
	return nil
}
