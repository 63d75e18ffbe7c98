package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/config"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/store"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// seedChunkSize is the number of readings inserted per transaction while
// seeding.
const seedChunkSize = 5000

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
	CSV      string
	Ratio    float64
	Reset    bool
}

// SeedResult is the seed command's output payload.
type SeedResult struct {
	TotalRows   int `json:"total_rows"`
	SeededRows  int `json:"seeded_rows"`
	ReplayRows  int `json:"replay_rows"`
	StoredTotal int `json:"stored_total"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the training prefix of the historical dataset into the store",
		Long: `Load the first split-ratio fraction of the historical CSV into the store.

The remaining rows are reserved for the replay command, which streams them
into the store as simulated live data. Both commands must use the same CSV
and ratio or the replayed rows will overlap or gap the training set.

Seeding refuses to touch a non-empty store unless --reset is given, in
which case all existing readings are removed first.

Examples:
  bridgectl seed --db ./bridge.db --csv ./bridge_dataset.csv
  bridgectl seed --db ./bridge.db --csv ./bridge_dataset.csv --ratio 0.8 --reset`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.CSV, "csv", "", "path to historical dataset CSV (required)")
	_ = cmd.MarkFlagRequired("csv")
	cmd.Flags().Float64Var(&opts.Ratio, "ratio", config.DefaultSplitRatio, "training split ratio in (0, 1)")
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "clear existing readings before seeding")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Ratio <= 0 || opts.Ratio >= 1 {
		return WrapExitError(ExitCommandError, "invalid split ratio", fmt.Errorf("ratio %g outside (0, 1)", opts.Ratio))
	}

	ds, err := telemetry.LoadCSV(opts.CSV)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load dataset", err)
	}
	train, replay := ds.Split(opts.Ratio)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	existing, err := st.CountTotal(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to inspect database", err)
	}
	if existing > 0 {
		if !opts.Reset {
			return WrapExitError(ExitCommandError, "database not empty",
				fmt.Errorf("store already has %d readings; pass --reset to re-seed", existing))
		}
		if err := st.Truncate(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to clear database", err)
		}
	}

	for i := 0; i < len(train); i += seedChunkSize {
		end := i + seedChunkSize
		if end > len(train) {
			end = len(train)
		}
		if err := st.InsertReadings(ctx, train[i:end]); err != nil {
			return WrapExitError(ExitCommandError, "failed to seed readings", err)
		}
	}

	stored, err := st.CountTotal(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to verify seeded rows", err)
	}

	result := SeedResult{
		TotalRows:   ds.Len(),
		SeededRows:  len(train),
		ReplayRows:  len(replay),
		StoredTotal: int(stored),
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Seeded %s of %s rows (ratio %.2f)\n",
		formatCount(int64(result.SeededRows)), formatCount(int64(result.TotalRows)), opts.Ratio)
	fmt.Fprintf(w, "Reserved for replay: %s rows\n", formatCount(int64(result.ReplayRows)))
	fmt.Fprintf(w, "Store now holds %s readings\n", formatCount(stored))
	return nil
}
