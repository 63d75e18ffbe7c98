package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/config"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/engine"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/model"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/store"
)

// TrainOptions holds flags for the train command.
type TrainOptions struct {
	*RootOptions
	Database string
	Config   string
}

// NewTrainCommand creates the train command.
func NewTrainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TrainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run a standalone training pass and report fit diagnostics",
		Long: `Fit the anomaly model on the full persisted snapshot and print the fit
diagnostics, without starting the scoring loop. The score command performs
the same pass at startup; train exists for operator dry runs.

Exits with an error if the store holds no readings: there is no model to
serve without training data.

Example:
  bridgectl train --db ./bridge.db`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config file")

	return cmd
}

func runTrain(opts *TrainOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	_, diag, err := engine.Train(ctx, st, modelParams(cfg))
	if err != nil {
		if errors.Is(err, model.ErrEmptySnapshot) {
			return WrapExitError(ExitCommandError, "no training data", err)
		}
		return WrapExitError(ExitFailure, "training failed", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), diag)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Model trained on %s rows\n", formatCount(int64(diag.Rows)))
	fmt.Fprintf(w, "Training anomalies: %s (%.1f%%)\n",
		formatCount(int64(diag.TrainingAnomalies)),
		float64(diag.TrainingAnomalies)/float64(diag.Rows)*100)
	fmt.Fprintf(w, "Score range: [%.4f, %.4f]\n", diag.MinScore, diag.MaxScore)
	return nil
}

// loadConfig loads the YAML config when a path is given, otherwise the
// defaults.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// modelParams maps the config's model section to training parameters.
func modelParams(cfg config.Config) model.Params {
	return model.Params{
		Contamination: cfg.Model.Contamination,
		Trees:         cfg.Model.Trees,
		SampleSize:    cfg.Model.SampleSize,
		Seed:          cfg.Model.Seed,
	}
}
