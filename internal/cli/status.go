package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Database string
}

// StatusReport holds the aggregate counts the status command reports.
type StatusReport struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Scored    int64 `json:"scored"`
	Anomalies int64 `json:"anomalies"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report total, pending, and anomaly counts",
		Long: `Report aggregate counts from the store: total readings, readings still
awaiting a scoring outcome, scored readings, and readings flagged anomalous.

Example:
  bridgectl status --db ./bridge.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	report, err := collectStatus(ctx, st)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to collect status", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	renderStatus(cmd.OutOrStdout(), report)
	return nil
}

// collectStatus gathers the aggregate counts.
func collectStatus(ctx context.Context, st *store.Store) (StatusReport, error) {
	total, err := st.CountTotal(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	pending, err := st.CountPending(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	anomalies, err := st.CountAnomalies(ctx)
	if err != nil {
		return StatusReport{}, err
	}

	return StatusReport{
		Total:     total,
		Pending:   pending,
		Scored:    total - pending,
		Anomalies: anomalies,
	}, nil
}

// renderStatus writes the text form of a status report.
func renderStatus(w io.Writer, r StatusReport) {
	fmt.Fprintln(w, "Store status")
	fmt.Fprintf(w, "  Total readings: %s\n", formatCount(r.Total))
	fmt.Fprintf(w, "  Pending:        %s\n", formatCount(r.Pending))
	fmt.Fprintf(w, "  Scored:         %s\n", formatCount(r.Scored))
	fmt.Fprintf(w, "  Anomalies:      %s\n", formatCount(r.Anomalies))
}
