package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/model"
	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// TrainingStore is the store surface the training coordinator needs.
type TrainingStore interface {
	TrainingRows(ctx context.Context) ([][]telemetry.Measurement, error)
}

// Train loads the full historical snapshot and fits the scoring model.
//
// Training runs exactly once, before the scoring loop starts; the returned
// model is immutable and held in memory for the lifetime of the process. A
// restart re-trains from scratch. An empty snapshot is a fatal condition
// surfaced as model.ErrEmptySnapshot.
func Train(ctx context.Context, st TrainingStore, p model.Params) (*model.Model, model.Diagnostics, error) {
	slog.Info("loading training snapshot")
	rows, err := st.TrainingRows(ctx)
	if err != nil {
		return nil, model.Diagnostics{}, fmt.Errorf("load training snapshot: %w", err)
	}
	slog.Info("training snapshot loaded", "rows", len(rows))

	m, diag, err := model.Fit(rows, p)
	if err != nil {
		return nil, model.Diagnostics{}, fmt.Errorf("fit model: %w", err)
	}

	slog.Info("model trained",
		"rows", diag.Rows,
		"training_anomalies", diag.TrainingAnomalies,
		"min_score", diag.MinScore,
		"max_score", diag.MaxScore,
		"trees", p.Trees,
		"contamination", p.Contamination,
	)
	return m, diag, nil
}
