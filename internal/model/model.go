package model

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// ErrEmptySnapshot is returned by Fit when the training snapshot has no
// rows. There is no model to serve without training data; callers treat
// this as fatal.
var ErrEmptySnapshot = errors.New("training snapshot is empty")

// Params configures a training pass. The fit is deterministic for a fixed
// Seed.
type Params struct {
	// Contamination is the expected fraction of anomalies in the training
	// data, in (0, 0.5]. It fixes the decision offset, not the labels of
	// individual points.
	Contamination float64

	// Trees is the ensemble size.
	Trees int

	// SampleSize is the per-tree subsample size (capped at the snapshot
	// size).
	SampleSize int

	// Seed drives all randomness in the fit.
	Seed int64
}

// DefaultParams mirrors the production configuration: 5% contamination,
// 200 trees, 256-point subsamples, seed 42.
func DefaultParams() Params {
	return Params{
		Contamination: 0.05,
		Trees:         200,
		SampleSize:    256,
		Seed:          42,
	}
}

func (p Params) validate() error {
	if p.Contamination <= 0 || p.Contamination > 0.5 {
		return fmt.Errorf("contamination %g outside (0, 0.5]", p.Contamination)
	}
	if p.Trees <= 0 {
		return fmt.Errorf("trees must be positive, got %d", p.Trees)
	}
	if p.SampleSize <= 0 {
		return fmt.Errorf("sample size must be positive, got %d", p.SampleSize)
	}
	return nil
}

// Model bundles the three fitted artifacts. Immutable after Fit.
type Model struct {
	imputer *Imputer
	scaler  *Scaler
	forest  *Forest
}

// Diagnostics reports fit statistics for operator visibility. These numbers
// never control later behavior.
type Diagnostics struct {
	Rows              int     `json:"rows"`
	TrainingAnomalies int     `json:"training_anomalies"`
	MinScore          float64 `json:"min_score"`
	MaxScore          float64 `json:"max_score"`
}

// Fit trains the full pipeline on the historical snapshot: median
// imputation, standardization, then the isolation forest. Returns
// ErrEmptySnapshot when rows is empty.
func Fit(rows [][]telemetry.Measurement, p Params) (*Model, Diagnostics, error) {
	if len(rows) == 0 {
		return nil, Diagnostics{}, ErrEmptySnapshot
	}
	if err := p.validate(); err != nil {
		return nil, Diagnostics{}, fmt.Errorf("invalid params: %w", err)
	}

	imputer := FitImputer(rows)
	imputed := make([][]float64, len(rows))
	for i, row := range rows {
		imputed[i] = imputer.Transform(row)
	}

	scaler := FitScaler(imputed)
	scaled := make([][]float64, len(imputed))
	for i, row := range imputed {
		scaled[i] = scaler.Transform(row)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	forest := fitForest(scaled, p.Trees, p.SampleSize, p.Contamination, rng)

	m := &Model{imputer: imputer, scaler: scaler, forest: forest}

	diag := Diagnostics{Rows: len(rows)}
	for i, row := range scaled {
		d := forest.Decision(row)
		if d < 0 {
			diag.TrainingAnomalies++
		}
		if i == 0 || d < diag.MinScore {
			diag.MinScore = d
		}
		if i == 0 || d > diag.MaxScore {
			diag.MaxScore = d
		}
	}

	return m, diag, nil
}

// ScoreBatch classifies a batch of raw feature rows, preserving order: one
// outcome per input row. Each row is imputed, standardized, and passed to
// the forest's decision function. The label is the forest's native outlier
// prediction; the score is the raw decision value, lower meaning more
// anomalous.
//
// ScoreBatch does not mutate the model and is safe for concurrent use.
func (m *Model) ScoreBatch(rows [][]telemetry.Measurement) []telemetry.Outcome {
	outcomes := make([]telemetry.Outcome, len(rows))
	for i, row := range rows {
		d := m.forest.Decision(m.scaler.Transform(m.imputer.Transform(row)))
		outcomes[i] = telemetry.Outcome{IsAnomaly: d < 0, Score: d}
	}
	return outcomes
}
