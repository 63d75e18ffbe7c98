package model

import (
	"sort"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// Imputer replaces missing feature values with the per-feature median
// observed in the training snapshot.
type Imputer struct {
	// Medians holds one fill value per feature, positionally aligned with
	// telemetry.FeatureColumns.
	Medians []float64
}

// FitImputer computes per-feature medians over the present values of each
// column. A column with no present values at all gets a median of 0: there
// is nothing to learn from it, and 0 keeps the pipeline total.
func FitImputer(rows [][]telemetry.Measurement) *Imputer {
	if len(rows) == 0 {
		return &Imputer{}
	}

	width := len(rows[0])
	medians := make([]float64, width)
	column := make([]float64, 0, len(rows))

	for f := 0; f < width; f++ {
		column = column[:0]
		for _, row := range rows {
			if row[f].Valid {
				column = append(column, row[f].Value)
			}
		}
		medians[f] = median(column)
	}

	return &Imputer{Medians: medians}
}

// Transform returns a dense feature vector with every missing entry replaced
// by the fitted median. The input is not modified.
func (im *Imputer) Transform(row []telemetry.Measurement) []float64 {
	out := make([]float64, len(row))
	for i, m := range row {
		if m.Valid {
			out[i] = m.Value
		} else {
			out[i] = im.Medians[i]
		}
	}
	return out
}

// median returns the middle value of vals (average of the two middles for an
// even count), or 0 for an empty slice. vals is sorted in place.
func median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sort.Float64s(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
