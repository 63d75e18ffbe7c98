// Package testutil provides deterministic builders for telemetry readings
// and feature matrices used by tests across packages.
package testutil

import (
	"math/rand"
	"time"

	"github.com/luctfyal12/real-time-bridge-anomaly-detection/internal/telemetry"
)

// Row builds a fully-present feature vector from values, padding with the
// last value if fewer than len(telemetry.FeatureColumns) are given.
func Row(values ...float64) []telemetry.Measurement {
	row := make([]telemetry.Measurement, len(telemetry.FeatureColumns))
	for i := range row {
		v := values[len(values)-1]
		if i < len(values) {
			v = values[i]
		}
		row[i] = telemetry.Some(v)
	}
	return row
}

// ConstantRow builds a feature vector with every channel set to v.
func ConstantRow(v float64) []telemetry.Measurement {
	return Row(v)
}

// Reading builds an unscored reading observed now with every channel set
// to v.
func Reading(v float64) telemetry.Reading {
	return telemetry.Reading{
		ObservedAt: time.Now(),
		Features:   ConstantRow(v),
	}
}

// GaussianMatrix builds n feature rows drawn from independent normals with
// the given per-row mean and standard deviation, seeded for repeatability.
func GaussianMatrix(n int, mean, stddev float64, seed int64) [][]telemetry.Measurement {
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]telemetry.Measurement, n)
	for i := range rows {
		row := make([]telemetry.Measurement, len(telemetry.FeatureColumns))
		for j := range row {
			row[j] = telemetry.Some(mean + rng.NormFloat64()*stddev)
		}
		rows[i] = row
	}
	return rows
}
