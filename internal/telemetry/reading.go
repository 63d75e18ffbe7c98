package telemetry

import "time"

// FeatureColumns is the ordered set of sensor channels fed to the anomaly
// model. The order is significant: feature vectors, imputation statistics,
// and scaler statistics are all positionally aligned with this slice.
var FeatureColumns = []string{
	"strain_microstrain",
	"deflection_mm",
	"vibration_ms2",
	"tilt_deg",
	"displacement_mm",
	"cable_member_tension_kn",
}

// Measurement is a single feature value. Valid is false when the channel was
// absent from the source row (NULL in the store, blank cell in the CSV).
// The zero value is a missing measurement.
type Measurement struct {
	Value float64
	Valid bool
}

// Some returns a present measurement with the given value.
func Some(v float64) Measurement {
	return Measurement{Value: v, Valid: true}
}

// Outcome is the scoring result assigned to a reading exactly once.
// Score is the estimator's raw decision value; lower is more anomalous.
// The boolean label is authoritative, the score is diagnostic.
type Outcome struct {
	IsAnomaly bool
	Score     float64
}

// Reading is one telemetry record. ID is assigned by the store on insertion
// and is the sole ordering key for pending-work queries. Outcome is nil while
// the reading is pending; once set it is never rewritten.
type Reading struct {
	ID         int64
	ObservedAt time.Time
	Features   []Measurement // positionally aligned with FeatureColumns
	Outcome    *Outcome
}

// FeatureRows extracts the feature vectors of a batch, preserving order.
func FeatureRows(readings []Reading) [][]Measurement {
	rows := make([][]Measurement, len(readings))
	for i, r := range readings {
		rows[i] = r.Features
	}
	return rows
}
