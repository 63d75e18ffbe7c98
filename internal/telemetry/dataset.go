package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are the formats accepted for the CSV timestamp column,
// tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Dataset is an in-memory historical snapshot loaded from CSV, in file order.
//
// Both the seeder and the replay producer load the same file through this
// type, so the two processes agree on row ordering and therefore on where
// the split boundary falls.
type Dataset struct {
	Readings []Reading
}

// LoadCSV reads a historical dataset from path.
//
// Header names are lower-cased before matching, so the loader accepts both
// the raw export casing and snake_case. A timestamp column is optional; the
// feature columns in FeatureColumns are required. Blank or non-numeric
// feature cells become missing measurements, never errors.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses a dataset from r. See LoadCSV for the accepted shape.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}

	featureIdx := make([]int, len(FeatureColumns))
	for i, name := range FeatureColumns {
		idx, ok := colIndex[name]
		if !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
		featureIdx[i] = idx
	}
	tsIdx, hasTS := colIndex["timestamp"]

	ds := &Dataset{}
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		reading := Reading{Features: make([]Measurement, len(FeatureColumns))}
		if hasTS {
			reading.ObservedAt = parseTimestamp(record[tsIdx])
		}
		for i, idx := range featureIdx {
			reading.Features[i] = parseMeasurement(record[idx])
		}
		ds.Readings = append(ds.Readings, reading)
	}

	return ds, nil
}

// Len returns the number of rows in the dataset.
func (d *Dataset) Len() int {
	return len(d.Readings)
}

// Split divides the dataset at floor(N*ratio): the training prefix is
// [0, k) and the replay suffix is [k, N). The two slices never share a row.
func (d *Dataset) Split(ratio float64) (train, replay []Reading) {
	k := int(float64(len(d.Readings)) * ratio)
	return d.Readings[:k], d.Readings[k:]
}

func parseMeasurement(cell string) Measurement {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return Measurement{}
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return Measurement{}
	}
	// CSV exports spell missing values as NaN; treat them as absent too.
	if v != v {
		return Measurement{}
	}
	return Some(v)
}

func parseTimestamp(cell string) time.Time {
	cell = strings.TrimSpace(cell)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t
		}
	}
	return time.Time{}
}
