package telemetry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Timestamp,Strain_Microstrain,Deflection_mm,Vibration_ms2,Tilt_deg,Displacement_mm,Cable_Member_Tension_kN,Extra_Column"

func datasetCSV(rows ...string) string {
	return testHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestReadCSVLowercasesHeader(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(datasetCSV(
		"2024-01-01 00:00:00,1.5,2.5,3.5,4.5,5.5,6.5,99",
	)))
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	r := ds.Readings[0]
	require.Len(t, r.Features, len(FeatureColumns))
	assert.Equal(t, Some(1.5), r.Features[0])
	assert.Equal(t, Some(6.5), r.Features[5])
	assert.Equal(t, 2024, r.ObservedAt.Year())
}

func TestReadCSVMissingValues(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(datasetCSV(
		"2024-01-01 00:00:00,,2.0,NaN,4.0,not-a-number,6.0,0",
	)))
	require.NoError(t, err)

	r := ds.Readings[0]
	assert.False(t, r.Features[0].Valid, "blank cell should be missing")
	assert.True(t, r.Features[1].Valid)
	assert.False(t, r.Features[2].Valid, "NaN should be missing")
	assert.False(t, r.Features[4].Valid, "unparsable cell should be missing")
}

func TestReadCSVMissingRequiredColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("timestamp,strain_microstrain\n2024-01-01,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deflection_mm")
}

func TestSplitConsistency(t *testing.T) {
	rows := make([]string, 10)
	for i := range rows {
		rows[i] = "2024-01-01 00:00:00,1,2,3,4,5,6,0"
	}
	ds, err := ReadCSV(strings.NewReader(datasetCSV(rows...)))
	require.NoError(t, err)

	train, replay := ds.Split(0.7)
	assert.Len(t, train, 7)
	assert.Len(t, replay, 3)
	assert.Equal(t, ds.Len(), len(train)+len(replay), "split must not drop or duplicate rows")
}

func TestSplitBoundaryFloors(t *testing.T) {
	ds := &Dataset{Readings: make([]Reading, 9)}

	train, replay := ds.Split(0.7)
	// floor(9 * 0.7) = 6
	assert.Len(t, train, 6)
	assert.Len(t, replay, 3)
}

func TestFeatureRowsPreservesOrder(t *testing.T) {
	readings := []Reading{
		{Features: []Measurement{Some(1)}},
		{Features: []Measurement{Some(2)}},
		{Features: []Measurement{Some(3)}},
	}

	rows := FeatureRows(readings)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, float64(i+1), row[0].Value)
	}
}
