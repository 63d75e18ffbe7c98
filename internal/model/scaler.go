package model

import "math"

// Scaler standardizes feature vectors with the per-feature mean and
// standard deviation of the (already imputed) training snapshot.
type Scaler struct {
	Means  []float64
	Scales []float64
}

// FitScaler computes per-feature mean and population standard deviation.
// A constant feature gets a scale of 1 so standardization maps it to 0
// instead of dividing by zero.
func FitScaler(matrix [][]float64) *Scaler {
	if len(matrix) == 0 {
		return &Scaler{}
	}

	width := len(matrix[0])
	n := float64(len(matrix))
	means := make([]float64, width)
	scales := make([]float64, width)

	for _, row := range matrix {
		for i, v := range row {
			means[i] += v
		}
	}
	for i := range means {
		means[i] /= n
	}

	for _, row := range matrix {
		for i, v := range row {
			d := v - means[i]
			scales[i] += d * d
		}
	}
	for i := range scales {
		scales[i] = math.Sqrt(scales[i] / n)
		if scales[i] == 0 {
			scales[i] = 1
		}
	}

	return &Scaler{Means: means, Scales: scales}
}

// Transform returns the standardized copy of row.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.Means[i]) / s.Scales[i]
	}
	return out
}
