package forecast

import "math"

// constantScale marks a column as constant; such columns are centered but not scaled.
const constantScale = 10 * 2.220446049250313e-16

// StandardScaler standardizes columns with statistics fitted on training rows only.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// FitScaler computes per-column mean and population standard deviation.
func FitScaler(rows [][]float64) *StandardScaler {
	if len(rows) == 0 {
		return &StandardScaler{}
	}
	width := len(rows[0])
	s := &StandardScaler{Mean: make([]float64, width), Scale: make([]float64, width)}
	n := float64(len(rows))
	for _, r := range rows {
		for j, v := range r {
			s.Mean[j] += v
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, r := range rows {
		for j, v := range r {
			d := v - s.Mean[j]
			s.Scale[j] += d * d
		}
	}
	for j := range s.Scale {
		s.Scale[j] = math.Sqrt(s.Scale[j] / n)
		if s.Scale[j] < constantScale {
			s.Scale[j] = 1
		}
	}
	return s
}

// Transform returns a standardized copy of row.
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// TransformAll standardizes every row.
func (s *StandardScaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = s.Transform(r)
	}
	return out
}
