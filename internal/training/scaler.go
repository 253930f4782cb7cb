package training

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centres each column and scales it to unit variance.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

func (s *StandardScaler) Fit(X [][]float64) {
	if len(X) == 0 || len(X[0]) == 0 {
		return
	}
	m := toDense(X)
	_, cols := m.Dims()
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	col := make([]float64, len(X))
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(col, nil)
		// constant column
		if s.Std[j] == 0 {
			s.Std[j] = 1
		}
	}
}

// Transform returns a scaled copy of X.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, len(row))
		floats.SubTo(out[i], row, s.Mean)
		floats.Div(out[i], s.Std)
	}
	return out
}

// toDense copies rows into a matrix. Every row must have the same length.
func toDense(X [][]float64) *mat.Dense {
	m := mat.NewDense(len(X), len(X[0]), nil)
	for i, row := range X {
		m.SetRow(i, row)
	}
	return m
}
