package training

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is trained with full-batch gradient descent.
// Balanced reweights rows so both classes carry equal total weight, which
// matters for the stroke dataset where positives are about 5%.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`

	LearningRate float64 `json:"-"`
	Epochs       int     `json:"-"`
	L2           float64 `json:"-"`
	Balanced     bool    `json:"-"`
}

func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{LearningRate: 0.1, Epochs: 500, L2: 1e-4, Balanced: true}
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return ErrNoData
	}
	if len(X) != len(y) {
		return fmt.Errorf("x has %d rows, y has %d", len(X), len(y))
	}
	for i, c := range y {
		if c != 0 && c != 1 {
			return fmt.Errorf("label %d at row %d is not 0 or 1", c, i)
		}
	}

	cols := len(X[0])
	if cols == 0 {
		return fmt.Errorf("x has no feature columns")
	}
	for i, row := range X {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
	}

	sampleWeight := make([]float64, len(y))
	for i := range sampleWeight {
		sampleWeight[i] = 1
	}
	if m.Balanced {
		var counts [2]int
		for _, c := range y {
			counts[c]++
		}
		for i, c := range y {
			if counts[c] > 0 {
				sampleWeight[i] = float64(len(y)) / (2 * float64(counts[c]))
			}
		}
	}

	x := toDense(X)
	n := float64(len(X))
	w := mat.NewVecDense(cols, nil)
	z := mat.NewVecDense(len(X), nil)
	r := make([]float64, len(X))
	rv := mat.NewVecDense(len(r), r) // shares r
	grad := mat.NewVecDense(cols, nil)
	bias := 0.0

	for epoch := 0; epoch < m.Epochs; epoch++ {
		z.MulVec(x, w)
		for i := range r {
			r[i] = (sigmoid(z.AtVec(i)+bias) - float64(y[i])) * sampleWeight[i]
		}

		// grad = X^T r / n + L2 w
		grad.MulVec(x.T(), rv)
		grad.ScaleVec(1/n, grad)
		grad.AddScaledVec(grad, m.L2, w)

		w.AddScaledVec(w, -m.LearningRate, grad)
		bias -= m.LearningRate * floats.Sum(r) / n
	}

	m.Weights = append([]float64(nil), w.RawVector().Data...)
	m.Bias = bias
	return nil
}

func (m *LogisticRegression) proba(x []float64) float64 {
	return sigmoid(floats.Dot(m.Weights, x) + m.Bias)
}

// PredictProba returns P(stroke) for each row.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = m.proba(row)
	}
	return out
}

// Predict thresholds PredictProba at 0.5.
func (m *LogisticRegression) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, p := range m.PredictProba(X) {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}
