// Package training fits the offline stroke classifier and produces the
// metrics file shown on the data-scientist dashboard.
package training

import (
	"errors"
	"sort"

	"stroke-warning-system/internal/domain"
)

var (
	ErrNoData      = errors.New("no labelled data available to train the model")
	ErrSingleClass = errors.New("training data must contain both outcome classes")
)

// Dataset is the encoded design matrix.
type Dataset struct {
	X            [][]float64
	Y            []int
	FeatureNames []string
}

var numericFeatures = []string{"age", "hypertension", "heart_disease", "avg_glucose_level", "bmi"}

type categorical struct {
	name  string
	value func(p *domain.Patient) string
}

var categoricalFeatures = []categorical{
	{"gender", func(p *domain.Patient) string { return p.Gender }},
	{"ever_married", func(p *domain.Patient) string { return p.EverMarried }},
	{"work_type", func(p *domain.Patient) string { return p.WorkType }},
	{"residence_type", func(p *domain.Patient) string { return p.ResidenceType }},
	{"smoking_status", func(p *domain.Patient) string { return p.SmokingStatus }},
}

// BuildDataset one-hot encodes the categorical columns (categories sorted,
// so the layout is stable across runs). Rows without an outcome are skipped.
func BuildDataset(patients []domain.Patient) (*Dataset, error) {
	labelled := make([]*domain.Patient, 0, len(patients))
	for i := range patients {
		if patients[i].Stroke != nil {
			labelled = append(labelled, &patients[i])
		}
	}
	if len(labelled) == 0 {
		return nil, ErrNoData
	}

	vocab := make([][]string, len(categoricalFeatures))
	for ci, c := range categoricalFeatures {
		seen := map[string]struct{}{}
		for _, p := range labelled {
			seen[c.value(p)] = struct{}{}
		}
		for v := range seen {
			vocab[ci] = append(vocab[ci], v)
		}
		sort.Strings(vocab[ci])
	}

	names := append([]string{}, numericFeatures...)
	for ci, c := range categoricalFeatures {
		for _, v := range vocab[ci] {
			if v == "" {
				v = "missing"
			}
			names = append(names, c.name+"="+v)
		}
	}

	ds := &Dataset{FeatureNames: names, X: make([][]float64, 0, len(labelled)), Y: make([]int, 0, len(labelled))}
	for _, p := range labelled {
		row := make([]float64, 0, len(names))
		row = append(row, float64(p.Age), float64(p.Hypertension), float64(p.HeartDisease), p.AvgGlucoseLevel, p.BMI)
		for ci, c := range categoricalFeatures {
			v := c.value(p)
			for _, cat := range vocab[ci] {
				if cat == v {
					row = append(row, 1)
				} else {
					row = append(row, 0)
				}
			}
		}
		ds.X = append(ds.X, row)
		y := 0
		if *p.Stroke == 1 {
			y = 1
		}
		ds.Y = append(ds.Y, y)
	}
	return ds, nil
}

// ClassCounts returns the number of negative and positive rows.
func (d *Dataset) ClassCounts() (neg, pos int) {
	for _, y := range d.Y {
		if y == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}

func subset(X [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
