package training

import (
	"math"
	"sort"
	"time"
)

const ModelName = "logistic_regression"

type Options struct {
	TestSize float64
	Seed     int64
	Folds    int
}

func DefaultOptions() Options {
	return Options{TestSize: 0.2, Seed: 42, Folds: 5}
}

// Result is a fitted model with its hold-out evaluation.
type Result struct {
	Model   *LogisticRegression
	Scaler  *StandardScaler
	Metrics Metrics
}

// Train splits, scales on the training part only, fits, evaluates on the
// hold-out part and cross-validates on the training part.
func Train(ds *Dataset, opts Options) (*Result, error) {
	if ds == nil || len(ds.Y) == 0 {
		return nil, ErrNoData
	}
	trainIdx, testIdx, err := StratifiedSplit(ds.Y, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, err
	}
	xTrain, yTrain := subset(ds.X, ds.Y, trainIdx)
	xTest, yTest := subset(ds.X, ds.Y, testIdx)

	scaler := &StandardScaler{}
	scaler.Fit(xTrain)
	xTrain = scaler.Transform(xTrain)
	xTest = scaler.Transform(xTest)

	model := NewLogisticRegression()
	if err := model.Fit(xTrain, yTrain); err != nil {
		return nil, err
	}

	m := Evaluate(yTest, model.Predict(xTest), model.PredictProba(xTest))
	m.Model = ModelName
	m.TrainSize = len(yTrain)
	m.TestSize = len(yTest)
	m.TrainedAt = time.Now().UTC()
	m.FeatureImportance = importance(ds.FeatureNames, model.Weights)

	if opts.Folds > 1 && len(yTrain) >= opts.Folds {
		m.CVScores = crossValidate(xTrain, yTrain, opts.Folds, opts.Seed)
		m.CVMean, m.CVStd = meanStd(m.CVScores)
	}

	return &Result{Model: model, Scaler: scaler, Metrics: m}, nil
}

func crossValidate(X [][]float64, y []int, k int, seed int64) []float64 {
	folds := StratifiedKFold(y, k, seed)
	scores := make([]float64, 0, k)
	for f, held := range folds {
		var fitIdx []int
		for g, other := range folds {
			if g != f {
				fitIdx = append(fitIdx, other...)
			}
		}
		xFit, yFit := subset(X, y, fitIdx)
		xHeld, yHeld := subset(X, y, held)

		model := NewLogisticRegression()
		if err := model.Fit(xFit, yFit); err != nil {
			continue
		}
		scores = append(scores, Accuracy(yHeld, model.Predict(xHeld)))
	}
	return scores
}

func importance(names []string, weights []float64) []FeatureWeight {
	out := make([]FeatureWeight, len(weights))
	for i, w := range weights {
		out[i] = FeatureWeight{Feature: names[i], Weight: w, Importance: math.Abs(w)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	return out
}
