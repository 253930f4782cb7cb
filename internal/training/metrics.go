package training

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Metrics is the JSON document written by `strokectl train` and read by
// the data-scientist dashboard.
type Metrics struct {
	Model                string          `json:"model"`
	Accuracy             float64         `json:"accuracy"`
	Precision            float64         `json:"precision"`
	Recall               float64         `json:"recall"`
	F1Score              float64         `json:"f1_score"`
	ROCAUC               *float64        `json:"roc_auc"`
	ConfusionMatrix      [][]int         `json:"confusion_matrix"` // [[TN FP] [FN TP]]
	ClassificationReport string          `json:"classification_report"`
	CVScores             []float64       `json:"cv_scores,omitempty"`
	CVMean               float64         `json:"cv_mean"`
	CVStd                float64         `json:"cv_std"`
	FeatureImportance    []FeatureWeight `json:"feature_importance,omitempty"`
	TrainSize            int             `json:"train_size"`
	TestSize             int             `json:"test_size"`
	Source               string          `json:"source,omitempty"`
	TrainedAt            time.Time       `json:"trained_at"`
}

// FeatureWeight ranks a feature by the magnitude of its standardised coefficient.
type FeatureWeight struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
	Weight     float64 `json:"weight"`
}

type confusion struct {
	tn, fp, fn, tp int
}

func confusionOf(yTrue, yPred []int) confusion {
	var c confusion
	for i, t := range yTrue {
		switch {
		case t == 1 && yPred[i] == 1:
			c.tp++
		case t == 1:
			c.fn++
		case yPred[i] == 1:
			c.fp++
		default:
			c.tn++
		}
	}
	return c
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func f1(precision, recall float64) float64 {
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

// Accuracy is the share of matching labels.
func Accuracy(yTrue, yPred []int) float64 {
	c := confusionOf(yTrue, yPred)
	return ratio(c.tp+c.tn, len(yTrue))
}

// Evaluate fills the hold-out metrics. proba may be nil.
func Evaluate(yTrue, yPred []int, proba []float64) Metrics {
	c := confusionOf(yTrue, yPred)
	precision := ratio(c.tp, c.tp+c.fp)
	recall := ratio(c.tp, c.tp+c.fn)

	m := Metrics{
		Accuracy:             ratio(c.tp+c.tn, len(yTrue)),
		Precision:            precision,
		Recall:               recall,
		F1Score:              f1(precision, recall),
		ConfusionMatrix:      [][]int{{c.tn, c.fp}, {c.fn, c.tp}},
		ClassificationReport: ClassificationReport(yTrue, yPred),
	}
	if proba != nil {
		if auc, ok := ROCAUC(yTrue, proba); ok {
			m.ROCAUC = &auc
		}
	}
	return m
}

// ROCAUC integrates the ROC curve with the trapezoidal rule, so tied
// scores contribute a diagonal step. ok is false when only one class is
// present.
func ROCAUC(yTrue []int, scores []float64) (float64, bool) {
	y := append([]float64(nil), scores...)
	classes := make([]bool, len(yTrue))
	pos := 0
	for i, c := range yTrue {
		classes[i] = c == 1
		pos += c
	}
	if pos == 0 || pos == len(yTrue) {
		return 0, false
	}

	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), true
}

// ClassificationReport renders per-class precision/recall/F1 in the
// familiar fixed-width text layout.
func ClassificationReport(yTrue, yPred []int) string {
	c := confusionOf(yTrue, yPred)
	type row struct {
		name                 string
		precision, recall, f float64
		support              int
	}

	p1, r1 := ratio(c.tp, c.tp+c.fp), ratio(c.tp, c.tp+c.fn)
	p0, r0 := ratio(c.tn, c.tn+c.fn), ratio(c.tn, c.tn+c.fp)
	s0, s1 := c.tn+c.fp, c.tp+c.fn
	rows := []row{
		{"0", p0, r0, f1(p0, r0), s0},
		{"1", p1, r1, f1(p1, r1), s1},
	}
	total := s0 + s1

	var b strings.Builder
	fmt.Fprintf(&b, "%12s %9s %9s %9s %9s\n\n", "", "precision", "recall", "f1-score", "support")
	for _, r := range rows {
		fmt.Fprintf(&b, "%12s %9.2f %9.2f %9.2f %9d\n", r.name, r.precision, r.recall, r.f, r.support)
	}
	fmt.Fprintf(&b, "\n%12s %9s %9s %9.2f %9d\n", "accuracy", "", "", ratio(c.tp+c.tn, total), total)

	macroP := (rows[0].precision + rows[1].precision) / 2
	macroR := (rows[0].recall + rows[1].recall) / 2
	macroF := (rows[0].f + rows[1].f) / 2
	fmt.Fprintf(&b, "%12s %9.2f %9.2f %9.2f %9d\n", "macro avg", macroP, macroR, macroF, total)

	var wP, wR, wF float64
	if total > 0 {
		for _, r := range rows {
			w := float64(r.support) / float64(total)
			wP += w * r.precision
			wR += w * r.recall
			wF += w * r.f
		}
	}
	fmt.Fprintf(&b, "%12s %9.2f %9.2f %9.2f %9d\n", "weighted avg", wP, wR, wF, total)
	return b.String()
}

// meanStd returns the mean and population standard deviation.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(xs, nil)
}

// WriteMetrics writes m as indented JSON, creating the directory.
func WriteMetrics(path string, m *Metrics) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetrics loads a metrics file. A missing file returns os.ErrNotExist.
func ReadMetrics(path string) (*Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &m, nil
}
