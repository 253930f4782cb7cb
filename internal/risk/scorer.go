// Package risk implements the rule-based stroke risk score.
//
// Points per factor are summed, converted to a probability capped at 0.95
// and bucketed into low/medium/high. Thresholds follow the clinic's existing
// prototype rules; there is no documented clinical calibration behind them.
package risk

import "strings"

// Level is the derived risk category stored with each patient.
type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// Levels in ascending order.
var Levels = []Level{Low, Medium, High}

const (
	// MaxProbability caps the converted score.
	MaxProbability = 0.95

	highThreshold   = 0.5
	mediumThreshold = 0.3
)

// Label is the display form used on dashboards and trend keys ("High Risk").
func (l Level) Label() string {
	switch l {
	case High:
		return "High Risk"
	case Medium:
		return "Medium Risk"
	case Low:
		return "Low Risk"
	default:
		return string(l)
	}
}

// ParseLevel accepts "high", "High", "High Risk" and the like.
func ParseLevel(s string) (Level, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " risk")
	switch Level(s) {
	case Low, Medium, High:
		return Level(s), true
	}
	return "", false
}

// Factor is one slice of the score: the points earned out of the factor's maximum.
type Factor struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`
}

// Assessment is the scorer's output.
type Assessment struct {
	Score       int      `json:"score"`
	Probability float64  `json:"probability"`
	Level       Level    `json:"level"`
	Factors     []Factor `json:"factors"`
}

func (a *Assessment) addFactor(name string, points, maxPoints int) {
	a.Factors = append(a.Factors, Factor{Name: name, Points: points, MaxPoints: maxPoints})
	a.Score += points
}

// Score computes the assessment for in. It never fails; validate input first.
func Score(in Input) Assessment {
	a := Assessment{Factors: make([]Factor, 0, 6)}

	switch {
	case in.Age > 60:
		a.addFactor("Age", 30, 30)
	case in.Age > 45:
		a.addFactor("Age", 15, 30)
	default:
		a.addFactor("Age", 0, 30)
	}

	if in.Hypertension == 1 {
		a.addFactor("Hypertension", 25, 25)
	} else {
		a.addFactor("Hypertension", 0, 25)
	}

	if in.HeartDisease == 1 {
		a.addFactor("Heart Disease", 25, 25)
	} else {
		a.addFactor("Heart Disease", 0, 25)
	}

	switch {
	case in.AvgGlucoseLevel > 125:
		a.addFactor("Glucose", 15, 15)
	case in.AvgGlucoseLevel > 100:
		a.addFactor("Glucose", 10, 15)
	default:
		a.addFactor("Glucose", 0, 15)
	}

	switch {
	case in.BMI > 30:
		a.addFactor("BMI", 10, 10)
	case in.BMI > 25:
		a.addFactor("BMI", 5, 10)
	default:
		a.addFactor("BMI", 0, 10)
	}

	switch in.SmokingStatus {
	case SmokingSmokes:
		a.addFactor("Smoking", 15, 15)
	case SmokingFormerly:
		a.addFactor("Smoking", 8, 15)
	default:
		a.addFactor("Smoking", 0, 15)
	}

	a.Probability = Probability(a.Score)
	a.Level = LevelFor(a.Probability)
	return a
}

// Probability converts summed points into the capped probability.
func Probability(score int) float64 {
	p := float64(score) / 100
	if p > MaxProbability {
		return MaxProbability
	}
	return p
}

// LevelFor buckets a probability.
func LevelFor(probability float64) Level {
	switch {
	case probability > highThreshold:
		return High
	case probability > mediumThreshold:
		return Medium
	default:
		return Low
	}
}
