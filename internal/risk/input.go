package risk

import (
	"fmt"
	"math"
)

// Smoking status values as they appear in the stroke dataset.
const (
	SmokingSmokes   = "smokes"
	SmokingFormerly = "formerly smoked"
	SmokingNever    = "never smoked"
	SmokingUnknown  = "Unknown"
)

const maxAge = 150

// Input carries the clinical fields the score reads.
// EverMarried, WorkType and ResidenceType are part of the record but carry no weight.
type Input struct {
	Age             int
	Hypertension    int
	HeartDisease    int
	AvgGlucoseLevel float64
	BMI             float64
	SmokingStatus   string

	EverMarried   string
	WorkType      string
	ResidenceType string
}

// ValidationError reports the first invalid field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate rejects values the score cannot meaningfully read.
func (in Input) Validate() error {
	if in.Age < 0 || in.Age > maxAge {
		return &ValidationError{Field: "age", Reason: fmt.Sprintf("must be between 0 and %d", maxAge)}
	}
	if in.Hypertension != 0 && in.Hypertension != 1 {
		return &ValidationError{Field: "hypertension", Reason: "must be 0 or 1"}
	}
	if in.HeartDisease != 0 && in.HeartDisease != 1 {
		return &ValidationError{Field: "heart_disease", Reason: "must be 0 or 1"}
	}
	if math.IsNaN(in.AvgGlucoseLevel) || math.IsInf(in.AvgGlucoseLevel, 0) || in.AvgGlucoseLevel < 0 {
		return &ValidationError{Field: "avg_glucose_level", Reason: "must be a non-negative number"}
	}
	if math.IsNaN(in.BMI) || math.IsInf(in.BMI, 0) || in.BMI < 0 {
		return &ValidationError{Field: "bmi", Reason: "must be a non-negative number"}
	}
	return nil
}
