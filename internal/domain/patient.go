package domain

import (
	"strconv"
	"time"

	"stroke-warning-system/internal/risk"

	"gorm.io/gorm"
)

// CreatedByMigration marks rows written by the CSV importer.
const CreatedByMigration = "migration_script"

// TimeLayout is how timestamps leave the application (JSON, CSV, XLSX).
const TimeLayout = "2006-01-02 15:04:05"

// Patient maps the patients table.
type Patient struct {
	ID uint `gorm:"column:id;primaryKey"`

	// clinical inputs
	Name            string  `gorm:"column:name;size:100"`
	Age             int     `gorm:"column:age;not null"`
	Gender          string  `gorm:"column:gender;size:10"`
	Hypertension    int     `gorm:"column:hypertension;not null;default:0"`  // 0/1
	HeartDisease    int     `gorm:"column:heart_disease;not null;default:0"` // 0/1
	EverMarried     string  `gorm:"column:ever_married;size:5"`              // Yes/No
	WorkType        string  `gorm:"column:work_type;size:50"`
	ResidenceType   string  `gorm:"column:residence_type;size:10"` // Urban/Rural
	AvgGlucoseLevel float64 `gorm:"column:avg_glucose_level"`
	BMI             float64 `gorm:"column:bmi"`
	SmokingStatus   string  `gorm:"column:smoking_status;size:50"`

	// derived, see Rescore
	RiskLevel       risk.Level `gorm:"column:risk_level;size:10;index"`
	RiskProbability float64    `gorm:"column:risk_probability"`

	// observed outcome, only known for imported datasets
	Stroke *int `gorm:"column:stroke"`

	Validated bool      `gorm:"column:validated;default:false"`
	CreatedBy string    `gorm:"column:created_by;size:80"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Patient) TableName() string { return "patients" }

// RiskInput extracts the scorer's input.
func (p *Patient) RiskInput() risk.Input {
	return risk.Input{
		Age:             p.Age,
		Hypertension:    p.Hypertension,
		HeartDisease:    p.HeartDisease,
		AvgGlucoseLevel: p.AvgGlucoseLevel,
		BMI:             p.BMI,
		SmokingStatus:   p.SmokingStatus,
		EverMarried:     p.EverMarried,
		WorkType:        p.WorkType,
		ResidenceType:   p.ResidenceType,
	}
}

// Rescore recomputes the derived risk fields from the current inputs.
func (p *Patient) Rescore() risk.Assessment {
	a := risk.Score(p.RiskInput())
	p.RiskLevel = a.Level
	p.RiskProbability = a.Probability
	return a
}

// BeforeSave keeps the stored label consistent with the inputs on every write.
func (p *Patient) BeforeSave(tx *gorm.DB) error {
	p.Rescore()
	return nil
}

// PatientRecord is the exported shape of a patient (JSON export, doctor list).
type PatientRecord struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Age             int     `json:"age"`
	Gender          string  `json:"gender"`
	Hypertension    int     `json:"hypertension"`
	HeartDisease    int     `json:"heart_disease"`
	EverMarried     string  `json:"ever_married"`
	WorkType        string  `json:"work_type"`
	ResidenceType   string  `json:"residence_type"`
	AvgGlucoseLevel float64 `json:"avg_glucose_level"`
	BMI             float64 `json:"bmi"`
	SmokingStatus   string  `json:"smoking_status"`
	RiskLevel       string  `json:"risk_level"`
	RiskProbability float64 `json:"risk_probability"`
	Stroke          *int    `json:"stroke"`
	Validated       bool    `json:"validated"`
	CreatedBy       string  `json:"created_by"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func (p *Patient) ToRecord() PatientRecord {
	return PatientRecord{
		ID:              p.ID,
		Name:            p.Name,
		Age:             p.Age,
		Gender:          p.Gender,
		Hypertension:    p.Hypertension,
		HeartDisease:    p.HeartDisease,
		EverMarried:     p.EverMarried,
		WorkType:        p.WorkType,
		ResidenceType:   p.ResidenceType,
		AvgGlucoseLevel: p.AvgGlucoseLevel,
		BMI:             p.BMI,
		SmokingStatus:   p.SmokingStatus,
		RiskLevel:       string(p.RiskLevel),
		RiskProbability: p.RiskProbability,
		Stroke:          p.Stroke,
		Validated:       p.Validated,
		CreatedBy:       p.CreatedBy,
		CreatedAt:       formatTime(p.CreatedAt),
		UpdatedAt:       formatTime(p.UpdatedAt),
	}
}

// RecordColumns is the column order shared by the CSV and XLSX exports.
var RecordColumns = []string{
	"id", "name", "age", "gender", "hypertension", "heart_disease",
	"ever_married", "work_type", "residence_type", "avg_glucose_level", "bmi",
	"smoking_status", "risk_level", "risk_probability", "stroke", "validated",
	"created_by", "created_at", "updated_at",
}

// Values renders r in RecordColumns order.
func (r PatientRecord) Values() []string {
	stroke := ""
	if r.Stroke != nil {
		stroke = strconv.Itoa(*r.Stroke)
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		r.Name,
		strconv.Itoa(r.Age),
		r.Gender,
		strconv.Itoa(r.Hypertension),
		strconv.Itoa(r.HeartDisease),
		r.EverMarried,
		r.WorkType,
		r.ResidenceType,
		formatFloat(r.AvgGlucoseLevel),
		formatFloat(r.BMI),
		r.SmokingStatus,
		r.RiskLevel,
		formatFloat(r.RiskProbability),
		stroke,
		strconv.FormatBool(r.Validated),
		r.CreatedBy,
		r.CreatedAt,
		r.UpdatedAt,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
