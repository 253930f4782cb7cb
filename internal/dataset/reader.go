// Package dataset reads the brain-stroke CSV used for the initial import
// and for offline training.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/risk"
)

// ErrNoHeader is returned for an empty file.
var ErrNoHeader = errors.New("csv has no header row")

// RowError points at the offending line (1-based, header is line 1).
type RowError struct {
	Line  int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %s: %v", e.Line, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReadPatients parses every row into an unsaved Patient. Rows carry
// validated=true and created_by=migration_script; the risk fields are
// scored. Any bad row fails the whole read.
func ReadPatients(r io.Reader) ([]domain.Patient, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var patients []domain.Patient
	seq := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &RowError{Line: pe.Line, Err: pe.Err}
			}
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		seq++

		p, err := parseRow(row{cols: cols, rec: rec}, seq)
		if err != nil {
			var re *RowError
			if errors.As(err, &re) {
				re.Line = line
				return nil, re
			}
			return nil, &RowError{Line: line, Err: err}
		}
		patients = append(patients, p)
	}
	return patients, nil
}

type row struct {
	cols map[string]int
	rec  []string
}

func (r row) get(name string) (string, bool) {
	i, ok := r.cols[name]
	if !ok || i >= len(r.rec) {
		return "", false
	}
	return strings.TrimSpace(r.rec[i]), true
}

func (r row) str(name, def string) string {
	if v, ok := r.get(name); ok && v != "" {
		return v
	}
	return def
}

func (r row) float(name string) (float64, error) {
	v, ok := r.get(name)
	if !ok {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &RowError{Field: name, Err: fmt.Errorf("not a number: %q", v)}
	}
	return f, nil
}

func (r row) flag(name string) (int, error) {
	v, ok := r.get(name)
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &RowError{Field: name, Err: fmt.Errorf("not an integer: %q", v)}
	}
	return n, nil
}

func parseRow(r row, seq int) (domain.Patient, error) {
	var p domain.Patient

	age, err := r.float("age")
	if err != nil {
		return p, err
	}
	if p.Hypertension, err = r.flag("hypertension"); err != nil {
		return p, err
	}
	if p.HeartDisease, err = r.flag("heart_disease"); err != nil {
		return p, err
	}
	if p.AvgGlucoseLevel, err = r.float("avg_glucose_level"); err != nil {
		return p, err
	}
	if p.BMI, err = parseBMI(r); err != nil {
		return p, err
	}

	id := r.str("id", strconv.Itoa(seq))
	p.Name = "Patient " + id
	p.Age = int(age)
	p.Gender = r.str("gender", "")
	p.EverMarried = r.str("ever_married", "")
	p.WorkType = r.str("work_type", "")
	p.ResidenceType = r.str("residence_type", "")
	p.SmokingStatus = r.str("smoking_status", risk.SmokingUnknown)
	p.Validated = true
	p.CreatedBy = domain.CreatedByMigration

	if v, ok := r.get("stroke"); ok {
		s := ParseStroke(v)
		p.Stroke = &s
	}

	if err := p.RiskInput().Validate(); err != nil {
		var ve *risk.ValidationError
		if errors.As(err, &ve) {
			return p, &RowError{Field: ve.Field, Err: errors.New(ve.Reason)}
		}
		return p, err
	}
	p.Rescore()
	return p, nil
}

// bmi is "N/A" for a few hundred rows of the public dataset.
func parseBMI(r row) (float64, error) {
	v, ok := r.get("bmi")
	if !ok || v == "" || strings.EqualFold(v, "n/a") {
		return 0, nil
	}
	return r.float("bmi")
}

// ParseStroke normalises the outcome column. Unrecognised values count as 0.
func ParseStroke(v string) int {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "yes", "y", "true":
		return 1
	default:
		return 0
	}
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
