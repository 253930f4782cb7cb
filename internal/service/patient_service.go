package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/models"
	"stroke-warning-system/internal/repository"
	"stroke-warning-system/internal/risk"

	"go.uber.org/zap"
)

// PatientService backs the doctor dashboard. Every write path rescores
// the patient before persisting.
type PatientService interface {
	ListPatients(ctx context.Context, req ListPatientsRequest) (*ListPatientsResponse, error)
	AddPatient(ctx context.Context, req AddPatientRequest) (*PatientPrediction, error)
	UpdatePatient(ctx context.Context, req UpdatePatientRequest) (*PatientPrediction, error)
}

type patientService struct {
	patientsRepo repository.PatientsRepository
	logger       *zap.Logger
}

func NewPatientService(patientsRepo repository.PatientsRepository, logger *zap.Logger) PatientService {
	return &patientService{patientsRepo: patientsRepo, logger: logger}
}

type ListPatientsRequest struct {
	Page     int
	PageSize int
}

type ListPatientsResponse struct {
	Items      []domain.PatientRecord `json:"items"`
	Pagination models.Pagination      `json:"pagination"`
}

func (s *patientService) ListPatients(ctx context.Context, req ListPatientsRequest) (*ListPatientsResponse, error) {
	page, size := models.Normalize(req.Page, req.PageSize)

	patients, total, err := s.patientsRepo.List(ctx, page, size)
	if err != nil {
		s.logger.Error("Failed to list patients", zap.Int("page", page), zap.Int("page_size", size), zap.Error(err))
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	items := make([]domain.PatientRecord, 0, len(patients))
	for i := range patients {
		items = append(items, patients[i].ToRecord())
	}
	return &ListPatientsResponse{
		Items:      items,
		Pagination: models.NewPagination(page, size, total),
	}, nil
}

// PatientFields carries the clinical inputs. A nil pointer means the field
// was not sent.
type PatientFields struct {
	Name            *string  `json:"name"`
	Age             *int     `json:"age"`
	Gender          *string  `json:"gender"`
	Hypertension    *int     `json:"hypertension"`
	HeartDisease    *int     `json:"heart_disease"`
	EverMarried     *string  `json:"ever_married"`
	WorkType        *string  `json:"work_type"`
	ResidenceType   *string  `json:"residence_type"`
	AvgGlucoseLevel *float64 `json:"avg_glucose_level"`
	BMI             *float64 `json:"bmi"`
	SmokingStatus   *string  `json:"smoking_status"`
}

type AddPatientRequest struct {
	PatientFields
	CreatedBy string `json:"-"`
}

type UpdatePatientRequest struct {
	ID *uint `json:"id"`
	PatientFields
	UpdatedBy string `json:"-"`
}

// PatientPrediction is returned after every write.
type PatientPrediction struct {
	PatientID   uint          `json:"patient_id"`
	Prediction  string        `json:"prediction"` // "High Risk" etc.
	RiskLevel   risk.Level    `json:"risk_level"`
	Probability float64       `json:"probability"`
	Score       int           `json:"score"`
	Factors     []risk.Factor `json:"factors"`
}

func newPrediction(p *domain.Patient, a risk.Assessment) *PatientPrediction {
	return &PatientPrediction{
		PatientID:   p.ID,
		Prediction:  a.Level.Label(),
		RiskLevel:   a.Level,
		Probability: a.Probability,
		Score:       a.Score,
		Factors:     a.Factors,
	}
}

// required order matches the add-patient form
func (f PatientFields) firstMissing() string {
	switch {
	case blank(f.Name):
		return "name"
	case f.Age == nil:
		return "age"
	case blank(f.Gender):
		return "gender"
	case f.Hypertension == nil:
		return "hypertension"
	case f.HeartDisease == nil:
		return "heart_disease"
	case blank(f.EverMarried):
		return "ever_married"
	case blank(f.WorkType):
		return "work_type"
	case blank(f.ResidenceType):
		return "residence_type"
	case f.AvgGlucoseLevel == nil:
		return "avg_glucose_level"
	case f.BMI == nil:
		return "bmi"
	case blank(f.SmokingStatus):
		return "smoking_status"
	}
	return ""
}

// apply copies every non-nil field onto p.
func (f PatientFields) apply(p *domain.Patient) {
	if f.Name != nil {
		p.Name = strings.TrimSpace(*f.Name)
	}
	if f.Age != nil {
		p.Age = *f.Age
	}
	if f.Gender != nil {
		p.Gender = strings.TrimSpace(*f.Gender)
	}
	if f.Hypertension != nil {
		p.Hypertension = *f.Hypertension
	}
	if f.HeartDisease != nil {
		p.HeartDisease = *f.HeartDisease
	}
	if f.EverMarried != nil {
		p.EverMarried = strings.TrimSpace(*f.EverMarried)
	}
	if f.WorkType != nil {
		p.WorkType = strings.TrimSpace(*f.WorkType)
	}
	if f.ResidenceType != nil {
		p.ResidenceType = strings.TrimSpace(*f.ResidenceType)
	}
	if f.AvgGlucoseLevel != nil {
		p.AvgGlucoseLevel = *f.AvgGlucoseLevel
	}
	if f.BMI != nil {
		p.BMI = *f.BMI
	}
	if f.SmokingStatus != nil {
		p.SmokingStatus = strings.TrimSpace(*f.SmokingStatus)
	}
}

func (f PatientFields) hasBlankString() string {
	fields := []struct {
		name  string
		value *string
	}{
		{"name", f.Name}, {"gender", f.Gender}, {"ever_married", f.EverMarried},
		{"work_type", f.WorkType}, {"residence_type", f.ResidenceType}, {"smoking_status", f.SmokingStatus},
	}
	for _, fld := range fields {
		if fld.value != nil && strings.TrimSpace(*fld.value) == "" {
			return fld.name
		}
	}
	return ""
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func validatePatient(p *domain.Patient) error {
	if len(p.Name) > 100 {
		return invalidField("name", "at most 100 characters")
	}
	if err := p.RiskInput().Validate(); err != nil {
		var ve *risk.ValidationError
		if errors.As(err, &ve) {
			return invalidField(ve.Field, ve.Reason)
		}
		return err
	}
	return nil
}

func (s *patientService) AddPatient(ctx context.Context, req AddPatientRequest) (*PatientPrediction, error) {
	if field := req.firstMissing(); field != "" {
		return nil, missingField(field)
	}

	p := &domain.Patient{CreatedBy: req.CreatedBy}
	req.apply(p)
	if err := validatePatient(p); err != nil {
		return nil, err
	}
	a := p.Rescore()

	if err := s.patientsRepo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to add patient", zap.String("created_by", req.CreatedBy), zap.Error(err))
		return nil, fmt.Errorf("failed to add patient: %w", err)
	}

	s.logger.Info("Patient added",
		zap.Uint("patient_id", p.ID),
		zap.String("created_by", req.CreatedBy),
		zap.String("risk_level", string(a.Level)),
		zap.Float64("probability", a.Probability),
	)
	return newPrediction(p, a), nil
}

func (s *patientService) UpdatePatient(ctx context.Context, req UpdatePatientRequest) (*PatientPrediction, error) {
	if req.ID == nil || *req.ID == 0 {
		return nil, missingField("id")
	}
	if field := req.hasBlankString(); field != "" {
		return nil, invalidField(field, "must not be empty")
	}

	p, err := s.patientsRepo.Get(ctx, *req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}

	before := p.RiskLevel
	req.apply(p)
	if err := validatePatient(p); err != nil {
		return nil, err
	}
	a := p.Rescore()

	if err := s.patientsRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		s.logger.Error("Failed to update patient", zap.Uint("patient_id", p.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.logger.Info("Patient updated",
		zap.Uint("patient_id", p.ID),
		zap.String("updated_by", req.UpdatedBy),
		zap.String("risk_level_before", string(before)),
		zap.String("risk_level", string(a.Level)),
	)
	return newPrediction(p, a), nil
}
