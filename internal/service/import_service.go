package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"stroke-warning-system/internal/dataset"
	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/repository"

	"go.uber.org/zap"
)

// ImportThreshold is the row count above which the table is considered
// already imported.
const ImportThreshold = 10

// ImportService holds the batch operations run from strokectl.
type ImportService interface {
	ImportCSV(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error)
	ClearPatients(ctx context.Context) (int64, error)
	SeedSamplePatients(ctx context.Context) (int, error)
}

type importService struct {
	patientsRepo repository.PatientsRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewImportService(patientsRepo repository.PatientsRepository, logger *zap.Logger) ImportService {
	return &importService{patientsRepo: patientsRepo, logger: logger, now: time.Now}
}

type ImportOptions struct {
	// Clear deletes existing patients before importing.
	Clear bool
}

type ImportResult struct {
	Cleared  int64
	Imported int
}

// ImportCSV parses the whole file before touching the table, so a bad row
// leaves the database unchanged.
func (s *importService) ImportCSV(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	patients, err := dataset.ReadPatients(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	// clear, guard and insert commit or roll back together
	res := &ImportResult{}
	err = s.patientsRepo.WithTx(ctx, func(tx repository.PatientsRepository) error {
		if opts.Clear {
			n, err := tx.DeleteAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to clear patients: %w", err)
			}
			res.Cleared = n
		}

		existing, err := tx.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count patients: %w", err)
		}
		if existing > ImportThreshold {
			s.logger.Warn("Import aborted: patient table already populated", zap.Int64("existing", existing))
			return ErrImportAlreadyDone
		}

		if err := tx.CreateBatch(ctx, patients); err != nil {
			return fmt.Errorf("failed to import patients: %w", err)
		}
		return nil
	})
	if err != nil {
		return &ImportResult{}, err
	}
	res.Imported = len(patients)

	s.logger.Info("Patients imported", zap.Int("imported", res.Imported), zap.Int64("cleared", res.Cleared))
	return res, nil
}

func (s *importService) ClearPatients(ctx context.Context) (int64, error) {
	n, err := s.patientsRepo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear patients: %w", err)
	}
	s.logger.Info("Patients cleared", zap.Int64("deleted", n))
	return n, nil
}

type samplePatient struct {
	patient domain.Patient
	daysAgo int
}

// five demo patients spanning the three risk levels
var samplePatients = []samplePatient{
	{domain.Patient{Name: "John Smith", Age: 65, Gender: "Male", Hypertension: 1, HeartDisease: 1, EverMarried: "Yes", WorkType: "Private", ResidenceType: "Urban", AvgGlucoseLevel: 228.69, BMI: 28.5, SmokingStatus: "formerly smoked"}, 5},
	{domain.Patient{Name: "Sarah Johnson", Age: 42, Gender: "Female", EverMarried: "Yes", WorkType: "Self-employed", ResidenceType: "Rural", AvgGlucoseLevel: 105.92, BMI: 23.1, SmokingStatus: "never smoked"}, 3},
	{domain.Patient{Name: "Michael Chen", Age: 55, Gender: "Male", Hypertension: 1, EverMarried: "Yes", WorkType: "Govt_job", ResidenceType: "Urban", AvgGlucoseLevel: 171.23, BMI: 32.1, SmokingStatus: "smokes"}, 2},
	{domain.Patient{Name: "Emily Davis", Age: 28, Gender: "Female", EverMarried: "No", WorkType: "Private", ResidenceType: "Urban", AvgGlucoseLevel: 95.12, BMI: 21.8, SmokingStatus: "never smoked"}, 1},
	{domain.Patient{Name: "Robert Wilson", Age: 71, Gender: "Male", Hypertension: 1, HeartDisease: 1, EverMarried: "Yes", WorkType: "Private", ResidenceType: "Rural", AvgGlucoseLevel: 245.88, BMI: 29.9, SmokingStatus: "formerly smoked"}, 0},
}

// SamplePatients returns fresh copies of the demo patients, scored and
// dated relative to now.
func SamplePatients(now time.Time) []domain.Patient {
	out := make([]domain.Patient, 0, len(samplePatients))
	for _, sp := range samplePatients {
		p := sp.patient
		p.CreatedBy = "doctor1"
		p.CreatedAt = now.UTC().AddDate(0, 0, -sp.daysAgo)
		p.UpdatedAt = p.CreatedAt
		p.Rescore()
		out = append(out, p)
	}
	return out
}

func (s *importService) SeedSamplePatients(ctx context.Context) (int, error) {
	patients := SamplePatients(s.now())
	if err := s.patientsRepo.CreateBatch(ctx, patients); err != nil {
		return 0, fmt.Errorf("failed to add sample patients: %w", err)
	}
	s.logger.Info("Sample patients added", zap.Int("count", len(patients)))
	return len(patients), nil
}
