package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/repository"
	"stroke-warning-system/internal/risk"

	"go.uber.org/zap"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportService selects patient records for download. Rendering into
// CSV/XLSX happens in the HTTP layer; every format gets the same records.
type ExportService interface {
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}

type exportService struct {
	patientsRepo repository.PatientsRepository
	logger       *zap.Logger
}

func NewExportService(patientsRepo repository.PatientsRepository, logger *zap.Logger) ExportService {
	return &exportService{patientsRepo: patientsRepo, logger: logger}
}

type ExportFilters struct {
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	RiskLevel []string `json:"riskLevel"`
}

type ExportRequest struct {
	Filters ExportFilters `json:"filters"`
	Format  string        `json:"format"`
	// RequestedBy is set by the handler for the audit log.
	RequestedBy string `json:"-"`
}

type ExportResult struct {
	Format  string
	Records []domain.PatientRecord
}

// accepted date inputs, most specific first
var exportDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	domain.TimeLayout,
	"2006-01-02",
}

// parseExportDate reports whether the input was a bare date.
func parseExportDate(field, v string) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	for _, layout := range exportDateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t.UTC(), layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, invalidField(field, fmt.Sprintf("unrecognised date %q", v))
}

func (r ExportRequest) toFilter() (repository.ExportFilter, string, error) {
	var f repository.ExportFilter

	format := strings.ToLower(strings.TrimSpace(r.Format))
	switch format {
	case "":
		format = FormatJSON
	case FormatJSON, FormatCSV, FormatXLSX:
	default:
		return f, "", invalidField("format", "must be json, csv or xlsx")
	}

	if r.Filters.StartDate != "" {
		t, _, err := parseExportDate("startDate", r.Filters.StartDate)
		if err != nil {
			return f, "", err
		}
		f.From = &t
	}
	if r.Filters.EndDate != "" {
		t, dateOnly, err := parseExportDate("endDate", r.Filters.EndDate)
		if err != nil {
			return f, "", err
		}
		if dateOnly {
			// a bare end date includes that whole day
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.Until = &t
	}
	if f.From != nil && f.Until != nil && f.Until.Before(*f.From) {
		return f, "", invalidField("endDate", "must not be before startDate")
	}

	for _, s := range r.Filters.RiskLevel {
		l, ok := risk.ParseLevel(s)
		if !ok {
			return f, "", invalidField("riskLevel", fmt.Sprintf("unknown risk level %q", s))
		}
		f.Levels = append(f.Levels, l)
	}
	return f, format, nil
}

func (s *exportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	filter, format, err := req.toFilter()
	if err != nil {
		return nil, err
	}

	patients, err := s.patientsRepo.ListForExport(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to export patients", zap.Error(err))
		return nil, fmt.Errorf("failed to export patients: %w", err)
	}

	records := make([]domain.PatientRecord, 0, len(patients))
	for i := range patients {
		records = append(records, patients[i].ToRecord())
	}

	s.logger.Info("Patient data exported",
		zap.String("requested_by", req.RequestedBy),
		zap.String("format", format),
		zap.Int("records", len(records)),
	)
	return &ExportResult{Format: format, Records: records}, nil
}
