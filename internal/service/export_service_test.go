package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedExport(t *testing.T) *fakePatientsRepo {
	repo := newFakePatientsRepo()
	require.NoError(t, repo.CreateBatch(context.Background(), []domain.Patient{
		{Name: "a", Age: 70, Hypertension: 1, HeartDisease: 1, CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)},
		{Name: "b", Age: 30, CreatedAt: time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)},
		{Name: "c", Age: 50, SmokingStatus: "smokes", AvgGlucoseLevel: 101, CreatedAt: time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)},
	}))
	return repo
}

func names(records []domain.PatientRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestExport_Filters(t *testing.T) {
	svc := NewExportService(seedExport(t), zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name    string
		filters ExportFilters
		want    []string
	}{
		{"no filters", ExportFilters{}, []string{"a", "b", "c"}},
		{"bare end date covers the whole day", ExportFilters{StartDate: "2024-03-02", EndDate: "2024-03-10"}, []string{"b"}},
		{"datetime-local inputs", ExportFilters{StartDate: "2024-03-01T09:00", EndDate: "2024-03-20T12:00"}, []string{"b", "c"}},
		{"risk labels", ExportFilters{RiskLevel: []string{"High Risk", "medium"}}, []string{"a", "c"}},
		{"combined", ExportFilters{StartDate: "2024-03-05", RiskLevel: []string{"low"}}, []string{"b"}},
		{"nothing matches", ExportFilters{StartDate: "2025-01-01"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Export(ctx, ExportRequest{Filters: tt.filters})
			require.NoError(t, err)
			assert.Equal(t, FormatJSON, res.Format)
			assert.Equal(t, tt.want, names(res.Records))
		})
	}
}

func TestExport_FormatNormalised(t *testing.T) {
	svc := NewExportService(seedExport(t), zap.NewNop())

	res, err := svc.Export(context.Background(), ExportRequest{Format: " CSV "})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, res.Format)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, string(risk.High), res.Records[0].RiskLevel)
}

func TestExport_InvalidRequests(t *testing.T) {
	svc := NewExportService(seedExport(t), zap.NewNop())

	tests := []struct {
		name  string
		req   ExportRequest
		field string
	}{
		{"format", ExportRequest{Format: "pdf"}, "format"},
		{"start date", ExportRequest{Filters: ExportFilters{StartDate: "yesterday"}}, "startDate"},
		{"end date", ExportRequest{Filters: ExportFilters{EndDate: "03/10/2024"}}, "endDate"},
		{"reversed range", ExportRequest{Filters: ExportFilters{StartDate: "2024-03-10", EndDate: "2024-03-01"}}, "endDate"},
		{"risk level", ExportRequest{Filters: ExportFilters{RiskLevel: []string{"critical"}}}, "riskLevel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Export(context.Background(), tt.req)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
