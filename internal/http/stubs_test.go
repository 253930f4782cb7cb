package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/models"
	"stroke-warning-system/internal/risk"
	"stroke-warning-system/internal/service"
	"stroke-warning-system/internal/store"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCookie = "session"

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, req service.LoginRequest) (*service.LoginResponse, error) {
	creds := map[string]struct{ password, role string }{
		"doctor1":        {"doctor123", domain.RoleDoctor},
		"datascientist1": {"ds123", domain.RoleDataScientist},
	}
	c, ok := creds[strings.TrimSpace(req.Username)]
	if !ok || c.password != req.Password {
		return nil, service.ErrInvalidCredentials
	}
	id := uint(1)
	if c.role == domain.RoleDataScientist {
		id = 2
	}
	return &service.LoginResponse{UserID: id, Username: req.Username, Role: c.role, HomePath: service.HomePath(c.role)}, nil
}

func (stubAuth) CreateUser(ctx context.Context, req service.CreateUserRequest) (*domain.User, error) {
	return nil, nil
}

func (stubAuth) EnsureDefaultUsers(ctx context.Context) (int, error) { return 0, nil }

type stubPatients struct {
	records []domain.PatientRecord
	added   *service.AddPatientRequest
	updated *service.UpdatePatientRequest
	err     error
}

func (s *stubPatients) ListPatients(ctx context.Context, req service.ListPatientsRequest) (*service.ListPatientsResponse, error) {
	page, size := models.Normalize(req.Page, req.PageSize)
	return &service.ListPatientsResponse{
		Items:      s.records,
		Pagination: models.NewPagination(page, size, int64(len(s.records))),
	}, nil
}

func prediction(id uint) *service.PatientPrediction {
	return &service.PatientPrediction{PatientID: id, Prediction: "High Risk", RiskLevel: risk.High, Probability: 0.95, Score: 95}
}

func (s *stubPatients) AddPatient(ctx context.Context, req service.AddPatientRequest) (*service.PatientPrediction, error) {
	s.added = &req
	if s.err != nil {
		return nil, s.err
	}
	return prediction(7), nil
}

func (s *stubPatients) UpdatePatient(ctx context.Context, req service.UpdatePatientRequest) (*service.PatientPrediction, error) {
	s.updated = &req
	if s.err != nil {
		return nil, s.err
	}
	return prediction(*req.ID), nil
}

type stubAnalytics struct{}

func (stubAnalytics) Summary(ctx context.Context) (*service.DashboardSummary, error) {
	return &service.DashboardSummary{
		TotalPatients: 3,
		HighRiskCount: 1,
		RiskCounts: []service.RiskCount{
			{Level: risk.High, Label: "High Risk", Count: 1},
			{Level: risk.Medium, Label: "Medium Risk", Count: 0},
			{Level: risk.Low, Label: "Low Risk", Count: 2},
		},
	}, nil
}

func (stubAnalytics) DashboardData(ctx context.Context) (*service.DashboardData, error) {
	return &service.DashboardData{
		AgeDistribution:    map[string]int64{"60-69": 1},
		GenderDistribution: map[string]int64{"Male": 1},
		RiskFactors:        map[string]int64{"hypertension": 1},
		PredictionTrends:   map[string]map[string]int64{"2024-03": {"High Risk": 1, "Medium Risk": 0, "Low Risk": 0}},
		Correlations:       map[string]float64{},
	}, nil
}

type stubExport struct {
	records []domain.PatientRecord
	last    service.ExportRequest
}

func (s *stubExport) Export(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error) {
	s.last = req
	format := strings.ToLower(req.Format)
	switch format {
	case "":
		format = service.FormatJSON
	case service.FormatJSON, service.FormatCSV, service.FormatXLSX:
	default:
		return nil, &service.ValidationError{Field: "format", Message: "Invalid value for format: must be json, csv or xlsx"}
	}
	return &service.ExportResult{Format: format, Records: s.records}, nil
}

func sampleRecords() []domain.PatientRecord {
	stroke := 1
	return []domain.PatientRecord{
		{
			ID: 1, Name: "John Smith", Age: 65, Gender: "Male", Hypertension: 1, HeartDisease: 1,
			EverMarried: "Yes", WorkType: "Private", ResidenceType: "Urban", AvgGlucoseLevel: 228.69, BMI: 28.5,
			SmokingStatus: "formerly smoked", RiskLevel: "high", RiskProbability: 0.95, Stroke: &stroke,
			Validated: true, CreatedBy: "doctor1", CreatedAt: "2024-03-01 08:00:00", UpdatedAt: "2024-03-01 08:00:00",
		},
		{
			ID: 2, Name: "Patient, \"quoted\"", Age: 28, Gender: "Female",
			EverMarried: "No", WorkType: "Private", ResidenceType: "Rural", AvgGlucoseLevel: 95.12, BMI: 21.8,
			SmokingStatus: "never smoked", RiskLevel: "low", RiskProbability: 0,
			CreatedBy: "doctor1", CreatedAt: "2024-03-02 09:30:00", UpdatedAt: "2024-03-02 09:30:00",
		},
	}
}

type testApp struct {
	handler  http.Handler
	tokens   service.SessionService
	patients *stubPatients
	export   *stubExport
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zap.NewNop()
	tokens := service.NewSessionService("test-secret", time.Hour, store.NewMemoryKV(), logger)
	sessions := NewSessionManager(tokens, testCookie, false, logger)
	patients := &stubPatients{records: sampleRecords()}
	export := &stubExport{records: sampleRecords()}

	router := NewRouter(logger, nil)
	router.RegisterAuthRoutes(NewAuthHandler(stubAuth{}, tokens, sessions, logger))
	router.RegisterDoctorRoutes(sessions, NewPatientHandler(patients, logger))
	router.RegisterDataScientistRoutes(sessions, NewAnalyticsHandler(stubAnalytics{}, logger), NewExportHandler(export, logger))
	router.RegisterHealthRoutes(NewHealthHandler(nil, store.NewMemoryKV(), "memory", logger))

	return &testApp{handler: router, tokens: tokens, patients: patients, export: export}
}

func (a *testApp) cookieFor(t *testing.T, username, role string) *http.Cookie {
	t.Helper()
	tok, _, err := a.tokens.Issue(context.Background(), &service.LoginResponse{UserID: 1, Username: username, Role: role})
	require.NoError(t, err)
	return &http.Cookie{Name: testCookie, Value: tok}
}

func (a *testApp) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}
