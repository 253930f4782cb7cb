package service

import (
	"context"
	"fmt"

	"stroke-warning-system/internal/repository"
	"stroke-warning-system/internal/risk"
	"stroke-warning-system/internal/training"

	"go.uber.org/zap"
)

// AnalyticsService backs the data-scientist dashboard.
type AnalyticsService interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
	DashboardData(ctx context.Context) (*DashboardData, error)
}

type analyticsService struct {
	patientsRepo repository.PatientsRepository
	metrics      ModelMetricsSource
	logger       *zap.Logger
}

func NewAnalyticsService(patientsRepo repository.PatientsRepository, metrics ModelMetricsSource, logger *zap.Logger) AnalyticsService {
	return &analyticsService{patientsRepo: patientsRepo, metrics: metrics, logger: logger}
}

type RiskCount struct {
	Level risk.Level `json:"level"`
	Label string     `json:"label"`
	Count int64      `json:"count"`
}

type DashboardSummary struct {
	TotalPatients int64             `json:"total_patients"`
	HighRiskCount int64             `json:"high_risk_count"`
	RiskCounts    []RiskCount       `json:"risk_counts"` // high, medium, low
	ModelMetrics  *training.Metrics `json:"model_metrics"`
}

func (s *analyticsService) Summary(ctx context.Context) (*DashboardSummary, error) {
	total, err := s.patientsRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count patients: %w", err)
	}
	byRisk, err := s.patientsRepo.CountByRisk(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count patients by risk: %w", err)
	}

	sum := &DashboardSummary{TotalPatients: total, HighRiskCount: byRisk[risk.High]}
	for _, l := range []risk.Level{risk.High, risk.Medium, risk.Low} {
		sum.RiskCounts = append(sum.RiskCounts, RiskCount{Level: l, Label: l.Label(), Count: byRisk[l]})
	}

	if s.metrics != nil {
		m, err := s.metrics.Load(ctx)
		if err != nil {
			// the dashboard still renders without the model panel
			s.logger.Warn("Failed to load model metrics", zap.Error(err))
		}
		sum.ModelMetrics = m
	}
	return sum, nil
}

// DashboardData feeds the dashboard charts.
type DashboardData struct {
	AgeDistribution    map[string]int64            `json:"age_distribution"`
	GenderDistribution map[string]int64            `json:"gender_distribution"`
	RiskFactors        map[string]int64            `json:"risk_factors"`
	PredictionTrends   map[string]map[string]int64 `json:"prediction_trends"`
	Correlations       map[string]float64          `json:"correlations"`
}

// AgeBucketLabel renders a decade bucket, 60 -> "60-69".
func AgeBucketLabel(lower int) string {
	return fmt.Sprintf("%d-%d", lower, lower+9)
}

func (s *analyticsService) DashboardData(ctx context.Context) (*DashboardData, error) {
	ages, err := s.patientsRepo.CountByAgeBucket(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ages: %w", err)
	}
	genders, err := s.patientsRepo.CountByGender(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate genders: %w", err)
	}
	factors, err := s.patientsRepo.RiskFactorCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate risk factors: %w", err)
	}
	trend, err := s.patientsRepo.MonthlyRiskTrend(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly trend: %w", err)
	}

	data := &DashboardData{
		AgeDistribution:    make(map[string]int64, len(ages)),
		GenderDistribution: genders,
		RiskFactors:        map[string]int64{},
		PredictionTrends:   map[string]map[string]int64{},
		Correlations:       map[string]float64{},
	}

	for b, n := range ages {
		data.AgeDistribution[AgeBucketLabel(b)] += n
	}

	// only factors present in at least one patient
	if factors.Hypertension > 0 {
		data.RiskFactors["hypertension"] = factors.Hypertension
	}
	if factors.HeartDisease > 0 {
		data.RiskFactors["heart_disease"] = factors.HeartDisease
	}
	if factors.Smoking > 0 {
		data.RiskFactors["smoking"] = factors.Smoking
	}

	for _, p := range trend {
		month, ok := data.PredictionTrends[p.Month]
		if !ok {
			month = map[string]int64{}
			for _, l := range risk.Levels {
				month[l.Label()] = 0
			}
			data.PredictionTrends[p.Month] = month
		}
		month[p.Level.Label()] += p.Count
	}
	return data, nil
}
