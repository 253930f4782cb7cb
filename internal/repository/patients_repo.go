package repository

import (
	"context"
	"time"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/risk"
)

// PatientsRepository stores patient records and answers the aggregate
// queries behind the analytics dashboard.
type PatientsRepository interface {
	Create(ctx context.Context, p *domain.Patient) error
	// CreateBatch inserts all rows in one transaction.
	CreateBatch(ctx context.Context, patients []domain.Patient) error
	Get(ctx context.Context, id uint) (*domain.Patient, error)
	Update(ctx context.Context, p *domain.Patient) error
	// List returns one page, newest first, with the total row count.
	List(ctx context.Context, page, size int) ([]domain.Patient, int64, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	ListForExport(ctx context.Context, filter ExportFilter) ([]domain.Patient, error)
	// ListLabeled returns rows with an observed stroke outcome.
	ListLabeled(ctx context.Context) ([]domain.Patient, error)

	CountByRisk(ctx context.Context) (map[risk.Level]int64, error)
	CountByGender(ctx context.Context) (map[string]int64, error)
	// CountByAgeBucket keys are decade lower bounds (60 for ages 60-69).
	CountByAgeBucket(ctx context.Context) (map[int]int64, error)
	RiskFactorCounts(ctx context.Context) (RiskFactorCounts, error)
	MonthlyRiskTrend(ctx context.Context) ([]TrendPoint, error)

	// WithTx runs fn against a repository bound to a single transaction.
	// An error from fn rolls back every write fn made.
	WithTx(ctx context.Context, fn func(tx PatientsRepository) error) error
}

// ExportFilter narrows an export. Zero values do not filter.
type ExportFilter struct {
	From   *time.Time // created_at >= From
	Until  *time.Time // created_at <= Until
	Levels []risk.Level
}

// RiskFactorCounts counts patients carrying each risk factor.
type RiskFactorCounts struct {
	Hypertension int64 `gorm:"column:hypertension"`
	HeartDisease int64 `gorm:"column:heart_disease"`
	Smoking      int64 `gorm:"column:smoking"`
}

// TrendPoint is the number of patients at Level created in Month (YYYY-MM).
type TrendPoint struct {
	Month string     `gorm:"column:month"`
	Level risk.Level `gorm:"column:risk_level"`
	Count int64      `gorm:"column:count"`
}
