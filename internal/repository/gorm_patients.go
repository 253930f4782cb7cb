package repository

import (
	"context"
	"fmt"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/risk"

	"gorm.io/gorm"
)

const importBatchSize = 200

// GormPatientsRepository implements PatientsRepository.
type GormPatientsRepository struct {
	db *gorm.DB
}

func NewGormPatientsRepository(db *gorm.DB) *GormPatientsRepository {
	return &GormPatientsRepository{db: db}
}

var _ PatientsRepository = (*GormPatientsRepository)(nil)

func (r *GormPatientsRepository) Create(ctx context.Context, p *domain.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create patient: %w", translate(err))
	}
	return nil
}

func (r *GormPatientsRepository) CreateBatch(ctx context.Context, patients []domain.Patient) error {
	if len(patients) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(patients, importBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("create %d patients: %w", len(patients), translate(err))
	}
	return nil
}

func (r *GormPatientsRepository) WithTx(ctx context.Context, fn func(tx PatientsRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormPatientsRepository{db: tx})
	})
}

func (r *GormPatientsRepository) Get(ctx context.Context, id uint) (*domain.Patient, error) {
	var p domain.Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// Update writes every column except id and created_at.
func (r *GormPatientsRepository) Update(ctx context.Context, p *domain.Patient) error {
	res := r.db.WithContext(ctx).Model(p).Select("*").Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return fmt.Errorf("update patient %d: %w", p.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormPatientsRepository) List(ctx context.Context, page, size int) ([]domain.Patient, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Patient{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var patients []domain.Patient
	if total == 0 {
		return patients, 0, nil
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&patients).Error
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *GormPatientsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Patient{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormPatientsRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Patient{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete patients: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormPatientsRepository) ListForExport(ctx context.Context, filter ExportFilter) ([]domain.Patient, error) {
	q := r.db.WithContext(ctx).Model(&domain.Patient{})
	if filter.From != nil {
		q = q.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.Until != nil {
		q = q.Where("created_at <= ?", filter.Until.UTC())
	}
	if len(filter.Levels) > 0 {
		q = q.Where("risk_level IN ?", filter.Levels)
	}

	var patients []domain.Patient
	if err := q.Order("id ASC").Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *GormPatientsRepository) ListLabeled(ctx context.Context) ([]domain.Patient, error) {
	var patients []domain.Patient
	err := r.db.WithContext(ctx).Where("stroke IS NOT NULL").Order("id ASC").Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *GormPatientsRepository) CountByRisk(ctx context.Context) (map[risk.Level]int64, error) {
	var rows []struct {
		RiskLevel risk.Level `gorm:"column:risk_level"`
		Count     int64      `gorm:"column:count"`
	}
	err := r.db.WithContext(ctx).Model(&domain.Patient{}).
		Select("risk_level, COUNT(*) AS count").
		Group("risk_level").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[risk.Level]int64, len(risk.Levels))
	for _, l := range risk.Levels {
		out[l] = 0
	}
	for _, row := range rows {
		out[row.RiskLevel] += row.Count
	}
	return out, nil
}

func (r *GormPatientsRepository) CountByGender(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Gender string `gorm:"column:gender"`
		Count  int64  `gorm:"column:count"`
	}
	err := r.db.WithContext(ctx).Model(&domain.Patient{}).
		Select("gender, COUNT(*) AS count").
		Group("gender").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Gender] += row.Count
	}
	return out, nil
}

func (r *GormPatientsRepository) CountByAgeBucket(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		Bucket int   `gorm:"column:bucket"`
		Count  int64 `gorm:"column:count"`
	}
	err := r.db.WithContext(ctx).Model(&domain.Patient{}).
		Select("(age / 10) * 10 AS bucket, COUNT(*) AS count").
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int]int64, len(rows))
	for _, row := range rows {
		out[row.Bucket] += row.Count
	}
	return out, nil
}

func (r *GormPatientsRepository) RiskFactorCounts(ctx context.Context) (RiskFactorCounts, error) {
	var counts RiskFactorCounts
	err := r.db.WithContext(ctx).Model(&domain.Patient{}).
		Select(`COALESCE(SUM(CASE WHEN hypertension = 1 THEN 1 ELSE 0 END), 0) AS hypertension,
			COALESCE(SUM(CASE WHEN heart_disease = 1 THEN 1 ELSE 0 END), 0) AS heart_disease,
			COALESCE(SUM(CASE WHEN smoking_status = ? THEN 1 ELSE 0 END), 0) AS smoking`, risk.SmokingSmokes).
		Scan(&counts).Error
	if err != nil {
		return RiskFactorCounts{}, err
	}
	return counts, nil
}

func (r *GormPatientsRepository) MonthlyRiskTrend(ctx context.Context) ([]TrendPoint, error) {
	var points []TrendPoint
	err := r.db.WithContext(ctx).Model(&domain.Patient{}).
		Select(r.monthExpr() + " AS month, risk_level, COUNT(*) AS count").
		Group("month").Group("risk_level").
		Order("month").
		Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (r *GormPatientsRepository) monthExpr() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "strftime('%Y-%m', created_at)"
	}
	return "to_char(created_at, 'YYYY-MM')"
}
