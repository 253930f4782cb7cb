package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/repository"
	"stroke-warning-system/internal/risk"
)

// fakeUsersRepo is an in-memory UsersRepository.
type fakeUsersRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID uint
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{users: map[string]*domain.User{}}
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsersRepo) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.Username]; ok {
		return repository.ErrDuplicate
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.Username] = &cp
	return nil
}

func (f *fakeUsersRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUsersRepo) EnsureUser(ctx context.Context, user *domain.User) (bool, error) {
	if _, err := f.GetByUsername(ctx, user.Username); err == nil {
		return false, nil
	}
	if err := f.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// fakePatientsRepo is an in-memory PatientsRepository. It applies the
// same BeforeSave rescoring the gorm model does.
type fakePatientsRepo struct {
	mu       sync.Mutex
	patients []domain.Patient
	nextID   uint
	failWith error

	// failBatch fails CreateBatch only, after any earlier writes succeeded
	failBatch error
}

func newFakePatientsRepo() *fakePatientsRepo {
	return &fakePatientsRepo{}
}

func (f *fakePatientsRepo) insert(p *domain.Patient) {
	f.nextID++
	p.ID = f.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	_ = p.BeforeSave(nil)
	f.patients = append(f.patients, *p)
}

func (f *fakePatientsRepo) Create(ctx context.Context, p *domain.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.insert(p)
	return nil
}

func (f *fakePatientsRepo) CreateBatch(ctx context.Context, patients []domain.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if f.failBatch != nil {
		return f.failBatch
	}
	for i := range patients {
		f.insert(&patients[i])
	}
	return nil
}

func (f *fakePatientsRepo) Get(ctx context.Context, id uint) (*domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.patients {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePatientsRepo) Update(ctx context.Context, p *domain.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.patients {
		if f.patients[i].ID == p.ID {
			_ = p.BeforeSave(nil)
			p.UpdatedAt = time.Now().UTC()
			f.patients[i] = *p
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakePatientsRepo) List(ctx context.Context, page, size int) ([]domain.Patient, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sorted := append([]domain.Patient(nil), f.patients...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	start := (page - 1) * size
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + size
	if end > len(sorted) {
		end = len(sorted)
	}
	return sorted[start:end], int64(len(sorted)), nil
}

func (f *fakePatientsRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	return int64(len(f.patients)), nil
}

func (f *fakePatientsRepo) DeleteAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.patients))
	f.patients = nil
	return n, nil
}

func (f *fakePatientsRepo) ListForExport(ctx context.Context, filter repository.ExportFilter) ([]domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Patient
	for _, p := range f.patients {
		if filter.From != nil && p.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.Until != nil && p.CreatedAt.After(*filter.Until) {
			continue
		}
		if len(filter.Levels) > 0 {
			match := false
			for _, l := range filter.Levels {
				match = match || p.RiskLevel == l
			}
			if !match {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePatientsRepo) ListLabeled(ctx context.Context) ([]domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Patient
	for _, p := range f.patients {
		if p.Stroke != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatientsRepo) CountByRisk(ctx context.Context) (map[risk.Level]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[risk.Level]int64{risk.Low: 0, risk.Medium: 0, risk.High: 0}
	for _, p := range f.patients {
		out[p.RiskLevel]++
	}
	return out, nil
}

func (f *fakePatientsRepo) CountByGender(ctx context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, p := range f.patients {
		out[p.Gender]++
	}
	return out, nil
}

func (f *fakePatientsRepo) CountByAgeBucket(ctx context.Context) (map[int]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int]int64{}
	for _, p := range f.patients {
		out[(p.Age/10)*10]++
	}
	return out, nil
}

func (f *fakePatientsRepo) RiskFactorCounts(ctx context.Context) (repository.RiskFactorCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var c repository.RiskFactorCounts
	for _, p := range f.patients {
		if p.Hypertension == 1 {
			c.Hypertension++
		}
		if p.HeartDisease == 1 {
			c.HeartDisease++
		}
		if p.SmokingStatus == risk.SmokingSmokes {
			c.Smoking++
		}
	}
	return c, nil
}

func (f *fakePatientsRepo) MonthlyRiskTrend(ctx context.Context) ([]repository.TrendPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	type key struct {
		month string
		level risk.Level
	}
	counts := map[key]int64{}
	for _, p := range f.patients {
		counts[key{p.CreatedAt.Format("2006-01"), p.RiskLevel}]++
	}
	var out []repository.TrendPoint
	for k, n := range counts {
		out = append(out, repository.TrendPoint{Month: k.month, Level: k.level, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Level < out[j].Level
	})
	return out, nil
}

// WithTx restores the rows and id sequence when fn fails.
func (f *fakePatientsRepo) WithTx(ctx context.Context, fn func(tx repository.PatientsRepository) error) error {
	f.mu.Lock()
	saved := append([]domain.Patient(nil), f.patients...)
	savedID := f.nextID
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.patients, f.nextID = saved, savedID
		f.mu.Unlock()
		return err
	}
	return nil
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
func floatPtr(f float64) *float64 { return &f }
func uintPtr(u uint) *uint { return &u }
