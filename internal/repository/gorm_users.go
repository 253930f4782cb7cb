package repository

import (
	"context"
	"errors"
	"fmt"

	"stroke-warning-system/internal/domain"

	"gorm.io/gorm"
)

// GormUsersRepository implements UsersRepository.
type GormUsersRepository struct {
	db *gorm.DB
}

func NewGormUsersRepository(db *gorm.DB) *GormUsersRepository {
	return &GormUsersRepository{db: db}
}

var _ UsersRepository = (*GormUsersRepository)(nil)

func (r *GormUsersRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormUsersRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormUsersRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user %q: %w", user.Username, translate(err))
	}
	return nil
}

func (r *GormUsersRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormUsersRepository) EnsureUser(ctx context.Context, user *domain.User) (bool, error) {
	_, err := r.GetByUsername(ctx, user.Username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := r.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
