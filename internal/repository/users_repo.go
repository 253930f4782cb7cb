package repository

import (
	"context"

	"stroke-warning-system/internal/domain"
)

// UsersRepository stores login accounts.
type UsersRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Count(ctx context.Context) (int64, error)
	// EnsureUser inserts user unless the username exists. Reports whether it inserted.
	EnsureUser(ctx context.Context, user *domain.User) (bool, error)
}
