package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"stroke-warning-system/internal/database"
	"stroke-warning-system/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockGormDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *gorm.DB) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.GormConfig(zap.NewNop()))
	require.NoError(t, err)

	return sqlDB, mock, db
}

var userColumns = []string{"id", "username", "password", "role", "created_at"}

func TestGetByUsername_Success(t *testing.T) {
	sqlDB, mock, db := setupMockGormDB(t)
	defer sqlDB.Close()
	repo := NewGormUsersRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "doctor1", "$2a$10$hash", domain.RoleDoctor, time.Now()))

	u, err := repo.GetByUsername(context.Background(), "doctor1")

	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)
	assert.Equal(t, "doctor1", u.Username)
	assert.Equal(t, domain.RoleDoctor, u.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUsername_NotFound(t *testing.T) {
	sqlDB, mock, db := setupMockGormDB(t)
	defer sqlDB.Close()
	repo := NewGormUsersRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	u, err := repo.GetByUsername(context.Background(), "nobody")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureUser_Existing(t *testing.T) {
	sqlDB, mock, db := setupMockGormDB(t)
	defer sqlDB.Close()
	repo := NewGormUsersRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "doctor1", "$2a$10$hash", domain.RoleDoctor, time.Now()))

	created, err := repo.EnsureUser(context.Background(), &domain.User{Username: "doctor1", PasswordHash: "x", Role: domain.RoleDoctor})

	require.NoError(t, err)
	assert.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureUser_Creates(t *testing.T) {
	sqlDB, mock, db := setupMockGormDB(t)
	defer sqlDB.Close()
	repo := NewGormUsersRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	u := &domain.User{Username: "datascientist1", PasswordHash: "x", Role: domain.RoleDataScientist}
	created, err := repo.EnsureUser(context.Background(), u)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(2), u.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Duplicate(t *testing.T) {
	sqlDB, mock, db := setupMockGormDB(t)
	defer sqlDB.Close()
	repo := NewGormUsersRepository(db)

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &domain.User{Username: "doctor1", PasswordHash: "x", Role: domain.RoleDoctor})

	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUsers(t *testing.T) {
	sqlDB, mock, db := setupMockGormDB(t)
	defer sqlDB.Close()
	repo := NewGormUsersRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
