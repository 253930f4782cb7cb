package database

import (
	"fmt"
	"strings"
	"time"

	"stroke-warning-system/internal/config"
	"stroke-warning-system/internal/domain"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// ParseURI splits a connection URI into dialect and driver DSN.
//
//	sqlite://hospital.db       -> sqlite, hospital.db
//	sqlite:///hospital.db      -> sqlite, hospital.db
//	sqlite:////var/db/h.db     -> sqlite, /var/db/h.db
//	postgres://u:p@h:5432/db   -> postgres, unchanged
//	host=h user=u dbname=db    -> postgres, unchanged
func ParseURI(uri string) (dialect string, dsn string, err error) {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return "", "", fmt.Errorf("database uri is empty")
	case strings.HasPrefix(uri, "sqlite://"):
		dsn = strings.TrimPrefix(uri, "sqlite://")
		if strings.HasPrefix(dsn, "/") {
			dsn = dsn[1:]
		}
		if dsn == "" {
			return "", "", fmt.Errorf("sqlite uri has no path: %q", uri)
		}
		return DialectSQLite, dsn, nil
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return DialectPostgres, uri, nil
	case strings.Contains(uri, "host=") || strings.Contains(uri, "dbname="):
		return DialectPostgres, uri, nil
	default:
		return "", "", fmt.Errorf("unsupported database uri: %q", uri)
	}
}

// NewDialector picks the gorm dialector for a connection URI.
// Postgres goes through lib/pq (registered as "postgres").
func NewDialector(uri string) (gorm.Dialector, error) {
	dialect, dsn, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	switch dialect {
	case DialectSQLite:
		return sqlite.Open(dsn), nil
	default:
		return postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn}), nil
	}
}

// GormConfig is shared by Open and repository tests.
func GormConfig(logger *zap.Logger) *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(
			zap.NewStdLog(logger.Named("gorm")),
			gormlogger.Config{
				SlowThreshold:             500 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// Open connects, applies pool settings and pings.
func Open(cfg *config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	dialector, err := NewDialector(cfg.URI)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, GormConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if db.Dialector.Name() == DialectSQLite && strings.Contains(cfg.URI, ":memory:") {
		// every new connection would get its own empty in-memory database
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the users and patients tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.Patient{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
