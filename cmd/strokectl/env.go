package main

import (
	"fmt"

	"stroke-warning-system/internal/config"
	"stroke-warning-system/internal/database"
	"stroke-warning-system/internal/logger"
	"stroke-warning-system/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env holds what every subcommand needs: config, logger and a migrated DB.
type env struct {
	profile string

	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func (e *env) open() error {
	e.cfg = config.Load(e.profile)

	log, err := logger.NewLogger(e.cfg.Log.Level, e.cfg.Log.Format, "strokectl")
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	e.log = log

	db, err := database.Open(&e.cfg.Database, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return err
	}
	e.db = db
	return nil
}

func (e *env) close() {
	if e.db != nil {
		if err := database.Close(e.db); err != nil {
			e.log.Warn("Failed to close database", zap.Error(err))
		}
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

func (e *env) patients() repository.PatientsRepository {
	return repository.NewGormPatientsRepository(e.db)
}

func (e *env) users() repository.UsersRepository {
	return repository.NewGormUsersRepository(e.db)
}
