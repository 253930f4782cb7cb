package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stroke-warning-system/internal/config"
	"stroke-warning-system/internal/database"
	httpapi "stroke-warning-system/internal/http"
	"stroke-warning-system/internal/logger"
	"stroke-warning-system/internal/repository"
	"stroke-warning-system/internal/service"
	"stroke-warning-system/internal/store"

	"go.uber.org/zap"
)

func main() {
	// 1. config
	cfg := config.Load("")

	// 2. logger
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "stroke-warning-system")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. database
	db, err := database.Open(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}

	usersRepo := repository.NewGormUsersRepository(db)
	patientsRepo := repository.NewGormPatientsRepository(db)

	authService := service.NewAuthService(usersRepo, log)
	if cfg.SeedUsers {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		n, err := authService.EnsureDefaultUsers(ctx)
		cancel()
		if err != nil {
			log.Fatal("Failed to seed default users", zap.Error(err))
		}
		log.Info("Default users ensured", zap.Int("created", n))
	}

	// 4. session revocation store
	var kv store.KV
	kvName := "memory"
	if cfg.Redis.Enabled {
		redisClient := store.NewRedisClient(&cfg.Redis)
		redisKV := store.NewRedisKV(redisClient)
		defer redisKV.Close()
		kv, kvName = redisKV, "redis"
	} else {
		kv = store.NewMemoryKV()
		log.Info("Redis disabled, session revocation kept in memory")
	}
	sessionService := service.NewSessionService(cfg.SecretKey, cfg.Session.TTL, kv, log)

	// 5. model metrics
	var metrics service.ModelMetricsSource = service.FileMetricsSource{Path: cfg.Model.MetricsPath}
	if cfg.Model.MetricsURL != "" {
		metrics = service.NewHTTPMetricsSource(cfg.Model.MetricsURL, log)
	}

	// 6. routes
	sessions := httpapi.NewSessionManager(sessionService, cfg.Session.CookieName, cfg.Session.CookieSecure, log)
	health := httpapi.NewHealthHandler(sqlDB, kv, kvName, log)
	health.EnablePprof(cfg.HTTP.PprofEnabled)

	router := httpapi.NewRouter(log, cfg.HTTP.CORSOrigins)
	router.RegisterHealthRoutes(health)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authService, sessionService, sessions, log))
	router.RegisterDoctorRoutes(sessions, httpapi.NewPatientHandler(service.NewPatientService(patientsRepo, log), log))
	router.RegisterDataScientistRoutes(sessions,
		httpapi.NewAnalyticsHandler(service.NewAnalyticsService(patientsRepo, metrics, log), log),
		httpapi.NewExportHandler(service.NewExportService(patientsRepo, log), log),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), service.ShutdownGrace)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Warn("Graceful shutdown incomplete", zap.Error(err))
	}
	log.Info("stroke-warning-system stopped")
}
