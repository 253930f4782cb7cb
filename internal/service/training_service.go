package service

import (
	"context"
	"fmt"
	"os"

	"stroke-warning-system/internal/dataset"
	"stroke-warning-system/internal/domain"
	"stroke-warning-system/internal/repository"
	"stroke-warning-system/internal/training"

	"go.uber.org/zap"
)

const sourceDatabase = "database"

// TrainingService fits the outcome model and publishes its metrics for the
// data-scientist dashboard.
type TrainingService interface {
	Train(ctx context.Context, req TrainRequest) (*training.Metrics, error)
}

type trainingService struct {
	patientsRepo repository.PatientsRepository
	logger       *zap.Logger
}

func NewTrainingService(patientsRepo repository.PatientsRepository, logger *zap.Logger) TrainingService {
	return &trainingService{patientsRepo: patientsRepo, logger: logger}
}

type TrainRequest struct {
	// CSVPath is read only when the database has no labelled patients.
	CSVPath string
	// OutPath receives the metrics JSON; empty skips writing.
	OutPath string
	Options training.Options
}

func (s *trainingService) load(ctx context.Context, csvPath string) ([]domain.Patient, string, error) {
	patients, err := s.patientsRepo.ListLabeled(ctx)
	if err != nil {
		s.logger.Warn("Failed to load labelled patients from database", zap.Error(err))
	}
	if len(patients) > 0 {
		return patients, sourceDatabase, nil
	}
	if csvPath == "" {
		return nil, "", training.ErrNoData
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open training csv: %w", err)
	}
	defer f.Close()

	patients, err = dataset.ReadPatients(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse training csv: %w", err)
	}
	s.logger.Info("No labelled patients in database, training from csv", zap.String("path", csvPath))
	return patients, csvPath, nil
}

func (s *trainingService) Train(ctx context.Context, req TrainRequest) (*training.Metrics, error) {
	patients, source, err := s.load(ctx, req.CSVPath)
	if err != nil {
		return nil, err
	}

	ds, err := training.BuildDataset(patients)
	if err != nil {
		return nil, err
	}
	neg, pos := ds.ClassCounts()
	s.logger.Info("Training dataset built",
		zap.String("source", source),
		zap.Int("positives", pos),
		zap.Int("negatives", neg),
		zap.Int("features", len(ds.FeatureNames)),
	)

	opts := req.Options
	if opts == (training.Options{}) {
		opts = training.DefaultOptions()
	}
	res, err := training.Train(ds, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to train model: %w", err)
	}
	res.Metrics.Source = source

	if req.OutPath != "" {
		if err := training.WriteMetrics(req.OutPath, &res.Metrics); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Model trained",
		zap.String("model", res.Metrics.Model),
		zap.Float64("accuracy", res.Metrics.Accuracy),
		zap.Float64("f1_score", res.Metrics.F1Score),
		zap.Float64("cv_mean", res.Metrics.CVMean),
		zap.String("metrics_path", req.OutPath),
	)
	return &res.Metrics, nil
}
