package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"stroke-warning-system/internal/training"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ModelMetricsSource loads the latest training metrics. A nil result with
// nil error means no model has been trained yet.
type ModelMetricsSource interface {
	Load(ctx context.Context) (*training.Metrics, error)
}

// FileMetricsSource reads the JSON written by `strokectl train`.
type FileMetricsSource struct {
	Path string
}

func (s FileMetricsSource) Load(ctx context.Context) (*training.Metrics, error) {
	m, err := training.ReadMetrics(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return m, err
}

// HTTPMetricsSource fetches the metrics document from a model registry or
// object store URL.
type HTTPMetricsSource struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

func NewHTTPMetricsSource(url string, logger *zap.Logger) *HTTPMetricsSource {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")

	return &HTTPMetricsSource{httpClient: client, url: url, logger: logger}
}

func (s *HTTPMetricsSource) Load(ctx context.Context) (*training.Metrics, error) {
	var m training.Metrics
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetResult(&m).
		Get(s.url)
	if err != nil {
		s.logger.Error("Model metrics request failed", zap.String("url", s.url), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch model metrics: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return &m, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		s.logger.Error("Model metrics request returned error",
			zap.String("url", s.url),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("model metrics endpoint returned %d", resp.StatusCode())
	}
}
