package repository

import (
	"context"

	"github.com/aigoflow/batch-predictor/internal/models"
)

// Repository aggregates all repository interfaces
type Repository interface {
	Prediction() PredictionRepositoryInterface
	Benchmark() BenchmarkRepositoryInterface
	Event() EventRepositoryInterface
}

// PredictionRepositoryInterface defines per-item prediction logging operations
type PredictionRepositoryInterface interface {
	LogPrediction(ctx context.Context, log *models.PredictionLog) error
	GetPredictionLogs(ctx context.Context, limit int) ([]*models.PredictionLog, error)
}

// BenchmarkRepositoryInterface defines benchmark record persistence
type BenchmarkRepositoryInterface interface {
	SaveRecord(ctx context.Context, modelName string, record *models.BenchmarkRecord) error
	GetRecords(ctx context.Context, modelName string, limit int) ([]*models.BenchmarkRecord, error)
}

// EventRepositoryInterface defines event logging operations
type EventRepositoryInterface interface {
	LogEvent(ctx context.Context, level, code, msg string, meta map[string]interface{}) error
}
