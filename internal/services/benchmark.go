package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aigoflow/batch-predictor/internal/models"
	"github.com/aigoflow/batch-predictor/internal/repository"
)

// BenchmarkService measures dispatch throughput and latency across a
// matrix of batch sizes.
type BenchmarkService struct {
	dispatcher *Dispatcher
	repo       repository.Repository
}

func NewBenchmarkService(dispatcher *Dispatcher, repo repository.Repository) *BenchmarkService {
	return &BenchmarkService{
		dispatcher: dispatcher,
		repo:       repo,
	}
}

// Benchmark times one parallel dispatch per requested batch size, in the
// order given, one size at a time so measurements stay uncontaminated.
// Each batch repeats the sample feature vector batchSize times.
func (b *BenchmarkService) Benchmark(ctx context.Context, model string, sample models.FeatureVector, batchSizes []int) (map[int]*models.BenchmarkRecord, error) {
	if len(sample) == 0 {
		return nil, fmt.Errorf("sample feature vector is empty")
	}
	for _, size := range batchSizes {
		if size < 1 {
			return nil, fmt.Errorf("batch size must be positive, got %d", size)
		}
	}

	records := make(map[int]*models.BenchmarkRecord, len(batchSizes))

	for _, size := range batchSizes {
		slog.Info("Benchmarking batch size", "model", model, "batch_size", size)

		batch := make([]models.FeatureVector, size)
		for i := range batch {
			batch[i] = sample
		}

		start := time.Now()
		result, err := b.dispatcher.Dispatch(ctx, model, batch, true)
		if err != nil {
			return nil, fmt.Errorf("benchmark dispatch failed for batch size %d: %w", size, err)
		}
		elapsed := time.Since(start)

		record := &models.BenchmarkRecord{
			BatchSize:    size,
			TotalTime:    elapsed,
			Throughput:   float64(size) / elapsed.Seconds(),
			AvgLatencyMs: elapsed.Seconds() / float64(size) * 1000,
			Successful:   result.SuccessCount(),
		}
		records[size] = record

		if b.repo != nil {
			b.repo.Benchmark().SaveRecord(ctx, model, record)
		}

		slog.Info("Benchmark completed",
			"model", model,
			"batch_size", size,
			"throughput", record.Throughput,
			"avg_latency_ms", record.AvgLatencyMs,
			"successful", record.Successful)
	}

	return records, nil
}
