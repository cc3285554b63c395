package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigoflow/batch-predictor/internal/models"
	"github.com/aigoflow/batch-predictor/internal/store"
)

func openTestRepo(t *testing.T) Repository {
	t.Helper()

	db, err := store.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQLiteRepository(db)
}

func TestPredictionLogRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	err := repo.Prediction().LogPrediction(ctx, &models.PredictionLog{
		Timestamp:   time.Now(),
		BatchID:     "01J0000000000000000000TEST",
		ReqID:       "01J0000000000000000000REQ1",
		ModelName:   "iris_classifier",
		BatchIndex:  3,
		Prediction:  `"setosa"`,
		Probability: 0.92,
		LatencyMs:   1.4,
		CacheHit:    true,
		Status:      "ok",
	})
	require.NoError(t, err)

	err = repo.Prediction().LogPrediction(ctx, &models.PredictionLog{
		Timestamp:  time.Now(),
		BatchID:    "01J0000000000000000000TEST",
		ModelName:  "iris_classifier",
		BatchIndex: 4,
		Prediction: "null",
		Status:     "error",
		Error:      "connection refused",
	})
	require.NoError(t, err)

	logs, err := repo.Prediction().GetPredictionLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	// Most recent first
	assert.Equal(t, 4, logs[0].BatchIndex)
	assert.Equal(t, "error", logs[0].Status)
	assert.Equal(t, "connection refused", logs[0].Error)

	assert.Equal(t, 3, logs[1].BatchIndex)
	assert.Equal(t, "ok", logs[1].Status)
	assert.Equal(t, `"setosa"`, logs[1].Prediction)
	assert.True(t, logs[1].CacheHit)
	assert.InDelta(t, 0.92, logs[1].Probability, 1e-9)
}

func TestBenchmarkRecordRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	err := repo.Benchmark().SaveRecord(ctx, "iris_classifier", &models.BenchmarkRecord{
		BatchSize:    100,
		TotalTime:    250 * time.Millisecond,
		Throughput:   400,
		AvgLatencyMs: 2.5,
		Successful:   98,
	})
	require.NoError(t, err)

	records, err := repo.Benchmark().GetRecords(ctx, "iris_classifier", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, 100, records[0].BatchSize)
	assert.Equal(t, 250*time.Millisecond, records[0].TotalTime)
	assert.InDelta(t, 400, records[0].Throughput, 1e-9)
	assert.InDelta(t, 2.5, records[0].AvgLatencyMs, 1e-9)
	assert.Equal(t, 98, records[0].Successful)

	// Records are scoped by model name
	other, err := repo.Benchmark().GetRecords(ctx, "other_model", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestEventLogging(t *testing.T) {
	repo := openTestRepo(t)

	err := repo.Event().LogEvent(context.Background(), "info", "startup", "Predictor starting", map[string]interface{}{
		"model_name": "iris_classifier",
	})
	assert.NoError(t, err)
}
